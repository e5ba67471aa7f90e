package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"fireplace_rf/internal/capture"
	"fireplace_rf/internal/decoder"
	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/handlers"
	"fireplace_rf/internal/hardware"
	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/mqtt"
	"fireplace_rf/internal/repository"
	"fireplace_rf/internal/server"
	"fireplace_rf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	shutdownTimeout   = 10 * time.Second
	mqttDisconnectMil = 250
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the receiver, the fireplace and the HTTP API",
	Long: `serve restores the fireplace state, starts decoding bursts from the
configured capture source and exposes the HTTP API, the state stream on /ws
and, when enabled, the Home Assistant MQTT bridge.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "8080", "HTTP port")
	serveCmd.Flags().String("protocol", "a", "remote protocol: a or b")
	serveCmd.Flags().String("source", "none", "capture source: none, serial or gpio")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("receiver.protocol", serveCmd.Flags().Lookup("protocol"))
	_ = viper.BindPFlag("receiver.source", serveCmd.Flags().Lookup("source"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Get(viper.GetString("log_level"))
	if viper.GetString("log_level") != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	fpCfg, err := fireplaceConfig()
	if err != nil {
		return err
	}
	proto, err := receiverProtocol()
	if err != nil {
		return err
	}
	table, err := dispatchTable()
	if err != nil {
		return err
	}

	database, err := openDB(log)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(database)

	driver, closeDriver, err := openDriver(log)
	if err != nil {
		return err
	}
	defer closeDriver()

	fp := fireplace.New(fpCfg, driver, repos.Preferences, log.Named("fireplace"))
	services := service.NewService(service.Deps{
		Repos:     repos,
		Fireplace: fp,
		Decoder:   decoder.NewDecoder(proto, log.Named("decoder")),
		Dispatch:  table,
		Auth:      authConfig(),
		Log:       log,
	})
	recorder := service.NewEventRecorder(fp, repos.EventRepo, log.Named("events"))
	defer recorder.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fp.LogConfig()
	if err := fp.Setup(ctx); err != nil {
		return fmt.Errorf("restore fireplace state: %w", err)
	}

	if err := startCapture(ctx, services.Receiver, log); err != nil {
		return err
	}
	if viper.GetBool("mqtt.enabled") {
		disconnect, err := startBridge(ctx, fp.ID(), services, log)
		if err != nil {
			return err
		}
		defer disconnect()
	}

	srv := &server.Server{}
	apiHandler := handlers.NewHandler(services, log.Named("http"), viper.GetStringSlice("http.allowed_origins")...)
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "port", viper.GetString("port"), "protocol", proto.Name)
		errCh <- srv.Run(viper.GetString("port"), apiHandler.InitRoutes())
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Infow("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// openDriver returns the relay driver when enabled, otherwise nil so the
// fireplace commits calls without hardware.
func openDriver(log *logger.Logger) (fireplace.Driver, func(), error) {
	if !viper.GetBool("relay.enabled") {
		return nil, func() {}, nil
	}
	relay, err := hardware.OpenRelay(hardware.RelayConfig{
		Chip:       viper.GetString("relay.chip"),
		PowerLine:  viper.GetInt("relay.power_line"),
		LevelLines: viper.GetIntSlice("relay.level_lines"),
		ActiveLow:  viper.GetBool("relay.active_low"),
	}, log.Named("relay"))
	if err != nil {
		return nil, nil, fmt.Errorf("open relay: %w", err)
	}
	return relay, func() {
		if err := relay.Close(); err != nil {
			log.Errorw("failed to release relay lines", "err", err)
		}
	}, nil
}

func openSource(log *logger.Logger) (capture.Source, error) {
	switch src := viper.GetString("receiver.source"); src {
	case "", "none":
		return nil, nil
	case "serial":
		return capture.OpenSerial(capture.SerialConfig{
			Port: viper.GetString("receiver.serial.port"),
			Baud: viper.GetInt("receiver.serial.baud"),
		})
	case "gpio":
		return capture.OpenGPIO(capture.GPIOConfig{
			Chip:        viper.GetString("receiver.gpio.chip"),
			Line:        viper.GetInt("receiver.gpio.line"),
			IdleTimeout: viper.GetDuration("receiver.gpio.idle_timeout"),
			ActiveLow:   viper.GetBool("receiver.gpio.active_low"),
		}, log.Named("gpio"))
	default:
		return nil, fmt.Errorf("unknown capture source %q", src)
	}
}

// startCapture feeds the configured source into the receiver until ctx ends.
func startCapture(ctx context.Context, rx service.Receiver, log *logger.Logger) error {
	src, err := openSource(log)
	if err != nil {
		return fmt.Errorf("open capture source: %w", err)
	}
	if src == nil {
		log.Infow("no capture source configured; bursts accepted over HTTP only")
		return nil
	}
	go func() {
		defer func() { _ = src.Close() }()
		if err := capture.Run(ctx, src, rx, log.Named("capture")); err != nil {
			log.Errorw("capture stopped", "err", err)
		}
	}()
	return nil
}

func startBridge(ctx context.Context, id string, services *service.Service, log *logger.Logger) (func(), error) {
	var bridge atomic.Pointer[mqtt.Bridge]
	bridgeLog := log.Named("mqtt")

	client, mgr, err := mqtt.Connect(mqtt.Config{
		Broker:          viper.GetString("mqtt.broker"),
		Username:        viper.GetString("mqtt.username"),
		Password:        viper.GetString("mqtt.password"),
		ClientID:        viper.GetString("mqtt.client_id"),
		TopicPrefix:     viper.GetString("mqtt.topic_prefix"),
		DiscoveryPrefix: viper.GetString("mqtt.discovery_prefix"),
	}, bridgeLog, func(mqtt.Manager) {
		// re-announce after a reconnect
		if b := bridge.Load(); b != nil {
			if err := b.Register(ctx); err != nil {
				bridgeLog.Errorw("mqtt re-register failed", "err", err)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	b := mqtt.NewBridge(mgr, id, services.Fireplace, services.Monitoring, bridgeLog)
	bridge.Store(b)
	go func() {
		if err := b.Run(ctx); err != nil {
			bridgeLog.Errorw("mqtt bridge stopped", "err", err)
		}
	}()
	return func() { client.Disconnect(mqttDisconnectMil) }, nil
}
