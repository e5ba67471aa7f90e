package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fireplace_rf/internal/decoder"
	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/repository/db"
	"fireplace_rf/internal/service"

	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log_level", logger.InfoLevel)
	viper.SetDefault("db.path", "app.db")
	viper.SetDefault("auth.token_ttl", time.Hour)

	viper.SetDefault("fireplace.id", "")
	viper.SetDefault("fireplace.name", "Fireplace")
	viper.SetDefault("fireplace.supports_power", true)
	viper.SetDefault("fireplace.power_count", 6)
	viper.SetDefault("fireplace.restore_mode", "RESTORE_DEFAULT_OFF")

	viper.SetDefault("receiver.protocol", "a")
	viper.SetDefault("receiver.source", "none")
	viper.SetDefault("receiver.serial.baud", 115200)
	viper.SetDefault("receiver.gpio.chip", "gpiochip0")
	viper.SetDefault("receiver.gpio.idle_timeout", 10*time.Millisecond)

	viper.SetDefault("relay.chip", "gpiochip0")

	viper.SetDefault("mqtt.client_id", "fireplace-rf")
	viper.SetDefault("mqtt.topic_prefix", "fireplace_rf")
	viper.SetDefault("mqtt.discovery_prefix", "homeassistant")
}

// loadConfig reads configs/config.yml unless --config names another file.
// A missing default file leaves the built-in defaults in place.
func loadConfig() error {
	setDefaults()
	viper.SetEnvPrefix("FIREPLACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("configs")
		viper.SetConfigName("config")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func fireplaceConfig() (fireplace.Config, error) {
	traits, err := fireplace.NewTraits(
		viper.GetBool("fireplace.supports_power"),
		viper.GetInt("fireplace.power_count"),
		viper.GetStringSlice("fireplace.preset_modes"),
	)
	if err != nil {
		return fireplace.Config{}, fmt.Errorf("fireplace traits: %w", err)
	}
	mode, err := fireplace.ParseRestoreMode(viper.GetString("fireplace.restore_mode"))
	if err != nil {
		return fireplace.Config{}, err
	}
	return fireplace.Config{
		ID:          viper.GetString("fireplace.id"),
		Name:        viper.GetString("fireplace.name"),
		Traits:      traits,
		RestoreMode: mode,
	}, nil
}

func receiverProtocol() (decoder.Protocol, error) {
	return decoder.LookupProtocol(viper.GetString("receiver.protocol"))
}

// dispatchTable overlays the configured commands.<code> entries on the defaults.
func dispatchTable() (service.DispatchTable, error) {
	var raw map[string]service.CommandAction
	if err := viper.UnmarshalKey("commands", &raw); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return service.ParseDispatchTable(raw)
}

func authConfig() service.AuthConfig {
	return service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   viper.GetDuration("auth.token_ttl"),
	}
}

func openDB(log *logger.Logger) (*sql.DB, error) {
	path := viper.GetString("db.path")
	log.Infow("opening database", "path", path)
	return db.InitDB(path)
}
