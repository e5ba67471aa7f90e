package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fireplace",
	Short: "RF remote controlled fireplace service",
	Long: `fireplace decodes the pulse trains of a fireplace remote and drives a
fireplace model that persists its state and publishes every change.

Configuration is read from configs/config.yml (or --config) and can be
overridden with FIREPLACE_* environment variables, e.g. FIREPLACE_PORT=9000 or
FIREPLACE_RECEIVER_PROTOCOL=b.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default configs/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}
