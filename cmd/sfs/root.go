package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rootCmd represents the base CLI command.
var rootCmd = &cobra.Command{
	Use:   "sfs",
	Short: "A CLI tool for SFS disk images",
	Long: `sfs creates and manipulates SFS disk images: single-file,
block-structured filesystems with bitmap allocation, a fixed inode table,
and up to three direct data blocks per file.

Use "sfs mkfs" to format a new image and "sfs shell" for an interactive
session on an existing one.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("image", "i", "disk.sfs", "path to the disk image")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "log format: json or human")

	viper.BindPFlag("image", rootCmd.PersistentFlags().Lookup("image"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetEnvPrefix("SFS")
	viper.AutomaticEnv()

	rootCmd.AddCommand(mkfsCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the zap logger selected by the debug and log-format
// settings.
func newLogger() (*zap.Logger, error) {
	var cfg zap.Config

	if viper.GetString("log_format") == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if viper.GetBool("debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// versionCmd shows the application version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sfs v0.1.0")
	},
}
