// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"hermannm.dev/devlog"

	"github.com/speedrun-tools/seedticket/internal/config"
)

var (
	debug      bool
	logLevel   slog.LevelVar
	cfgFile    string
	serverCfg  config.ServerConfig
)

var rootCmd = &cobra.Command{
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Use:   "seedticket",
	Short: "Seed-ticketing service for speedrunning race seeds",
	Long: `seedticket issues randomly-drawn race seeds from named categories and
	proves, via a short cryptographic ticket, the moment a seed was handed out.
	It also offers an offline ticket verifier for use without the server.
`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &logLevel,
	})))

	rootCmd.PersistentFlags().Bool("debug", false, "Print debug contents")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML configuration file")
}

// rootCmdLoadConfig binds viper to the process flags/environment/file
// and decodes into serverCfg, failing loudly on any Configuration
// error class problem (spec.md §7).
func rootCmdLoadConfig(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SEEDTICKET")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	if err := viper.Unmarshal(&serverCfg); err != nil {
		return fmt.Errorf("decoding configuration: %w", err)
	}

	debug = viper.GetBool("debug")
	if debug {
		logLevel.Set(slog.LevelDebug)
	}

	return serverCfg.Validate()
}
