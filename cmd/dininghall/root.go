// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"strings"

	"github.com/ava-labs/dininghall/config"
	"github.com/ava-labs/dininghall/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "dininghall",
	Short: "Dining hall pairing simulation",
	Long: `Dininghall simulates students sharing a two seat dining hall. Nobody may
sit down alone and nobody may leave a partner eating alone, so students enter
and leave in pairs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/dininghall/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn or error")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults(viper.GetViper())

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// DININGHALL_STRESS_RUNS for stress.runs
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// bindFlags binds the flags of the executing command to config keys. Several commands
// expose the same key, so binding happens once the command is known.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig returns the validated configuration and a logger writing to stderr,
// tagged with the name of the executing command.
func loadConfig(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.With(zap.String("command", cmd.Name())), nil
}
