// Package config owns viper setup and service construction for the rb
// commands. Every command gets its service through InitService so flags,
// config file, and environment agree on one view of the world.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-runbook/pkg/category"
	"github.com/mattsolo1/grove-runbook/pkg/models"
	"github.com/mattsolo1/grove-runbook/pkg/service"
	"github.com/mattsolo1/grove-runbook/pkg/sources"
)

var (
	cfgFile           string
	WorkspaceOverride string
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "rb")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("RB")

	// Set defaults
	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "rb"))
	viper.SetDefault("editor", os.Getenv("EDITOR"))
	viper.SetDefault("notebook_extensions", sources.DefaultNotebookExtensions)

	if err := viper.ReadInConfig(); err == nil {
		// Do not print this in normal operation, it's noisy.
		// fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func InitService() (*service.Service, error) {
	var inlineLaunches []models.InlineLaunchSpec
	if err := viper.UnmarshalKey("launches", &inlineLaunches); err != nil {
		return nil, fmt.Errorf("parse launches config: %w", err)
	}

	var inlineTasks []models.InlineTaskSpec
	if err := viper.UnmarshalKey("tasks", &inlineTasks); err != nil {
		return nil, fmt.Errorf("parse tasks config: %w", err)
	}

	var rules []category.Rule
	if err := viper.UnmarshalKey("categories.rules", &rules); err != nil {
		return nil, fmt.Errorf("parse category rules: %w", err)
	}

	config := &service.Config{
		DataDir: viper.GetString("data_dir"),
		Sources: sources.Config{
			InlineLaunches:     inlineLaunches,
			InlineTasks:        inlineTasks,
			UserNotebooks:      viper.GetStringSlice("notebooks"),
			ConfigOrigin:       viper.ConfigFileUsed(),
			SettingsPaths:      viper.GetStringSlice("settings_paths"),
			NotebookExtensions: viper.GetStringSlice("notebook_extensions"),
		},
		Rules:  rules,
		Labels: viper.GetStringMapString("categories.labels"),
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel) // Keep it quiet unless there are issues.
	if viper.GetBool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}

	svc, err := service.New(config, logger)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/rb/config.yaml)")
	cmd.PersistentFlags().StringVarP(&WorkspaceOverride, "workspace", "W", "", "Override current workspace context by name or path")
}
