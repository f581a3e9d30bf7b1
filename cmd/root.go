package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hilite/internal/config"
	"github.com/zjrosen/hilite/internal/log"
)

var (
	version  = "dev"
	cfgFile  string
	logFile  string
	logLevel string
	cfg      config.Config

	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "hilite",
	Short: "An incremental, line-at-a-time syntax highlighter",
	Long: `hilite highlights source files one line at a time, carrying only a small
block state from each line to the next, and renders them with ANSI colors.

Languages and themes are configured in ~/.config/hilite/config.yaml or
.hilite/config.yaml. Run 'hilite init' to write a commented default config.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { closeLog() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .hilite/config.yaml, then ~/.config/hilite/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"append debug log to this file (overrides log.file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"minimum log level: debug, info, warn, error (overrides log.level)")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .hilite/config.yaml (current directory)
		// 2. ~/.config/hilite/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "hilite"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file is fine: defaults apply. Other read errors
	// surface from setup.
	readErr = viper.ReadInConfig()
	if _, ok := readErr.(viper.ConfigFileNotFoundError); ok {
		readErr = nil
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

const localConfigPath = ".hilite/config.yaml"

// Commands annotated with annotationConfig: configOptional run even when the
// config file cannot be read.
const (
	annotationConfig = "config"
	configOptional   = "optional"
)

var readErr error

// setup starts logging and validates the loaded configuration.
func setup(cmd *cobra.Command, _ []string) error {
	optional := cmd.Annotations[annotationConfig] == configOptional
	if readErr != nil && !optional {
		return fmt.Errorf("reading config: %w", readErr)
	}

	if logFile != "" {
		cfg.Log.File = logFile
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := config.Validate(cfg); err != nil && !optional {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Log.File != "" {
		cleanup, err := log.Init(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		closeLog = func() {
			log.Reset()
			cleanup()
		}
	}
	level, _ := log.ParseLevel(cfg.Log.Level)
	log.SetMinLevel(level)

	log.Debug(log.CatCLI, "Command starting", "command", cmd.CommandPath(), "config", viper.ConfigFileUsed())
	return nil
}

// configFilePath returns the file to save config changes into.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if cfgFile != "" {
		return cfgFile
	}
	return localConfigPath
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
