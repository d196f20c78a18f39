package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
)

const configFileName = ".testgen.yaml"

var cfg *viper.Viper

// fileConfig is the layout of ~/.testgen.yaml.
type fileConfig struct {
	SettingsDir string `yaml:"settings_dir" json:"settings_dir"`
	Passphrase  string `yaml:"passphrase" json:"passphrase"`
	LogLevel    string `yaml:"log_level" json:"log_level"`
}

func initConfig() error {
	// A .env file in the working directory is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg = viper.New()
	cfg.SetConfigName(".testgen")
	cfg.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		cfg.AddConfigPath(home)
		cfg.SetDefault("settings_dir", filepath.Join(home, ".testgen"))
	} else {
		cfg.SetDefault("settings_dir", ".testgen")
	}
	cfg.SetDefault("passphrase", "")
	cfg.SetDefault("log_level", "warn")

	cfg.SetEnvPrefix("TESTGEN")
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// CLI flags take highest priority
	if flagSettingsDir != "" {
		cfg.Set("settings_dir", flagSettingsDir)
	}
	if flagPassphrase != "" {
		cfg.Set("passphrase", flagPassphrase)
	}
	if flagDebug {
		cfg.Set("log_level", "debug")
	}

	return nil
}

func getSettingsDir() string {
	return cfg.GetString("settings_dir")
}

func getPassphrase() string {
	return cfg.GetString("passphrase")
}

func getLogLevel() string {
	return cfg.GetString("log_level")
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file template at ~/" + configFileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}

			configPath := filepath.Join(home, configFileName)
			out := cmd.OutOrStdout()

			if _, err := os.Stat(configPath); err == nil {
				printMessage(out, "Config file already exists at "+configPath)
				return nil
			}

			data, err := yaml.Marshal(fileConfig{
				SettingsDir: filepath.Join(home, ".testgen"),
				LogLevel:    "warn",
			})
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			data = append([]byte("# Test case generator CLI configuration\n"), data...)

			if err := os.WriteFile(configPath, data, 0600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			printSuccess(out, "Config file created at "+configPath)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout())
		},
	}
}

func showConfig(out io.Writer) error {
	resolved := fileConfig{
		SettingsDir: getSettingsDir(),
		Passphrase:  logger.Redact(getPassphrase()),
		LogLevel:    getLogLevel(),
	}
	if flagJSON {
		return printJSON(out, resolved)
	}

	passphrase := resolved.Passphrase
	if passphrase == "" {
		passphrase = "(not set)"
	}

	printMessage(out, fmt.Sprintf("Settings dir: %s", resolved.SettingsDir))
	printMessage(out, fmt.Sprintf("Passphrase:   %s", passphrase))
	printMessage(out, fmt.Sprintf("Log level:    %s", resolved.LogLevel))

	if cfgFile := cfg.ConfigFileUsed(); cfgFile != "" {
		printMessage(out, fmt.Sprintf("Config file:  %s", cfgFile))
	} else {
		printMessage(out, "Config file:  (none)")
	}
	return nil
}
