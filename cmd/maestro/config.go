package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pedramamini/Maestro-sub005/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Maestro configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/maestro/config.yaml
Project-specific overrides can be placed in .maestro.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("defaults.moderator_agent: %s\n", cfg.Defaults.ModeratorAgent)
	fmt.Printf("defaults.work_dir: %s\n", cfg.Defaults.WorkDir)
	fmt.Printf("defaults.read_only: %t\n", cfg.Defaults.ReadOnly)
	fmt.Printf("paths.data_dir: %s\n", cfg.Paths.DataDir)
	fmt.Printf("paths.agents_file: %s\n", cfg.Paths.AgentsFile)
	fmt.Printf("recovery.context_messages: %d\n", cfg.Recovery.ContextMessages)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "defaults.moderator_agent":
		return cfg.Defaults.ModeratorAgent, nil
	case "defaults.work_dir":
		return cfg.Defaults.WorkDir, nil
	case "defaults.read_only":
		return strconv.FormatBool(cfg.Defaults.ReadOnly), nil
	case "paths.data_dir":
		return cfg.Paths.DataDir, nil
	case "paths.agents_file":
		return cfg.Paths.AgentsFile, nil
	case "recovery.context_messages":
		return strconv.Itoa(cfg.Recovery.ContextMessages), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "defaults.moderator_agent":
		cfg.Defaults.ModeratorAgent = value
	case "defaults.work_dir":
		cfg.Defaults.WorkDir = value
	case "defaults.read_only":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for defaults.read_only: %w", err)
		}
		cfg.Defaults.ReadOnly = b
	case "paths.data_dir":
		cfg.Paths.DataDir = value
	case "paths.agents_file":
		cfg.Paths.AgentsFile = value
	case "recovery.context_messages":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for context_messages: %w", err)
		}
		cfg.Recovery.ContextMessages = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
