package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fredcamaral/slideterm/internal/adapters/secondary/config"
	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/services"
)

// loadConfig loads configuration with precedence: defaults, global file,
// slideterm.toml next to the presentation, SLIDETERM_* variables, flags
func loadConfig(cmd *cobra.Command, presentationPath string) (*entities.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	service := services.NewConfigService(config.NewTOMLLoader(configPath), config.NewConfigMerger())

	dir := "."
	if presentationPath != "" {
		dir = filepath.Dir(presentationPath)
	}

	finalConfig, err := service.LoadConfig(cmd.Context(), dir, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return finalConfig, nil
}

// collectFlags returns the flags set on the command line, keyed by name
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Value.Type() {
		case "bool":
			value, err := cmd.Flags().GetBool(flag.Name)
			if err == nil {
				flags[flag.Name] = value
			}
		case "string":
			value := flag.Value.String()
			if flag.Name == "log-file" && value != "" {
				if abs, err := filepath.Abs(value); err == nil {
					value = abs
				}
			}
			flags[flag.Name] = value
		case "int":
			value, err := cmd.Flags().GetInt(flag.Name)
			if err == nil {
				flags[flag.Name] = value
			}
		}
	})
	return flags
}
