package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"prodfact/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Prodfact configuration",
	Long: `Manage Prodfact configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (PRODFACT_*)
3. Config file (~/.prodfact/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(yamlData))

		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (PRODFACT_*, OPENAI_API_KEY, GOOGLE_API_KEY)")
		fmt.Println("  3. Config file (~/.prodfact/config.yaml)")
		fmt.Println("  4. Defaults (shown above)")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configDir := home + "/.prodfact"
		configPath := configDir + "/config.yaml"

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'prodfact config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		var buf []byte
		buf = append(buf, []byte("# Prodfact Configuration File\n")...)
		buf = append(buf, []byte("#\n")...)
		buf = append(buf, []byte("# Configuration hierarchy (highest to lowest priority):\n")...)
		buf = append(buf, []byte("#   1. CLI flags\n")...)
		buf = append(buf, []byte("#   2. Environment variables (PRODFACT_*)\n")...)
		buf = append(buf, []byte("#   3. This config file\n")...)
		buf = append(buf, []byte("#   4. Built-in defaults\n\n")...)
		buf = append(buf, yamlData...)
		buf = append(buf, []byte("\n# API keys come from environment variables, never this file:\n")...)
		buf = append(buf, []byte("#   export OPENAI_API_KEY=sk-...\n")...)
		buf = append(buf, []byte("#   export GOOGLE_API_KEY=...\n")...)
		buf = append(buf, []byte("#   export OLLAMA_BASE_URL=http://localhost:11434\n")...)

		if err := os.WriteFile(configPath, buf, 0o644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  prodfact config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
