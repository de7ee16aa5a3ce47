package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"pokedex/pkg/config"
	"pokedex/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage pokedex configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (POKEDEX_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as 'pokedex.yaml' unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the configuration file and environment for syntax errors and
invalid values, and check that the output locations are writable.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# pokedex configuration file
#
# Common options can also be set with environment variables prefixed with
# POKEDEX_, for example POKEDEX_MAX_ID=151 or POKEDEX_VARIANT=grouped.

api:
  base_url: "https://pokeapi.co/api/v2"
  # Per-request timeout
  timeout: 15s
  user_agent: "pokedex-builder/1.0"

retry:
  # Attempts per request, including the first
  max_attempts: 3
  # Wait between attempts; no wait after the last one
  delay: 3s
  # constant, linear or exponential
  backoff: constant
  max_delay: 30s
  multiplier: 2.0

rate_limit:
  # 0 disables the limiter
  requests_per_minute: 600

pipeline:
  start_id: 1
  max_id: 1025
  # Number of ids fetched concurrently; 1 builds sequentially
  concurrency: 5
  # Write a checkpoint each time this many more ids have finished
  checkpoint_every: 25
  # flat or grouped
  variant: flat
  output_file: "pokedex.json"
  checkpoint_file: "pokedex_checkpoint.json"

silhouette:
  enabled: true
  directory: "silhouettes"
  # When set, records reference base_url + "/" + file instead of the path
  base_url: ""
  fill_color: "#000000"

logging:
  # debug, info, warn, error
  level: "info"
  # Optional log file in addition to stderr
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "pokedex.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return fmt.Errorf("%s already exists", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file")
	fmt.Println("2. Run 'pokedex config validate' to check it")
	fmt.Println("3. Build the dataset with 'pokedex build'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Println(ui.Magenta("Current Configuration"))
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (POKEDEX_*)")
	if path := configSource(); path != "" {
		fmt.Printf("3. Configuration file: %s\n", path)
	} else {
		fmt.Println("3. Configuration file: (none found)")
	}
	fmt.Println("4. Default values")
	return nil
}

func configSource() string {
	if configFile != "" {
		return configFile
	}
	return config.FindConfigFile()
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	ui.PrintInfo("Validating configuration", orNone(configSource()))

	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Configuration validation failed")
		return err
	}

	var problems []string
	for _, dir := range []string{parentDir(cfg.Pipeline.OutputFile), parentDir(cfg.Pipeline.CheckpointFile)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create directory %s: %v", dir, err))
		}
	}
	if cfg.Silhouette.Enabled {
		if err := os.MkdirAll(cfg.Silhouette.Directory, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create silhouette directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(parentDir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("configuration has %d errors", len(problems))
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Ids: %d..%d\n", cfg.Pipeline.StartID, cfg.Pipeline.MaxID)
	fmt.Printf("  Variant: %s\n", cfg.Pipeline.Variant)
	fmt.Printf("  Concurrency: %d\n", cfg.Pipeline.Concurrency)
	fmt.Printf("  Output: %s\n", cfg.Pipeline.OutputFile)
	fmt.Printf("  Checkpoint: %s (every %d ids)\n", cfg.Pipeline.CheckpointFile, cfg.Pipeline.CheckpointEvery)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}

func parentDir(path string) string {
	return filepath.Dir(path)
}

func orNone(s string) string {
	if s == "" {
		return "(defaults and environment only)"
	}
	return s
}
