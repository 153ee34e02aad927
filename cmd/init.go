package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmurray2011/leaf/internal/source"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize leaf configuration",
	Long: `Create a default configuration file at ~/.leaf/config.yaml.

Examples:
  # Create default config (won't overwrite existing)
  leaf init

  # Force overwrite existing config
  leaf init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := source.ConfigPath()
	if configPath == "" {
		return fmt.Errorf("failed to get home directory")
	}

	created, err := createFileIfNotExists(configPath, generateDefaultConfig(), initForce)
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("%s already exists (use --force to overwrite)\n", configPath)
		return nil
	}

	fmt.Println("Initialized leaf configuration:")
	fmt.Printf("  Config: %s\n", configPath)
	fmt.Printf("\nEdit %s to add sources.\n", configPath)
	return nil
}

func generateDefaultConfig() string {
	return `# leaf configuration

# Directory searched by 'leaf files', and by 'leaf page' without a source
log_dir: ./storage/logs

# Stripped from file paths in stack traces
# app_root: /var/www/html

# Page defaults
lines: 20
buffer_size: 4096

# Output: text, json, csv; color: auto, always, never
output:
  format: text
  color: auto

# Address for 'leaf serve'
addr: 127.0.0.1:8089

# AWS defaults for s3:// sources
# profile: my-aws-profile
# region: eu-west-1
# endpoint: http://localhost:9000

# Source aliases, used as @name
sources: {}
#   prod:
#     uri: s3://my-app-logs/laravel.log?profile=prod
#     root: /var/www/html
#   local:
#     uri: ./storage/logs/laravel.log

# default_source: local
`
}

// createFileIfNotExists writes content to path unless it exists and force is
// false. It reports whether the file was written.
func createFileIfNotExists(path, content string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
