package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jmurray2011/leaf/internal/local" // Register file:// source
	"github.com/jmurray2011/leaf/internal/logging"
	_ "github.com/jmurray2011/leaf/internal/s3log" // Register s3:// source
	"github.com/jmurray2011/leaf/internal/source"
	"github.com/jmurray2011/leaf/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	profile      string
	region       string
	endpoint     string
	outputFormat string
	cfgFile      string
	verbose      bool
	noColor      bool
	quiet        bool

	// render is the global renderer for all output
	render *ui.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "leaf",
	Short: "Page through Laravel logs, newest first",
	Long: `leaf - turn over the pages of a log file.

Reads Laravel/Monolog log files a page at a time, starting from the newest
entry, without loading the whole file. Works on local files and S3 objects.

Source URIs:
  file:///var/www/storage/logs/laravel.log      Local file
  ./storage/logs/laravel.log                    Local file (shorthand)
  s3://bucket/logs/laravel.log?profile=x        S3 object
  @alias-name                                   Config alias

Every page prints cursors (source#offset) for the pages around it; pass a
cursor back to 'leaf page' to move through the file.

Configuration:
  Create ~/.leaf/config.yaml to define source aliases:

    sources:
      prod:
        uri: s3://my-app-logs/laravel.log?profile=prod&region=eu-west-1
        root: /var/www/html
      local:
        uri: ./storage/logs/laravel.log

    default_source: local
    log_dir: ./storage/logs
    app_root: /var/www/html

Examples:
  # Newest 20 entries of the most recent log file
  leaf page

  # Older entries, from a printed cursor
  leaf page "file:///var/www/storage/logs/laravel.log#-48213"

  # Only entries containing a keyword
  leaf page @prod -k "QueryException" -n 5

  # Follow new entries
  leaf follow @local

  # List log files
  leaf files`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initConfig, initLogging, initRenderer)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.leaf/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Default AWS profile (can be overridden in URI)")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", "", "Default AWS region (can be overridden in URI)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL (can be overridden in URI)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, csv")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress status messages")

	// Bind flags to viper
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initRenderer initializes the global renderer with current settings.
func initRenderer() {
	render = ui.NewRendererWithOptions(
		ui.WithNoColor(colorDisabled()),
		ui.WithQuiet(quiet),
	)
}

// initLogging routes diagnostics through the shared logger. Page reads are
// logged at debug level and only show with --verbose.
func initLogging() {
	if IsVerbose() {
		logging.Default().SetLevel(logging.LevelDebug)
		return
	}
	logging.Default().SetLevel(logging.ParseLevel(viper.GetString("log_level")))
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose || viper.GetBool("verbose")
}

// colorDisabled honours --no-color, NO_COLOR and output.color: never.
func colorDisabled() bool {
	return noColor || os.Getenv("NO_COLOR") != "" || viper.GetString("output.color") == "never"
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		source.SetConfigPath(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".leaf"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("LEAF")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("lines", 20)
	viper.SetDefault("buffer_size", 4096)
	viper.SetDefault("max_pages", 10000)
	viper.SetDefault("output.format", "text")
	viper.SetDefault("output.color", "auto")
	viper.SetDefault("log_dir", "./storage/logs")
	viper.SetDefault("app_root", "")
	viper.SetDefault("addr", "127.0.0.1:8089")
	viper.SetDefault("log_level", "info")

	// Read config file (ignore if not found, warn on other errors)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}
}

// getProfile returns the AWS profile from flags or config.
func getProfile() string {
	if profile != "" {
		return profile
	}
	return viper.GetString("profile")
}

// getRegion returns the AWS region from flags or config.
func getRegion() string {
	if region != "" {
		return region
	}
	return viper.GetString("region")
}

// getEndpoint returns the S3 endpoint from flags or config.
func getEndpoint() string {
	if endpoint != "" {
		return endpoint
	}
	return viper.GetString("endpoint")
}

// getOutputFormat returns the output format from flags or config.
func getOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	return viper.GetString("output.format")
}
