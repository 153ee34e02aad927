package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	leaferrors "github.com/jmurray2011/leaf/internal/errors"
	"github.com/jmurray2011/leaf/internal/source"

	"github.com/spf13/cobra"
)

var (
	sourcesAddRoot    string
	sourcesAddDefault bool
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured source aliases",
	Long: `List source aliases defined in the configuration file.

Source aliases can be defined in ~/.leaf/config.yaml:

  sources:
    prod:
      uri: s3://my-app-logs/laravel.log?profile=prod&region=eu-west-1
      root: /var/www/html
    local:
      uri: file:///var/www/app/storage/logs/laravel.log

Use aliases with @ prefix in commands:
  leaf page @prod -k "QueryException"
  leaf follow @local`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <name> <uri>",
	Short: "Add or replace a source alias",
	Example: `  leaf sources add prod "s3://my-app-logs/laravel.log?profile=prod" --root /var/www/html
  leaf sources add local ./storage/logs/laravel.log --default`,
	Args: cobra.ExactArgs(2),
	RunE: runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a source alias",
	Args:    cobra.ExactArgs(1),
	RunE:    runSourcesRemove,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)

	sourcesAddCmd.Flags().StringVar(&sourcesAddRoot, "root", "", "Application root stripped from traces of this source")
	sourcesAddCmd.Flags().BoolVar(&sourcesAddDefault, "default", false, "Make this the default source")
}

func runSources(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	cfg, err := source.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Sort alias names for consistent output
	names := make([]string, 0, len(cfg.Sources))
	uris := make(map[string]string, len(cfg.Sources))
	for name, alias := range cfg.Sources {
		names = append(names, name)
		uris[name] = alias.URI
	}
	sort.Strings(names)

	formatter, err := app.Formatter(os.Stdout)
	if err != nil {
		return err
	}
	return formatter.FormatSources(uris, cfg.DefaultSource, names)
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	name, uri := strings.TrimPrefix(args[0], "@"), args[1]

	if name == "" || strings.ContainsAny(name, "@#/ ") {
		return fmt.Errorf("invalid alias name %q", args[0])
	}
	if strings.HasPrefix(uri, "@") {
		return fmt.Errorf("an alias cannot point at another alias (%s)", uri)
	}

	// Fail early on URIs that could never open.
	src, err := source.OpenWithOptions(uri, app.OpenOptions())
	if err != nil {
		return err
	}
	_ = src.Close()

	cfg, err := source.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Sources[name] = source.SourceAlias{URI: uri, Root: sourcesAddRoot}
	if sourcesAddDefault {
		cfg.DefaultSource = name
	}
	if err := source.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	app.Render.Success("Saved @%s -> %s", name, uri)
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	name := strings.TrimPrefix(args[0], "@")

	cfg, err := source.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, ok := cfg.Sources[name]; !ok {
		names := make([]string, 0, len(cfg.Sources))
		for n := range cfg.Sources {
			names = append(names, n)
		}
		return leaferrors.SourceNotFoundError("@"+name, names)
	}

	delete(cfg.Sources, name)
	if cfg.DefaultSource == name {
		cfg.DefaultSource = ""
	}
	if err := source.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	app.Render.Success("Removed @%s", name)
	return nil
}
