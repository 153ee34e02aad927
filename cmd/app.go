package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jmurray2011/leaf/internal/logging"
	"github.com/jmurray2011/leaf/internal/output"
	"github.com/jmurray2011/leaf/internal/pager"
	"github.com/jmurray2011/leaf/internal/source"
	"github.com/jmurray2011/leaf/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// appContextKey is the context key for the App instance.
type appContextKey struct{}

// Config holds all configuration values that were previously global.
type Config struct {
	Profile      string
	Region       string
	Endpoint     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Quiet        bool
}

// App holds the application dependencies that can be injected for testing.
type App struct {
	Config Config
	Render *ui.Renderer
	Log    logging.Logger
}

// NewApp creates a new App with default configuration from viper.
func NewApp() *App {
	cfg := Config{
		Profile:      getProfile(),
		Region:       getRegion(),
		Endpoint:     getEndpoint(),
		OutputFormat: getOutputFormat(),
		Verbose:      IsVerbose(),
		NoColor:      colorDisabled(),
		Quiet:        quiet,
	}

	return &App{
		Config: cfg,
		Render: render,
		Log:    logging.Default(),
	}
}

// NewAppWithConfig creates a new App with the given configuration.
// This is primarily used for testing.
func NewAppWithConfig(cfg Config, renderer *ui.Renderer, log logging.Logger) *App {
	if renderer == nil {
		renderer = ui.NewRendererWithOptions(ui.WithNoColor(cfg.NoColor), ui.WithQuiet(cfg.Quiet))
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &App{
		Config: cfg,
		Render: renderer,
		Log:    log,
	}
}

// GetApp retrieves the App from the command context.
// If no App is set, it creates a new default one.
func GetApp(cmd *cobra.Command) *App {
	if ctx := cmd.Context(); ctx != nil {
		if app, ok := ctx.Value(appContextKey{}).(*App); ok {
			return app
		}
	}
	return NewApp()
}

// SetApp stores the App in the context for a command.
func SetApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appContextKey{}, app)
}

// Debugf prints a debug message if verbose mode is enabled.
// This is a method on App to allow per-instance verbose control.
func (a *App) Debugf(format string, args ...interface{}) {
	if a.Config.Verbose || viper.GetBool("verbose") {
		a.Render.Debug(format, args...)
	}
}

// GetProfile returns the profile from Config or viper.
func (a *App) GetProfile() string {
	if a.Config.Profile != "" {
		return a.Config.Profile
	}
	return viper.GetString("profile")
}

// GetRegion returns the region from Config or viper.
func (a *App) GetRegion() string {
	if a.Config.Region != "" {
		return a.Config.Region
	}
	return viper.GetString("region")
}

// GetOutputFormat returns the output format from Config or viper.
func (a *App) GetOutputFormat() string {
	if a.Config.OutputFormat != "" {
		return a.Config.OutputFormat
	}
	if f := viper.GetString("output.format"); f != "" {
		return f
	}
	return string(output.FormatText)
}

// OpenOptions returns the defaults applied to every source the app opens.
func (a *App) OpenOptions() source.OpenOptions {
	endpoint := a.Config.Endpoint
	if endpoint == "" {
		endpoint = viper.GetString("endpoint")
	}
	return source.OpenOptions{
		Profile:  a.GetProfile(),
		Region:   a.GetRegion(),
		Endpoint: endpoint,
	}
}

// PagerOptions returns pager settings from config. root is stripped from
// trace paths.
func (a *App) PagerOptions(root string) pager.Options {
	return pager.Options{
		BufferSize: viper.GetInt("buffer_size"),
		Lines:      viper.GetInt("lines"),
		Root:       root,
		MaxPages:   viper.GetInt("max_pages"),
		Logger:     a.Log,
	}
}

// Formatter returns an output formatter writing to w, or an error for an
// unknown --output value.
func (a *App) Formatter(w io.Writer) (*output.Formatter, error) {
	format := output.Format(a.GetOutputFormat())
	if !format.Valid() {
		return nil, fmt.Errorf("unknown output format %q (use %s)", format, strings.Join(output.Formats, ", "))
	}
	f := output.NewFormatter(string(format), w)
	switch {
	case a.Config.NoColor:
		f.WithColor(false)
	case viper.GetString("output.color") == "always":
		f.WithColor(true)
	}
	return f, nil
}

// OpenSource opens a source or cursor argument. It returns the source, the
// cursor's seek (0 when arg has none), the trace root to use, and the URI to
// print in cursors.
func (a *App) OpenSource(arg string) (source.Source, int64, string, string, error) {
	uri, seek, err := source.ParseCursor(arg)
	if err != nil {
		return nil, 0, "", "", err
	}

	src, err := source.OpenWithOptions(uri, a.OpenOptions())
	if err != nil {
		return nil, 0, "", "", err
	}

	root := viper.GetString("app_root")
	if strings.HasPrefix(uri, "@") {
		if cfg, err := source.LoadConfig(); err == nil {
			if r := cfg.RootFor(uri[1:]); r != "" {
				root = r
			}
		}
	} else {
		// Cursors carry the canonical URI so they work from any directory.
		uri = src.Metadata().URI
	}
	return src, seek, root, uri, nil
}
