package source

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	leaferrors "github.com/jmurray2011/leaf/internal/errors"
)

// SourceOpener is a function that opens a source from a parsed URL.
type SourceOpener func(u *url.URL, opts OpenOptions) (Source, error)

// OpenOptions provides default values for source configuration.
// These can be overridden by URI query parameters.
type OpenOptions struct {
	Profile  string // Default AWS profile (s3)
	Region   string // Default AWS region (s3)
	Endpoint string // Default S3 endpoint override

	// Static S3 credentials, for MinIO and similar. When empty the AWS
	// default credential chain is used.
	AccessKey string
	SecretKey string
}

// registry holds registered source openers by scheme.
var registry = make(map[string]SourceOpener)

// Register adds a source opener for the given URI scheme.
// This should be called during init() by each source implementation.
func Register(scheme string, opener SourceOpener) {
	registry[scheme] = opener
}

// Open parses a URI and returns the appropriate Source.
func Open(uri string) (Source, error) {
	return OpenWithOptions(uri, OpenOptions{})
}

// OpenWithOptions parses a URI and returns the appropriate Source with default options.
// Supports:
//   - file:///path/to/laravel.log (or bare paths like ./storage/logs/laravel.log)
//   - s3://bucket/key?profile=x&region=y&endpoint=z
//   - @alias (resolved from config)
func OpenWithOptions(uri string, opts OpenOptions) (Source, error) {
	if isBarePath(uri) {
		uri = "file://" + expandPath(uri)
	}

	if strings.HasPrefix(uri, "@") {
		return OpenAliasWithOptions(uri[1:], opts)
	}

	if err := validateURISyntax(uri); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid source URI %q: %w", uri, err)
	}

	opener, ok := registry[parsed.Scheme]
	if !ok {
		return nil, fmt.Errorf("unknown source scheme: %s (available: %s)", parsed.Scheme, availableSchemes())
	}

	return opener(parsed, opts)
}

// isBarePath reports whether uri is a filesystem path rather than a URI.
func isBarePath(uri string) bool {
	for _, prefix := range []string{"/", "./", "../", "~"} {
		if strings.HasPrefix(uri, prefix) {
			return true
		}
	}
	// laravel.log, storage/logs/laravel.log
	return !strings.Contains(uri, "://") && !strings.HasPrefix(uri, "@") && uri != ""
}

// validateURISyntax checks for common URI mistakes and returns helpful errors.
func validateURISyntax(uri string) error {
	// Pattern: scheme://bucket/key@key=value (should be ?key=value)
	if idx := strings.Index(uri, "://"); idx > 0 {
		rest := uri[idx+3:]
		if atIdx := strings.Index(rest, "@"); atIdx > 0 {
			afterAt := rest[atIdx+1:]
			if strings.Contains(afterAt, "=") && !strings.Contains(rest[:atIdx], "?") {
				return fmt.Errorf("invalid URI %q: use '?' for query parameters, not '@'", uri)
			}
		}
	}

	if strings.HasPrefix(uri, "///") {
		return fmt.Errorf("invalid URI %q: missing scheme (e.g., file:///var/log/laravel.log)", uri)
	}

	return nil
}

// OpenAliasWithOptions resolves a config alias to a Source with default options.
func OpenAliasWithOptions(name string, opts OpenOptions) (Source, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openAlias(cfg, name, opts)
}

func openAlias(cfg *Config, name string, opts OpenOptions) (Source, error) {
	alias, ok := cfg.Sources[name]
	if !ok {
		available := make([]string, 0, len(cfg.Sources))
		for k := range cfg.Sources {
			available = append(available, k)
		}
		return nil, leaferrors.SourceNotFoundError("@"+name, available)
	}
	if strings.HasPrefix(alias.URI, "@") {
		return nil, fmt.Errorf("alias @%s points at another alias (%s)", name, alias.URI)
	}

	return OpenWithOptions(alias.URI, opts)
}

// OpenCursor opens the source named by a cursor and returns it with the
// cursor's seek value.
func OpenCursor(cursor string, opts OpenOptions) (Source, int64, error) {
	uri, seek, err := ParseCursor(cursor)
	if err != nil {
		return nil, 0, err
	}
	src, err := OpenWithOptions(uri, opts)
	if err != nil {
		return nil, 0, err
	}
	return src, seek, nil
}

// Schemes returns the registered URI schemes, sorted.
func Schemes() []string {
	schemes := make([]string, 0, len(registry))
	for s := range registry {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

func availableSchemes() string {
	schemes := Schemes()
	if len(schemes) == 0 {
		return "(none registered)"
	}
	return strings.Join(schemes, ", ")
}

// expandPath resolves ~ to home directory and converts relative paths to absolute.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}
