package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	leaferrors "github.com/jmurray2011/leaf/internal/errors"
	"github.com/jmurray2011/leaf/internal/local"
	"github.com/jmurray2011/leaf/internal/logdir"
	"github.com/jmurray2011/leaf/internal/pager"
	"github.com/jmurray2011/leaf/internal/source"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	pageOffset  string
	pageLines   int
	pageBuffer  int
	pageKeyword string
)

var pageCmd = &cobra.Command{
	Use:   "page [source|cursor]",
	Short: "Print one page of log entries",
	Long: `Print one page of entries, newest first.

Without an offset the page ends at the end of the file. After the entries,
leaf prints cursors for the neighbouring pages:

  prev (newer)  the page after this one in the file
  next (older)  the page before this one in the file

Pass a cursor back as the source to move there. With --keyword only entries
containing the keyword (case-sensitive) are printed, scanning older pages
until enough match; such results have no cursors.

Without a source, leaf uses default_source from the config, or else the most
recently modified file in log_dir.

Offsets:
  0       newest page
  -1234   the page ending at byte 1234
  1234    the page starting at byte 1234

Examples:
  # Newest entries of the latest file in ./storage/logs
  leaf page

  # 50 entries from a file
  leaf page ./storage/logs/laravel.log -n 50

  # Move to an older page
  leaf page "file:///srv/app/storage/logs/laravel.log#-20931"

  # Entries mentioning a job, as JSON
  leaf page @prod -k "SendInvoiceEmail" -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPage,
}

func init() {
	rootCmd.AddCommand(pageCmd)

	pageCmd.Flags().StringVar(&pageOffset, "offset", "", "Byte offset to read from (overrides the cursor's)")
	pageCmd.Flags().IntVarP(&pageLines, "lines", "n", 0, "Entries per page (default from config, 20)")
	pageCmd.Flags().IntVar(&pageBuffer, "buffer", 0, "Read chunk size in bytes (default from config, 4096)")
	pageCmd.Flags().StringVarP(&pageKeyword, "keyword", "k", "", "Only show entries containing this text")
}

func runPage(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	arg, err := sourceArg(args)
	if err != nil {
		return err
	}

	src, seek, root, uri, err := app.OpenSource(arg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if cmd.Flags().Changed("offset") {
		if seek, err = source.ParseSeek(pageOffset); err != nil {
			return err
		}
	}

	formatter, err := app.Formatter(os.Stdout)
	if err != nil {
		return err
	}

	p := pager.New(src, app.PagerOptions(root))
	req := pager.Request{Seek: seek, Lines: pageLines, BufferSize: pageBuffer}
	app.Debugf("Reading %s at offset %d", uri, seek)

	var page *pager.Page
	if pageKeyword != "" {
		app.Render.Status("Searching %s for %q...", uri, pageKeyword)
		page, err = p.FetchFiltered(cmd.Context(), req, pageKeyword)
	} else {
		page, err = p.Fetch(cmd.Context(), req)
	}
	if err != nil {
		if errors.Is(err, pager.ErrSourceUnavailable) {
			return unavailableError(src, err)
		}
		return err
	}

	return formatter.WithHighlight(pageKeyword).FormatPage(page, uri)
}

// sourceArg returns the source argument, falling back to default_source and
// then to the newest file in log_dir.
func sourceArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if def := viper.GetString("default_source"); def != "" {
		return "@" + def, nil
	}

	dir := viper.GetString("log_dir")
	latest, err := logdir.New(dir).Latest()
	if err != nil {
		return "", leaferrors.NoLogFilesError(dir)
	}
	return latest.Path, nil
}

// unavailableError explains a source that could not be opened. For a missing
// local file it suggests similarly named files from the same directory.
func unavailableError(src source.Source, err error) error {
	ls, ok := src.(*local.Source)
	if !ok {
		return fmt.Errorf("source unavailable: %w", err)
	}
	if _, statErr := os.Stat(ls.Path()); !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("source unavailable: %w", err)
	}

	files, listErr := logdir.New(filepath.Dir(ls.Path())).Files("")
	if listErr != nil {
		return fmt.Errorf("source unavailable: %w", err)
	}
	return leaferrors.FileNotFoundError(filepath.Base(ls.Path()), logdir.Names(files))
}
