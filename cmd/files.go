package cmd

import (
	"errors"
	"io/fs"
	"os"

	leaferrors "github.com/jmurray2011/leaf/internal/errors"
	"github.com/jmurray2011/leaf/internal/logdir"
	"github.com/jmurray2011/leaf/internal/logging"
	"github.com/jmurray2011/leaf/internal/output"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	filesMatch       string
	filesConcurrency int
)

var filesCmd = &cobra.Command{
	Use:   "files [dir]",
	Short: "List log files and their newest entries",
	Long: `List the log files in a directory, most recently modified first, with
the level and time of each file's newest entry.

The directory defaults to log_dir from the config (./storage/logs).

With --match the whole tree is searched: files whose relative path contains
the text are listed, or, if it has glob characters, files matching it as a
glob ("**" crosses directories).

Examples:
  # Files in ./storage/logs
  leaf files

  # Another directory
  leaf files /var/www/app/storage/logs

  # Daily logs from January, anywhere below log_dir
  leaf files --match "**/laravel-2024-01-*.log"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)

	filesCmd.Flags().StringVarP(&filesMatch, "match", "m", "", "Substring or glob to search for below the directory")
	filesCmd.Flags().IntVar(&filesConcurrency, "concurrency", logdir.DefaultConcurrency, "Files read at once")
}

func runFiles(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	path := viper.GetString("log_dir")
	if len(args) > 0 {
		path = args[0]
	}
	dir := logdir.New(path)

	files, err := dir.Files(filesMatch)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return leaferrors.NoLogFilesError(path)
		}
		return err
	}
	dirs, err := dir.Dirs()
	if err != nil {
		return err
	}

	formatter, err := app.Formatter(os.Stdout)
	if err != nil {
		return err
	}

	opts := app.PagerOptions(viper.GetString("app_root"))
	opts.Logger = logging.NopLogger{}
	summaries, err := logdir.Summarize(cmd.Context(), files, logdir.NewestEntry(opts), filesConcurrency)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		if s.Err != nil {
			app.Debugf("%s: %v", s.Name, s.Err)
		}
	}

	return formatter.FormatListing(output.NewListing(dir.Base, summaries, dirs))
}
