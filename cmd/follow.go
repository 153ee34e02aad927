package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmurray2011/leaf/internal/local"
	"github.com/jmurray2011/leaf/internal/output"
	"github.com/jmurray2011/leaf/internal/pager"
	"github.com/jmurray2011/leaf/internal/source"

	"github.com/spf13/cobra"
)

// DefaultFollowInterval is how often sources without change notifications
// are polled.
const DefaultFollowInterval = 2 * time.Second

var (
	followKeyword  string
	followLines    int
	followInterval time.Duration
)

var followCmd = &cobra.Command{
	Use:   "follow [source]",
	Short: "Print new log entries as they are written",
	Long: `Follow a log file, similar to 'tail -f'.

Local files are watched for writes; other sources are polled. Rotated or
deleted files end the session.

Examples:
  # Follow the newest file in log_dir
  leaf follow

  # Show the last 10 entries, then follow
  leaf follow ./storage/logs/laravel.log -n 10

  # Only entries mentioning a keyword
  leaf follow @local -k "SQLSTATE"

  # Poll an S3 object every 30 seconds
  leaf follow @prod --interval 30s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)

	followCmd.Flags().StringVarP(&followKeyword, "keyword", "k", "", "Only show entries containing this text")
	followCmd.Flags().IntVarP(&followLines, "lines", "n", 0, "Print this many recent entries before following")
	followCmd.Flags().DurationVar(&followInterval, "interval", DefaultFollowInterval, "Polling interval")
}

func runFollow(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)

	arg, err := sourceArg(args)
	if err != nil {
		return err
	}
	src, _, root, uri, err := app.OpenSource(arg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	formatter, err := app.Formatter(os.Stdout)
	if err != nil {
		return err
	}
	formatter.WithHighlight(followKeyword)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle Ctrl+C gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			app.Render.Info("\nStopping follow...")
			cancel()
		case <-ctx.Done():
		}
	}()

	p := pager.New(src, app.PagerOptions(root))

	if followLines > 0 {
		var page *pager.Page
		req := pager.Request{Lines: followLines}
		if followKeyword != "" {
			page, err = p.FetchFiltered(ctx, req, followKeyword)
		} else {
			page, err = p.Fetch(ctx, req)
		}
		if err != nil {
			if errors.Is(err, pager.ErrSourceUnavailable) {
				return unavailableError(src, err)
			}
			return err
		}
		if err := printChronological(formatter, page.Entries, ""); err != nil {
			return err
		}
	}

	_, pos, err := p.Tail(ctx, -1)
	if err != nil {
		if errors.Is(err, pager.ErrSourceUnavailable) {
			return unavailableError(src, err)
		}
		return err
	}

	changes, err := watchSource(ctx, src)
	if err != nil {
		return err
	}

	app.Render.Status("Following %s (Ctrl+C to stop)...", uri)

	for range changes {
		entries, next, err := p.Tail(ctx, pos)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			app.Render.Warning("read failed: %v", err)
			continue
		}
		if next < pos {
			app.Render.Warning("%s was truncated, following from the new end", uri)
		}
		pos = next
		if err := printChronological(formatter, entries, followKeyword); err != nil {
			return err
		}
	}
	return nil
}

// watchSource returns a channel that ticks when src may have grown. Local
// files use filesystem notifications backed by a slow poll; everything else is
// polled at --interval.
func watchSource(ctx context.Context, src source.Source) (<-chan struct{}, error) {
	if ls, ok := src.(*local.Source); ok {
		return ls.Watch(ctx, followInterval)
	}

	changes := make(chan struct{})
	go func() {
		defer close(changes)
		ticker := time.NewTicker(followInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case changes <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return changes, nil
}

// printChronological prints entries oldest first, keeping those that contain
// keyword when it is set.
func printChronological(f *output.Formatter, entries []pager.Entry, keyword string) error {
	out := make([]pager.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if keyword == "" || strings.Contains(entries[i].Text(), keyword) {
			out = append(out, entries[i])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return f.FormatEntries(out)
}
