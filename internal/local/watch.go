package local

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jmurray2011/leaf/internal/logging"
)

// Watch reports writes to the file. Each receive on the returned channel
// means the file grew at least once since the previous receive; bursts of
// writes are coalesced. A positive poll interval also ticks the channel for
// filesystems that deliver no events.
//
// The channel is closed when ctx is cancelled or the file is removed or
// renamed. Rotated files are not followed.
func (s *Source) Watch(ctx context.Context, poll time.Duration) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(s.path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	changes := make(chan struct{}, 1)
	go s.watchLoop(ctx, watcher, poll, changes)
	return changes, nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, poll time.Duration, changes chan<- struct{}) {
	defer close(changes)
	defer func() { _ = watcher.Close() }()

	var tick <-chan time.Time
	if poll > 0 {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
			// A change is already pending.
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) {
				notify()
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				logging.Warn("%s was removed or renamed; stopping", s.path)
				return
			}

		case <-tick:
			notify()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Transient FS errors shouldn't end the follow session.
			logging.Debug("watch %s: %v", s.path, err)
		}
	}
}
