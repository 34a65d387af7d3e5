package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts into a single re-run.
const watchDebounce = 250 * time.Millisecond

// Watch runs the request once, then re-runs it whenever a template file in
// the source directory changes. It blocks until ctx is cancelled. Per-module
// failures are logged and do not stop the watch; only setup errors are
// returned.
func (g *Generator) Watch(ctx context.Context, req Request) error {
	if ctx == nil {
		return fmt.Errorf("generator: context is required")
	}
	if g.fsys != nil {
		return fmt.Errorf("generator: watch requires a local template directory")
	}

	if _, err := g.Run(ctx, req); err != nil {
		g.logger.Error().Err(err).Msg("initial run failed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("generator: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than individual files; editors that do
	// atomic saves replace the inode.
	if err := watcher.Add(g.settings.TemplateDir); err != nil {
		return fmt.Errorf("generator: watch %s: %w", g.settings.TemplateDir, err)
	}

	g.logger.Info().Str("dir", g.settings.TemplateDir).Msg("watching template directory")

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !g.relevantEvent(event) {
				continue
			}
			g.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("template change detected")
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Error().Err(err).Msg("watch error")

		case <-pending:
			pending = nil
			if _, err := g.Run(ctx, req); err != nil {
				g.logger.Error().Err(err).Msg("regeneration failed")
			}
		}
	}
}

func (g *Generator) relevantEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, g.extension) {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}
