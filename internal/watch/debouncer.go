package watch

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Debouncer coalesces rapid file events into a single callback invocation.
// The callback receives the base names of every file touched during the
// quiet period, sorted and comma-separated. Callbacks never overlap.
type Debouncer struct {
	interval time.Duration
	logger   *slog.Logger
	callback func(trigger string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}

	runMu sync.Mutex
}

// NewDebouncer creates a debouncer that waits for interval of quiet before
// firing callback. A nil logger falls back to slog.Default.
func NewDebouncer(interval time.Duration, logger *slog.Logger, callback func(trigger string)) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Debouncer{
		interval: interval,
		logger:   logger,
		callback: callback,
		pending:  make(map[string]struct{}),
	}
}

// Trigger records an event for path and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[filepath.Base(path)] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	names := make([]string, 0, len(d.pending))

	for n := range d.pending {
		names = append(names, n)
	}

	clear(d.pending)
	d.mu.Unlock()

	if len(names) == 0 {
		return
	}

	slices.Sort(names)

	d.runMu.Lock()
	defer d.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.callback(strings.Join(names, ", "))
}

// Stop cancels any pending debounced callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	clear(d.pending)
}
