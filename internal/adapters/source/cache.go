package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CacheEvent reports that a cached source's on-disk contents changed after
// it was resolved, e.g. an operator manually pulling a fresh ref underneath
// a running process.
type CacheEvent struct {
	Path string
	Op   string
}

// CacheWatcher monitors the resolver's cache root for external changes and
// emits debounced CacheEvents, coalescing bursts of filesystem notifications
// from a single git checkout or editor save into one event per path.
type CacheWatcher struct {
	watcher *fsnotify.Watcher
	events  chan CacheEvent
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewCacheWatcher creates a watcher over root (typically the resolver's
// cache directory).
func NewCacheWatcher(root string) (*CacheWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := w.Add(root); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", root, err)
	}
	return &CacheWatcher{
		watcher: w,
		events:  make(chan CacheEvent, 10),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel of debounced cache-change events.
func (cw *CacheWatcher) Events() <-chan CacheEvent { return cw.events }

// Run processes fsnotify events until ctx is cancelled or Stop is called.
func (cw *CacheWatcher) Run(ctx context.Context) {
	cw.wg.Add(1)
	defer cw.wg.Done()

	debounce := time.NewTimer(0)
	<-debounce.C

	pending := make(map[string]CacheEvent)
	var pmu sync.Mutex

	for {
		select {
		case <-cw.done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			rel := filepath.Base(ev.Name)
			pmu.Lock()
			pending[ev.Name] = CacheEvent{Path: rel, Op: ev.Op.String()}
			pmu.Unlock()
			debounce.Reset(100 * time.Millisecond)
		case <-debounce.C:
			pmu.Lock()
			for _, e := range pending {
				select {
				case cw.events <- e:
				case <-cw.done:
					pmu.Unlock()
					return
				case <-ctx.Done():
					pmu.Unlock()
					return
				}
			}
			pending = make(map[string]CacheEvent)
			pmu.Unlock()
		case _, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Stop halts watching and closes the events channel.
func (cw *CacheWatcher) Stop() error {
	cw.mu.Lock()
	if cw.stopped {
		cw.mu.Unlock()
		return nil
	}
	cw.stopped = true
	cw.mu.Unlock()

	close(cw.done)
	err := cw.watcher.Close()
	cw.wg.Wait()
	close(cw.events)
	return err
}
