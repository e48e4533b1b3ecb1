// Package tablewatcher hot-reloads a controller's command table from a YAML
// file. A table that fails to load is logged and the running table is kept.
package tablewatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/viscactl/internal/adapters/fs"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
	"github.com/bft-labs/viscactl/pkg/viscactl"
)

// DefaultDebounceDelay absorbs the burst of events editors produce on save.
const DefaultDebounceDelay = 100 * time.Millisecond

// Config holds configuration options for the table watcher plugin.
type Config struct {
	// Path is the YAML command table to watch. Empty disables the plugin.
	Path string

	// DebounceDelay is the delay after the last change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// replacer is the part of the controller the watcher needs.
type replacer interface {
	ReplaceCommands(cmds []visca.Command) error
}

// Plugin watches the table file and swaps the controller's table.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration

	table    *fs.TableFile
	target   replacer
	logger   log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// New creates a table watcher plugin.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "tablewatcher"
}

// Initialize starts watching the table file's directory.
func (p *Plugin) Initialize(ctx context.Context, cfg viscactl.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	if cfg.Controller != nil {
		p.target = cfg.Controller
	}
	p.mu.Unlock()

	if p.path == "" || p.target == nil {
		p.logger.Warn("table watcher disabled: no table file configured")
		return nil
	}
	return p.start(ctx)
}

func (p *Plugin) start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	p.table = fs.NewTableFile(p.path)
	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("table watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reloads returns how many times the table was replaced.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("table watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload(ctx)
	})
}

func (p *Plugin) reload(ctx context.Context) {
	cmds, err := p.table.Load(ctx)
	if err != nil {
		p.logger.Warn("table reload failed, keeping current table",
			log.String("path", p.path),
			log.Err(err))
		return
	}
	if err := p.target.ReplaceCommands(cmds); err != nil {
		p.logger.Warn("table rejected", log.String("path", p.path), log.Err(err))
		return
	}

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()
	p.logger.Info("table reloaded",
		log.String("path", p.path),
		log.Int("commands", len(cmds)))
}

// Ensure Plugin implements viscactl.Plugin.
var _ viscactl.Plugin = (*Plugin)(nil)
