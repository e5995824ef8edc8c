package action

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/plugin"
	"github.com/ayusman/spatialtouch/internal/store"
)

// BindingSource lists gesture bindings.
type BindingSource interface {
	List() ([]*store.Binding, error)
}

// PluginLookup resolves a plugin by name.
type PluginLookup interface {
	Get(name string) (*plugin.Plugin, error)
}

// PluginExecutor runs one plugin request.
type PluginExecutor interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// PluginRunner runs the plugin action bound to a gesture type in place of
// the default action. Plugins run asynchronously so a slow plugin never
// stalls the frame loop; at most maxInFlight run at once and gestures beyond
// that are dropped.
type PluginRunner struct {
	source   BindingSource
	plugins  PluginLookup
	executor PluginExecutor
	logger   *slog.Logger

	mu       sync.RWMutex
	bindings map[gesture.GestureType]*store.Binding
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	sem    chan struct{}
	wg     sync.WaitGroup
}

// NewPluginRunner creates a runner and loads the current bindings.
func NewPluginRunner(source BindingSource, plugins PluginLookup, executor PluginExecutor, maxInFlight int) (*PluginRunner, error) {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &PluginRunner{
		source:   source,
		plugins:  plugins,
		executor: executor,
		logger:   log.With("component", "plugins"),
		bindings: make(map[gesture.GestureType]*store.Binding),
		ctx:      ctx,
		cancel:   cancel,
		sem:      make(chan struct{}, maxInFlight),
	}
	if err := r.Refresh(); err != nil {
		cancel()
		return nil, err
	}
	return r, nil
}

// Refresh reloads bindings from the source. Disabled bindings and bindings
// for continuous gesture types are ignored.
func (r *PluginRunner) Refresh() error {
	list, err := r.source.List()
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}

	next := make(map[gesture.GestureType]*store.Binding, len(list))
	for _, b := range list {
		t, err := gesture.ParseGestureType(b.GestureType)
		if err != nil {
			r.logger.Warn("ignoring binding with unknown gesture type", "id", b.ID, "gesture_type", b.GestureType)
			continue
		}
		if !b.Enabled || !Bindable(t) {
			continue
		}
		next[t] = b
	}

	r.mu.Lock()
	if !r.closed {
		r.bindings = next
	}
	r.mu.Unlock()

	r.logger.Debug("bindings loaded", "count", len(next))
	return nil
}

// Bound returns the active binding for t.
func (r *PluginRunner) Bound(t gesture.GestureType) (*store.Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[t]
	return b, ok
}

// Run starts the bound plugin for g and reports whether g was bound. After
// Close nothing is bound.
func (r *PluginRunner) Run(g gesture.Gesture) bool {
	b, ok := r.Bound(g.Type)
	if !ok {
		return false
	}

	p, err := r.plugins.Get(b.PluginName)
	if err != nil {
		r.logger.Warn("bound plugin unavailable", "plugin", b.PluginName, "error", err)
		return false
	}
	if !p.Supports(b.ActionName) {
		r.logger.Warn("plugin does not support action", "plugin", b.PluginName, "action", b.ActionName)
		return false
	}

	select {
	case r.sem <- struct{}{}:
	default:
		r.logger.Warn("plugin runner saturated, dropping gesture", "type", g.Type.String())
		return true
	}

	req := &plugin.Request{
		Action:  b.ActionName,
		Gesture: gestureInfo(g),
		Config:  b.Config,
	}

	// wg.Add must not race with the Wait in Close
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.sem
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() { <-r.sem }()

		resp, err := r.executor.Execute(r.ctx, p, req)
		if err == nil {
			err = resp.Err()
		}
		if err != nil {
			r.logger.Error("plugin action failed",
				"plugin", p.Manifest.Name,
				"action", req.Action,
				"error", err,
			)
		}
	}()
	return true
}

// Close cancels running plugins and waits for them to exit.
func (r *PluginRunner) Close() {
	r.mu.Lock()
	r.closed = true
	r.bindings = map[gesture.GestureType]*store.Binding{}
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func gestureInfo(g gesture.Gesture) plugin.GestureInfo {
	info := plugin.GestureInfo{
		Type:       g.Type.String(),
		X:          g.Position[0],
		Y:          g.Position[1],
		Confidence: g.Confidence,
		Timestamp:  g.Timestamp,
	}
	if p, ok := screenPos(g); ok {
		x, y := p.X, p.Y
		info.ScreenX, info.ScreenY = &x, &y
	}
	return info
}
