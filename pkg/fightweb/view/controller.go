// Package view wires layout, palette, viewport, render, interaction and
// overlay into one graph-view instance. All state is owned by the
// instance and mutated only on its event loop; nothing is shared between
// views.
package view

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/recera/fightweb/internal/cache"
	"github.com/recera/fightweb/internal/loop"
	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/interaction"
	"github.com/recera/fightweb/pkg/fightweb/layout"
	"github.com/recera/fightweb/pkg/fightweb/overlay"
	"github.com/recera/fightweb/pkg/fightweb/palette"
	"github.com/recera/fightweb/pkg/fightweb/render"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
)

// ErrClosed is returned by every method once Close has been called.
var ErrClosed = errors.New("view closed")

// DetailFetcher loads the per-fighter detail shown in the overlay.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, id string) (*graph.FighterDetail, error)
}

// Actions receives the overlay's button presses.
type Actions interface {
	OpenProfile(id string)
	FilterByDivision(division string)
}

// Timer is a scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock schedules the overlay close debounce.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Options configures a Controller.
type Options struct {
	Width  float64
	Height float64

	// Layout tuning; nil uses the layout defaults.
	Layout *layout.Options

	// WarmStart seeds each new layout from the positions of the previous
	// one for nodes present in both.
	WarmStart bool

	Limits        viewport.Limits
	CloseDelay    time.Duration
	OverlayOffset float64
	FetchTimeout  time.Duration
	LabelScale    float64
	Cache         cache.Config
}

// DefaultOptions returns options for an 800x600 surface.
func DefaultOptions() Options {
	return Options{
		Width:         800,
		Height:        600,
		Limits:        viewport.DefaultLimits(),
		CloseDelay:    interaction.DefaultCloseDelay,
		OverlayOffset: overlay.DefaultOffset,
		FetchTimeout:  10 * time.Second,
		Cache:         cache.DefaultConfig(),
	}
}

// Controller is one graph view.
type Controller struct {
	opts    Options
	log     *zap.Logger
	clock   Clock
	fetcher DetailFetcher
	actions Actions

	loop    *loop.Loop
	layouts *cache.Cache[layout.Result]
	closed  atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	// Everything below is owned by the loop goroutine.
	payload *graph.Payload
	nodes   map[string]graph.FighterNode
	result  layout.Result
	index   map[string]int
	palette *palette.Assigner
	colors  map[string]string

	proj      viewport.Projection
	transform viewport.Transform
	panner    viewport.Panner
	surface   render.Surface

	machine      *interaction.Machine
	timer        Timer
	cancelFetch  context.CancelFunc
	focusOverlay string

	measured    *overlay.Size
	measuredFor string

	dirty     bool
	version   uint64
	notified  uint64
	snap      Snapshot
	listeners []listener
	nextSub   int
}

// Option sets a collaborator.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithFetcher sets the detail source. Without one every fetch fails and
// the overlay shows the payload fields only.
func WithFetcher(f DetailFetcher) Option {
	return func(c *Controller) { c.fetcher = f }
}

// WithActions sets the overlay action handler.
func WithActions(a Actions) Option {
	return func(c *Controller) { c.actions = a }
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clk Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// New creates a running controller with an empty graph.
func New(opts Options, options ...Option) *Controller {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Limits.Min <= 0 || opts.Limits.Max < opts.Limits.Min {
		opts.Limits = def.Limits
	}
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = def.CloseDelay
	}
	if opts.OverlayOffset < 0 {
		opts.OverlayOffset = def.OverlayOffset
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = def.FetchTimeout
	}

	c := &Controller{
		opts:      opts,
		log:       zap.NewNop(),
		clock:     realClock{},
		layouts:   cache.New[layout.Result](opts.Cache),
		proj:      viewport.NewProjection(opts.Width, opts.Height),
		transform: viewport.Identity(),
		surface:   render.Surface{LabelScale: opts.LabelScale},
		machine:   interaction.NewMachine(opts.CloseDelay),
		nodes:     map[string]graph.FighterNode{},
		index:     map[string]int{},
		colors:    map[string]string{},
		palette:   palette.NewAssigner(nil),
		dirty:     true,
	}
	for _, o := range options {
		o(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.loop = loop.New(
		loop.WithLogger(c.log.Named("loop")),
		loop.WithErrorHandler(func(err error) {
			c.log.Error("view task failed", zap.Error(err))
		}),
		loop.WithIdle(c.flush),
	)
	c.loop.Start()
	return c
}

// do runs fn on the loop and waits.
func (c *Controller) do(fn func()) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.loop.Do(fn); err != nil {
		return ErrClosed
	}
	return nil
}

// post runs fn on the loop without waiting; used by timer and fetch
// callbacks.
func (c *Controller) post(fn func()) {
	if c.closed.Load() {
		return
	}
	c.loop.Post(func() {
		if c.closed.Load() {
			return
		}
		fn()
	})
}

// Close cancels the pending close timer and any in-flight fetch, then
// stops the loop. Later calls return ErrClosed.
func (c *Controller) Close() error {
	if c.closed.Load() {
		return ErrClosed
	}
	err := c.loop.Do(func() {
		c.stopTimer()
		c.abortFetch()
		c.listeners = nil
	})
	c.closed.Store(true)
	c.cancel()
	c.loop.Stop()
	if err != nil {
		return ErrClosed
	}
	c.log.Debug("view closed")
	return nil
}

// SetPayload replaces the graph. Layout comes from the cache when the
// same payload and options were laid out before. Interaction state is
// reset; the transform is kept.
func (c *Controller) SetPayload(p *graph.Payload) error {
	if p == nil {
		p = &graph.Payload{}
	}
	return c.do(func() {
		c.apply(c.machine.Reset())
		c.focusOverlay = ""
		c.measured = nil
		c.panner.Reset()

		opts := c.layoutOptions()
		key, err := cache.KeyOf(p.Nodes, p.Links, opts)
		var res layout.Result
		hit := false
		if err == nil {
			res, hit = c.layouts.Get(key)
		} else {
			c.log.Warn("layout cache key failed", zap.Error(err))
		}
		if !hit {
			start := time.Now()
			res = layout.Compute(p.Nodes, p.Links, opts)
			if err == nil {
				c.layouts.Put(key, res)
			}
			c.log.Debug("layout computed",
				zap.Int("nodes", len(res.Nodes)),
				zap.Int("edges", len(res.Edges)),
				zap.Int("dropped_edges", len(p.Links)-len(res.Edges)),
				zap.Duration("took", time.Since(start)))
		} else {
			c.log.Debug("layout cache hit", zap.Int("nodes", len(res.Nodes)))
		}

		c.payload = p
		c.nodes = p.NodeByID()
		c.result = res
		c.index = res.Index()
		c.palette = palette.NewAssigner(p.Nodes)
		c.colors = c.palette.Colors(p.Nodes)
		c.dirty = true
	})
}

func (c *Controller) layoutOptions() *layout.Options {
	var opts layout.Options
	if c.opts.Layout != nil {
		opts = *c.opts.Layout
	}
	if c.opts.WarmStart && len(c.result.Nodes) > 0 {
		opts.Initial = c.result.Positions()
	}
	return &opts
}

// LayoutStats returns the layout cache statistics.
func (c *Controller) LayoutStats() cache.Stats { return c.layouts.GetStats() }
