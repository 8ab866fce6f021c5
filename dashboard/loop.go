package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/smiledash/pipeline"
	"github.com/lixenwraith/smiledash/smile"
	"github.com/lixenwraith/smiledash/status"
	"github.com/lixenwraith/smiledash/terminal"
	"github.com/lixenwraith/smiledash/terminal/tui"
)

// State is the render loop lifecycle
type State uint8

const (
	StateRunning State = iota
	StateQuitting
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// DefaultPollInterval bounds the input wait per frame
const DefaultPollInterval = 16 * time.Millisecond

// RenderError reports a failed frame write, it ends the session
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return "render: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Staler is notified when the held snapshot turns stale
type Staler interface {
	Stale(now time.Time)
}

// Bounds fixes chart axes, a 0/0 pair auto-scales that axis
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Options configures the render loop
type Options struct {
	PollInterval time.Duration // Never 0, defaults to DefaultPollInterval
	QuitKey      rune          // Defaults to 'q'
	StaleAfter   time.Duration // 0 disables staleness
	FitDegree    int           // 0 disables the fit curve
	Bounds       Bounds
	Theme        tui.Theme
	Clock        func() time.Time
}

// Loop composes and draws frames until the quit key or context cancellation
type Loop struct {
	ch     *pipeline.Channel
	reg    *status.Registry
	alert  Staler
	logger *zap.Logger
	opts   Options

	state   State
	current smile.Snapshot
	have    bool
	fit     []smile.Point
	stale   bool

	cells         []terminal.Cell
	width, height int

	// Cached metric pointers
	frames  *atomic.Int64
	skipped *atomic.Int64
	dropped *atomic.Int64
}

// NewLoop creates a render loop reading from ch, alert may be nil
func NewLoop(ch *pipeline.Channel, reg *status.Registry, alert Staler, logger *zap.Logger, opts Options) *Loop {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.QuitKey == 0 {
		opts.QuitKey = 'q'
	}
	if opts.Theme == (tui.Theme{}) {
		opts.Theme = tui.DefaultTheme
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}

	return &Loop{
		ch:      ch,
		reg:     reg,
		alert:   alert,
		logger:  logger.Named("render"),
		opts:    opts,
		state:   StateRunning,
		frames:  reg.Ints.Get(status.KeyRenderFrames),
		skipped: reg.Ints.Get(status.KeyRenderSkipped),
		dropped: reg.Ints.Get(status.KeyRenderDropped),
	}
}

// State returns the current lifecycle state
func (l *Loop) State() State {
	return l.state
}

// Run draws frames on t until quit, a session body for terminal.RunSession
// Returns *RenderError when a frame cannot be written
func (l *Loop) Run(ctx context.Context, t terminal.Terminal) error {
	l.state = StateRunning
	l.logger.Info("render loop started", zap.Duration("poll", l.opts.PollInterval))

	for l.state == StateRunning {
		if ctx.Err() != nil {
			l.quit("context cancelled")
			break
		}

		now := l.opts.Clock()
		l.update(now)

		if err := l.draw(t, now); err != nil {
			l.quit("draw failed")
			return &RenderError{Err: err}
		}

		ev, ok := t.PollEvent(l.opts.PollInterval)
		if !ok {
			continue
		}
		if err := l.handleEvent(t, ev); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) quit(reason string) {
	l.state = StateQuitting
	l.logger.Info("render loop quitting", zap.String("reason", reason), zap.Int64("frames", l.frames.Load()))
}

// handleEvent applies one input event, only the quit key and resize matter
func (l *Loop) handleEvent(t terminal.Terminal, ev terminal.Event) error {
	switch ev.Type {
	case terminal.EventKey:
		if ev.IsRune(l.opts.QuitKey) && ev.Modifiers&terminal.ModAlt == 0 {
			l.quit("quit key")
		}
	case terminal.EventResize:
		if err := t.Sync(); err != nil {
			l.quit("sync failed")
			return &RenderError{Err: err}
		}
	case terminal.EventClosed:
		l.quit("input closed")
	case terminal.EventError:
		l.quit("input error")
		err := ev.Err
		if err == nil {
			err = errors.New("read failed")
		}
		return &RenderError{Err: fmt.Errorf("input: %w", err)}
	}
	return nil
}

// update takes the newest snapshot if any arrived and tracks staleness
func (l *Loop) update(now time.Time) {
	snap, superseded, ok := l.ch.DrainCount()
	if ok {
		l.current = snap
		l.have = true
		l.fit = fitCurve(snap.Dataset, l.opts.FitDegree)
		l.dropped.Add(int64(superseded))
	}

	stale := l.have && l.opts.StaleAfter > 0 && l.current.Age(now) > l.opts.StaleAfter
	if stale && !l.stale {
		l.logger.Warn("snapshot stale", zap.Uint64("seq", l.current.Seq), zap.Duration("age", l.current.Age(now)))
		if l.alert != nil {
			l.alert.Stale(now)
		}
	}
	l.stale = stale
}

// view builds the frame contents from the held state
func (l *Loop) view(now time.Time) View {
	m := readMetrics(l.reg)
	m.Queue = l.ch.Len()
	m.QueueCap = l.ch.Cap()
	return buildView(frameInput{
		snap:    l.current,
		have:    l.have,
		fit:     l.fit,
		stale:   l.stale,
		now:     now,
		metrics: m,
	}, l.opts)
}

// draw redraws the full frame and flushes it, the size is re-read every frame
func (l *Loop) draw(t terminal.Terminal, now time.Time) error {
	w, h := t.Size()
	if w != l.width || h != l.height || len(l.cells) != w*h {
		l.width, l.height = w, h
		l.cells = make([]terminal.Cell, w*h)
	}

	root := tui.NewRegion(l.cells, w, 0, 0, w, h)
	render(root, l.view(now), l.opts.Theme)

	// Only frames that reached the screen count, a resize between Size and Flush skips one
	if err := t.Flush(l.cells, w, h); err != nil {
		if errors.Is(err, terminal.ErrFrameDropped) {
			l.skipped.Add(1)
			return nil
		}
		return err
	}
	l.frames.Add(1)
	return nil
}
