package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/smiledash/core"
	"github.com/lixenwraith/smiledash/smile"
	"github.com/lixenwraith/smiledash/status"
)

// Producer defaults
const (
	DefaultPeriod      = 2 * time.Second
	DefaultStopTimeout = 2 * time.Second
)

// ErrStopTimeout is returned by Stop when the loop did not exit in time and was detached
var ErrStopTimeout = errors.New("producer stop timed out")

// ProducerConfig holds producer timing
type ProducerConfig struct {
	Period      time.Duration // Cycle period, default 2s
	Timeout     time.Duration // Per-cycle compute timeout, default Period
	StopTimeout time.Duration // Bound on Stop waiting for the loop, default 2s
	DependsOn   []string      // Services the source needs, e.g. the chain cache
}

// Producer runs Source.Compute on a fixed period and publishes results to a Channel
// It never touches the terminal; failures are logged, counted and skipped
type Producer struct {
	source  Source
	out     *Channel
	cfg     ProducerConfig
	logger  *zap.Logger
	nowFunc func() time.Time

	// Cached metric pointers
	cycles      *atomic.Int64
	published   *atomic.Int64
	failures    *atomic.Int64
	consecutive *atomic.Int64
	lastError   *status.AtomicString
	fetchTime   *status.AtomicFloat
	runningFlag *atomic.Bool

	seq uint64 // Owned by the loop goroutine

	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// NewProducer creates a stopped producer
func NewProducer(source Source, out *Channel, reg *status.Registry, logger *zap.Logger, cfg ProducerConfig) *Producer {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Period
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}

	reg.Strings.Get(status.KeyProducerLastSource).Store(source.Name())

	ctx, cancel := context.WithCancel(context.Background())
	return &Producer{
		ctx:         ctx,
		cancel:      cancel,
		source:      source,
		out:         out,
		cfg:         cfg,
		logger:      logger.Named("producer").With(zap.String("source", source.Name())),
		nowFunc:     time.Now,
		cycles:      reg.Ints.Get(status.KeyProducerCycles),
		published:   reg.Ints.Get(status.KeyProducerPublished),
		failures:    reg.Ints.Get(status.KeyProducerFailures),
		consecutive: reg.Ints.Get(status.KeyProducerConsecutive),
		lastError:   reg.Strings.Get(status.KeyProducerLastError),
		fetchTime:   reg.Floats.Get(status.KeyProducerFetchSeconds),
		runningFlag: reg.Bools.Get(status.KeyProducerRunning),
		done:        make(chan struct{}),
	}
}

// Name implements service.Service
func (p *Producer) Name() string {
	return "producer"
}

// Dependencies implements service.Service
func (p *Producer) Dependencies() []string {
	return p.cfg.DependsOn
}

// Init implements service.Service
func (p *Producer) Init() error {
	return nil
}

// Start launches the producer loop, the first cycle runs immediately
// Calling Start on a running or stopped producer is a no-op
func (p *Producer) Start() error {
	if p.running.CompareAndSwap(false, true) {
		p.runningFlag.Store(true)
		core.Go(func() { p.loop(p.ctx) })
	}
	return nil
}

// Stop cancels the loop and waits for it up to StopTimeout
// On timeout the loop is detached and ErrStopTimeout returned; it still exits once Compute honors ctx
func (p *Producer) Stop() error {
	p.stopOnce.Do(func() {
		// A never-started producer is marked running so later Starts are no-ops
		if p.running.CompareAndSwap(false, true) {
			p.cancel()
			return
		}
		p.cancel()

		timer := time.NewTimer(p.cfg.StopTimeout)
		defer timer.Stop()

		select {
		case <-p.done:
		case <-timer.C:
			p.stopErr = ErrStopTimeout
			p.logger.Warn("producer did not stop in time, detaching", zap.Duration("timeout", p.cfg.StopTimeout))
		}
	})
	return p.stopErr
}

// Done is closed when the loop has exited
func (p *Producer) Done() <-chan struct{} {
	return p.done
}

// loop runs one cycle immediately and then one per tick until ctx is done
func (p *Producer) loop(ctx context.Context) {
	defer close(p.done)
	defer p.runningFlag.Store(false)

	p.logger.Info("producer started", zap.Duration("period", p.cfg.Period))

	ticker := time.NewTicker(p.cfg.Period)
	defer ticker.Stop()

	for {
		p.cycle(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("producer stopped", zap.Uint64("cycles", p.seq))
			return
		case <-ticker.C:
		}
	}
}

// cycle computes and publishes one snapshot, a failed compute is skipped
func (p *Producer) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	p.seq++
	p.cycles.Add(1)
	seq := p.seq

	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := p.nowFunc()
	ds, err := p.compute(cctx, seq)
	p.fetchTime.SetDuration(p.nowFunc().Sub(start))

	if err != nil {
		if ctx.Err() != nil {
			// Shutdown interrupted the compute, not a source failure
			return
		}
		p.failures.Add(1)
		n := p.consecutive.Add(1)
		p.lastError.Store(err.Error())
		p.logger.Warn("compute failed, keeping previous snapshot",
			zap.Uint64("seq", seq),
			zap.Int64("consecutive", n),
			zap.Error(err),
		)
		return
	}
	p.consecutive.Store(0)

	snap := smile.NewSnapshot(ds, seq, p.source.Name(), p.nowFunc())
	if err := p.out.Publish(ctx, snap); err != nil {
		return
	}
	p.published.Add(1)

	p.logger.Debug("snapshot published",
		zap.Uint64("seq", seq),
		zap.String("cycle_id", snap.ID.String()),
		zap.Int("points", ds.Len()),
		zap.Int("queued", p.out.Len()),
	)
}

// compute calls the source, a panic in the source fails the cycle like a returned error
func (p *Producer) compute(ctx context.Context, seq uint64) (ds smile.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("source panic",
				zap.Uint64("seq", seq),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			ds, err = smile.Dataset{}, fmt.Errorf("source panic: %v", r)
		}
	}()
	return p.source.Compute(ctx)
}
