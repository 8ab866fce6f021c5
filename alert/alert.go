package alert

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// Player is the audio output the alert plays through
type Player interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Close()
}

// SpeakerPlayer plays through the process-wide beep speaker
type SpeakerPlayer struct{}

// Init implements Player
func (SpeakerPlayer) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

// Play implements Player
func (SpeakerPlayer) Play(s beep.Streamer) {
	speaker.Play(s)
}

// Close implements Player
func (SpeakerPlayer) Close() {
	speaker.Close()
}

// Alert beeps when the displayed snapshot turns stale
// A missing audio device disables the alert without failing startup
type Alert struct {
	enabled bool
	tone    ToneConfig
	player  Player
	logger  *zap.Logger

	// Minimum gap between beeps
	cooldown time.Duration

	ready    atomic.Bool
	mu       sync.Mutex
	lastPlay time.Time
	played   atomic.Int64
	stopOnce sync.Once
}

// New creates an alert, player nil selects the speaker
func New(enabled bool, tone ToneConfig, player Player, logger *zap.Logger) *Alert {
	if player == nil {
		player = SpeakerPlayer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Alert{
		enabled:  enabled,
		tone:     tone,
		player:   player,
		logger:   logger.Named("alert"),
		cooldown: 5 * time.Second,
	}
}

// Name implements service.Service
func (a *Alert) Name() string {
	return "alert"
}

// Dependencies implements service.Service
func (a *Alert) Dependencies() []string {
	return nil
}

// Init opens the audio device, failure leaves the alert silent
func (a *Alert) Init() error {
	if !a.enabled {
		return nil
	}
	rate := beep.SampleRate(a.tone.SampleRate)
	if err := a.player.Init(rate, rate.N(time.Second/10)); err != nil {
		a.logger.Warn("audio unavailable, alert disabled", zap.Error(err))
		return nil
	}
	a.ready.Store(true)
	return nil
}

// Start implements service.Service
func (a *Alert) Start() error {
	return nil
}

// Stop closes the audio device
func (a *Alert) Stop() error {
	a.stopOnce.Do(func() {
		if a.ready.CompareAndSwap(true, false) {
			a.player.Close()
		}
	})
	return nil
}

// Ready reports whether beeps will be audible
func (a *Alert) Ready() bool {
	return a.ready.Load()
}

// Played returns the number of beeps issued
func (a *Alert) Played() int64 {
	return a.played.Load()
}

// Stale plays the tone unless disabled or within the cooldown
func (a *Alert) Stale(now time.Time) {
	if !a.ready.Load() {
		return
	}

	a.mu.Lock()
	if !a.lastPlay.IsZero() && now.Sub(a.lastPlay) < a.cooldown {
		a.mu.Unlock()
		return
	}
	a.lastPlay = now
	a.mu.Unlock()

	s, err := NewToneStreamer(a.tone)
	if err != nil {
		a.logger.Warn("tone build failed", zap.Error(err))
		return
	}
	a.player.Play(s)
	a.played.Add(1)
}
