package alert

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// ToneConfig describes the staleness beep
type ToneConfig struct {
	SampleRate int
	Freq       float64
	Duration   time.Duration
	Attack     time.Duration // Fade in
	Release    time.Duration // Fade out at the end of Duration
	Volume     float64       // Linear gain, 0 is silent
}

// DefaultToneConfig is a short 880Hz ping
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		SampleRate: 44100,
		Freq:       880,
		Duration:   180 * time.Millisecond,
		Attack:     5 * time.Millisecond,
		Release:    120 * time.Millisecond,
		Volume:     0.5,
	}
}

// NewToneStreamer returns a finite sine burst with linear fades at both ends
func NewToneStreamer(cfg ToneConfig) (beep.Streamer, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	sine, err := generators.SineTone(rate, cfg.Freq)
	if err != nil {
		return nil, fmt.Errorf("sine tone %.0fHz: %w", cfg.Freq, err)
	}

	total := rate.N(cfg.Duration)
	fade := &fader{
		src:     beep.Take(total, sine),
		total:   total,
		attack:  rate.N(cfg.Attack),
		release: rate.N(cfg.Release),
	}

	vol := &effects.Volume{Streamer: fade, Base: 2, Silent: cfg.Volume <= 0}
	if !vol.Silent {
		vol.Volume = math.Log2(cfg.Volume)
	}
	return vol, nil
}

// fader scales each frame by its position within the burst
type fader struct {
	src     beep.Streamer
	pos     int
	total   int
	attack  int
	release int
}

func (f *fader) gain(pos int) float64 {
	g := 1.0
	if f.attack > 0 && pos < f.attack {
		g = float64(pos) / float64(f.attack)
	}
	if left := f.total - pos; f.release > 0 && left < f.release {
		g = min(g, float64(left)/float64(f.release))
	}
	return g
}

func (f *fader) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.src.Stream(samples)
	for i := range samples[:n] {
		g := f.gain(f.pos)
		samples[i][0] *= g
		samples[i][1] *= g
		f.pos++
	}
	return n, ok
}

func (f *fader) Err() error { return f.src.Err() }
