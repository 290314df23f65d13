package visualizer

import (
	"context"
	"iter"
	"math"
	"sync"
	"time"

	"github.com/tessro/mewzy/internal/session"
)

// TapSource yields the current sample tap, which may be nil.
type TapSource interface {
	Tap() session.Tap
}

// Feed samples the tap and produces smoothed bar heights.
type Feed struct {
	src  TapSource
	gate func() bool

	mu       sync.Mutex
	analyser *Analyser
	smoother Smoother
	samples  []float64
	bins     []uint8
}

// NewFeed creates a feed over src. gate reports whether frames should be
// produced (expanded view visible and playing); nil means always.
func NewFeed(src TapSource, gate func() bool) *Feed {
	if gate == nil {
		gate = func() bool { return true }
	}
	return &Feed{
		src:      src,
		gate:     gate,
		analyser: NewAnalyser(),
		samples:  make([]float64, FFTSize),
		bins:     make([]uint8, Bins),
	}
}

// Sample takes one frame of bars values in 0-255. bars is clamped with
// ClampBars.
func (f *Feed) Sample(bars int) []float64 {
	bars = ClampBars(bars)

	f.mu.Lock()
	defer f.mu.Unlock()

	var samples []float64
	if tap := f.src.Tap(); tap != nil {
		n := tap.Samples(f.samples)
		samples = f.samples[:n]
	}
	f.analyser.Analyse(samples, f.bins)

	out := make([]float64, bars)
	step := float64(Bins) / float64(bars)
	for i := range out {
		idx := int(math.Floor(float64(i) * step * 0.7))
		if idx < len(f.bins) {
			out[i] = float64(f.bins[idx])
		}
	}
	return f.smoother.Apply(out)
}

// Frames yields one frame per interval while the gate is open, until ctx
// is done or the consumer stops. Each call starts a fresh sequence.
func (f *Feed) Frames(ctx context.Context, bars int, interval time.Duration) iter.Seq[[]float64] {
	return func(yield func([]float64) bool) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !f.gate() {
					continue
				}
				if !yield(f.Sample(bars)) {
					return
				}
			}
		}
	}
}
