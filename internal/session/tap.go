package session

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// ringTap is a beep.Streamer that passes audio through unchanged while
// keeping the newest mono samples for the visualizer.
type ringTap struct {
	src beep.Streamer

	mu   sync.Mutex
	buf  []float64
	next int
	full bool
}

func newRingTap(src beep.Streamer, size int) *ringTap {
	return &ringTap{src: src, buf: make([]float64, size)}
}

func (t *ringTap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)
	t.mu.Lock()
	for _, s := range samples[:n] {
		t.buf[t.next] = (s[0] + s[1]) / 2
		t.next = (t.next + 1) % len(t.buf)
		if t.next == 0 {
			t.full = true
		}
	}
	t.mu.Unlock()
	return n, ok
}

func (t *ringTap) Err() error {
	return t.src.Err()
}

// Samples copies the newest samples, oldest first, into dst.
func (t *ringTap) Samples(dst []float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	avail := t.next
	if t.full {
		avail = len(t.buf)
	}
	n := min(len(dst), avail)
	start := (t.next - n + len(t.buf)) % len(t.buf)
	for i := range n {
		dst[i] = t.buf[(start+i)%len(t.buf)]
	}
	return n
}
