package session

import "testing"

type constStreamer struct{ v float64 }

func (c constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{c.v, -c.v / 2}
	}
	return len(samples), true
}

func (constStreamer) Err() error { return nil }

func TestRingTap(t *testing.T) {
	tap := newRingTap(constStreamer{v: 0.5}, 8)

	dst := make([]float64, 16)
	if n := tap.Samples(dst); n != 0 {
		t.Errorf("empty tap returned %d samples", n)
	}

	buf := make([][2]float64, 5)
	tap.Stream(buf)
	if n := tap.Samples(dst); n != 5 {
		t.Errorf("Samples() = %d, want 5", n)
	}
	if dst[0] != 0.125 {
		t.Errorf("mono mix = %v, want 0.125", dst[0])
	}

	// Wrap around
	tap.Stream(buf)
	if n := tap.Samples(dst); n != 8 {
		t.Errorf("Samples() = %d, want 8 after wrap", n)
	}
	if buf[0][0] != 0.5 {
		t.Error("tap must pass audio through unchanged")
	}
}
