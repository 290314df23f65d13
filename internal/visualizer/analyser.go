// Package visualizer turns the audio sample tap into frequency bars.
package visualizer

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFTSize is the analysis window length in samples.
	FFTSize = 512
	// Bins is the number of frequency bins produced per frame.
	Bins = FFTSize / 2

	minDecibels = -100.0
	maxDecibels = -30.0
	smoothing   = 0.8
)

// Analyser computes byte-scaled magnitude spectra the way a browser
// AnalyserNode does: Blackman window, FFT, temporal smoothing, then
// decibels mapped onto 0-255.
type Analyser struct {
	fft    *fourier.FFT
	window []float64
	frame  []float64
	prev   []float64
	coeff  []complex128
}

// NewAnalyser creates an analyser with a FFTSize window.
func NewAnalyser() *Analyser {
	w := make([]float64, FFTSize)
	for i := range w {
		x := float64(i) / FFTSize
		w[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
	}
	return &Analyser{
		fft:    fourier.NewFFT(FFTSize),
		window: w,
		frame:  make([]float64, FFTSize),
		prev:   make([]float64, Bins),
	}
}

// Analyse fills dst (len Bins) from the newest samples. Fewer than FFTSize
// samples are zero-padded at the front; nil samples read as silence.
func (a *Analyser) Analyse(samples []float64, dst []uint8) {
	clear(a.frame)
	n := min(len(samples), FFTSize)
	copy(a.frame[FFTSize-n:], samples[len(samples)-n:])
	for i := range a.frame {
		a.frame[i] *= a.window[i]
	}

	a.coeff = a.fft.Coefficients(a.coeff, a.frame)

	for k := 0; k < Bins && k < len(dst); k++ {
		mag := cmplxAbs(a.coeff[k]) / FFTSize
		a.prev[k] = smoothing*a.prev[k] + (1-smoothing)*mag
		dst[k] = toByte(a.prev[k])
	}
}

// Reset clears the smoothing history.
func (a *Analyser) Reset() {
	clear(a.prev)
}

func toByte(mag float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := math.Floor(255 / (maxDecibels - minDecibels) * (db - minDecibels))
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
