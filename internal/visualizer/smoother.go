package visualizer

import "math"

// Smoother gives bars a fast attack and a slow linear release.
type Smoother struct {
	prev []float64
}

// Apply smooths raw in place and returns it. The bar count may change
// between calls.
func (s *Smoother) Apply(raw []float64) []float64 {
	if len(s.prev) != len(raw) {
		s.prev = make([]float64, len(raw))
	}
	for i, v := range raw {
		p := s.prev[i]
		if v > p {
			p += (v - p) * 0.5
		} else {
			p = math.Max(0, p-4)
		}
		s.prev[i] = p
		raw[i] = p
	}
	return raw
}

// Height maps a 0-255 bar value to a height in [minHeight, maxHeight] on a
// cubic curve so quiet bins stay low.
func Height(val, minHeight, maxHeight float64) float64 {
	return math.Max(minHeight, math.Pow(val/255, 3)*maxHeight)
}

// ClampBars limits a bar count to the range the renderer supports.
func ClampBars(n int) int {
	return max(5, min(64, n))
}
