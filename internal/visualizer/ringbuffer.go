package visualizer

import "sync"

// History is a fixed-size window over the most recent samples of a series,
// such as the mean particle speed per tick.
type History struct {
	buf  []float64
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

// NewHistory creates a history holding up to size samples.
func NewHistory(size int) *History {
	size = max(size, 1)
	return &History{
		buf:  make([]float64, size),
		size: size,
	}
}

// Push appends v, overwriting the oldest sample when full.
func (h *History) Push(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.w] = v
	h.w = (h.w + 1) % h.size
	if h.len < h.size {
		h.len++
	}
}

// Last returns up to n most recent samples, oldest first.
func (h *History) Last(n int) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > h.len {
		n = h.len
	}
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	start := (h.w - n + h.size) % h.size
	for i := range n {
		out[i] = h.buf[(start+i)%h.size]
	}
	return out
}

// Len returns the number of stored samples.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.len
}

// Clear drops every sample.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.w = 0
	h.len = 0
}
