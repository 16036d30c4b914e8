package analytics

import "vitals-monitor/models"

// History is a fixed-capacity FIFO of one subject's readings. Not safe for
// concurrent use.
type History struct {
	capacity int
	readings []models.Reading
	index    int
	count    int
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultConfig().MaxHistory
	}
	return &History{
		capacity: size,
		readings: make([]models.Reading, size),
	}
}

func (h *History) Append(reading models.Reading) {
	// после заполнения index указывает на самую старую запись, её и перезаписываем
	h.readings[h.index] = reading
	h.index = (h.index + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
}

func (h *History) Len() int {
	return h.count
}

func (h *History) Cap() int {
	return h.capacity
}

// Snapshot returns the retained readings oldest first.
func (h *History) Snapshot() []models.Reading {
	return h.Last(h.count)
}

// Last returns up to n most recent readings oldest first.
func (h *History) Last(n int) []models.Reading {
	if n > h.count {
		n = h.count
	}
	if n <= 0 {
		return nil
	}

	out := make([]models.Reading, n)
	start := (h.index - n + h.capacity) % h.capacity
	for i := 0; i < n; i++ {
		out[i] = h.readings[(start+i)%h.capacity]
	}
	return out
}
