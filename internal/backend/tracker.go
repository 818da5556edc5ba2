package backend

import "sync"

// Tracker hands out increasing request ids per key (an output port) and
// answers whether an id is still the newest one issued, so responses that
// arrive out of order can be dropped.
type Tracker struct {
	mu     sync.Mutex
	issued map[int]uint64
}

func NewTracker() *Tracker {
	return &Tracker{issued: map[int]uint64{}}
}

// Next issues a new id for key.
func (t *Tracker) Next(key int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued[key]++
	return t.issued[key]
}

// Latest reports whether id is the most recent id issued for key.
func (t *Tracker) Latest(key int, id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return id != 0 && t.issued[key] == id
}
