package services

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffler is the randomness port of the allocator. Production wires a
// time-seeded uniform source; tests wire a fixed seed so selections are
// reproducible.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type randShuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a uniform shuffler seeded from seed.
func NewShuffler(seed int64) Shuffler {
	return &randShuffler{rng: rand.New(rand.NewSource(seed))}
}

// NewDefaultShuffler returns the production shuffler.
func NewDefaultShuffler() Shuffler {
	return NewShuffler(time.Now().UnixNano())
}

func (s *randShuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}
