package pqgram

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// ErrNoCandidates is returned when a nearest match is requested from an
// empty pool.
var ErrNoCandidates = errors.New("no candidates to pick from")

// Chooser selects an index in [0, n).
type Chooser interface {
	IntN(n int) int
}

type lockedChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (c *lockedChooser) IntN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

// NewSeededChooser returns a reproducible chooser safe for concurrent use.
func NewSeededChooser(seed uint64) Chooser {
	return &lockedChooser{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int {
	return rand.IntN(n)
}

// NewRandomChooser returns a chooser backed by the runtime generator.
func NewRandomChooser() Chooser {
	return globalChooser{}
}

// FirstChooser always picks the first tie. Useful for deterministic runs.
type FirstChooser struct{}

// IntN always returns 0.
func (FirstChooser) IntN(int) int {
	return 0
}

// Matcher finds the nearest profile among candidates, breaking ties with
// its chooser.
type Matcher struct {
	chooser Chooser
}

// NewMatcher creates a matcher. A nil chooser uses the runtime generator.
func NewMatcher(chooser Chooser) *Matcher {
	if chooser == nil {
		chooser = NewRandomChooser()
	}
	return &Matcher{chooser: chooser}
}

// Ties returns the indexes of all candidates at the minimum distance from
// source, in candidate order, together with that distance.
func (m *Matcher) Ties(source *Profile, candidates []*Profile) ([]int, float64, error) {
	if len(candidates) == 0 {
		return nil, 0, ErrNoCandidates
	}
	best := 1.0
	var ties []int
	for i, c := range candidates {
		d := Distance(source, c)
		switch {
		case d < best:
			best = d
			ties = append(ties[:0], i)
		case d == best:
			ties = append(ties, i)
		}
	}
	return ties, best, nil
}

// PickNearest returns the index of a candidate at minimum distance,
// chosen uniformly among ties.
func (m *Matcher) PickNearest(source *Profile, candidates []*Profile) (int, error) {
	ties, _, err := m.Ties(source, candidates)
	if err != nil {
		return -1, err
	}
	if len(ties) == 1 {
		return ties[0], nil
	}
	return ties[m.chooser.IntN(len(ties))], nil
}
