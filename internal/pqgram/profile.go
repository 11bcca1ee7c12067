package pqgram

// Profile is the bag of tuples of one subtree. Distinct tuples keep the
// order in which they were first produced.
type Profile struct {
	counts   map[string]int
	distinct []LabelTuple
	size     int
}

// NewProfile creates an empty profile.
func NewProfile() *Profile {
	return &Profile{counts: make(map[string]int)}
}

func (p *Profile) add(t LabelTuple) {
	if p.counts[t.key] == 0 {
		p.distinct = append(p.distinct, t)
	}
	p.counts[t.key]++
	p.size++
}

// Size returns the number of tuples counting duplicates.
func (p *Profile) Size() int {
	if p == nil {
		return 0
	}
	return p.size
}

// IsEmpty returns true when the profile holds no tuples.
func (p *Profile) IsEmpty() bool {
	return p.Size() == 0
}

// Count returns the multiplicity of t.
func (p *Profile) Count(t LabelTuple) int {
	if p == nil {
		return 0
	}
	return p.counts[t.key]
}

// Contains reports whether t occurs at least once.
func (p *Profile) Contains(t LabelTuple) bool {
	return p.Count(t) > 0
}

// Distinct returns each tuple once, in first-occurrence order.
func (p *Profile) Distinct() []LabelTuple {
	if p == nil {
		return nil
	}
	out := make([]LabelTuple, len(p.distinct))
	copy(out, p.distinct)
	return out
}

// Tuples returns every tuple with its multiplicity, grouped by first
// occurrence.
func (p *Profile) Tuples() []LabelTuple {
	if p == nil {
		return nil
	}
	out := make([]LabelTuple, 0, p.size)
	for _, t := range p.distinct {
		for i := 0; i < p.counts[t.key]; i++ {
			out = append(out, t)
		}
	}
	return out
}

// IntersectionSize returns the size of the bag intersection of p and other.
func (p *Profile) IntersectionSize(other *Profile) int {
	if p.IsEmpty() || other.IsEmpty() {
		return 0
	}
	small, large := p, other
	if len(large.counts) < len(small.counts) {
		small, large = large, small
	}
	shared := 0
	for key, n := range small.counts {
		if m := large.counts[key]; m > 0 {
			shared += min(n, m)
		}
	}
	return shared
}
