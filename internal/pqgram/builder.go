package pqgram

import (
	"strconv"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

// Builder turns program trees into profiles.
type Builder struct {
	cfg Config
}

// NewBuilder creates a builder for cfg.
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// Config returns the tuple shape used by the builder.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build returns the profile of the subtree rooted at node. A nil node has
// an empty profile.
func (b *Builder) Build(node *ast.Node) *Profile {
	profile := NewProfile()
	if node == nil {
		return profile
	}
	w := &walker{
		cfg:      b.cfg,
		counters: make(map[string]int),
		profile:  profile,
	}
	w.step(node, w.label(node), NullLabels(b.cfg.P))
	return profile
}

// walker holds the state of a single Build call. Occurrence counters never
// outlive it.
type walker struct {
	cfg      Config
	counters map[string]int
	profile  *Profile
}

// label assigns the tag of n, appending the occurrence index for
// statements, expressions and statement lists.
func (w *walker) label(n *ast.Node) Label {
	tag := n.Tag()
	if n.Kind.Category.Disambiguated() {
		idx := w.counters[tag]
		w.counters[tag] = idx + 1
		tag += strconv.Itoa(idx)
	}
	return NewLabel(tag, n)
}

func (w *walker) step(n *ast.Node, own Label, anc []Label) {
	ancHere := shift(anc, own)
	sib := NullLabels(w.cfg.Q)

	if n.IsLeaf() {
		w.profile.add(newTuple(ancHere, sib))
		return
	}

	for _, child := range n.Children {
		childLabel := w.label(child)
		sib = shift(sib, childLabel)
		w.profile.add(newTuple(ancHere, sib))
		w.step(child, childLabel, ancHere)
	}
	for k := 0; k < w.cfg.Q-1; k++ {
		sib = shift(sib, Null())
		w.profile.add(newTuple(ancHere, sib))
	}
}

// shift drops the oldest label and appends l, returning a new window.
func shift(window []Label, l Label) []Label {
	out := make([]Label, len(window))
	copy(out, window[1:])
	out[len(out)-1] = l
	return out
}
