package analyzer

import (
	"errors"
	"fmt"

	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/ludo-technologies/pqhint/internal/constants"
	"github.com/ludo-technologies/pqhint/internal/pqgram"
)

// ErrImpossibleEdit is returned when an edit group lacks the context needed
// to place a recommendation.
var ErrImpossibleEdit = errors.New("impossible edit")

// Polarity tells whether a recommendation adds or removes a block.
type Polarity int

const (
	Addition Polarity = iota
	Deletion
)

func (p Polarity) String() string {
	if p == Deletion {
		return "deletion"
	}
	return "addition"
}

// Recommendation places one block relative to its siblings and parent.
// Exactly one of Script and Procedure is set.
type Recommendation struct {
	Previous  []pqgram.Label
	Following []pqgram.Label
	Affected  pqgram.Label
	Parent    pqgram.Label
	Polarity  Polarity
	Actor     *ast.Actor
	Script    *ast.Script
	Procedure *ast.Procedure
}

// IsAddition reports whether the block should be added.
func (r Recommendation) IsAddition() bool {
	return r.Polarity == Addition
}

// Block returns the root of the owning script or procedure.
func (r Recommendation) Block() *ast.Node {
	if r.Script != nil {
		return r.Script.Root
	}
	if r.Procedure != nil {
		return r.Procedure.Root
	}
	return nil
}

// Synthesizer turns block edits into placement-qualified recommendations.
type Synthesizer struct {
	cfg    pqgram.Config
	strict bool
}

// NewSynthesizer creates a synthesizer. policy selects the handling of
// groups that are neither single nor complete: best_effort or strict.
func NewSynthesizer(cfg pqgram.Config, policy string) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch policy {
	case "", constants.IntermediateBestEffort:
		return &Synthesizer{cfg: cfg}, nil
	case constants.IntermediateStrict:
		return &Synthesizer{cfg: cfg, strict: true}, nil
	default:
		return nil, fmt.Errorf("unknown intermediate group policy %q", policy)
	}
}

// Synthesize processes additions then deletions of every block edit.
func (s *Synthesizer) Synthesize(blockEdits []BlockEdit) ([]Recommendation, error) {
	var out []Recommendation
	for _, be := range blockEdits {
		if be.Edits == nil {
			continue
		}
		for _, side := range []struct {
			edits    []pqgram.Edit
			polarity Polarity
		}{
			{be.Edits.Additions, Addition},
			{be.Edits.Deletions, Deletion},
		} {
			for _, group := range groupBy(side.edits, func(e pqgram.Edit) string { return e.ChangeNode.Tag }) {
				placements, err := s.place(group)
				if err != nil {
					return nil, fmt.Errorf("%s %s in actor %q: %w", side.polarity, group[0].ChangeNode.Tag, actorName(be.Actor), err)
				}
				for _, p := range placements {
					out = append(out, Recommendation{
						Previous:  p.previous,
						Following: p.following,
						Affected:  group[0].ChangeNode,
						Parent:    p.parent,
						Polarity:  side.polarity,
						Actor:     be.Actor,
						Script:    be.Script,
						Procedure: be.Procedure,
					})
				}
			}
		}
	}
	return out, nil
}

type placement struct {
	previous  []pqgram.Label
	following []pqgram.Label
	parent    pqgram.Label
}

// place resolves the edits sharing one change label.
func (s *Synthesizer) place(group []pqgram.Edit) ([]placement, error) {
	if len(group) == 1 {
		return []placement{s.padded(group[0].Parent)}, nil
	}

	partitions := groupBy(group, func(e pqgram.Edit) string { return e.Parent.Tag })
	if len(partitions) == 1 && len(group) == s.cfg.Q+1 {
		p, err := s.maximal(group)
		if err != nil {
			return nil, err
		}
		return []placement{p}, nil
	}

	var out []placement
	for _, part := range partitions {
		switch len(part) {
		case 1:
			out = append(out, s.padded(part[0].Parent))
		case s.cfg.Q + 1:
			p, err := s.maximal(part)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		default:
			if s.strict {
				return nil, fmt.Errorf("%w: %d edits below %s", ErrImpossibleEdit, len(part), part[0].Parent.Tag)
			}
			out = append(out, s.bestEffort(part))
		}
	}
	return out, nil
}

// maximal uses the entries that see q-1 siblings on one side.
func (s *Synthesizer) maximal(group []pqgram.Edit) (placement, error) {
	want := s.cfg.Q - 1
	var left, right *pqgram.Edit
	for i := range group {
		e := &group[i]
		if !e.HasSiblings() {
			continue
		}
		if left == nil && len(e.LeftSiblings) == want {
			left = e
		}
		if right == nil && len(e.RightSiblings) == want {
			right = e
		}
	}
	if left == nil {
		return placement{}, fmt.Errorf("%w: no entry with %d left siblings", ErrImpossibleEdit, want)
	}
	if right == nil {
		return placement{}, fmt.Errorf("%w: no entry with %d right siblings", ErrImpossibleEdit, want)
	}
	return placement{
		previous:  left.LeftSiblings,
		following: right.RightSiblings,
		parent:    group[0].Parent,
	}, nil
}

func (s *Synthesizer) padded(parent pqgram.Label) placement {
	return placement{
		previous:  pqgram.NullLabels(s.cfg.Q - 1),
		following: pqgram.NullLabels(s.cfg.Q - 1),
		parent:    parent,
	}
}

// bestEffort takes the longest sibling lists available and pads them with
// NULL on the outer side.
func (s *Synthesizer) bestEffort(group []pqgram.Edit) placement {
	want := s.cfg.Q - 1
	var left, right []pqgram.Label
	for _, e := range group {
		if !e.HasSiblings() {
			continue
		}
		if len(e.LeftSiblings) > len(left) {
			left = e.LeftSiblings
		}
		if len(e.RightSiblings) > len(right) {
			right = e.RightSiblings
		}
	}
	previous := append(pqgram.NullLabels(want-len(left)), left...)
	following := append(append([]pqgram.Label{}, right...), pqgram.NullLabels(want-len(right))...)
	return placement{previous: previous, following: following, parent: group[0].Parent}
}

// groupBy partitions edits by key, keeping first-seen order.
func groupBy(edits []pqgram.Edit, key func(pqgram.Edit) string) [][]pqgram.Edit {
	index := make(map[string]int)
	var groups [][]pqgram.Edit
	for _, e := range edits {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}
	return groups
}

func actorName(a *ast.Actor) string {
	if a == nil {
		return ""
	}
	return a.Name
}
