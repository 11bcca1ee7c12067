package pqgram

import "strings"

// Edit is one structural difference: ChangeNode added below or removed
// from Parent. Sibling context is present only for edits derived from a
// sibling window.
type Edit struct {
	Parent        Label
	ChangeNode    Label
	LeftSiblings  []Label
	RightSiblings []Label
}

// NewEdit creates an edit without sibling context.
func NewEdit(parent, change Label) Edit {
	return Edit{Parent: parent, ChangeNode: change}
}

// NewSiblingEdit creates an edit with sibling context.
func NewSiblingEdit(parent, change Label, left, right []Label) Edit {
	if left == nil {
		left = []Label{}
	}
	if right == nil {
		right = []Label{}
	}
	return Edit{Parent: parent, ChangeNode: change, LeftSiblings: left, RightSiblings: right}
}

// HasSiblings reports whether both sibling lists are present.
func (e Edit) HasSiblings() bool {
	return e.LeftSiblings != nil && e.RightSiblings != nil
}

// key distinguishes missing sibling lists from empty ones.
func (e Edit) key() string {
	var b strings.Builder
	b.WriteString(e.Parent.Tag)
	b.WriteString(tagSeparator)
	b.WriteString(e.ChangeNode.Tag)
	for _, side := range [][]Label{e.LeftSiblings, e.RightSiblings} {
		b.WriteString("\x1e")
		if side == nil {
			b.WriteString("-")
			continue
		}
		b.WriteString(strings.Join(Tags(side), tagSeparator))
	}
	return b.String()
}

func (e Edit) String() string {
	s := e.Parent.Tag + " > " + e.ChangeNode.Tag
	if e.HasSiblings() {
		s += " [" + strings.Join(Tags(e.LeftSiblings), ", ") + " | " + strings.Join(Tags(e.RightSiblings), ", ") + "]"
	}
	return s
}

// EditSet holds the additions and deletions between two profiles. Each side
// ignores duplicates and keeps insertion order.
type EditSet struct {
	Additions []Edit
	Deletions []Edit

	seenAdd map[string]struct{}
	seenDel map[string]struct{}
}

// NewEditSet creates an empty set.
func NewEditSet() *EditSet {
	return &EditSet{
		seenAdd: make(map[string]struct{}),
		seenDel: make(map[string]struct{}),
	}
}

// AddAddition records e unless an equal addition exists.
func (s *EditSet) AddAddition(e Edit) {
	if s.seenAdd == nil {
		s.seenAdd = make(map[string]struct{})
	}
	k := e.key()
	if _, ok := s.seenAdd[k]; ok {
		return
	}
	s.seenAdd[k] = struct{}{}
	s.Additions = append(s.Additions, e)
}

// AddDeletion records e unless an equal deletion exists.
func (s *EditSet) AddDeletion(e Edit) {
	if s.seenDel == nil {
		s.seenDel = make(map[string]struct{})
	}
	k := e.key()
	if _, ok := s.seenDel[k]; ok {
		return
	}
	s.seenDel[k] = struct{}{}
	s.Deletions = append(s.Deletions, e)
}

// IsEmpty returns true when there is nothing to add or delete.
func (s *EditSet) IsEmpty() bool {
	return s == nil || (len(s.Additions) == 0 && len(s.Deletions) == 0)
}

// IdentifyEdits reifies the difference of source and target. Tuples only
// in target become additions, tuples only in source become deletions.
// Multiplicity is ignored.
func IdentifyEdits(cfg Config, source, target *Profile) *EditSet {
	edits := NewEditSet()

	var shared, onlyTarget, onlySource []LabelTuple
	for _, t := range target.Distinct() {
		if source.Contains(t) {
			shared = append(shared, t)
		} else {
			onlyTarget = append(onlyTarget, t)
		}
	}
	for _, t := range source.Distinct() {
		if !target.Contains(t) {
			onlySource = append(onlySource, t)
		}
	}

	covered := make(map[string]struct{})
	for _, t := range shared {
		for _, l := range t.labels {
			covered[l.Tag] = struct{}{}
		}
	}
	reportable := func(l Label) bool {
		if l.IsNull() || cfg.IsExcluded(l.Tag) {
			return false
		}
		_, ok := covered[l.Tag]
		return !ok
	}

	for _, t := range onlyTarget {
		tupleEdits(cfg, t, reportable, edits.AddAddition)
	}
	for _, t := range onlySource {
		tupleEdits(cfg, t, reportable, edits.AddDeletion)
	}
	return edits
}

// tupleEdits emits parent/child edits for the ancestor window and
// placement edits for every sibling position of t.
func tupleEdits(cfg Config, t LabelTuple, reportable func(Label) bool, emit func(Edit)) {
	for i := 1; i < cfg.P; i++ {
		if reportable(t.labels[i]) {
			emit(NewEdit(t.labels[i-1], t.labels[i]))
		}
	}

	parent := t.labels[cfg.P-1]
	window := t.labels[cfg.P:]
	for i, l := range window {
		if !reportable(l) {
			continue
		}
		left := append([]Label{}, window[:i]...)
		right := append([]Label{}, window[i+1:]...)
		emit(NewSiblingEdit(parent, l, left, right))
	}
}
