package pqgram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/ludo-technologies/pqhint/internal/constants"
)

// ErrInvalidArity is returned when a tuple is built from windows of the
// wrong length.
var ErrInvalidArity = errors.New("invalid label tuple arity")

// tagSeparator joins tags into tuple keys; it cannot occur in a tag.
const tagSeparator = "\x1f"

// Label is a structural tag with the node it was taken from. Only the tag
// takes part in comparisons.
type Label struct {
	Tag  string
	Node *ast.Node
}

// NewLabel creates a label for node.
func NewLabel(tag string, node *ast.Node) Label {
	return Label{Tag: tag, Node: node}
}

// Null returns the padding label.
func Null() Label {
	return Label{Tag: constants.NullTag}
}

// IsNull reports whether the label is padding.
func (l Label) IsNull() bool {
	return l.Tag == constants.NullTag
}

// Equal compares labels by tag.
func (l Label) Equal(other Label) bool {
	return l.Tag == other.Tag
}

func (l Label) String() string {
	return l.Tag
}

// Tags returns the tags of labels in order.
func Tags(labels []Label) []string {
	if labels == nil {
		return nil
	}
	tags := make([]string, len(labels))
	for i, l := range labels {
		tags[i] = l.Tag
	}
	return tags
}

// NullLabels returns n padding labels.
func NullLabels(n int) []Label {
	labels := make([]Label, n)
	for i := range labels {
		labels[i] = Null()
	}
	return labels
}

// LabelTuple is one pq-gram: P ancestor labels (oldest first) followed by
// Q consecutive sibling labels.
type LabelTuple struct {
	labels []Label
	p      int
	key    string
}

// NewLabelTuple builds a tuple, failing with ErrInvalidArity when a window
// does not match cfg.
func NewLabelTuple(cfg Config, ancestors, siblings []Label) (LabelTuple, error) {
	if len(ancestors) != cfg.P {
		return LabelTuple{}, fmt.Errorf("%w: %d ancestors, want %d", ErrInvalidArity, len(ancestors), cfg.P)
	}
	if len(siblings) != cfg.Q {
		return LabelTuple{}, fmt.Errorf("%w: %d siblings, want %d", ErrInvalidArity, len(siblings), cfg.Q)
	}
	return newTuple(ancestors, siblings), nil
}

func newTuple(ancestors, siblings []Label) LabelTuple {
	labels := make([]Label, 0, len(ancestors)+len(siblings))
	labels = append(labels, ancestors...)
	labels = append(labels, siblings...)
	return LabelTuple{labels: labels, p: len(ancestors), key: strings.Join(Tags(labels), tagSeparator)}
}

// Len returns the tuple width.
func (t LabelTuple) Len() int {
	return len(t.labels)
}

// At returns the label at position i.
func (t LabelTuple) At(i int) Label {
	return t.labels[i]
}

// Labels returns a copy of all labels.
func (t LabelTuple) Labels() []Label {
	out := make([]Label, len(t.labels))
	copy(out, t.labels)
	return out
}

// Ancestors returns a copy of the ancestor window.
func (t LabelTuple) Ancestors() []Label {
	return append([]Label(nil), t.labels[:t.p]...)
}

// Siblings returns a copy of the sibling window.
func (t LabelTuple) Siblings() []Label {
	return append([]Label(nil), t.labels[t.p:]...)
}

// Key identifies the tuple by its tags.
func (t LabelTuple) Key() string {
	return t.key
}

// Contains reports whether any position carries tag.
func (t LabelTuple) Contains(tag string) bool {
	for _, l := range t.labels {
		if l.Tag == tag {
			return true
		}
	}
	return false
}

func (t LabelTuple) String() string {
	return "(" + strings.Join(Tags(t.labels[:t.p]), ", ") + " | " + strings.Join(Tags(t.labels[t.p:]), ", ") + ")"
}
