package ast

import "strings"

// Category is the closed set of node families known to the engine.
// Structural tags are derived from Kind.Name; the category decides how a
// tag is treated during fingerprinting and edit extraction.
type Category int

const (
	// CategoryStructure covers program skeleton nodes (program, actor, lists of scripts).
	CategoryStructure Category = iota
	// CategoryEvent covers script triggers.
	CategoryEvent
	// CategoryStmtList covers ordered statement sequences.
	CategoryStmtList
	// CategoryStatement covers executable blocks.
	CategoryStatement
	// CategoryExpression covers reporters and operators.
	CategoryExpression
	// CategoryLiteral covers constant values.
	CategoryLiteral
	// CategoryIdentifier covers names.
	CategoryIdentifier
	// CategoryMetadata covers bookkeeping nodes without program meaning.
	CategoryMetadata
)

var categoryNames = map[Category]string{
	CategoryStructure:  "structure",
	CategoryEvent:      "event",
	CategoryStmtList:   "stmt_list",
	CategoryStatement:  "statement",
	CategoryExpression: "expression",
	CategoryLiteral:    "literal",
	CategoryIdentifier: "identifier",
	CategoryMetadata:   "metadata",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCategory converts a category name back to a Category.
func ParseCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return CategoryStructure, false
}

// Disambiguated reports whether repeated tags of this category get an
// occurrence suffix while a profile is built.
func (c Category) Disambiguated() bool {
	switch c {
	case CategoryStatement, CategoryExpression, CategoryStmtList:
		return true
	default:
		return false
	}
}

// Kind identifies a node variant. Name is the stable structural tag.
type Kind struct {
	Name     string
	Category Category
}

func (k Kind) String() string {
	return k.Name
}

// Node is one element of an immutable program tree.
type Node struct {
	Kind Kind
	// Value holds the text of literals and identifiers. It never takes part
	// in structural comparison.
	Value    string
	Children []*Node
}

// NewNode creates a node of the given kind.
func NewNode(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Tag returns the structural tag of the node.
func (n *Node) Tag() string {
	if n == nil {
		return ""
	}
	return n.Kind.Name
}

// IsLeaf returns true if the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Size returns the number of nodes in the subtree.
func (n *Node) Size() int {
	size := 0
	n.Walk(func(*Node) bool {
		size++
		return true
	})
	return size
}

// FirstOfCategory returns the first direct child with the given category.
func (n *Node) FirstOfCategory(c Category) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind.Category == c {
			return child
		}
	}
	return nil
}

// FirstOfKind returns the first direct child whose tag equals name.
func (n *Node) FirstOfKind(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind.Name == name {
			return child
		}
	}
	return nil
}
