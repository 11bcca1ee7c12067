package pqgram

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/pqhint/internal/constants"
)

// Config fixes the tuple shape for one comparison. It is passed by value
// and never modified after construction.
type Config struct {
	// P is the ancestor window length.
	P int
	// Q is the sibling window length.
	Q int
	// ExcludedMarkers are tag fragments of bookkeeping nodes that are never
	// reported as edits.
	ExcludedMarkers []string
}

// DefaultConfig returns p=2, q=3 with the standard exclusion markers.
func DefaultConfig() Config {
	markers := make([]string, len(constants.DefaultExcludedMarkers))
	copy(markers, constants.DefaultExcludedMarkers)
	return Config{
		P:               constants.DefaultP,
		Q:               constants.DefaultQ,
		ExcludedMarkers: markers,
	}
}

// Validate checks that the window sizes are usable.
func (c Config) Validate() error {
	if c.P < 1 {
		return fmt.Errorf("p must be at least 1, got %d", c.P)
	}
	if c.Q < 1 {
		return fmt.Errorf("q must be at least 1, got %d", c.Q)
	}
	return nil
}

// Width returns the number of labels in one tuple.
func (c Config) Width() int {
	return c.P + c.Q
}

// IsExcluded reports whether a tag denotes a metadata, literal or
// identifier node.
func (c Config) IsExcluded(tag string) bool {
	for _, marker := range c.ExcludedMarkers {
		if marker != "" && strings.Contains(tag, marker) {
			return true
		}
	}
	return false
}
