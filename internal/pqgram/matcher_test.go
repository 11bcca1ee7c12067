package pqgram

import (
	"errors"
	"testing"

	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedChooser struct {
	pick  int
	calls int
}

func (c *fixedChooser) IntN(n int) int {
	c.calls++
	return c.pick % n
}

func TestPickNearest(t *testing.T) {
	b := mustBuilder(t)
	source := b.Build(ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show")).Root)
	same := b.Build(ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show")).Root)
	near := b.Build(ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show"), ast.Stmt("Hide")).Root)
	far := b.Build(ast.NewScript(ast.Event("Clicked"), ast.Stmt("MoveSteps", ast.Num("1"))).Root)

	t.Run("Empty pool", func(t *testing.T) {
		_, err := NewMatcher(nil).PickNearest(source, nil)
		assert.True(t, errors.Is(err, ErrNoCandidates))
	})

	t.Run("Unique minimum skips the chooser", func(t *testing.T) {
		chooser := &fixedChooser{}
		idx, err := NewMatcher(chooser).PickNearest(source, []*Profile{far, near})
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
		assert.Zero(t, chooser.calls)
	})

	t.Run("Ties go through the chooser", func(t *testing.T) {
		chooser := &fixedChooser{pick: 1}
		idx, err := NewMatcher(chooser).PickNearest(source, []*Profile{same, far, same})
		require.NoError(t, err)
		assert.Equal(t, 2, idx)
		assert.Equal(t, 1, chooser.calls)
	})

	t.Run("Ties list", func(t *testing.T) {
		ties, best, err := NewMatcher(nil).Ties(source, []*Profile{near, same, far, same})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, ties)
		assert.Equal(t, 0.0, best)
	})
}

func TestPickNearestTieMembership(t *testing.T) {
	b := mustBuilder(t)
	source := b.Build(ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show")).Root)
	tieA := b.Build(ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show"), ast.Stmt("Hide")).Root)
	tieB := b.Build(ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show"), ast.Stmt("Hide")).Root)
	third := b.Build(ast.NewScript(ast.Event("Clicked")).Root)

	candidates := []*Profile{third, tieA, tieB}
	m := NewMatcher(NewSeededChooser(42))
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		idx, err := m.PickNearest(source, candidates)
		require.NoError(t, err)
		seen[idx] = true
	}
	assert.False(t, seen[0])
	assert.True(t, seen[1])
	assert.True(t, seen[2])
}

func TestSeededChooserReproducible(t *testing.T) {
	a, b := NewSeededChooser(7), NewSeededChooser(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(10), b.IntN(10))
	}
	assert.Equal(t, 0, FirstChooser{}.IntN(5))
	assert.Less(t, NewRandomChooser().IntN(3), 3)
}
