package pqgram

import (
	"testing"

	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	b := mustBuilder(t)

	empty := ast.NewScript(ast.Event("GreenFlag"))
	oneBlock := ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show"))
	other := ast.NewScript(ast.Event("Clicked"), ast.Stmt("Hide"))

	t.Run("Identical profiles", func(t *testing.T) {
		p := b.Build(oneBlock.Root)
		assert.Equal(t, 0.0, Distance(p, p))
		assert.Equal(t, 1.0, Similarity(p, p))
	})

	t.Run("Both empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Distance(NewProfile(), NewProfile()))
		assert.Equal(t, 0.0, Distance(nil, nil))
	})

	t.Run("One empty", func(t *testing.T) {
		assert.Equal(t, 1.0, Distance(NewProfile(), b.Build(oneBlock.Root)))
	})

	t.Run("One added block", func(t *testing.T) {
		d := Distance(b.Build(empty.Root), b.Build(oneBlock.Root))
		assert.Greater(t, d, 0.0)
		assert.Less(t, d, 1.0)
	})

	t.Run("Symmetric", func(t *testing.T) {
		a, c := b.Build(oneBlock.Root), b.Build(other.Root)
		assert.InDelta(t, Distance(a, c), Distance(c, a), 1e-12)
	})

	t.Run("Multiplicity counts", func(t *testing.T) {
		once := b.Build(ast.NewNode(ast.KindScriptList, ast.NewScript(ast.Event("GreenFlag")).Root))
		twice := b.Build(ast.NewNode(ast.KindScriptList,
			ast.NewScript(ast.Event("GreenFlag")).Root,
			ast.NewScript(ast.Event("GreenFlag")).Root,
		))
		assert.Greater(t, Distance(once, twice), 0.0)
	})
}

func TestDistanceIgnoresNames(t *testing.T) {
	b := mustBuilder(t)

	left := ast.NewProgram("a", ast.NewActor("Cat", []string{"score"}, []*ast.Script{
		ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("SetVariableTo", ast.Ident("score"), ast.Num("0"))),
	}, nil))
	right := ast.NewProgram("b", ast.NewActor("Dog", []string{"points"}, []*ast.Script{
		ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("SetVariableTo", ast.Ident("points"), ast.Num("5"))),
	}, nil))

	assert.Equal(t, 0.0, Distance(b.Build(left.Root), b.Build(right.Root)))
}
