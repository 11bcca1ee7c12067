package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/ludo-technologies/pqhint/internal/constants"
	"github.com/ludo-technologies/pqhint/internal/pqgram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lbl(tag string) pqgram.Label {
	return pqgram.NewLabel(tag, nil)
}

func lbls(tags ...string) []pqgram.Label {
	out := make([]pqgram.Label, len(tags))
	for i, tag := range tags {
		out[i] = lbl(tag)
	}
	return out
}

func newSynthesizer(t *testing.T, policy string) *Synthesizer {
	t.Helper()
	s, err := NewSynthesizer(pqgram.DefaultConfig(), policy)
	require.NoError(t, err)
	return s
}

func scriptBlock(additions ...pqgram.Edit) BlockEdit {
	set := pqgram.NewEditSet()
	for _, e := range additions {
		set.AddAddition(e)
	}
	return BlockEdit{
		Kind:   BlockScript,
		Actor:  ast.NewActor("Sprite1", nil, nil, nil),
		Script: ast.NewScript(ast.Event("GreenFlag")),
		Edits:  set,
	}
}

func TestNewSynthesizerPolicy(t *testing.T) {
	_, err := NewSynthesizer(pqgram.DefaultConfig(), "guess")
	assert.Error(t, err)

	for _, policy := range []string{"", constants.IntermediateBestEffort, constants.IntermediateStrict} {
		_, err := NewSynthesizer(pqgram.DefaultConfig(), policy)
		assert.NoError(t, err, policy)
	}
}

func TestSynthesizeCompleteGroup(t *testing.T) {
	s := newSynthesizer(t, constants.IntermediateStrict)
	parent, change := lbl("StmtList0"), lbl("MoveSteps0")
	be := scriptBlock(
		pqgram.NewSiblingEdit(parent, change, lbls("*", "Show0"), lbls()),
		pqgram.NewEdit(parent, change),
		pqgram.NewSiblingEdit(parent, change, lbls("Show0"), lbls("Hide0")),
		pqgram.NewSiblingEdit(parent, change, lbls(), lbls("Hide0", "*")),
	)

	recs, err := s.Synthesize([]BlockEdit{be})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "MoveSteps0", r.Affected.Tag)
	assert.Equal(t, "StmtList0", r.Parent.Tag)
	assert.Equal(t, []string{"*", "Show0"}, pqgram.Tags(r.Previous))
	assert.Equal(t, []string{"Hide0", "*"}, pqgram.Tags(r.Following))
	assert.True(t, r.IsAddition())
	assert.Same(t, be.Script, r.Script)
	assert.Nil(t, r.Procedure)
	assert.Same(t, be.Script.Root, r.Block())
}

func TestSynthesizeMissingMaximalContext(t *testing.T) {
	s := newSynthesizer(t, constants.IntermediateBestEffort)
	parent, change := lbl("StmtList0"), lbl("MoveSteps0")
	be := scriptBlock(
		pqgram.NewEdit(parent, change),
		pqgram.NewSiblingEdit(parent, change, lbls("Show0"), lbls("Hide0")),
		pqgram.NewSiblingEdit(parent, change, lbls("Show0"), lbls()),
		pqgram.NewSiblingEdit(parent, change, lbls(), lbls("Hide0", "*")),
	)

	_, err := s.Synthesize([]BlockEdit{be})
	assert.True(t, errors.Is(err, ErrImpossibleEdit))
}

func TestSynthesizeSingleEdit(t *testing.T) {
	s := newSynthesizer(t, constants.IntermediateStrict)
	be := scriptBlock(pqgram.NewEdit(lbl("Script"), lbl("GreenFlag")))

	recs, err := s.Synthesize([]BlockEdit{be})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "GreenFlag", recs[0].Affected.Tag)
	assert.Equal(t, "Script", recs[0].Parent.Tag)
	assert.Equal(t, []string{"*", "*"}, pqgram.Tags(recs[0].Previous))
	assert.Equal(t, []string{"*", "*"}, pqgram.Tags(recs[0].Following))
}

func TestSynthesizeIntermediateGroup(t *testing.T) {
	parent, change := lbl("ScriptList"), lbl("Script")
	be := scriptBlock(
		pqgram.NewEdit(lbl("ActorDefinition"), parent),
		pqgram.NewSiblingEdit(parent, change, lbls("*"), lbls("Script")),
		pqgram.NewSiblingEdit(parent, change, lbls(), lbls("Script", "*")),
	)

	t.Run("Strict", func(t *testing.T) {
		_, err := newSynthesizer(t, constants.IntermediateStrict).Synthesize([]BlockEdit{be})
		assert.True(t, errors.Is(err, ErrImpossibleEdit))
	})

	t.Run("Best effort", func(t *testing.T) {
		recs, err := newSynthesizer(t, constants.IntermediateBestEffort).Synthesize([]BlockEdit{be})
		require.NoError(t, err)
		require.Len(t, recs, 2)

		assert.Equal(t, "ScriptList", recs[0].Affected.Tag)
		assert.Equal(t, "Script", recs[1].Affected.Tag)
		assert.Equal(t, []string{"*", "*"}, pqgram.Tags(recs[1].Previous))
		assert.Equal(t, []string{"Script", "*"}, pqgram.Tags(recs[1].Following))
	})
}

func TestSynthesizePartitionsByParent(t *testing.T) {
	s := newSynthesizer(t, constants.IntermediateStrict)
	change := lbl("Show")
	be := scriptBlock(
		pqgram.NewEdit(lbl("StmtList0"), change),
		pqgram.NewEdit(lbl("StmtList1"), change),
	)

	recs, err := s.Synthesize([]BlockEdit{be})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "StmtList0", recs[0].Parent.Tag)
	assert.Equal(t, "StmtList1", recs[1].Parent.Tag)
}

func TestSynthesizeDeletionsFollowAdditions(t *testing.T) {
	s := newSynthesizer(t, constants.IntermediateStrict)
	set := pqgram.NewEditSet()
	set.AddDeletion(pqgram.NewEdit(lbl("Script"), lbl("Clicked")))
	set.AddAddition(pqgram.NewEdit(lbl("Script"), lbl("GreenFlag")))
	proc := ast.NewProcedure("p", nil)

	recs, err := s.Synthesize([]BlockEdit{{Kind: BlockProcedure, Procedure: proc, Edits: set}, {Kind: BlockScript}})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Addition, recs[0].Polarity)
	assert.Equal(t, Deletion, recs[1].Polarity)
	assert.Equal(t, "deletion", recs[1].Polarity.String())
	assert.Same(t, proc, recs[1].Procedure)
	assert.Nil(t, recs[1].Script)
}

func TestPipelineRoundTripPlacement(t *testing.T) {
	// StmtList              StmtList
	// ├── Show       ->     ├── Show
	// └── Hide              ├── MoveSteps
	//                       └── Hide
	g := newGenerator(t, pqgram.FirstChooser{})
	s := newSynthesizer(t, constants.IntermediateStrict)
	source := singleActor("src", ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show"), ast.Stmt("Hide")))
	target := singleActor("ref", ast.NewScript(ast.Event("GreenFlag"),
		ast.Stmt("Show"), ast.Stmt("MoveSteps", ast.Num("10")), ast.Stmt("Hide")))

	result, err := g.Generate(source, []*ast.Program{target})
	require.NoError(t, err)
	recs, err := s.Synthesize(result.Edits)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "MoveSteps0", r.Affected.Tag)
	assert.Equal(t, "StmtList0", r.Parent.Tag)
	assert.Equal(t, []string{"*", "Show0"}, pqgram.Tags(r.Previous))
	assert.Equal(t, []string{"Hide0", "*"}, pqgram.Tags(r.Following))
	assert.Same(t, source.Actors[0].Scripts[0], r.Script)
}

func TestPipelineWholeScript(t *testing.T) {
	g := newGenerator(t, pqgram.FirstChooser{})
	s := newSynthesizer(t, constants.IntermediateStrict)
	empty := singleActor("empty")
	one := singleActor("one", ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show")))

	for _, tt := range []struct {
		name     string
		source   *ast.Program
		target   *ast.Program
		polarity Polarity
	}{
		{"Addition", empty, one, Addition},
		{"Deletion", one, empty, Deletion},
	} {
		t.Run(tt.name, func(t *testing.T) {
			result, err := g.Generate(tt.source, []*ast.Program{tt.target})
			require.NoError(t, err)
			recs, err := s.Synthesize(result.Edits)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, "GreenFlag", recs[0].Affected.Tag)
			assert.Equal(t, "Script", recs[0].Parent.Tag)
			assert.Equal(t, tt.polarity, recs[0].Polarity)
			assert.Equal(t, []string{"*", "*"}, pqgram.Tags(recs[0].Previous))
			assert.Equal(t, []string{"*", "*"}, pqgram.Tags(recs[0].Following))
		})
	}
}

func TestPipelineOneAddedBlock(t *testing.T) {
	g := newGenerator(t, pqgram.FirstChooser{})
	source := singleActor("src", ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("GoToPos", ast.Expr("MousePos"))))
	target := singleActor("ref", ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Show"), ast.Stmt("GoToPos", ast.Expr("MousePos"))))

	result, err := g.Generate(source, []*ast.Program{target})
	require.NoError(t, err)
	assert.Greater(t, result.Distance, 0.0)
	assert.Less(t, result.Distance, 1.0)
	require.Len(t, result.Edits, 1)
	assert.Equal(t, map[string]int{"Show0": 4}, func() map[string]int {
		m := map[string]int{}
		for _, e := range result.Edits[0].Edits.Additions {
			m[e.ChangeNode.Tag]++
		}
		return m
	}())

	recs, err := newSynthesizer(t, constants.IntermediateStrict).Synthesize(result.Edits)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"*", "*"}, pqgram.Tags(recs[0].Previous))
	assert.Equal(t, []string{"GoToPos0", "*"}, pqgram.Tags(recs[0].Following))
}

func TestRecommendationsNeverAffectBookkeeping(t *testing.T) {
	g := newGenerator(t, pqgram.NewSeededChooser(11))
	s := newSynthesizer(t, constants.IntermediateBestEffort)
	source := ast.NewProgram("src", ast.NewActor("Cat", []string{"x"}, []*ast.Script{
		ast.NewScript(ast.Event("GreenFlag"), ast.Stmt("Say", ast.Str("hi"))),
	}, nil))
	target := ast.NewProgram("ref", ast.NewActor("Cat", []string{"x", "y"}, []*ast.Script{
		ast.NewScript(ast.Event("GreenFlag"),
			ast.Stmt("SetVariableTo", ast.Ident("y"), ast.Num("0")),
			ast.Stmt("SayForSecs", ast.Str("hello"), ast.Num("2")),
			ast.Stmt("ChangeVariableBy", ast.Ident("y"), ast.Num("1")),
		),
		ast.NewScript(ast.Event("Clicked"), ast.Stmt("Hide")),
	}, []*ast.Procedure{ast.NewProcedure("reset", []string{"v"}, ast.Stmt("SetVariableTo", ast.Ident("v"), ast.Num("0")))}))

	result, err := g.Generate(source, []*ast.Program{target})
	require.NoError(t, err)
	recs, err := s.Synthesize(result.Edits)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	for _, r := range recs {
		for _, marker := range constants.DefaultExcludedMarkers {
			assert.False(t, strings.Contains(r.Affected.Tag, marker), "affected %s", r.Affected.Tag)
		}
		assert.Len(t, r.Previous, 2)
		assert.Len(t, r.Following, 2)
	}
}
