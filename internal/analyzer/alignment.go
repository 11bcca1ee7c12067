package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/ludo-technologies/pqhint/internal/constants"
	"github.com/ludo-technologies/pqhint/internal/pqgram"
)

// BlockKind tells which kind of block a BlockEdit belongs to.
type BlockKind int

const (
	BlockScript BlockKind = iota
	BlockProcedure
)

func (k BlockKind) String() string {
	if k == BlockProcedure {
		return "procedure"
	}
	return "script"
}

// BlockEdit is the edit set of one aligned script or procedure of an actor.
type BlockEdit struct {
	Kind      BlockKind
	Actor     *ast.Actor
	Script    *ast.Script
	Procedure *ast.Procedure
	Edits     *pqgram.EditSet
	// Whole marks synthetic edits that add or remove the entire block.
	Whole bool
}

// Candidate is a reference program with its precomputed profile.
type Candidate struct {
	Program *ast.Program
	Profile *pqgram.Profile
}

// AlignmentResult is the outcome of aligning one source program.
type AlignmentResult struct {
	Target   *ast.Program
	Distance float64
	Edits    []BlockEdit
}

// EditsGenerator aligns a source program with its nearest reference and
// collects per-block edits.
//
// Matching is greedy in declaration order: every pick consumes its partner
// from the pool, so the result is not a minimum-cost assignment.
type EditsGenerator struct {
	builder *pqgram.Builder
	matcher *pqgram.Matcher
}

// NewEditsGenerator creates a generator.
func NewEditsGenerator(builder *pqgram.Builder, matcher *pqgram.Matcher) *EditsGenerator {
	return &EditsGenerator{builder: builder, matcher: matcher}
}

// Candidates profiles reference programs once so they can be reused across
// several sources.
func (g *EditsGenerator) Candidates(programs []*ast.Program) []Candidate {
	out := make([]Candidate, 0, len(programs))
	for _, p := range programs {
		if p == nil {
			continue
		}
		out = append(out, Candidate{Program: p, Profile: g.builder.Build(p.Root)})
	}
	return out
}

// Generate aligns source against programs.
func (g *EditsGenerator) Generate(source *ast.Program, programs []*ast.Program) (*AlignmentResult, error) {
	return g.Align(source, g.Candidates(programs))
}

// PickTarget returns the candidate nearest to source.
func (g *EditsGenerator) PickTarget(source *ast.Program, candidates []Candidate) (Candidate, float64, error) {
	profiles := make([]*pqgram.Profile, len(candidates))
	for i, c := range candidates {
		profiles[i] = c.Profile
	}
	sourceProfile := g.builder.Build(source.Root)
	idx, err := g.matcher.PickNearest(sourceProfile, profiles)
	if err != nil {
		return Candidate{}, 0, fmt.Errorf("pick target program: %w", err)
	}
	return candidates[idx], pqgram.Distance(sourceProfile, profiles[idx]), nil
}

// Align picks the nearest candidate and aligns actors, scripts and
// procedures against it.
func (g *EditsGenerator) Align(source *ast.Program, candidates []Candidate) (*AlignmentResult, error) {
	target, distance, err := g.PickTarget(source, candidates)
	if err != nil {
		return nil, err
	}

	result := &AlignmentResult{Target: target.Program, Distance: distance}

	targetActors := newArena(target.Program.Actors, func(a *ast.Actor) *ast.Node { return a.Root }, g.builder)
	for _, sourceActor := range source.Actors {
		if targetActors.empty() {
			break
		}
		idx, err := g.matchActor(sourceActor, targetActors)
		if err != nil {
			return nil, err
		}
		targetActor := targetActors.take(idx)

		scriptEdits, err := g.alignScripts(sourceActor, targetActor)
		if err != nil {
			return nil, err
		}
		result.Edits = append(result.Edits, scriptEdits...)

		procEdits, err := g.alignProcedures(sourceActor, targetActor)
		if err != nil {
			return nil, err
		}
		result.Edits = append(result.Edits, procEdits...)
	}
	return result, nil
}

// matchActor prefers an actor with the same name and falls back to the
// nearest profile.
func (g *EditsGenerator) matchActor(source *ast.Actor, pool *arena[*ast.Actor]) (int, error) {
	for _, idx := range pool.live {
		if pool.items[idx].Name == source.Name {
			return idx, nil
		}
	}
	return pool.nearest(g.matcher, g.builder.Build(source.Root))
}

func (g *EditsGenerator) alignScripts(sourceActor, targetActor *ast.Actor) ([]BlockEdit, error) {
	return alignBlocks(g, sourceActor.Scripts, targetActor.Scripts, blockShape[*ast.Script]{
		root:  func(s *ast.Script) *ast.Node { return s.Root },
		whole: wholeScriptEdit,
		wrap: func(s *ast.Script, set *pqgram.EditSet, whole bool) BlockEdit {
			return BlockEdit{Kind: BlockScript, Actor: sourceActor, Script: s, Edits: set, Whole: whole}
		},
	})
}

func (g *EditsGenerator) alignProcedures(sourceActor, targetActor *ast.Actor) ([]BlockEdit, error) {
	return alignBlocks(g, sourceActor.Procedures, targetActor.Procedures, blockShape[*ast.Procedure]{
		root:  func(p *ast.Procedure) *ast.Node { return p.Root },
		whole: wholeProcedureEdit,
		wrap: func(p *ast.Procedure, set *pqgram.EditSet, whole bool) BlockEdit {
			return BlockEdit{Kind: BlockProcedure, Actor: sourceActor, Procedure: p, Edits: set, Whole: whole}
		},
	})
}

// blockShape adapts scripts and procedures to alignBlocks.
type blockShape[T any] struct {
	root  func(T) *ast.Node
	whole func(T) pqgram.Edit
	wrap  func(T, *pqgram.EditSet, bool) BlockEdit
}

// alignBlocks pairs the blocks of two matched actors.
//
//  1. With fewer target than source blocks, each target block claims its
//     nearest source block; unclaimed source blocks are deleted whole.
//  2. Each remaining source block, in declaration order, is diffed against
//     its nearest unmatched target block.
//  3. Unmatched target blocks are added whole.
func alignBlocks[T any](g *EditsGenerator, sourceItems, targetItems []T, shape blockShape[T]) ([]BlockEdit, error) {
	sources := newArena(sourceItems, shape.root, g.builder)
	targets := newArena(targetItems, shape.root, g.builder)

	var edits []BlockEdit

	if len(targetItems) < len(sourceItems) {
		claimed := sources.clone()
		for _, t := range targets.live {
			idx, err := claimed.nearest(g.matcher, targets.profiles[t])
			if err != nil {
				return nil, err
			}
			claimed.take(idx)
		}
		for _, idx := range claimed.live {
			set := pqgram.NewEditSet()
			set.AddDeletion(shape.whole(sources.items[idx]))
			edits = append(edits, shape.wrap(sources.items[idx], set, true))
			sources.take(idx)
		}
	}

	for _, idx := range append([]int(nil), sources.live...) {
		if targets.empty() {
			break
		}
		t, err := targets.nearest(g.matcher, sources.profiles[idx])
		if err != nil {
			return nil, err
		}
		set := pqgram.IdentifyEdits(g.builder.Config(), sources.profiles[idx], targets.profiles[t])
		if !set.IsEmpty() {
			edits = append(edits, shape.wrap(sources.items[idx], set, false))
		}
		targets.take(t)
	}

	// whole additions reference the reference block so it can be rendered
	for _, t := range targets.live {
		set := pqgram.NewEditSet()
		set.AddAddition(shape.whole(targets.items[t]))
		edits = append(edits, shape.wrap(targets.items[t], set, true))
	}
	return edits, nil
}

// wholeScriptEdit addresses a script by its trigger. Dead scripts are
// addressed by their first statement.
func wholeScriptEdit(s *ast.Script) pqgram.Edit {
	parent := pqgram.NewLabel(constants.ScriptParentTag, s.Root)
	if s.IsDead() {
		if stmts := s.Statements(); len(stmts) > 0 {
			return pqgram.NewEdit(parent, pqgram.NewLabel(stmts[0].Tag()+"0", stmts[0]))
		}
	}
	event := s.Event()
	return pqgram.NewEdit(parent, pqgram.NewLabel(event.Tag(), event))
}

func wholeProcedureEdit(p *ast.Procedure) pqgram.Edit {
	return pqgram.NewEdit(
		pqgram.NewLabel(constants.ProcedureParentTag, nil),
		pqgram.NewLabel(constants.ProcedureTag, p.Root),
	)
}

// arena is the working set of one alignment pass. live holds the indexes
// not yet consumed, in declaration order.
type arena[T any] struct {
	items    []T
	profiles []*pqgram.Profile
	live     []int
}

func newArena[T any](items []T, root func(T) *ast.Node, builder *pqgram.Builder) *arena[T] {
	a := &arena[T]{
		items:    items,
		profiles: make([]*pqgram.Profile, len(items)),
		live:     make([]int, len(items)),
	}
	for i, item := range items {
		a.profiles[i] = builder.Build(root(item))
		a.live[i] = i
	}
	return a
}

func (a *arena[T]) clone() *arena[T] {
	return &arena[T]{items: a.items, profiles: a.profiles, live: append([]int(nil), a.live...)}
}

func (a *arena[T]) empty() bool {
	return len(a.live) == 0
}

// nearest returns the item index of the live entry closest to source.
func (a *arena[T]) nearest(m *pqgram.Matcher, source *pqgram.Profile) (int, error) {
	profiles := make([]*pqgram.Profile, len(a.live))
	for i, idx := range a.live {
		profiles[i] = a.profiles[idx]
	}
	pos, err := m.PickNearest(source, profiles)
	if err != nil {
		return -1, err
	}
	return a.live[pos], nil
}

// take removes idx from the live set and returns its item.
func (a *arena[T]) take(idx int) T {
	for i, live := range a.live {
		if live == idx {
			a.live = append(a.live[:i], a.live[i+1:]...)
			break
		}
	}
	return a.items[idx]
}
