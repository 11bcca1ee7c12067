package provider

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

const catTreeYAML = `
actors:
  - name: Cat
    variables: [score]
    scripts:
      - event: GreenFlag
        body:
          - kind: MoveSteps
            children: [{kind: NumberLiteral, value: "10"}]
          - kind: IfElseStmt
            children: [{kind: Touching, children: [{kind: StringLiteral, value: edge}]}]
            body: [{kind: TurnRight}]
            else: []
      - body: [{kind: Hide}]
    procedures:
      - name: jump
        params: [height]
        body:
          - kind: Glow
            category: expression
`

func TestTreeDocProviderYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catTreeYAML), 0644))

	program, err := NewTreeDocProvider().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "learner", program.Name)
	require.Len(t, program.Actors, 1)

	cat := program.Actors[0]
	assert.Equal(t, []string{"score"}, cat.Variables())
	require.Len(t, cat.Scripts, 2)

	stmts := cat.Scripts[0].Statements()
	assert.Equal(t, []string{"MoveSteps", "IfElseStmt"}, tags(stmts))
	assert.Equal(t, "10", stmts[0].Child(0).Value)
	assert.Equal(t, []string{"Touching", "StmtList", "StmtList"}, tags(stmts[1].Children))
	assert.Equal(t, []string{"TurnRight"}, tags(stmts[1].Child(1).Children))
	assert.Empty(t, stmts[1].Child(2).Children)

	assert.True(t, cat.Scripts[1].IsDead())

	glow := cat.Procedures[0].Body().Child(0)
	assert.Equal(t, ast.CategoryExpression, glow.Kind.Category)
}

func TestTreeDocProviderJSON(t *testing.T) {
	doc := TreeDocument{
		Name: "solution",
		Actors: []TreeActor{{
			Name:    "Stage",
			Scripts: []TreeScript{{Event: "KeyPressed", EventArgs: []TreeNode{{Kind: "Key", Value: "space"}}, Body: []TreeNode{{Kind: "NextBackdrop"}}}},
		}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "other-name.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	program, err := NewTreeDocProvider().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "solution", program.Name)
	event := program.Actors[0].Scripts[0].Event()
	assert.Equal(t, "KeyPressed", event.Tag())
	assert.Equal(t, []string{"Key"}, tags(event.Children))
}

func TestTreeDocProviderErrors(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		unsupported bool
	}{
		{"No actors", "a.yaml", "name: x\n", true},
		{"Missing kind", "b.yaml", "actors:\n  - name: Cat\n    scripts:\n      - body: [{value: x}]\n", false},
		{"Unknown category", "c.yaml", "actors:\n  - name: Cat\n    scripts:\n      - body: [{kind: X, category: gizmo}]\n", false},
		{"Bad YAML", "d.yml", "actors: [\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := NewTreeDocProvider().Load(context.Background(), path)
			require.Error(t, err)
			assert.Equal(t, tt.unsupported, errors.Is(err, ErrUnsupportedDocument))
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	program, err := ParseScratch("learner", []byte(catProjectJSON))
	require.NoError(t, err)

	data, err := yaml.Marshal(Marshal(program))
	require.NoError(t, err)

	var doc TreeDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	restored, err := doc.Program()
	require.NoError(t, err)

	assert.Equal(t, program.Root, restored.Root)
}
