package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

// TreeDocument is a hand-written or exported program tree.
//
//	name: learner
//	actors:
//	  - name: Cat
//	    variables: [score]
//	    scripts:
//	      - event: GreenFlag
//	        body:
//	          - kind: MoveSteps
//	            children: [{kind: NumberLiteral, value: "10"}]
//	    procedures:
//	      - name: jump
//	        params: [height]
//	        body: [{kind: ChangeYBy}]
type TreeDocument struct {
	Name   string      `yaml:"name" json:"name"`
	Actors []TreeActor `yaml:"actors" json:"actors"`
}

// TreeActor describes one actor of a TreeDocument.
type TreeActor struct {
	Name       string          `yaml:"name" json:"name"`
	Variables  []string        `yaml:"variables,omitempty" json:"variables,omitempty"`
	Scripts    []TreeScript    `yaml:"scripts,omitempty" json:"scripts,omitempty"`
	Procedures []TreeProcedure `yaml:"procedures,omitempty" json:"procedures,omitempty"`
}

// TreeScript is an event with a statement body. An empty event makes a
// script that is never triggered.
type TreeScript struct {
	Event     string     `yaml:"event,omitempty" json:"event,omitempty"`
	EventArgs []TreeNode `yaml:"event_args,omitempty" json:"event_args,omitempty"`
	Body      []TreeNode `yaml:"body" json:"body"`
}

// TreeProcedure is a named custom block.
type TreeProcedure struct {
	Name   string     `yaml:"name" json:"name"`
	Params []string   `yaml:"params,omitempty" json:"params,omitempty"`
	Body   []TreeNode `yaml:"body" json:"body"`
}

// TreeNode is one block. Category defaults to the catalog entry for Kind;
// Body, when present, becomes a nested statement list after Children.
type TreeNode struct {
	Kind     string     `yaml:"kind" json:"kind"`
	Category string     `yaml:"category,omitempty" json:"category,omitempty"`
	Value    string     `yaml:"value,omitempty" json:"value,omitempty"`
	Children []TreeNode `yaml:"children,omitempty" json:"children,omitempty"`
	Body     []TreeNode `yaml:"body,omitempty" json:"body,omitempty"`
	Else     []TreeNode `yaml:"else,omitempty" json:"else,omitempty"`
}

// TreeDocProvider loads TreeDocuments from YAML or JSON.
type TreeDocProvider struct{}

// NewTreeDocProvider creates a tree document provider.
func NewTreeDocProvider() *TreeDocProvider {
	return &TreeDocProvider{}
}

func (p *TreeDocProvider) Name() string { return "treedoc" }

func (p *TreeDocProvider) Extensions() []string { return []string{".yaml", ".yml", ".json"} }

// Load reads and converts a tree document.
func (p *TreeDocProvider) Load(ctx context.Context, path string) (*ast.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc TreeDocument
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: decode tree document: %w", path, err)
	}
	if doc.Actors == nil {
		return nil, fmt.Errorf("%s: no actors: %w", path, ErrUnsupportedDocument)
	}
	if doc.Name == "" {
		doc.Name = ProjectName(path)
	}

	program, err := doc.Program()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// Program converts the document.
func (d *TreeDocument) Program() (*ast.Program, error) {
	actors := make([]*ast.Actor, 0, len(d.Actors))
	for _, a := range d.Actors {
		var scripts []*ast.Script
		for i, s := range a.Scripts {
			body, err := convertNodes(s.Body)
			if err != nil {
				return nil, fmt.Errorf("actor %q script %d: %w", a.Name, i, err)
			}
			var event *ast.Node
			if s.Event != "" {
				args, err := convertNodes(s.EventArgs)
				if err != nil {
					return nil, fmt.Errorf("actor %q script %d: %w", a.Name, i, err)
				}
				event = ast.Event(s.Event, args...)
			}
			scripts = append(scripts, ast.NewScript(event, body...))
		}

		var procedures []*ast.Procedure
		for _, p := range a.Procedures {
			body, err := convertNodes(p.Body)
			if err != nil {
				return nil, fmt.Errorf("actor %q procedure %q: %w", a.Name, p.Name, err)
			}
			procedures = append(procedures, ast.NewProcedure(p.Name, p.Params, body...))
		}

		actors = append(actors, ast.NewActor(a.Name, a.Variables, scripts, procedures))
	}
	return ast.NewProgram(d.Name, actors...), nil
}

func convertNodes(nodes []TreeNode) ([]*ast.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]*ast.Node, 0, len(nodes))
	for _, n := range nodes {
		converted, err := n.node()
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func (n TreeNode) node() (*ast.Node, error) {
	if n.Kind == "" {
		return nil, fmt.Errorf("node without kind")
	}
	kind := ast.LookupKind(n.Kind)
	if n.Category != "" {
		c, ok := ast.ParseCategory(n.Category)
		if !ok {
			return nil, fmt.Errorf("node %s: unknown category %q", n.Kind, n.Category)
		}
		kind.Category = c
	}

	children, err := convertNodes(n.Children)
	if err != nil {
		return nil, err
	}
	for _, nested := range [][]TreeNode{n.Body, n.Else} {
		if nested == nil {
			continue
		}
		stmts, err := convertNodes(nested)
		if err != nil {
			return nil, err
		}
		children = append(children, ast.List(stmts...))
	}

	node := ast.NewNode(kind, children...)
	node.Value = n.Value
	return node, nil
}

// Marshal renders a program back into a TreeDocument, which is handy for
// exporting corpora converted from other formats.
func Marshal(program *ast.Program) TreeDocument {
	doc := TreeDocument{Name: program.Name}
	for _, a := range program.Actors {
		actor := TreeActor{Name: a.Name, Variables: a.Variables()}
		for _, s := range a.Scripts {
			script := TreeScript{Body: treeNodes(s.Statements())}
			if !s.IsDead() {
				script.Event = s.Event().Tag()
				script.EventArgs = treeNodes(s.Event().Children)
			}
			actor.Scripts = append(actor.Scripts, script)
		}
		for _, p := range a.Procedures {
			var body []*ast.Node
			if b := p.Body(); b != nil {
				body = b.Children
			}
			actor.Procedures = append(actor.Procedures, TreeProcedure{
				Name:   p.Name,
				Params: p.Parameters(),
				Body:   treeNodes(body),
			})
		}
		doc.Actors = append(doc.Actors, actor)
	}
	return doc
}

func treeNodes(nodes []*ast.Node) []TreeNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]TreeNode, 0, len(nodes))
	for _, n := range nodes {
		tn := TreeNode{Kind: n.Tag(), Value: n.Value}
		if ast.LookupKind(n.Tag()).Category != n.Kind.Category {
			tn.Category = n.Kind.Category.String()
		}
		tn.Children = treeNodes(n.Children)
		out = append(out, tn)
	}
	return out
}
