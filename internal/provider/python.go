package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/ludo-technologies/pqhint/internal/parser"
)

// Python module layout mapped onto the actor model.
const (
	pythonStageActor = "Stage"
	moduleLoadEvent  = "ModuleLoad"
	mainGuardEvent   = "MainGuard"
)

// PythonProvider maps Python modules onto programs: the module is the
// stage, each class an actor, functions and methods are procedures and
// top-level statements form scripts.
type PythonProvider struct{}

// NewPythonProvider creates a Python provider.
func NewPythonProvider() *PythonProvider {
	return &PythonProvider{}
}

func (p *PythonProvider) Name() string { return "python" }

func (p *PythonProvider) Extensions() []string { return []string{".py"} }

// Load parses a Python source file.
func (p *PythonProvider) Load(ctx context.Context, path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	program, err := ParsePython(ctx, ProjectName(path), source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// ParsePython converts Python source into a program.
func ParsePython(ctx context.Context, name string, source []byte) (*ast.Program, error) {
	result, err := parser.New().Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	c := &pythonConverter{result: result}

	var moduleBody []*ast.Node
	var scripts []*ast.Script
	var procedures []*ast.Procedure
	var classes []*ast.Actor

	for _, child := range parser.NamedChildren(result.RootNode) {
		def := unwrapDecorated(child)
		switch {
		case def.Type() == "function_definition":
			procedures = append(procedures, c.procedure(def))
		case def.Type() == "class_definition":
			classes = append(classes, c.class(def))
		case c.isMainGuard(child):
			body := c.block(child.ChildByFieldName("consequence"))
			scripts = append(scripts, ast.NewScript(ast.Event(mainGuardEvent), body.Children...))
		case child.Type() == "comment":
		default:
			moduleBody = append(moduleBody, c.statement(child))
		}
	}

	if len(moduleBody) > 0 {
		scripts = append([]*ast.Script{ast.NewScript(ast.Event(moduleLoadEvent), moduleBody...)}, scripts...)
	}

	stage := ast.NewActor(pythonStageActor, nil, scripts, procedures)
	return ast.NewProgram(name, append([]*ast.Actor{stage}, classes...)...), nil
}

type pythonConverter struct {
	result *parser.ParseResult
}

func (c *pythonConverter) class(node *sitter.Node) *ast.Actor {
	name := c.result.Text(node.ChildByFieldName("name"))
	var body []*ast.Node
	var procedures []*ast.Procedure
	var attributes []string

	for _, child := range parser.NamedChildren(node.ChildByFieldName("body")) {
		def := unwrapDecorated(child)
		switch def.Type() {
		case "function_definition":
			procedures = append(procedures, c.procedure(def))
		case "comment":
		default:
			if attr := c.assignedName(child); attr != "" {
				attributes = append(attributes, attr)
			}
			body = append(body, c.statement(child))
		}
	}

	var scripts []*ast.Script
	if len(body) > 0 {
		scripts = append(scripts, ast.NewScript(ast.Event(moduleLoadEvent), body...))
	}
	return ast.NewActor(name, attributes, scripts, procedures)
}

func (c *pythonConverter) procedure(node *sitter.Node) *ast.Procedure {
	name := c.result.Text(node.ChildByFieldName("name"))
	var params []string
	for _, p := range parser.NamedChildren(node.ChildByFieldName("parameters")) {
		if id := firstIdentifier(p); id != nil {
			params = append(params, c.result.Text(id))
		}
	}
	body := c.block(node.ChildByFieldName("body"))
	return ast.NewProcedure(name, params, body.Children...)
}

// block converts a suite into a statement list.
func (c *pythonConverter) block(node *sitter.Node) *ast.Node {
	list := ast.List()
	for _, child := range parser.NamedChildren(node) {
		if child.Type() == "comment" {
			continue
		}
		list.Children = append(list.Children, c.statement(child))
	}
	return list
}

func (c *pythonConverter) statement(node *sitter.Node) *ast.Node {
	// expression statements carry a single expression worth naming
	if node.Type() == "expression_statement" && node.NamedChildCount() == 1 {
		inner := node.NamedChild(0)
		switch inner.Type() {
		case "assignment", "augmented_assignment", "call":
			return ast.Stmt(ast.CamelCase(inner.Type()), c.operands(inner)...)
		}
	}
	return ast.Stmt(ast.CamelCase(node.Type()), c.operands(node)...)
}

// operands converts the named children below a statement or expression.
func (c *pythonConverter) operands(node *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for _, child := range parser.NamedChildren(node) {
		if n := c.expression(child); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (c *pythonConverter) expression(node *sitter.Node) *ast.Node {
	switch node.Type() {
	case "comment":
		return nil
	case "block":
		return c.block(node)
	case "identifier":
		return ast.Ident(c.result.Text(node))
	case "integer", "float":
		return ast.Num(c.result.Text(node))
	case "string", "concatenated_string":
		return ast.Str(strings.Trim(c.result.Text(node), `"'`))
	case "true", "false":
		return &ast.Node{Kind: ast.KindBoolLiteral, Value: c.result.Text(node)}
	case "none":
		return &ast.Node{Kind: ast.Kind{Name: "NoneLiteral", Category: ast.CategoryLiteral}, Value: "None"}
	case "function_definition", "class_definition", "decorated_definition":
		// nested definitions are kept as opaque statements
		return ast.Stmt(ast.CamelCase(node.Type()), ast.Ident(c.result.Text(unwrapDecorated(node).ChildByFieldName("name"))))
	}
	return ast.Expr(ast.CamelCase(node.Type()), c.operands(node)...)
}

// isMainGuard matches `if __name__ == "__main__":` without else branches.
func (c *pythonConverter) isMainGuard(node *sitter.Node) bool {
	if node.Type() != "if_statement" || node.ChildByFieldName("alternative") != nil {
		return false
	}
	cond := c.result.Text(node.ChildByFieldName("condition"))
	cond = strings.Join(strings.Fields(strings.ReplaceAll(cond, "'", `"`)), "")
	return cond == `__name__=="__main__"` || cond == `"__main__"==__name__`
}

// assignedName returns the target of a simple `name = value` statement.
func (c *pythonConverter) assignedName(node *sitter.Node) string {
	if node.Type() != "expression_statement" || node.NamedChildCount() != 1 {
		return ""
	}
	inner := node.NamedChild(0)
	if inner.Type() != "assignment" {
		return ""
	}
	left := inner.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return ""
	}
	return c.result.Text(left)
}

func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

func firstIdentifier(node *sitter.Node) *sitter.Node {
	if node.Type() == "identifier" {
		return node
	}
	var found *sitter.Node
	parser.WalkTree(node, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "identifier" {
			found = n
			return false
		}
		return true
	})
	return found
}
