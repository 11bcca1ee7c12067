// Package render prints program trees as indented pseudocode close to the
// text form of Scratch blocks.
package render

import (
	"strings"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

const indentUnit = "  "

// Render prints a program, actor, script, procedure, statement list or a
// single block.
func Render(node *ast.Node) string {
	var p printer
	p.node(node, 0)
	return p.String()
}

// Program prints every actor of the program separated by blank lines.
func Program(program *ast.Program) string {
	return Render(program.Root)
}

type printer struct {
	strings.Builder
}

func (p *printer) line(depth int, text string) {
	p.WriteString(strings.Repeat(indentUnit, depth))
	p.WriteString(text)
	p.WriteByte('\n')
}

func (p *printer) node(n *ast.Node, depth int) {
	if n == nil {
		return
	}
	switch n.Tag() {
	case ast.KindProgram.Name:
		if list := n.FirstOfKind(ast.KindActorDefinitionList.Name); list != nil {
			for i, actor := range list.Children {
				if i > 0 {
					p.WriteByte('\n')
				}
				p.node(actor, depth)
			}
		}
	case ast.KindActorDefinition.Name:
		p.actor(n, depth)
	case ast.KindScript.Name:
		p.script(n, depth)
	case ast.KindProcedureDefinition.Name:
		p.procedure(n, depth)
	case ast.KindScriptList.Name, ast.KindProcedureDefinitionList.Name:
		for i, child := range n.Children {
			if i > 0 {
				p.WriteByte('\n')
			}
			p.node(child, depth)
		}
	default:
		if n.Kind.Category == ast.CategoryStmtList {
			p.stmts(n, depth)
			return
		}
		p.statement(n, depth)
	}
}

func (p *printer) actor(n *ast.Node, depth int) {
	name := n.FirstOfCategory(ast.CategoryIdentifier)
	p.line(depth, "actor "+name.Value)
	if decls := n.FirstOfKind(ast.KindDeclarationStmtList.Name); decls != nil {
		for _, d := range decls.Children {
			if id := d.FirstOfCategory(ast.CategoryIdentifier); id != nil {
				p.line(depth+1, "var "+id.Value)
			}
		}
	}

	first := true
	for _, list := range []string{ast.KindScriptList.Name, ast.KindProcedureDefinitionList.Name} {
		section := n.FirstOfKind(list)
		if section == nil {
			continue
		}
		for _, child := range section.Children {
			if !first {
				p.WriteByte('\n')
			}
			first = false
			p.node(child, depth+1)
		}
	}
}

func (p *printer) script(n *ast.Node, depth int) {
	event := n.Child(0)
	header := "when " + event.Tag()
	if args := arguments(event.Children); args != "" {
		header += " " + args
	}
	p.line(depth, header)
	p.stmts(n.FirstOfCategory(ast.CategoryStmtList), depth)
}

func (p *printer) procedure(n *ast.Node, depth int) {
	header := "define " + n.FirstOfCategory(ast.CategoryIdentifier).Value
	if params := n.FirstOfKind(ast.KindParameterDefinitionList.Name); params != nil {
		for _, param := range params.Children {
			if id := param.FirstOfCategory(ast.CategoryIdentifier); id != nil {
				header += " (" + id.Value + ")"
			}
		}
	}
	p.line(depth, header)
	p.stmts(n.FirstOfCategory(ast.CategoryStmtList), depth)
}

func (p *printer) stmts(list *ast.Node, depth int) {
	if list == nil {
		return
	}
	for _, stmt := range list.Children {
		p.statement(stmt, depth)
	}
}

// statement prints one block; nested statement lists become indented
// bodies separated by "else" and closed by "end".
func (p *printer) statement(n *ast.Node, depth int) {
	var args []*ast.Node
	var bodies []*ast.Node
	for _, child := range n.Children {
		if child.Kind.Category == ast.CategoryStmtList {
			bodies = append(bodies, child)
		} else {
			args = append(args, child)
		}
	}

	text := n.Tag()
	if a := arguments(args); a != "" {
		text += " " + a
	}
	p.line(depth, text)

	if len(bodies) == 0 {
		return
	}
	for i, body := range bodies {
		if i > 0 {
			p.line(depth, "else")
		}
		p.stmts(body, depth+1)
	}
	p.line(depth, "end")
}

func arguments(nodes []*ast.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, expression(n))
	}
	return strings.Join(parts, " ")
}

// expression prints a reporter inline: numbers and names in round
// brackets, text in square brackets and nested reporters wrapped whole.
func expression(n *ast.Node) string {
	switch n.Kind.Category {
	case ast.CategoryLiteral:
		if n.Tag() == ast.KindStringLiteral.Name {
			return "[" + n.Value + "]"
		}
		return "(" + n.Value + ")"
	case ast.CategoryIdentifier:
		return n.Value
	case ast.CategoryStmtList:
		return "{...}"
	}
	if len(n.Children) == 0 {
		return "(" + n.Tag() + ")"
	}
	return "(" + n.Tag() + " " + arguments(n.Children) + ")"
}
