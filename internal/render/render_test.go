package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

func TestRenderScript(t *testing.T) {
	script := ast.NewScript(ast.Event("GreenFlag"),
		ast.Stmt("MoveSteps", ast.Num("10")),
		ast.Stmt("RepeatForeverStmt", ast.List(
			ast.Stmt("IfElseStmt",
				ast.Expr("BiggerThan", ast.Expr("Variable", ast.Ident("score")), ast.Str("50")),
				ast.List(ast.Stmt("Say", ast.Str("win"))),
				ast.List(),
			),
		)),
	)

	want := `when GreenFlag
MoveSteps (10)
RepeatForeverStmt
  IfElseStmt (BiggerThan (Variable score) [50])
    Say [win]
  else
  end
end
`
	assert.Equal(t, want, Render(script.Root))
}

func TestRenderProcedure(t *testing.T) {
	proc := ast.NewProcedure("jump %s", []string{"height", "speed"},
		ast.Stmt("ChangeYBy", ast.Expr("Parameter", ast.Str("height"))),
		ast.Stmt("Hide"),
	)

	want := `define jump %s (height) (speed)
ChangeYBy (Parameter [height])
Hide
`
	assert.Equal(t, want, Render(proc.Root))
}

func TestRenderProgram(t *testing.T) {
	program := ast.NewProgram("learner",
		ast.NewActor("Stage", nil, nil, nil),
		ast.NewActor("Cat", []string{"score"},
			[]*ast.Script{
				ast.NewScript(ast.Event("KeyPressed", ast.Expr("Key", ast.Str("space"))), ast.Stmt("NextCostume")),
				ast.NewScript(nil, ast.Stmt("Hide")),
			},
			[]*ast.Procedure{ast.NewProcedure("reset", nil, ast.Stmt("ResetTimer"))},
		),
	)

	want := `actor Stage

actor Cat
  var score
  when KeyPressed (Key [space])
  NextCostume

  when Never
  Hide

  define reset
  ResetTimer
`
	assert.Equal(t, want, Program(program))
}

func TestRenderSingleNodes(t *testing.T) {
	tests := []struct {
		name string
		node *ast.Node
		want string
	}{
		{"Leaf statement", ast.Stmt("Show"), "Show\n"},
		{"Reporter without inputs", ast.Stmt("Say", ast.Expr("Answer")), "Say (Answer)\n"},
		{"Color literal", ast.Stmt("SetPenColorToColorStmt", &ast.Node{Kind: ast.KindColorLiteral, Value: "#ff0000"}), "SetPenColorToColorStmt (#ff0000)\n"},
		{"Statement list", ast.List(ast.Stmt("Show"), ast.Stmt("Hide")), "Show\nHide\n"},
		{"Nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.node))
		})
	}
}
