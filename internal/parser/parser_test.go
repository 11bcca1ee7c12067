package parser

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{
			name: "simple function",
			source: `def hello():
    print("Hello, World!")`,
		},
		{
			name: "class with main guard",
			source: `class Cat:
    def meow(self):
        return "meow"

if __name__ == "__main__":
    Cat().meow()`,
		},
		{
			name:    "syntax error",
			source:  "def broken(:\n    pass",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Parse(context.Background(), []byte(tt.source))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer result.Close()
			assert.Equal(t, "module", result.RootNode.Type())
		})
	}
}

func TestParseFile(t *testing.T) {
	result, err := New().ParseFile(context.Background(), strings.NewReader("x = 1\ny = 2\n"))
	require.NoError(t, err)
	defer result.Close()

	children := NamedChildren(result.RootNode)
	require.Len(t, children, 2)
	assert.Equal(t, "expression_statement", children[0].Type())
	assert.Equal(t, "x = 1", result.Text(children[0]))
}

func TestFindNodes(t *testing.T) {
	source := `def a():
    pass

def b():
    def c():
        pass
`
	result, err := New().Parse(context.Background(), []byte(source))
	require.NoError(t, err)
	defer result.Close()

	functions := FindNodes(result.RootNode, "function_definition")
	require.Len(t, functions, 3)

	var names []string
	for _, fn := range functions {
		names = append(names, result.Text(fn.ChildByFieldName("name")))
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestWalkTreeSkipsChildren(t *testing.T) {
	source := "def outer():\n    def inner():\n        pass\n"
	result, err := New().Parse(context.Background(), []byte(source))
	require.NoError(t, err)
	defer result.Close()

	count := 0
	WalkTree(result.RootNode, func(n *sitter.Node) bool {
		if n.Type() == "function_definition" {
			count++
			return false
		}
		return true
	})
	assert.Equal(t, 1, count)
}
