package ast

// Program is the root of one project. Root holds the full tree used for
// whole-program fingerprints; Actors index into it.
type Program struct {
	Name   string
	Root   *Node
	Actors []*Actor
}

// Actor is a top-level program unit such as a sprite or the stage.
type Actor struct {
	Name       string
	Root       *Node
	Scripts    []*Script
	Procedures []*Procedure
}

// Script is a trigger event followed by a statement list.
type Script struct {
	Root *Node
}

// Procedure is a named custom block definition.
type Procedure struct {
	Name string
	Root *Node
}

// NewProgram assembles the program tree
//
//	Program
//	├── StrId
//	├── ProgramMetadata
//	└── ActorDefinitionList
//	    └── ActorDefinition...
func NewProgram(name string, actors ...*Actor) *Program {
	list := NewNode(KindActorDefinitionList)
	for _, a := range actors {
		list.Children = append(list.Children, a.Root)
	}
	root := NewNode(KindProgram, Ident(name), NewNode(KindProgramMetadata), list)
	return &Program{Name: name, Root: root, Actors: actors}
}

// NewActor assembles an actor tree
//
//	ActorDefinition
//	├── StrId
//	├── ActorMetadata
//	├── DeclarationStmtList
//	├── ScriptList
//	└── ProcedureDefinitionList
func NewActor(name string, variables []string, scripts []*Script, procedures []*Procedure) *Actor {
	decls := NewNode(KindDeclarationStmtList)
	for _, v := range variables {
		decls.Children = append(decls.Children, NewNode(KindDeclarationStmt, Ident(v)))
	}
	scriptList := NewNode(KindScriptList)
	for _, s := range scripts {
		scriptList.Children = append(scriptList.Children, s.Root)
	}
	procList := NewNode(KindProcedureDefinitionList)
	for _, p := range procedures {
		procList.Children = append(procList.Children, p.Root)
	}
	root := NewNode(KindActorDefinition, Ident(name), NewNode(KindActorMetadata), decls, scriptList, procList)
	return &Actor{Name: name, Root: root, Scripts: scripts, Procedures: procedures}
}

// NewScript creates a script triggered by event. A nil event makes a dead
// script that never fires.
func NewScript(event *Node, stmts ...*Node) *Script {
	if event == nil {
		event = NewNode(KindNever)
	}
	return &Script{Root: NewNode(KindScript, event, List(stmts...))}
}

// NewProcedure creates a procedure definition.
func NewProcedure(name string, params []string, stmts ...*Node) *Procedure {
	paramList := NewNode(KindParameterDefinitionList)
	for _, p := range params {
		paramList.Children = append(paramList.Children, NewNode(KindParameterDefinition, Ident(p)))
	}
	root := NewNode(KindProcedureDefinition, Ident(name), paramList, List(stmts...))
	return &Procedure{Name: name, Root: root}
}

// Event returns the trigger node.
func (s *Script) Event() *Node {
	return s.Root.Child(0)
}

// Body returns the statement list of the script.
func (s *Script) Body() *Node {
	return s.Root.FirstOfCategory(CategoryStmtList)
}

// Statements returns the top-level statements of the script.
func (s *Script) Statements() []*Node {
	if body := s.Body(); body != nil {
		return body.Children
	}
	return nil
}

// IsDead reports whether the script is never triggered.
func (s *Script) IsDead() bool {
	return s.Event().Tag() == KindNever.Name
}

// Body returns the statement list of the procedure.
func (p *Procedure) Body() *Node {
	return p.Root.FirstOfCategory(CategoryStmtList)
}

// Parameters returns the declared parameter names.
func (p *Procedure) Parameters() []string {
	params := p.Root.FirstOfKind(KindParameterDefinitionList.Name)
	if params == nil {
		return nil
	}
	names := make([]string, 0, len(params.Children))
	for _, param := range params.Children {
		if id := param.FirstOfCategory(CategoryIdentifier); id != nil {
			names = append(names, id.Value)
		}
	}
	return names
}

// Variables returns the names declared by the actor.
func (a *Actor) Variables() []string {
	decls := a.Root.FirstOfKind(KindDeclarationStmtList.Name)
	if decls == nil {
		return nil
	}
	names := make([]string, 0, len(decls.Children))
	for _, d := range decls.Children {
		if id := d.FirstOfCategory(CategoryIdentifier); id != nil {
			names = append(names, id.Value)
		}
	}
	return names
}

// FindActor returns the actor with the given name.
func (p *Program) FindActor(name string) *Actor {
	for _, a := range p.Actors {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Builders for block nodes.

// Event creates a trigger node.
func Event(name string, children ...*Node) *Node {
	return NewNode(Kind{Name: name, Category: CategoryEvent}, children...)
}

// Stmt creates a statement node.
func Stmt(name string, children ...*Node) *Node {
	return NewNode(Kind{Name: name, Category: CategoryStatement}, children...)
}

// Expr creates an expression node.
func Expr(name string, children ...*Node) *Node {
	return NewNode(Kind{Name: name, Category: CategoryExpression}, children...)
}

// List creates a statement list.
func List(stmts ...*Node) *Node {
	return NewNode(KindStmtList, stmts...)
}

// Num creates a number literal.
func Num(value string) *Node {
	return &Node{Kind: KindNumberLiteral, Value: value}
}

// Str creates a string literal.
func Str(value string) *Node {
	return &Node{Kind: KindStringLiteral, Value: value}
}

// Ident creates an identifier.
func Ident(name string) *Node {
	return &Node{Kind: KindStrID, Value: name}
}
