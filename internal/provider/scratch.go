package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

// projectEntry is the member of an .sb3 archive holding the program.
const projectEntry = "project.json"

// ScratchProvider loads Scratch 3 projects from .sb3 archives or a bare
// project.json.
type ScratchProvider struct{}

// NewScratchProvider creates a Scratch provider.
func NewScratchProvider() *ScratchProvider {
	return &ScratchProvider{}
}

func (p *ScratchProvider) Name() string { return "scratch" }

func (p *ScratchProvider) Extensions() []string { return []string{".sb3", ".json"} }

// Load reads the project and converts it.
func (p *ScratchProvider) Load(ctx context.Context, path string) (*ast.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readProjectJSON(path)
	if err != nil {
		return nil, err
	}
	program, err := ParseScratch(ProjectName(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// readProjectJSON returns project.json from an archive or the file itself.
func readProjectJSON(path string) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), ".sb3") {
		return os.ReadFile(path)
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != projectEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in %s: %w", projectEntry, path, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s: archive has no %s", path, projectEntry)
}

type scratchProject struct {
	Targets []scratchTarget `json:"targets"`
}

type scratchTarget struct {
	IsStage   bool            `json:"isStage"`
	Name      string          `json:"name"`
	Variables json.RawMessage `json:"variables"`
	Lists     json.RawMessage `json:"lists"`
	Blocks    json.RawMessage `json:"blocks"`
}

type scratchBlock struct {
	Opcode   string           `json:"opcode"`
	Next     *string          `json:"next"`
	Inputs   json.RawMessage  `json:"inputs"`
	Fields   json.RawMessage  `json:"fields"`
	Shadow   bool             `json:"shadow"`
	TopLevel bool             `json:"topLevel"`
	Mutation *scratchMutation `json:"mutation"`
}

type scratchMutation struct {
	ProcCode      string `json:"proccode"`
	ArgumentNames string `json:"argumentnames"`
}

// ParseScratch converts project.json content into a program. Content that
// is valid JSON but has no targets yields ErrUnsupportedDocument.
func ParseScratch(name string, data []byte) (*ast.Program, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode %s: %w", projectEntry, err)
	}
	if _, ok := probe["targets"]; !ok {
		return nil, fmt.Errorf("no targets: %w", ErrUnsupportedDocument)
	}

	var project scratchProject
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("decode %s: %w", projectEntry, err)
	}

	actors := make([]*ast.Actor, 0, len(project.Targets))
	for _, target := range project.Targets {
		actor, err := convertTarget(target)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", target.Name, err)
		}
		actors = append(actors, actor)
	}
	return ast.NewProgram(name, actors...), nil
}

// blockTable holds the blocks of one target in file order.
type blockTable struct {
	blocks map[string]*scratchBlock
	order  []string
}

func decodeBlocks(raw json.RawMessage) (*blockTable, error) {
	table := &blockTable{blocks: map[string]*scratchBlock{}}
	if len(raw) == 0 {
		return table, nil
	}
	keys, err := objectKeys(raw)
	if err != nil {
		return nil, err
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	for _, id := range keys {
		entry := bytes.TrimSpace(entries[id])
		// loose variable reporters are stored as arrays
		if len(entry) == 0 || entry[0] != '{' {
			continue
		}
		var b scratchBlock
		if err := json.Unmarshal(entry, &b); err != nil {
			return nil, fmt.Errorf("block %s: %w", id, err)
		}
		table.blocks[id] = &b
		table.order = append(table.order, id)
	}
	return table, nil
}

func convertTarget(target scratchTarget) (*ast.Actor, error) {
	table, err := decodeBlocks(target.Blocks)
	if err != nil {
		return nil, err
	}

	variables, err := declarationNames(target.Variables)
	if err != nil {
		return nil, fmt.Errorf("variables: %w", err)
	}
	lists, err := declarationNames(target.Lists)
	if err != nil {
		return nil, fmt.Errorf("lists: %w", err)
	}

	c := newScratchConverter(table)
	var scripts []*ast.Script
	var procedures []*ast.Procedure
	for _, id := range table.order {
		b := table.blocks[id]
		if !b.TopLevel || b.Shadow {
			continue
		}
		switch {
		case b.Opcode == "procedures_definition":
			proc, err := c.procedure(b)
			if err != nil {
				return nil, err
			}
			procedures = append(procedures, proc)
		case isHat(b.Opcode):
			fields, err := c.children(b)
			if err != nil {
				return nil, err
			}
			body, err := c.chain(b.Next)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, ast.NewScript(ast.NewNode(eventKind(b.Opcode), fields...), body...))
		default:
			start := id
			body, err := c.chain(&start)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, ast.NewScript(nil, body...))
		}
	}

	return ast.NewActor(target.Name, append(variables, lists...), scripts, procedures), nil
}

// declarationNames reads {"id": ["name", value, ...]} in file order.
func declarationNames(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	keys, err := objectKeys(raw)
	if err != nil {
		return nil, err
	}
	var entries map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if entry := entries[k]; len(entry) > 0 {
			names = append(names, rawString(entry[0]))
		}
	}
	return names, nil
}

type scratchConverter struct {
	table *blockTable
	// blocks currently being converted
	active map[string]bool
}

func newScratchConverter(table *blockTable) *scratchConverter {
	return &scratchConverter{table: table, active: map[string]bool{}}
}

// enter marks id as being converted; a block reached again through its own
// inputs is a cycle.
func (c *scratchConverter) enter(id string) error {
	if c.active[id] {
		return fmt.Errorf("block %s: %w", id, ErrBlockCycle)
	}
	c.active[id] = true
	return nil
}

func (c *scratchConverter) leave(id string) {
	delete(c.active, id)
}

// chain follows next pointers from id and converts each statement.
func (c *scratchConverter) chain(id *string) ([]*ast.Node, error) {
	var stmts []*ast.Node
	seen := map[string]bool{}
	for id != nil {
		if seen[*id] {
			return nil, fmt.Errorf("block %s: %w", *id, ErrBlockCycle)
		}
		seen[*id] = true
		b, ok := c.table.blocks[*id]
		if !ok {
			break
		}
		stmt, err := c.statement(*id, b)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		id = b.Next
	}
	return stmts, nil
}

func (c *scratchConverter) statement(id string, b *scratchBlock) (*ast.Node, error) {
	kind := blockKind(b.Opcode, false)
	if b.Opcode == "control_stop" {
		option := c.fieldValue(b, "STOP_OPTION")
		if name, ok := stopKinds[option]; ok {
			kind = ast.LookupKind(name)
		}
		return ast.NewNode(kind), nil
	}
	if err := c.enter(id); err != nil {
		return nil, err
	}
	defer c.leave(id)

	var children []*ast.Node
	if b.Opcode == "procedures_call" && b.Mutation != nil {
		children = append(children, ast.Ident(b.Mutation.ProcCode))
	}
	rest, err := c.children(b)
	if err != nil {
		return nil, err
	}
	return ast.NewNode(kind, append(children, rest...)...), nil
}

func (c *scratchConverter) procedure(b *scratchBlock) (*ast.Procedure, error) {
	name := ""
	var params []string
	inputs, _ := orderedEntries(b.Inputs)
	for _, in := range inputs {
		if in.key != "custom_block" {
			continue
		}
		var slot []json.RawMessage
		if json.Unmarshal(in.value, &slot) != nil || len(slot) < 2 {
			continue
		}
		proto, ok := c.table.blocks[rawString(slot[1])]
		if !ok || proto.Mutation == nil {
			continue
		}
		name = proto.Mutation.ProcCode
		if argNames := proto.Mutation.ArgumentNames; argNames != "" {
			if err := json.Unmarshal([]byte(argNames), &params); err != nil {
				return nil, fmt.Errorf("procedure %q: argument names: %w", name, err)
			}
		}
	}
	body, err := c.chain(b.Next)
	if err != nil {
		return nil, fmt.Errorf("procedure %q: %w", name, err)
	}
	return ast.NewProcedure(name, params, body...), nil
}

// children converts inputs then fields in file order.
func (c *scratchConverter) children(b *scratchBlock) ([]*ast.Node, error) {
	var out []*ast.Node
	inputs, _ := orderedEntries(b.Inputs)
	for _, in := range inputs {
		n, err := c.input(in.key, in.value)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	fields, _ := orderedEntries(b.Fields)
	for _, f := range fields {
		if n := fieldNode(f.key, f.value); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// input converts one input slot: [shadowType, value, shadowValue?].
func (c *scratchConverter) input(name string, raw json.RawMessage) (*ast.Node, error) {
	var slot []json.RawMessage
	if err := json.Unmarshal(raw, &slot); err != nil || len(slot) < 2 {
		return nil, nil
	}

	if strings.HasPrefix(name, "SUBSTACK") {
		if isNull(slot[1]) {
			return ast.List(), nil
		}
		id := rawString(slot[1])
		stmts, err := c.chain(&id)
		if err != nil {
			return nil, err
		}
		return ast.List(stmts...), nil
	}

	value := slot[1]
	if isNull(value) && len(slot) > 2 {
		value = slot[2]
	}
	return c.value(value)
}

// value converts a block reference or a primitive array.
func (c *scratchConverter) value(raw json.RawMessage) (*ast.Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	if raw[0] == '"' {
		return c.reporter(rawString(raw))
	}

	var prim []json.RawMessage
	if err := json.Unmarshal(raw, &prim); err != nil || len(prim) < 2 {
		return nil, nil
	}
	var kind int
	if err := json.Unmarshal(prim[0], &kind); err != nil {
		return nil, nil
	}
	text := rawString(prim[1])
	switch {
	case kind >= 4 && kind <= 8:
		return ast.Num(text), nil
	case kind == 9:
		return &ast.Node{Kind: ast.KindColorLiteral, Value: text}, nil
	case kind == 10:
		return ast.Str(text), nil
	case kind == 11:
		return ast.NewNode(ast.LookupKind("Message"), ast.Ident(text)), nil
	case kind == 12 || kind == 13:
		return ast.NewNode(ast.LookupKind("Variable"), ast.Ident(text)), nil
	default:
		return ast.Str(text), nil
	}
}

func (c *scratchConverter) reporter(id string) (*ast.Node, error) {
	b, ok := c.table.blocks[id]
	if !ok {
		return nil, nil
	}
	if b.Shadow {
		// menus carry their choice as the only field
		fields, _ := orderedEntries(b.Fields)
		if len(fields) == 0 {
			return nil, nil
		}
		return ast.Str(firstString(fields[0].value)), nil
	}
	if err := c.enter(id); err != nil {
		return nil, err
	}
	defer c.leave(id)

	children, err := c.children(b)
	if err != nil {
		return nil, err
	}
	return ast.NewNode(blockKind(b.Opcode, true), children...), nil
}

func (c *scratchConverter) fieldValue(b *scratchBlock, name string) string {
	fields, _ := orderedEntries(b.Fields)
	for _, f := range fields {
		if f.key == name {
			return firstString(f.value)
		}
	}
	return ""
}

// fieldNode converts a field: [value, id?].
func fieldNode(name string, raw json.RawMessage) *ast.Node {
	value := firstString(raw)
	switch name {
	case "VARIABLE", "LIST", "BROADCAST_OPTION", "PROPERTY":
		return ast.Ident(value)
	case "STOP_OPTION":
		return nil
	default:
		return ast.Str(value)
	}
}

type entry struct {
	key   string
	value json.RawMessage
}

// orderedEntries decodes a JSON object keeping member order.
func orderedEntries(raw json.RawMessage) ([]entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("expected object")
	}
	var out []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		out = append(out, entry{key: key, value: value})
	}
	return out, nil
}

// objectKeys returns the member names of a JSON object in order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	entries, err := orderedEntries(raw)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// rawString returns a JSON string's value or the raw text of other scalars.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// firstString returns the first element of a JSON array as text.
func firstString(raw json.RawMessage) string {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return ""
	}
	return rawString(arr[0])
}
