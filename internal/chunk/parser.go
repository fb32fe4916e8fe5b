package chunk

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Point is a zero-based row/column position within a source file.
type Point struct {
	Row    uint32
	Column uint32
}

// Node is our own copy of a parsed AST node, detached from the
// tree-sitter C bindings so it can be walked without holding the
// parser's tree alive.
type Node struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
	HasError   bool
	Children   []*Node
}

// Tree is a parsed source file.
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
}

// Parser wraps tree-sitter parsing for the languages in the registry.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser. Close it when done.
func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse parses source with the grammar registered for language. It
// returns ok=false when no grammar is registered for the language, in
// which case the caller should fall back to the text chunker.
func (p *Parser) Parse(ctx context.Context, source []byte, language string) (*Tree, bool, error) {
	def, ok := grammarFor(language)
	if !ok {
		return nil, false, nil
	}

	p.parser.SetLanguage(def.grammar)
	tsTree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, true, fmt.Errorf("parsing %s source: %w", language, err)
	}
	if tsTree == nil {
		return nil, true, fmt.Errorf("parsing %s source: nil tree", language)
	}
	defer tsTree.Close()

	root := convertNode(tsTree.RootNode())
	return &Tree{Root: root, Source: source, Language: language}, true, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

func convertNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	node := &Node{
		Type:      tsNode.Type(),
		StartByte: tsNode.StartByte(),
		EndByte:   tsNode.EndByte(),
		StartPoint: Point{
			Row:    tsNode.StartPoint().Row,
			Column: tsNode.StartPoint().Column,
		},
		EndPoint: Point{
			Row:    tsNode.EndPoint().Row,
			Column: tsNode.EndPoint().Column,
		},
		HasError: tsNode.HasError(),
		Children: make([]*Node, 0, int(tsNode.ChildCount())),
	}
	for i := uint32(0); i < tsNode.ChildCount(); i++ {
		if child := tsNode.Child(int(i)); child != nil {
			node.Children = append(node.Children, convertNode(child))
		}
	}
	return node
}

// GetContent returns the source slice spanned by the node.
func (n *Node) GetContent(source []byte) string {
	if n.StartByte >= n.EndByte || int(n.EndByte) > len(source) {
		return ""
	}
	return string(source[n.StartByte:n.EndByte])
}

// Walk traverses the tree depth-first, calling fn for each node. If fn
// returns false the node's children are skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}
