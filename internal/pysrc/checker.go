// Package pysrc parses Python source with tree-sitter and extracts the
// facts the validation pipeline needs: syntactic validity and automation
// library import references.
package pysrc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError reports the first malformed construct found in a source
// text.
type SyntaxError struct {
	Line int
	Near string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("invalid syntax at line %d", e.Line)
	}
	return fmt.Sprintf("invalid syntax near %q at line %d", e.Near, e.Line)
}

// Tree wraps a parsed syntax tree together with the source it was parsed
// from, so callers can extract node text without carrying the source
// separately.
type Tree struct {
	source []byte
	tree   *sitter.Tree
}

// Root returns the root node of the parsed tree.
func (t *Tree) Root() *sitter.Node { return t.tree.RootNode() }

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte { return t.source }

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() { t.tree.Close() }

// Checker parses Python source into syntax trees.
type Checker struct {
	// tree-sitter parsers are not safe for concurrent use.
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewChecker constructs a Checker with a Python grammar.
func NewChecker() *Checker {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Checker{parser: parser}
}

// Parse parses source and returns the tree, or a *SyntaxError describing
// the first malformed construct.
func (c *Checker) Parse(ctx context.Context, source []byte) (*Tree, error) {
	c.mu.Lock()
	tree, err := c.parser.ParseCtx(ctx, nil, source)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		return nil, firstSyntaxError(root, source)
	}

	return &Tree{source: source, tree: tree}, nil
}

func firstSyntaxError(root *sitter.Node, source []byte) *SyntaxError {
	node := findErrorNode(root)
	if node == nil {
		return &SyntaxError{Line: int(root.EndPoint().Row) + 1}
	}

	near := node.Content(source)
	near = strings.TrimSpace(near)
	if len(near) > 40 {
		near = near[:40]
	}

	return &SyntaxError{
		Line: int(node.StartPoint().Row) + 1,
		Near: near,
	}
}

func findErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findErrorNode(node.Child(i)); found != nil {
			return found
		}
	}

	// The subtree reports an error but no child carries it, so this node
	// is the closest location available.
	return node
}
