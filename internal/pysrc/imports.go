package pysrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Reference is one import of the automation library found in a script.
// Symbol is empty for a bare module import (`import x.y`); for
// `from x.y import z` it names the imported attribute.
type Reference struct {
	Module string
	Symbol string
}

// Path returns the dotted path the reference resolves against.
func (r Reference) Path() string {
	if r.Symbol == "" {
		return r.Module
	}
	return r.Module + "." + r.Symbol
}

// CollectImports walks the tree and returns every import reference whose
// module path contains token, in source order.
func CollectImports(tree *Tree, token string) []Reference {
	var refs []Reference
	collectImports(tree.Root(), tree.Source(), token, &refs)
	return refs
}

func collectImports(node *sitter.Node, source []byte, token string, refs *[]Reference) {
	switch node.Type() {
	case "import_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			module := importedModule(node.NamedChild(i), source)
			if module != "" && strings.Contains(module, token) {
				*refs = append(*refs, Reference{Module: module})
			}
		}
		return
	case "import_from_statement":
		collectFromImport(node, source, token, refs)
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectImports(node.NamedChild(i), source, token, refs)
	}
}

func collectFromImport(node *sitter.Node, source []byte, token string, refs *[]Reference) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}

	module := moduleNode.Content(source)
	if !strings.Contains(module, token) {
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Equal(moduleNode) {
			continue
		}

		switch child.Type() {
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				*refs = append(*refs, Reference{Module: module, Symbol: name.Content(source)})
			}
		case "dotted_name", "identifier":
			*refs = append(*refs, Reference{Module: module, Symbol: child.Content(source)})
		case "wildcard_import":
			*refs = append(*refs, Reference{Module: module, Symbol: "*"})
		}
	}
}

func importedModule(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "dotted_name":
		return node.Content(source)
	case "aliased_import":
		if name := node.ChildByFieldName("name"); name != nil {
			return name.Content(source)
		}
	}
	return ""
}
