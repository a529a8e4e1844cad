package source

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// Declaration is a type-like symbol declared in a source file.
type Declaration struct {
	// Name is the fully qualified name without a leading separator.
	Name string
	// Kind is one of "class", "interface", "trait" or "enum".
	Kind string
	// Line is the 1-based line of the declaration.
	Line int
}

var declarationKinds = map[string]string{
	"class_declaration":     "class",
	"interface_declaration": "interface",
	"trait_declaration":     "trait",
	"enum_declaration":      "enum",
}

// Scanner extracts declarations from PHP source. A Scanner is not safe for
// concurrent use.
type Scanner struct {
	parser *sitter.Parser
}

// NewScanner returns a Scanner for PHP.
func NewScanner() *Scanner {
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())
	return &Scanner{parser: parser}
}

// Scan parses content and returns its declarations in source order.
// Syntax errors do not fail the scan; declarations outside the damaged
// region are still reported.
func (s *Scanner) Scan(ctx context.Context, content []byte) ([]Declaration, error) {
	tree, err := s.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var decls []Declaration
	s.walk(tree.RootNode(), content, "", &decls)
	return decls, nil
}

// walk visits the named children of node. A statement-form namespace
// applies to the siblings that follow it; a braced namespace only to its
// body.
func (s *Scanner) walk(node *sitter.Node, content []byte, namespace string, decls *[]Declaration) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "namespace_definition":
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = strings.Trim(n.Content(content), `\ `)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				s.walk(body, content, name, decls)
				continue
			}
			namespace = name

		case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
			n := child.ChildByFieldName("name")
			if n == nil {
				continue
			}
			name := n.Content(content)
			if namespace != "" {
				name = namespace + `\` + name
			}
			*decls = append(*decls, Declaration{
				Name: name,
				Kind: declarationKinds[child.Type()],
				Line: int(child.StartPoint().Row) + 1,
			})

		case "compound_statement", "if_statement", "else_clause", "else_if_clause":
			// Conditional declarations still count once the file is read.
			s.walk(child, content, namespace, decls)
		}
	}
}
