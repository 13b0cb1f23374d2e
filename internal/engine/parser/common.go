package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func nodePosition(node *sitter.Node) SourcePosition {
	return SourcePosition{
		Line:      int(node.StartPosition().Row) + 1,
		Column:    int(node.StartPosition().Column),
		EndLine:   int(node.EndPosition().Row) + 1,
		EndColumn: int(node.EndPosition().Column),
	}
}

// ModuleQName converts a file path into its dotted module path: the path
// relative to the project root with separators replaced by dots and the
// extension stripped. __init__ modules collapse to their package path.
func ModuleQName(projectRoot, filePath string) string {
	rel, err := filepath.Rel(projectRoot, filePath)
	if err != nil {
		rel = filePath
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
