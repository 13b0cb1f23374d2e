package parser

import (
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"codegraph/internal/engine/symbols"
)

func parseSource(t *testing.T, source string) (*sitter.Tree, []byte) {
	t.Helper()

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(PythonLanguage())

	tree := p.Parse([]byte(source), nil)
	if tree == nil {
		t.Fatal("parse produced no tree")
	}
	t.Cleanup(tree.Close)
	return tree, []byte(source)
}

// runDetail parses source and runs the dependency visitor over it with a
// fresh table seeded by the caller.
func runDetail(t *testing.T, source, fileQName string, seed func(*symbols.Table)) *DetailResult {
	t.Helper()

	tree, src := parseSource(t, source)
	table := symbols.NewTable()
	if seed != nil {
		seed(table)
	}

	result := &DetailResult{}
	ctx := &VisitorContext{
		FileID:     "file-1",
		FileQName:  fileQName,
		SourcePath: fileQName,
		Source:     src,
		Table:      table,
		Results:    result,
	}
	NewDependencyVisitor(ctx).Visit(tree.RootNode())
	return result
}
