package parser

import (
	"log/slog"

	sitter "github.com/tree-sitter/go-tree-sitter"

	cgerrors "codegraph/internal/core/errors"
	"codegraph/internal/engine/symbols"
)

// FileParser coordinates the two passes over a single file: the declaration
// pass that populates the symbol table and the detail pass that consumes it.
// The parsed tree is cached between passes.
type FileParser struct {
	language *sitter.Language
	cache    *ASTCache
	table    *symbols.Table
	reader   ContentReader
	root     string
}

func NewFileParser(cache *ASTCache, table *symbols.Table, reader ContentReader, projectRoot string) *FileParser {
	return &FileParser{
		language: PythonLanguage(),
		cache:    cache,
		table:    table,
		reader:   reader,
		root:     projectRoot,
	}
}

// DeclarationPass parses the source, caches the tree, and runs the
// declaration visitor. A file that fails to parse yields an empty
// declaration list and a SYNTAX_ERROR the caller reports as an issue; the
// failure never propagates beyond the file.
func (p *FileParser) DeclarationPass(path string, content []byte) ([]Declaration, error) {
	tree, err := p.parse(path, content)
	if err != nil {
		slog.Warn("declaration pass skipped", "path", path, "error", err)
		return nil, err
	}

	visitor := NewDeclarationVisitor()
	visitor.Visit(tree.RootNode(), content)
	return visitor.Declarations(ModuleQName(p.root, path)), nil
}

// DetailPass fetches the cached tree (re-reading and re-parsing on a miss),
// builds a visitor context, and runs the dependency visitor. I/O or syntax
// failures yield an empty result plus an error for issue reporting.
func (p *FileParser) DetailPass(path, fileID string) (*DetailResult, error) {
	result := &DetailResult{}

	tree, source, ok := p.cache.Get(path)
	if !ok {
		content, err := p.reader.ReadFile(path)
		if err != nil {
			slog.Warn("detail pass skipped, file unreadable", "path", path, "error", err)
			return result, cgerrors.Wrap(err, cgerrors.CodeIOError, "read file for detail pass")
		}
		tree, err = p.parse(path, content)
		if err != nil {
			slog.Warn("detail pass skipped", "path", path, "error", err)
			return result, err
		}
		source = content
	}

	ctx := &VisitorContext{
		FileID:     fileID,
		FileQName:  ModuleQName(p.root, path),
		SourcePath: path,
		Source:     source,
		Table:      p.table,
		Results:    result,
	}

	NewDependencyVisitor(ctx).Visit(tree.RootNode())
	return result, nil
}

// ModulePath exposes the dotted module path for a file under this parser's
// project root.
func (p *FileParser) ModulePath(path string) string {
	return ModuleQName(p.root, path)
}

func (p *FileParser) parse(path string, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, cgerrors.New(cgerrors.CodeSyntaxError, "parse produced no tree")
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, cgerrors.New(cgerrors.CodeSyntaxError, "source contains syntax errors")
	}

	p.cache.Set(path, tree, content)
	return tree, nil
}
