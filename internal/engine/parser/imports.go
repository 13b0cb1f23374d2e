package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// processedImport remembers which aliases one import statement introduced
// and where, so usage edges can recover the import position later.
type processedImport struct {
	aliases  []string
	module   string
	position SourcePosition
}

// importProcessor registers import statements in the shared symbol table:
// each statement contributes alias -> qname entries to the importing file's
// map.
type importProcessor struct {
	ctx       *VisitorContext
	processed []processedImport
}

func newImportProcessor(ctx *VisitorContext) *importProcessor {
	return &importProcessor{ctx: ctx}
}

// processImport handles `import X` and `import X as Y`: the alias (Y, or X
// itself) maps to the module qname X.
func (p *importProcessor) processImport(node *sitter.Node, source []byte) {
	rec := processedImport{position: nodePosition(node)}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			module := nodeText(child, source)
			p.register(&rec, module, module)
			rec.module = module
		case "aliased_import":
			module := childFieldText(child, "name", source)
			alias := childFieldText(child, "alias", source)
			if module == "" {
				continue
			}
			if alias == "" {
				alias = module
			}
			p.register(&rec, alias, module)
			rec.module = module
		}
	}

	p.processed = append(p.processed, rec)
}

// processFromImport handles `from M import S [as A]`. For relative imports
// the base is computed by walking the importing file's own dotted path up
// by the relative level. A wildcard import is recorded but registers no
// alias.
func (p *importProcessor) processFromImport(node *sitter.Node, source []byte) {
	rec := processedImport{position: nodePosition(node)}

	base := ""
	if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
		if moduleNode.Kind() == "relative_import" {
			base = p.relativeBase(moduleNode, source)
		} else {
			base = nodeText(moduleNode, source)
		}
	}
	rec.module = base

	sawImportKeyword := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "import":
			sawImportKeyword = true
		case "wildcard_import":
			p.ctx.Results.Wildcards = append(p.ctx.Results.Wildcards, WildcardImport{
				Module:   base,
				Position: nodePosition(node),
			})
		case "aliased_import":
			symbol := childFieldText(child, "name", source)
			alias := childFieldText(child, "alias", source)
			if symbol == "" {
				continue
			}
			if alias == "" {
				alias = symbol
			}
			p.register(&rec, alias, joinQName(base, symbol))
		case "dotted_name", "identifier":
			if !sawImportKeyword {
				continue // module part, handled via the field above
			}
			symbol := nodeText(child, source)
			p.register(&rec, symbol, joinQName(base, symbol))
		}
	}

	p.processed = append(p.processed, rec)
}

// relativeBase walks the importing file's dotted path up by one segment per
// leading dot, then appends the explicit module part when present.
// In pkg.sub.mod, `from .. import x` yields base pkg.
func (p *importProcessor) relativeBase(node *sitter.Node, source []byte) string {
	level := 0
	rest := ""
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "import_prefix":
			level += strings.Count(nodeText(child, source), ".")
		case "dotted_name", "identifier":
			rest = nodeText(child, source)
		}
	}

	parts := strings.Split(p.ctx.FileQName, ".")
	if level >= len(parts) {
		return rest
	}
	base := strings.Join(parts[:len(parts)-level], ".")
	return joinQName(base, rest)
}

func (p *importProcessor) register(rec *processedImport, alias, qname string) {
	p.ctx.Table.AddImport(p.ctx.FileID, alias, qname)
	rec.aliases = append(rec.aliases, alias)
}

// importPosition scans previously processed import statements for the one
// that introduced the alias; first match wins. The bool is false when no
// statement matches, in which case callers fall back to the usage position.
func (p *importProcessor) importPosition(alias string) (SourcePosition, string, bool) {
	for _, rec := range p.processed {
		for _, a := range rec.aliases {
			if a == alias {
				return rec.position, rec.module, true
			}
		}
	}
	return SourcePosition{}, "", false
}

func joinQName(base, name string) string {
	switch {
	case base == "":
		return name
	case name == "":
		return base
	default:
		return base + "." + name
	}
}
