package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// usageDetector turns name and attribute references into unresolved usage
// edges. A usage without an enclosing consumer is dropped; a name that
// traces to no import is silently skipped, never an error.
type usageDetector struct {
	ctx      *VisitorContext
	consumer func() string
	imports  *importProcessor
}

func newUsageDetector(ctx *VisitorContext, consumer func() string, imports *importProcessor) *usageDetector {
	return &usageDetector{ctx: ctx, consumer: consumer, imports: imports}
}

// detectName handles a bare identifier in read position, like Request after
// `from fastapi import Request`.
func (d *usageDetector) detectName(node *sitter.Node, source []byte) {
	consumerID := d.consumer()
	if consumerID == "" {
		return
	}

	name := nodeText(node, source)
	resolved := d.ctx.Table.ResolveImportQName(d.ctx.FileID, name)
	if resolved == "" {
		return
	}

	d.emit(consumerID, resolved, name, name, nodePosition(node))
}

// detectAttribute handles a dotted chain like np.array. The chain is
// reconstructed back to its root simple name; chains rooted in anything
// else (a call result, a subscript) are unresolvable and skipped. Reports
// whether an edge was emitted, so the walker knows not to descend and
// re-emit for inner sub-chains.
func (d *usageDetector) detectAttribute(node *sitter.Node, source []byte) bool {
	consumerID := d.consumer()
	if consumerID == "" {
		return false
	}

	chain := attributeChain(node, source)
	if len(chain) == 0 {
		return false
	}

	base := chain[0]
	resolved := d.ctx.Table.ResolveImportQName(d.ctx.FileID, base)
	if resolved == "" {
		return false
	}

	target := resolved
	if len(chain) > 1 {
		target = resolved + "." + strings.Join(chain[1:], ".")
	}

	d.emit(consumerID, target, chain[len(chain)-1], base, nodePosition(node))
	return true
}

// detectCall emits an unresolved call edge when the callee chain resolves
// through the import map or to a symbol declared in this file.
func (d *usageDetector) detectCall(node *sitter.Node, source []byte) {
	consumerID := d.consumer()
	if consumerID == "" {
		return
	}

	callee := node.ChildByFieldName("function")
	if callee == nil {
		return
	}

	var chain []string
	switch callee.Kind() {
	case "identifier":
		chain = []string{nodeText(callee, source)}
	case "attribute":
		chain = attributeChain(callee, source)
	}
	if len(chain) == 0 {
		return
	}

	target := ""
	if resolved := d.ctx.Table.ResolveImportQName(d.ctx.FileID, chain[0]); resolved != "" {
		target = resolved
		if len(chain) > 1 {
			target = resolved + "." + strings.Join(chain[1:], ".")
		}
	} else {
		local := d.ctx.FileQName + "." + strings.Join(chain, ".")
		if d.ctx.Table.GetSymbolID(local) != "" {
			target = local
		}
	}
	if target == "" {
		return
	}

	d.ctx.Results.Calls = append(d.ctx.Results.Calls, Call{
		ConsumerID:  consumerID,
		TargetQName: target,
		Kind:        callKind(chain),
		Position:    nodePosition(node),
	})
}

func (d *usageDetector) emit(consumerID, target, symbol, alias string, usagePos SourcePosition) {
	importPos, module, ok := d.imports.importPosition(alias)
	if !ok {
		importPos = usagePos
	}
	if module == "" {
		module = strings.SplitN(target, ".", 2)[0]
	}

	d.ctx.Results.Usages = append(d.ctx.Results.Usages, ImportUsage{
		ConsumerID:     consumerID,
		TargetQName:    target,
		TargetSymbol:   symbol,
		Alias:          alias,
		Module:         module,
		ImportPosition: importPos,
		UsagePositions: []SourcePosition{usagePos},
	})
}

// attributeChain reconstructs a.b.c as ["a","b","c"] by walking nested
// attribute nodes back to a root simple name. Returns nil for chains rooted
// in anything else, e.g. f().b.
func attributeChain(node *sitter.Node, source []byte) []string {
	var reversed []string
	current := node
	for current.Kind() == "attribute" {
		attr := current.ChildByFieldName("attribute")
		if attr == nil {
			return nil
		}
		reversed = append(reversed, nodeText(attr, source))
		current = current.ChildByFieldName("object")
		if current == nil {
			return nil
		}
	}
	if current.Kind() != "identifier" {
		return nil
	}
	reversed = append(reversed, nodeText(current, source))

	chain := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		chain = append(chain, reversed[i])
	}
	return chain
}

func callKind(chain []string) CallKind {
	last := chain[len(chain)-1]
	r, _ := utf8.DecodeRuneInString(last)
	if unicode.IsUpper(r) {
		return CallConstructor
	}
	if len(chain) > 1 {
		return CallMethod
	}
	return CallDirect
}
