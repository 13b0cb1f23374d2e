package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DependencyVisitor is the second traversal of a file. It composes the
// import processor, the consumer context manager, and the usage detector
// into one walk over a closed set of node kinds, accumulating unresolved
// edges into the visitor context.
type DependencyVisitor struct {
	ctx     *VisitorContext
	imports *importProcessor
	scopes  *contextManager
	usage   *usageDetector
}

func NewDependencyVisitor(ctx *VisitorContext) *DependencyVisitor {
	v := &DependencyVisitor{ctx: ctx}
	v.imports = newImportProcessor(ctx)
	v.scopes = newContextManager(ctx)
	v.usage = newUsageDetector(ctx, v.scopes.currentConsumerID, v.imports)
	return v
}

func (v *DependencyVisitor) Visit(root *sitter.Node) {
	v.walk(root)
}

func (v *DependencyVisitor) walk(node *sitter.Node) {
	source := v.ctx.Source

	switch node.Kind() {
	case "import_statement":
		v.imports.processImport(node, source)
		return

	case "import_from_statement":
		v.imports.processFromImport(node, source)
		return

	case "function_definition":
		v.scopes.enterFunction(node, source, v.walk)
		return

	case "class_definition":
		v.scopes.enterClass(node, source, v.walk)
		return

	case "assignment", "augmented_assignment":
		// Assignment targets are not usages; only the value side is read.
		if right := node.ChildByFieldName("right"); right != nil {
			v.walk(right)
		}
		return

	case "for_statement":
		// Skip the loop target, visit the iterable and the body.
		if right := node.ChildByFieldName("right"); right != nil {
			v.walk(right)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			v.walk(body)
		}
		return

	case "keyword_argument":
		if value := node.ChildByFieldName("value"); value != nil {
			v.walk(value)
		}
		return

	case "parameters":
		return

	case "call":
		v.usage.detectCall(node, source)
		// fall through to children: the callee chain still produces a
		// usage edge and arguments may contain further usages

	case "identifier":
		v.usage.detectName(node, source)
		return

	case "attribute":
		if v.usage.detectAttribute(node, source) {
			return
		}
		// unresolvable root: descend so inner expressions are still scanned
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		v.walk(node.Child(i))
	}
}
