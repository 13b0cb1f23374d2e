package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// rawDeclaration is a name plus span recorded during the declaration walk,
// before qname construction and method classification.
type rawDeclaration struct {
	name     string
	kind     DeclarationKind
	position SourcePosition
}

// DeclarationVisitor performs the first traversal of a file: one walk that
// records class and function definitions with their source spans.
//
// A function definition is recorded without descending into its body, so
// functions nested in functions are not captured. A class body IS traversed
// to discover the methods declared directly inside it.
type DeclarationVisitor struct {
	functions []rawDeclaration
	classes   []rawDeclaration
}

func NewDeclarationVisitor() *DeclarationVisitor {
	return &DeclarationVisitor{}
}

func (v *DeclarationVisitor) Visit(root *sitter.Node, source []byte) {
	v.walk(root, source)
}

func (v *DeclarationVisitor) walk(node *sitter.Node, source []byte) {
	switch node.Kind() {
	case "function_definition":
		if name := childFieldText(node, "name", source); name != "" {
			v.functions = append(v.functions, rawDeclaration{
				name:     name,
				kind:     KindFunction,
				position: nodePosition(node),
			})
		}
		return // do not descend: nested defs belong to the function body

	case "class_definition":
		if name := childFieldText(node, "name", source); name != "" {
			v.classes = append(v.classes, rawDeclaration{
				name:     name,
				kind:     KindClass,
				position: nodePosition(node),
			})
		}
		if body := node.ChildByFieldName("body"); body != nil {
			v.walk(body, source)
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		v.walk(node.Child(i), source)
	}
}

// Declarations classifies the recorded symbols and builds their qnames.
// A function whose line span is fully nested inside a recorded class's span
// becomes a method of that class; attribution is by span containment, not
// AST parentage, and the innermost containing class wins. Everything else
// stays a module-level function.
func (v *DeclarationVisitor) Declarations(moduleQName string) []Declaration {
	decls := make([]Declaration, 0, len(v.classes)+len(v.functions))

	for _, c := range v.classes {
		decls = append(decls, Declaration{
			Name:     c.name,
			QName:    moduleQName + "." + c.name,
			Kind:     KindClass,
			Position: c.position,
		})
	}

	for _, f := range v.functions {
		owner := v.innermostClass(f.position)
		if owner != nil {
			ownerQName := moduleQName + "." + owner.name
			decls = append(decls, Declaration{
				Name:       f.name,
				QName:      ownerQName + "." + f.name,
				Kind:       KindFunction,
				Position:   f.position,
				OwnerClass: ownerQName,
			})
			continue
		}
		decls = append(decls, Declaration{
			Name:     f.name,
			QName:    moduleQName + "." + f.name,
			Kind:     KindFunction,
			Position: f.position,
		})
	}

	return decls
}

func (v *DeclarationVisitor) innermostClass(span SourcePosition) *rawDeclaration {
	var best *rawDeclaration
	for i := range v.classes {
		c := &v.classes[i]
		if span.Line < c.position.Line || span.EndLine > c.position.EndLine {
			continue
		}
		if best == nil || spanLines(c.position) < spanLines(best.position) {
			best = c
		}
	}
	return best
}

func spanLines(p SourcePosition) int {
	return p.EndLine - p.Line
}

func childFieldText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return nodeText(child, source)
}
