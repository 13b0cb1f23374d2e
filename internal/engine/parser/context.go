package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"codegraph/internal/engine/symbols"
)

// VisitorContext is the transient per-file state of one detail pass: the
// file's identity, its source, the shared symbol table, and the edge
// accumulator. It is built by the file parser and lives for one pass only.
type VisitorContext struct {
	FileID     string
	FileQName  string
	SourcePath string
	Source     []byte
	Table      *symbols.Table
	Results    *DetailResult
}

// contextManager tracks the enclosing function or class while the
// dependency visitor descends, so every usage edge can be attributed to the
// consumer it occurs in.
type contextManager struct {
	ctx        *VisitorContext
	consumerID string
	classStack []string
}

func newContextManager(ctx *VisitorContext) *contextManager {
	return &contextManager{ctx: ctx}
}

func (m *contextManager) currentConsumerID() string {
	return m.consumerID
}

// enterFunction swaps the current consumer to the function's id for the
// duration of the body visit. The body is visited even when the function's
// own id is unresolved; usages found then attribute to no consumer and are
// dropped by the usage detector.
func (m *contextManager) enterFunction(node *sitter.Node, source []byte, visitBody func(*sitter.Node)) {
	name := childFieldText(node, "name", source)
	if name == "" {
		return
	}
	qname := m.scopeQName(name)

	previous := m.consumerID
	m.consumerID = m.ctx.Table.GetSymbolID(qname)
	m.ctx.Table.PushScope(m.consumerID)

	if body := node.ChildByFieldName("body"); body != nil {
		visitBody(body)
	}

	m.ctx.Table.PopScope()
	m.consumerID = previous
}

// enterClass pushes the class name so nested scopes build correct dotted
// qnames, then visits the body under the class's consumer id.
func (m *contextManager) enterClass(node *sitter.Node, source []byte, visitBody func(*sitter.Node)) {
	name := childFieldText(node, "name", source)
	if name == "" {
		return
	}

	m.classStack = append(m.classStack, name)
	qname := m.ctx.FileQName + "." + strings.Join(m.classStack, ".")

	previous := m.consumerID
	m.consumerID = m.ctx.Table.GetSymbolID(qname)
	m.ctx.Table.PushScope(m.consumerID)

	if body := node.ChildByFieldName("body"); body != nil {
		visitBody(body)
	}

	m.ctx.Table.PopScope()
	m.consumerID = previous
	m.classStack = m.classStack[:len(m.classStack)-1]
}

func (m *contextManager) scopeQName(name string) string {
	if len(m.classStack) > 0 {
		return m.ctx.FileQName + "." + strings.Join(m.classStack, ".") + "." + name
	}
	return m.ctx.FileQName + "." + name
}
