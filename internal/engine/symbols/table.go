// Package symbols holds the resolution engine that turns free-text names
// into globally unique qualified identities. One Table is owned by the
// orchestrator for the lifetime of a run and passed by reference; there is
// no process-wide instance.
package symbols

import (
	"strings"
	"sync"
)

type Table struct {
	mu sync.RWMutex

	qnameToID   map[string]string
	fileImports map[string]map[string]string // file id -> alias -> qname
	scopeStack  []string
	packages    map[string]bool // qnames with a materialized package node
}

func NewTable() *Table {
	return &Table{
		qnameToID:   make(map[string]string),
		fileImports: make(map[string]map[string]string),
		packages:    make(map[string]bool),
	}
}

// AddSymbol registers a qname to id mapping. The upsert is idempotent and
// last write wins, which is how placeholder package ids get reconciled to
// persisted ones.
func (t *Table) AddSymbol(qname, id string) {
	if qname == "" || id == "" {
		return
	}
	t.mu.Lock()
	t.qnameToID[qname] = id
	t.mu.Unlock()
}

// GetSymbolID returns the id registered for qname, or "" when unknown.
// An unresolved lookup is never an error.
func (t *Table) GetSymbolID(qname string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.qnameToID[qname]
}

// AddImport upserts one alias in a file's import map.
func (t *Table) AddImport(fileID, alias, qname string) {
	if fileID == "" || alias == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.fileImports[fileID]
	if !ok {
		m = make(map[string]string)
		t.fileImports[fileID] = m
	}
	m[alias] = qname
}

// ResolveImportQName is an exact O(1) lookup of an alias in one file's
// import map. Returns "" when the alias is not an import.
func (t *Table) ResolveImportQName(fileID, name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fileImports[fileID][name]
}

// FileImports returns a copy of one file's alias map.
func (t *Table) FileImports(fileID string) map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.fileImports[fileID]))
	for alias, qname := range t.fileImports[fileID] {
		out[alias] = qname
	}
	return out
}

// ClearFileImports drops one file's alias map ahead of re-analysis.
func (t *Table) ClearFileImports(fileID string) {
	t.mu.Lock()
	delete(t.fileImports, fileID)
	t.mu.Unlock()
}

// ClearSymbol removes one qname mapping ahead of re-analysis.
func (t *Table) ClearSymbol(qname string) {
	t.mu.Lock()
	delete(t.qnameToID, qname)
	t.mu.Unlock()
}

// IsLocalModule decides whether a dotted qname belongs to the analyzed
// project. Three tiers, first match wins:
//  1. the qname itself is registered;
//  2. some non-empty proper dotted prefix is registered (a symbol inside
//     a known module, e.g. a.b for a.b.c);
//  3. some registered qname extends qname+"." (a package whose inner
//     modules are known even though the package itself has no node).
func (t *Table) IsLocalModule(qname string) bool {
	if qname == "" {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, ok := t.qnameToID[qname]; ok {
		return true
	}

	parts := strings.Split(qname, ".")
	for i := len(parts) - 1; i > 0; i-- {
		prefix := strings.Join(parts[:i], ".")
		if _, ok := t.qnameToID[prefix]; ok {
			return true
		}
	}

	childPrefix := qname + "."
	for known := range t.qnameToID {
		if strings.HasPrefix(known, childPrefix) {
			return true
		}
	}
	return false
}

// GetOrCreatePackageID returns the id registered for an external package
// qname, synthesizing and registering a deterministic placeholder when none
// exists. Repeated lookups within one run are stable prior to persistence.
func (t *Table) GetOrCreatePackageID(qname string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.qnameToID[qname]; ok {
		return id
	}
	id := "package_" + sanitizeQName(qname)
	t.qnameToID[qname] = id
	return id
}

// MarkPackageMaterialized records that a real Package node has been
// persisted for qname. Returns false when it already was, so a package node
// is created at most once per run.
func (t *Table) MarkPackageMaterialized(qname string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.packages[qname] {
		return false
	}
	t.packages[qname] = true
	return true
}

func (t *Table) PushScope(scopeID string) {
	t.mu.Lock()
	t.scopeStack = append(t.scopeStack, scopeID)
	t.mu.Unlock()
}

// PopScope removes and returns the innermost scope id. Popping an empty
// stack returns "", never an error.
func (t *Table) PopScope() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.scopeStack) == 0 {
		return ""
	}
	id := t.scopeStack[len(t.scopeStack)-1]
	t.scopeStack = t.scopeStack[:len(t.scopeStack)-1]
	return id
}

// CurrentScope returns the innermost scope id without removing it.
func (t *Table) CurrentScope() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.scopeStack) == 0 {
		return ""
	}
	return t.scopeStack[len(t.scopeStack)-1]
}

// SymbolCount reports how many qnames are registered.
func (t *Table) SymbolCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.qnameToID)
}

func sanitizeQName(qname string) string {
	var b strings.Builder
	b.Grow(len(qname))
	for _, r := range qname {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
