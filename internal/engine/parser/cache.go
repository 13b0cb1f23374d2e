package parser

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type cacheEntry struct {
	tree   *sitter.Tree
	source []byte
}

// ASTCache memoizes one parsed tree per file path so the dependency pass
// does not re-read and re-parse files the declaration pass already handled.
// Evicted trees are closed; callers must not retain nodes past eviction.
type ASTCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewASTCache() *ASTCache {
	return &ASTCache{entries: make(map[string]cacheEntry)}
}

func (c *ASTCache) Get(path string) (*sitter.Tree, []byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return nil, nil, false
	}
	return e.tree, e.source, true
}

func (c *ASTCache) Set(path string, tree *sitter.Tree, source []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[path]; ok && prev.tree != nil {
		prev.tree.Close()
	}
	c.entries[path] = cacheEntry{tree: tree, source: source}
}

func (c *ASTCache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok {
		if e.tree != nil {
			e.tree.Close()
		}
		delete(c.entries, path)
	}
}

func (c *ASTCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached tree, typically at the end of a run.
func (c *ASTCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, e := range c.entries {
		if e.tree != nil {
			e.tree.Close()
		}
		delete(c.entries, path)
	}
}
