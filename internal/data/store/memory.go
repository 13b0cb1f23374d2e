// Package store provides the graph persistence collaborators: an in-memory
// store used by tests and single-shot runs, and a SQLite-backed store for
// runs that survive the process.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	cgerrors "codegraph/internal/core/errors"
	"codegraph/internal/core/ports"
)

type Memory struct {
	mu    sync.RWMutex
	nodes map[string]ports.Node
	edges map[string]ports.Edge
}

var _ ports.GraphStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[string]ports.Node),
		edges: make(map[string]ports.Edge),
	}
}

func (s *Memory) CreateNode(_ context.Context, node ports.Node) (ports.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	s.nodes[node.ID] = node
	return node, nil
}

func (s *Memory) GetNode(_ context.Context, id string) (ports.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return ports.Node{}, cgerrors.New(cgerrors.CodeNotFound, "node not found")
	}
	return node, nil
}

func (s *Memory) FindNodes(_ context.Context, filter ports.NodeFilter) ([]ports.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ports.Node
	for _, node := range s.nodes {
		if matchNode(node, filter) {
			out = append(out, node)
		}
	}
	return out, nil
}

func (s *Memory) CreateEdge(_ context.Context, edge ports.Edge) (ports.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	s.edges[edge.ID] = edge
	return edge, nil
}

func (s *Memory) FindEdges(_ context.Context, filter ports.EdgeFilter) ([]ports.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ports.Edge
	for _, edge := range s.edges {
		if matchEdge(edge, filter) {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (s *Memory) Related(_ context.Context, nodeID string, kind ports.EdgeKind, dir ports.Direction) ([]ports.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ports.Node
	for _, edge := range s.edges {
		if kind != "" && edge.Kind != kind {
			continue
		}
		var farID string
		switch {
		case dir != ports.DirectionIn && edge.From == nodeID:
			farID = edge.To
		case dir != ports.DirectionOut && edge.To == nodeID:
			farID = edge.From
		default:
			continue
		}
		if node, ok := s.nodes[farID]; ok {
			out = append(out, node)
		}
	}
	return out, nil
}

func (s *Memory) DeleteBySourceFile(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[string]bool)
	for id, node := range s.nodes {
		if node.Path != path {
			continue
		}
		if node.Kind != ports.NodeFunction && node.Kind != ports.NodeClass && node.Kind != ports.NodeVariable {
			continue
		}
		removed[id] = true
		delete(s.nodes, id)
	}
	for id, edge := range s.edges {
		if removed[edge.From] || removed[edge.To] {
			delete(s.edges, id)
		}
	}
	return nil
}

func (s *Memory) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Memory) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

func (s *Memory) Close() error {
	return nil
}

func matchNode(node ports.Node, f ports.NodeFilter) bool {
	if f.Kind != "" && node.Kind != f.Kind {
		return false
	}
	if f.QName != "" && node.QName != f.QName {
		return false
	}
	if f.Path != "" && node.Path != f.Path {
		return false
	}
	return true
}

func matchEdge(edge ports.Edge, f ports.EdgeFilter) bool {
	if f.Kind != "" && edge.Kind != f.Kind {
		return false
	}
	if f.From != "" && edge.From != f.From {
		return false
	}
	if f.To != "" && edge.To != f.To {
		return false
	}
	return true
}
