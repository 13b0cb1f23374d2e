// Package ports defines the contracts between the analysis engine and its
// collaborators: the graph store that persists nodes and edges, and the
// source of raw file content.
package ports

import (
	"context"

	"codegraph/internal/engine/parser"
)

type NodeKind string

const (
	NodeProject  NodeKind = "project"
	NodeFolder   NodeKind = "folder"
	NodeFile     NodeKind = "file"
	NodeFunction NodeKind = "function"
	NodeClass    NodeKind = "class"
	NodePackage  NodeKind = "package"
	NodeVariable NodeKind = "variable"
)

type EdgeKind string

const (
	EdgeContains   EdgeKind = "contains"
	EdgeBelongsTo  EdgeKind = "belongs_to"
	EdgeCalls      EdgeKind = "calls"
	EdgeUsesImport EdgeKind = "uses_import"
	EdgeImplements EdgeKind = "implements"
	EdgeInherits   EdgeKind = "inherits"
	EdgeDefines    EdgeKind = "defines"
	EdgeExecutes   EdgeKind = "executes"
)

// Node is one declaration record. The id is assigned by the store on
// creation; the qname is the only resolution key before that.
type Node struct {
	ID       string
	Kind     NodeKind
	Name     string
	QName    string
	Path     string // source file (or directory) the node came from
	Position *parser.SourcePosition
}

// Edge is one directed relation between two persisted nodes.
type Edge struct {
	ID   string
	From string
	To   string
	Kind EdgeKind

	Order          int    // Contains ordering among siblings
	TargetQName    string // UsesImport / Calls provenance
	TargetSymbol   string
	Alias          string
	CallKind       string
	Position       *parser.SourcePosition // call site
	ImportPosition *parser.SourcePosition
	UsagePositions []parser.SourcePosition
}

// NodeFilter matches on any non-zero field.
type NodeFilter struct {
	Kind  NodeKind
	QName string
	Path  string
}

// EdgeFilter matches on any non-zero field.
type EdgeFilter struct {
	Kind EdgeKind
	From string
	To   string
}

type Direction string

const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// GraphStore persists the analysis graph. Create operations assign ids and
// return the stored record.
type GraphStore interface {
	CreateNode(ctx context.Context, node Node) (Node, error)
	GetNode(ctx context.Context, id string) (Node, error)
	FindNodes(ctx context.Context, filter NodeFilter) ([]Node, error)
	CreateEdge(ctx context.Context, edge Edge) (Edge, error)
	FindEdges(ctx context.Context, filter EdgeFilter) ([]Edge, error)
	// Related follows edges of one kind from a node and returns the nodes
	// on the far side.
	Related(ctx context.Context, nodeID string, kind EdgeKind, dir Direction) ([]Node, error)
	// DeleteBySourceFile removes the declarations extracted from one source
	// file together with their edges, ahead of re-analysis. File, folder,
	// project, and package nodes stay.
	DeleteBySourceFile(ctx context.Context, path string) error
	Close() error
}

// FileSource yields raw UTF-8 file content by path.
type FileSource interface {
	ReadFile(path string) ([]byte, error)
}
