package store

import (
	"context"
	"path/filepath"
	"testing"

	"codegraph/internal/core/ports"
	"codegraph/internal/engine/parser"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteNodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, err := s.CreateNode(ctx, ports.Node{
		Kind:  ports.NodeClass,
		Name:  "User",
		QName: "app.models.User",
		Path:  "/proj/app/models.py",
		Position: &parser.SourcePosition{
			Line: 10, Column: 0, EndLine: 42, EndColumn: 4,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetNode(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != ports.NodeClass || got.Name != "User" || got.QName != "app.models.User" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Position == nil || got.Position.Line != 10 || got.Position.EndLine != 42 {
		t.Errorf("position mismatch: %+v", got.Position)
	}
}

func TestSQLiteNodeWithoutPosition(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, err := s.CreateNode(ctx, ports.Node{Kind: ports.NodePackage, Name: "numpy", QName: "numpy"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetNode(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != nil {
		t.Errorf("position = %+v, want nil", got.Position)
	}
}

func TestSQLiteEdgeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	fn, _ := s.CreateNode(ctx, ports.Node{Kind: ports.NodeFunction, QName: "a.f", Path: "/p/a.py"})
	pkg, _ := s.CreateNode(ctx, ports.Node{Kind: ports.NodePackage, QName: "numpy"})

	created, err := s.CreateEdge(ctx, ports.Edge{
		From:           fn.ID,
		To:             pkg.ID,
		Kind:           ports.EdgeUsesImport,
		TargetQName:    "numpy.array",
		TargetSymbol:   "array",
		Alias:          "np",
		ImportPosition: &parser.SourcePosition{Line: 1},
		UsagePositions: []parser.SourcePosition{{Line: 4, Column: 11}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("store did not assign an edge id")
	}

	edges, err := s.FindEdges(ctx, ports.EdgeFilter{Kind: ports.EdgeUsesImport, From: fn.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	edge := edges[0]
	if edge.TargetQName != "numpy.array" || edge.Alias != "np" {
		t.Errorf("edge fields mismatch: %+v", edge)
	}
	if edge.ImportPosition == nil || edge.ImportPosition.Line != 1 {
		t.Errorf("import position mismatch: %+v", edge.ImportPosition)
	}
	if len(edge.UsagePositions) != 1 || edge.UsagePositions[0].Line != 4 {
		t.Errorf("usage positions mismatch: %+v", edge.UsagePositions)
	}
}

func TestSQLiteRelated(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	file, _ := s.CreateNode(ctx, ports.Node{Kind: ports.NodeFile, QName: "a"})
	fn, _ := s.CreateNode(ctx, ports.Node{Kind: ports.NodeFunction, QName: "a.f"})
	s.CreateEdge(ctx, ports.Edge{From: file.ID, To: fn.ID, Kind: ports.EdgeContains})

	out, err := s.Related(ctx, file.ID, ports.EdgeContains, ports.DirectionOut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].QName != "a.f" {
		t.Errorf("related = %+v, want a.f", out)
	}

	in, err := s.Related(ctx, fn.ID, ports.EdgeContains, ports.DirectionIn)
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 1 || in[0].QName != "a" {
		t.Errorf("related in = %+v, want a", in)
	}
}

func TestSQLiteDeleteBySourceFile(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	file, _ := s.CreateNode(ctx, ports.Node{Kind: ports.NodeFile, QName: "a", Path: "/p/a.py"})
	fn, _ := s.CreateNode(ctx, ports.Node{Kind: ports.NodeFunction, QName: "a.f", Path: "/p/a.py"})
	s.CreateEdge(ctx, ports.Edge{From: file.ID, To: fn.ID, Kind: ports.EdgeContains})

	if err := s.DeleteBySourceFile(ctx, "/p/a.py"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetNode(ctx, fn.ID); err == nil {
		t.Error("function node survived DeleteBySourceFile")
	}
	if _, err := s.GetNode(ctx, file.ID); err != nil {
		t.Error("file node should survive DeleteBySourceFile")
	}
	edges, err := s.FindEdges(ctx, ports.EdgeFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 0 {
		t.Errorf("edges survived: %+v", edges)
	}
}
