package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	cgerrors "codegraph/internal/core/errors"
	"codegraph/internal/core/ports"
	"codegraph/internal/engine/parser"
)

const driverName = "sqlite"

// SQLite persists the graph across runs. A single connection plus WAL keeps
// watch-mode churn from tripping over lock conflicts.
type SQLite struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

var _ ports.GraphStore = (*SQLite)(nil)

func OpenSQLite(path string) (*SQLite, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("database path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("database path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database %q: %w", cleanPath, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &SQLite{path: cleanPath, db: db}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) CreateNode(ctx context.Context, node ports.Node) (ports.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node.ID == "" {
		node.ID = uuid.New().String()
	}

	line, col, endLine, endCol := positionColumns(node.Position)
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO nodes (id, kind, name, qname, path, line, col, end_line, end_col)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.ID, string(node.Kind), node.Name, node.QName, node.Path, line, col, endLine, endCol)
	if err != nil {
		return ports.Node{}, fmt.Errorf("insert node %q: %w", node.QName, err)
	}
	return node, nil
}

func (s *SQLite) GetNode(ctx context.Context, id string) (ports.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
SELECT id, kind, name, qname, path, line, col, end_line, end_col
FROM nodes WHERE id = ?`, id)

	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return ports.Node{}, cgerrors.New(cgerrors.CodeNotFound, "node not found")
	}
	if err != nil {
		return ports.Node{}, fmt.Errorf("get node %q: %w", id, err)
	}
	return node, nil
}

func (s *SQLite) FindNodes(ctx context.Context, filter ports.NodeFilter) ([]ports.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, kind, name, qname, path, line, col, end_line, end_col FROM nodes WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.QName != "" {
		query += ` AND qname = ?`
		args = append(args, filter.QName)
	}
	if filter.Path != "" {
		query += ` AND path = ?`
		args = append(args, filter.Path)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find nodes: %w", err)
	}
	defer rows.Close()

	var out []ports.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, node)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateEdge(ctx context.Context, edge ports.Edge) (ports.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}

	position, err := encodePosition(edge.Position)
	if err != nil {
		return ports.Edge{}, err
	}
	importPosition, err := encodePosition(edge.ImportPosition)
	if err != nil {
		return ports.Edge{}, err
	}
	usagePositions, err := encodePositions(edge.UsagePositions)
	if err != nil {
		return ports.Edge{}, err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO edges (id, from_id, to_id, kind, ord, target_qname, target_symbol, alias, call_kind, position, import_position, usage_positions)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		edge.ID, edge.From, edge.To, string(edge.Kind), edge.Order,
		edge.TargetQName, edge.TargetSymbol, edge.Alias, edge.CallKind,
		position, importPosition, usagePositions)
	if err != nil {
		return ports.Edge{}, fmt.Errorf("insert %s edge: %w", edge.Kind, err)
	}
	return edge, nil
}

func (s *SQLite) FindEdges(ctx context.Context, filter ports.EdgeFilter) ([]ports.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT id, from_id, to_id, kind, ord, target_qname, target_symbol, alias, call_kind, position, import_position, usage_positions
FROM edges WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.From != "" {
		query += ` AND from_id = ?`
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += ` AND to_id = ?`
		args = append(args, filter.To)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find edges: %w", err)
	}
	defer rows.Close()

	var out []ports.Edge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, edge)
	}
	return out, rows.Err()
}

func (s *SQLite) Related(ctx context.Context, nodeID string, kind ports.EdgeKind, dir ports.Direction) ([]ports.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var clauses []string
	if dir != ports.DirectionIn {
		clauses = append(clauses, `SELECT to_id AS far FROM edges WHERE from_id = ?1 AND (?2 = '' OR kind = ?2)`)
	}
	if dir != ports.DirectionOut {
		clauses = append(clauses, `SELECT from_id AS far FROM edges WHERE to_id = ?1 AND (?2 = '' OR kind = ?2)`)
	}
	query := fmt.Sprintf(`
SELECT n.id, n.kind, n.name, n.qname, n.path, n.line, n.col, n.end_line, n.end_col
FROM nodes n
WHERE n.id IN (%s)`, strings.Join(clauses, " UNION "))

	rows, err := s.db.QueryContext(ctx, query, nodeID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("related nodes: %w", err)
	}
	defer rows.Close()

	var out []ports.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan related node: %w", err)
		}
		out = append(out, node)
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteBySourceFile(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete for %q: %w", path, err)
	}

	// Only the declarations extracted from the file go; file, folder, project,
	// and package rows stay.
	if _, err := tx.Exec(`
DELETE FROM edges WHERE from_id IN (
  SELECT id FROM nodes WHERE path = ? AND kind IN ('function', 'class', 'variable')
) OR to_id IN (
  SELECT id FROM nodes WHERE path = ? AND kind IN ('function', 'class', 'variable')
)`, path, path); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete edges for %q: %w", path, err)
	}
	if _, err := tx.Exec(`
DELETE FROM nodes WHERE path = ? AND kind IN ('function', 'class', 'variable')`, path); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete nodes for %q: %w", path, err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(r rowScanner) (ports.Node, error) {
	var (
		node                  ports.Node
		kind                  string
		line, col, endL, endC sql.NullInt64
	)
	if err := r.Scan(&node.ID, &kind, &node.Name, &node.QName, &node.Path, &line, &col, &endL, &endC); err != nil {
		return ports.Node{}, err
	}
	node.Kind = ports.NodeKind(kind)
	if line.Valid {
		node.Position = &parser.SourcePosition{
			Line:      int(line.Int64),
			Column:    int(col.Int64),
			EndLine:   int(endL.Int64),
			EndColumn: int(endC.Int64),
		}
	}
	return node, nil
}

func scanEdge(r rowScanner) (ports.Edge, error) {
	var (
		edge                                     ports.Edge
		kind, position, importPosition, usageRaw string
	)
	if err := r.Scan(&edge.ID, &edge.From, &edge.To, &kind, &edge.Order,
		&edge.TargetQName, &edge.TargetSymbol, &edge.Alias, &edge.CallKind,
		&position, &importPosition, &usageRaw); err != nil {
		return ports.Edge{}, err
	}
	edge.Kind = ports.EdgeKind(kind)

	var err error
	if edge.Position, err = decodePosition(position); err != nil {
		return ports.Edge{}, err
	}
	if edge.ImportPosition, err = decodePosition(importPosition); err != nil {
		return ports.Edge{}, err
	}
	if edge.UsagePositions, err = decodePositions(usageRaw); err != nil {
		return ports.Edge{}, err
	}
	return edge, nil
}

func positionColumns(p *parser.SourcePosition) (line, col, endLine, endCol any) {
	if p == nil {
		return nil, nil, nil, nil
	}
	return p.Line, p.Column, p.EndLine, p.EndColumn
}

func encodePosition(p *parser.SourcePosition) (string, error) {
	if p == nil {
		return "", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode position: %w", err)
	}
	return string(raw), nil
}

func decodePosition(raw string) (*parser.SourcePosition, error) {
	if raw == "" {
		return nil, nil
	}
	var p parser.SourcePosition
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode position: %w", err)
	}
	return &p, nil
}

func encodePositions(ps []parser.SourcePosition) (string, error) {
	if len(ps) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(ps)
	if err != nil {
		return "", fmt.Errorf("encode usage positions: %w", err)
	}
	return string(raw), nil
}

func decodePositions(raw string) ([]parser.SourcePosition, error) {
	if raw == "" {
		return nil, nil
	}
	var ps []parser.SourcePosition
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return nil, fmt.Errorf("decode usage positions: %w", err)
	}
	return ps, nil
}
