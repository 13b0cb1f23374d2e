package analysis

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"codegraph/internal/core/config"
	"codegraph/internal/core/ports"
	"codegraph/internal/engine/parser"
	"codegraph/internal/engine/symbols"
	"codegraph/internal/shared/observability"
	"codegraph/internal/shared/util"
)

// Orchestrator drives one project's analysis end to end. It owns the symbol
// table and AST cache for the duration of a run; both are rebuilt per run.
type Orchestrator struct {
	cfg    *config.Config
	store  ports.GraphStore
	source ports.FileSource
	root   string

	table   *symbols.Table
	cache   *parser.ASTCache
	files   *parser.FileParser
	limiter *util.Limiter

	projectID  string
	fileIDs    map[string]string // absolute file path -> file node id
	folderIDs  map[string]string // slash-relative dir -> folder node id ("" is the project)
	childOrder map[string]int    // parent node id -> next Contains order
}

func New(cfg *config.Config, store ports.GraphStore, source ports.FileSource) (*Orchestrator, error) {
	root, err := cfg.AbsoluteRoot()
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		source:  source,
		root:    root,
		limiter: util.NewLimiter(cfg.Analyzer.ParseRate, cfg.Analyzer.ParseBurst),
	}, nil
}

// Run analyzes the whole project from scratch. It always returns a report;
// a run that cannot even discover files comes back with StatusFailed.
func (o *Orchestrator) Run(ctx context.Context) *Report {
	report := NewReport()
	report.Status = StatusInProgress

	ctx, span := observability.Tracer.Start(ctx, "analysis.Run",
		trace.WithAttributes(attribute.String("project.root", o.root)))
	defer span.End()

	o.reset()
	defer o.cache.Clear()

	files, err := o.discover(ctx, report)
	if err != nil {
		report.Status = StatusFailed
		report.AddError(err.Error(), "", nil)
		report.finish()
		return report
	}

	declared := o.declare(ctx, report, files)
	if report.Status != StatusFailed {
		o.resolve(ctx, report, declared)
	}
	if report.Status != StatusFailed {
		o.link(ctx, report)
	}

	report.finish()
	slog.Info("analysis finished",
		"status", report.Status,
		"files", report.Metrics.FilesProcessed,
		"failed", report.Metrics.FilesFailed,
		"nodes", report.Metrics.NodesCreated,
		"edges", report.Metrics.EdgesCreated,
		"duration", report.Metrics.Duration)
	return report
}

// reset discards per-run state so a stale symbol never leaks between runs.
func (o *Orchestrator) reset() {
	o.table = symbols.NewTable()
	o.cache = parser.NewASTCache()
	o.files = parser.NewFileParser(o.cache, o.table, o.source, o.root)
	o.projectID = ""
	o.fileIDs = make(map[string]string)
	o.folderIDs = make(map[string]string)
	o.childOrder = make(map[string]int)
}

// Table exposes the current run's symbol table, mainly for tests.
func (o *Orchestrator) Table() *symbols.Table {
	return o.table
}

func (o *Orchestrator) createNode(ctx context.Context, report *Report, node ports.Node) (ports.Node, error) {
	stored, err := o.store.CreateNode(ctx, node)
	if err != nil {
		return ports.Node{}, err
	}
	report.Metrics.NodesCreated++
	return stored, nil
}

func (o *Orchestrator) createEdge(ctx context.Context, report *Report, edge ports.Edge) error {
	if _, err := o.store.CreateEdge(ctx, edge); err != nil {
		return err
	}
	report.Metrics.EdgesCreated++
	return nil
}

// contains persists an ordered Contains edge from parent to child.
func (o *Orchestrator) contains(ctx context.Context, report *Report, parentID, childID string) error {
	order := o.childOrder[parentID]
	o.childOrder[parentID]++
	return o.createEdge(ctx, report, ports.Edge{
		From:  parentID,
		To:    childID,
		Kind:  ports.EdgeContains,
		Order: order,
	})
}

func observePhase(phase string, start time.Time) {
	observability.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}
