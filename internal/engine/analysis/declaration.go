package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"codegraph/internal/core/ports"
	"codegraph/internal/engine/parser"
	"codegraph/internal/shared/observability"
)

type declResult struct {
	path  string
	decls []parser.Declaration
	err   error
}

// declare runs the declaration pass over all files in batches. Parsing fans
// out across a batch; persistence stays sequential and ordered so Contains
// edges get deterministic sibling positions. A file that fails to read or
// parse becomes an issue, never a run failure. Returns the files whose
// declarations made it into the graph.
func (o *Orchestrator) declare(ctx context.Context, report *Report, files []string) []string {
	ctx, span := observability.Tracer.Start(ctx, "analysis.declare")
	defer span.End()
	defer observePhase("declaration", time.Now())

	var declared []string
	batchSize := o.cfg.Analyzer.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]
		results := make([]declResult, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchSize)
		for i, filePath := range batch {
			g.Go(func() error {
				if err := o.limiter.Wait(gctx); err != nil {
					return err
				}
				results[i] = o.parseOne(filePath)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			report.Status = StatusFailed
			report.AddError(fmt.Sprintf("declaration phase aborted: %v", err), "", nil)
			return declared
		}

		for _, res := range results {
			if res.err != nil {
				report.AddError(res.err.Error(), res.path, nil)
				report.Metrics.FilesFailed++
				observability.FilesFailedTotal.Inc()
				continue
			}
			if err := o.persistDeclarations(ctx, report, res.path, res.decls); err != nil {
				report.Status = StatusFailed
				report.AddError(fmt.Sprintf("persist declarations: %v", err), res.path, nil)
				return declared
			}
			report.Metrics.FilesProcessed++
			observability.FilesProcessedTotal.Inc()
			declared = append(declared, res.path)
		}
	}

	return declared
}

func (o *Orchestrator) parseOne(filePath string) declResult {
	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues("declaration").Observe(time.Since(start).Seconds())
	}()

	content, err := o.source.ReadFile(filePath)
	if err != nil {
		return declResult{path: filePath, err: fmt.Errorf("read source: %w", err)}
	}
	decls, err := o.files.DeclarationPass(filePath, content)
	return declResult{path: filePath, decls: decls, err: err}
}

// persistDeclarations writes one file's declarations. Classes go first so
// methods can attach beneath them.
func (o *Orchestrator) persistDeclarations(ctx context.Context, report *Report, filePath string, decls []parser.Declaration) error {
	fileID := o.fileIDs[filePath]
	classIDs := make(map[string]string)

	for _, decl := range decls {
		if decl.Kind != parser.KindClass {
			continue
		}
		id, err := o.persistDeclaration(ctx, report, filePath, decl, fileID)
		if err != nil {
			return err
		}
		classIDs[decl.QName] = id
	}

	for _, decl := range decls {
		if decl.Kind == parser.KindClass {
			continue
		}
		parentID := fileID
		if decl.OwnerClass != "" {
			if classID, ok := classIDs[decl.OwnerClass]; ok {
				parentID = classID
			}
		}
		if _, err := o.persistDeclaration(ctx, report, filePath, decl, parentID); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) persistDeclaration(ctx context.Context, report *Report, filePath string, decl parser.Declaration, parentID string) (string, error) {
	pos := decl.Position
	node, err := o.createNode(ctx, report, ports.Node{
		Kind:     nodeKindFor(decl.Kind),
		Name:     decl.Name,
		QName:    decl.QName,
		Path:     filePath,
		Position: &pos,
	})
	if err != nil {
		return "", err
	}

	o.table.AddSymbol(decl.QName, node.ID)

	if err := o.contains(ctx, report, parentID, node.ID); err != nil {
		return "", err
	}
	// Structural parentage lives on the Contains edge; BelongsTo always
	// anchors a node to the project root.
	if err := o.createEdge(ctx, report, ports.Edge{
		From: node.ID,
		To:   o.projectID,
		Kind: ports.EdgeBelongsTo,
	}); err != nil {
		return "", err
	}
	return node.ID, nil
}

func nodeKindFor(kind parser.DeclarationKind) ports.NodeKind {
	switch kind {
	case parser.KindClass:
		return ports.NodeClass
	case parser.KindVariable:
		return ports.NodeVariable
	default:
		return ports.NodeFunction
	}
}
