package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codegraph/internal/core/ports"
	"codegraph/internal/engine/parser"
	"codegraph/internal/shared/observability"
)

// resolve runs the dependency pass sequentially over the declared files and
// reconciles the unresolved edges it emits against the symbol table.
// Cancellation is honored at file boundaries.
func (o *Orchestrator) resolve(ctx context.Context, report *Report, declared []string) {
	ctx, span := observability.Tracer.Start(ctx, "analysis.resolve")
	defer span.End()
	defer observePhase("dependency", time.Now())

	for _, filePath := range declared {
		if err := ctx.Err(); err != nil {
			report.Status = StatusFailed
			report.AddError(fmt.Sprintf("dependency phase aborted: %v", err), "", nil)
			return
		}

		start := time.Now()
		result, err := o.files.DetailPass(filePath, o.fileIDs[filePath])
		observability.ParsingDuration.WithLabelValues("dependency").Observe(time.Since(start).Seconds())
		if err != nil {
			report.AddError(fmt.Sprintf("dependency pass: %v", err), filePath, nil)
			continue
		}

		if err := o.persistDetails(ctx, report, filePath, result); err != nil {
			report.Status = StatusFailed
			report.AddError(fmt.Sprintf("persist dependencies: %v", err), filePath, nil)
			return
		}
	}
}

func (o *Orchestrator) persistDetails(ctx context.Context, report *Report, filePath string, result *parser.DetailResult) error {
	for _, usage := range result.Usages {
		if usage.ConsumerID == "" {
			continue
		}

		var toID string
		if o.table.IsLocalModule(usage.TargetQName) {
			toID = o.resolveLocal(usage.TargetQName)
			if toID == "" {
				// A local-looking target with no declaration behind it.
				// Dropped, not reported; dynamic and conditional definitions
				// make this common in real projects.
				observability.ResolutionMissesTotal.Inc()
				continue
			}
		} else {
			var err error
			toID, err = o.materializePackage(ctx, report, usage.TargetQName)
			if err != nil {
				return err
			}
		}

		importPos := usage.ImportPosition
		if err := o.createEdge(ctx, report, ports.Edge{
			From:           usage.ConsumerID,
			To:             toID,
			Kind:           ports.EdgeUsesImport,
			TargetQName:    usage.TargetQName,
			TargetSymbol:   usage.TargetSymbol,
			Alias:          usage.Alias,
			ImportPosition: &importPos,
			UsagePositions: usage.UsagePositions,
		}); err != nil {
			return err
		}
	}

	for _, call := range result.Calls {
		if call.ConsumerID == "" {
			continue
		}
		if !o.table.IsLocalModule(call.TargetQName) {
			continue
		}
		toID := o.resolveLocal(call.TargetQName)
		if toID == "" {
			observability.ResolutionMissesTotal.Inc()
			continue
		}

		pos := call.Position
		if err := o.createEdge(ctx, report, ports.Edge{
			From:        call.ConsumerID,
			To:          toID,
			Kind:        ports.EdgeCalls,
			TargetQName: call.TargetQName,
			CallKind:    string(call.Kind),
			Position:    &pos,
		}); err != nil {
			return err
		}
	}

	for _, wildcard := range result.Wildcards {
		pos := wildcard.Position
		report.AddInfo(fmt.Sprintf("wildcard import of %s cannot be tracked symbol by symbol", wildcard.Module), filePath, &pos)
	}

	return nil
}

// resolveLocal maps a project-local qname to a node id: exact match first,
// then the longest known dotted prefix (a symbol inside a known module).
func (o *Orchestrator) resolveLocal(qname string) string {
	if id := o.table.GetSymbolID(qname); id != "" {
		return id
	}
	parts := strings.Split(qname, ".")
	for i := len(parts) - 1; i > 0; i-- {
		if id := o.table.GetSymbolID(strings.Join(parts[:i], ".")); id != "" {
			return id
		}
	}
	return ""
}

// materializePackage returns the node id for an external package qname,
// persisting the Package node the first time the qname is seen in a run.
func (o *Orchestrator) materializePackage(ctx context.Context, report *Report, qname string) (string, error) {
	id := o.table.GetOrCreatePackageID(qname)
	if !o.table.MarkPackageMaterialized(qname) {
		return id, nil
	}

	parts := strings.Split(qname, ".")
	if _, err := o.createNode(ctx, report, ports.Node{
		ID:    id,
		Kind:  ports.NodePackage,
		Name:  parts[len(parts)-1],
		QName: qname,
	}); err != nil {
		return "", fmt.Errorf("persist package node %q: %w", qname, err)
	}
	return id, nil
}
