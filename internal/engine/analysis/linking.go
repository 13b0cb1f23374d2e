package analysis

import (
	"context"
	"fmt"
	"time"

	"codegraph/internal/core/ports"
	"codegraph/internal/shared/observability"
)

// link validates the persisted graph and publishes run totals. An edge
// pointing at a missing node is a warning; the graph stays queryable.
func (o *Orchestrator) link(ctx context.Context, report *Report) {
	ctx, span := observability.Tracer.Start(ctx, "analysis.link")
	defer span.End()
	defer observePhase("linking", time.Now())

	edges, err := o.store.FindEdges(ctx, ports.EdgeFilter{})
	if err != nil {
		report.AddWarning(fmt.Sprintf("edge validation skipped: %v", err), "", nil)
	} else {
		for _, edge := range edges {
			if _, err := o.store.GetNode(ctx, edge.From); err != nil {
				report.AddWarning(fmt.Sprintf("%s edge %s references missing source node %s", edge.Kind, edge.ID, edge.From), "", nil)
			}
			if _, err := o.store.GetNode(ctx, edge.To); err != nil {
				report.AddWarning(fmt.Sprintf("%s edge %s references missing target node %s", edge.Kind, edge.ID, edge.To), "", nil)
			}
		}
	}

	observability.GraphNodes.Set(float64(report.Metrics.NodesCreated))
	observability.GraphEdges.Set(float64(report.Metrics.EdgesCreated))
}
