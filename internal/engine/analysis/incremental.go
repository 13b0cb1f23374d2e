package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codegraph/internal/core/ports"
	"codegraph/internal/engine/parser"
	"codegraph/internal/shared/observability"
)

// RunIncremental re-analyzes only the changed files, plus the files that
// import them when include_dependents is on. The symbol table is rebuilt
// from the persisted graph so cross-file references still resolve. With no
// prior graph it falls back to a full run.
func (o *Orchestrator) RunIncremental(ctx context.Context, changed []string) *Report {
	report := NewReport()
	report.Status = StatusInProgress

	ctx, span := observability.Tracer.Start(ctx, "analysis.RunIncremental")
	defer span.End()

	o.reset()
	defer o.cache.Clear()

	if err := o.seedFromStore(ctx); err != nil {
		report.Status = StatusFailed
		report.AddError(fmt.Sprintf("seed symbol table: %v", err), "", nil)
		report.finish()
		return report
	}
	if o.projectID == "" {
		slog.Info("no prior graph, running full analysis")
		return o.Run(ctx)
	}

	affected, err := o.affectedFiles(ctx, changed)
	if err != nil {
		report.Status = StatusFailed
		report.AddError(fmt.Sprintf("collect affected files: %v", err), "", nil)
		report.finish()
		return report
	}

	var live []string
	for _, filePath := range affected {
		if _, err := os.Stat(filePath); err != nil {
			if err := o.retireFile(ctx, filePath); err != nil {
				report.AddWarning(fmt.Sprintf("retire removed file: %v", err), filePath, nil)
				continue
			}
			report.AddInfo("file removed, declarations dropped", filePath, nil)
			continue
		}

		if _, ok := o.fileIDs[filePath]; !ok {
			if err := o.registerFile(ctx, report, filePath); err != nil {
				report.AddWarning(fmt.Sprintf("register new file: %v", err), filePath, nil)
				continue
			}
		} else if err := o.retireFile(ctx, filePath); err != nil {
			report.AddWarning(fmt.Sprintf("clear stale declarations: %v", err), filePath, nil)
			continue
		}
		live = append(live, filePath)
	}

	declared := o.declare(ctx, report, live)
	if report.Status != StatusFailed {
		o.resolve(ctx, report, declared)
	}
	if report.Status != StatusFailed {
		o.link(ctx, report)
	}

	report.finish()
	slog.Info("incremental analysis finished",
		"status", report.Status,
		"changed", len(changed),
		"affected", len(affected),
		"files", report.Metrics.FilesProcessed,
		"failed", report.Metrics.FilesFailed,
		"duration", report.Metrics.Duration)
	return report
}

// seedFromStore rebuilds the symbol table and the structural id maps from
// the persisted graph. Files register after everything else so a package
// __init__ wins its shared qname back from the folder.
func (o *Orchestrator) seedFromStore(ctx context.Context) error {
	nodes, err := o.store.FindNodes(ctx, ports.NodeFilter{})
	if err != nil {
		return err
	}

	var files []ports.Node
	for _, node := range nodes {
		switch node.Kind {
		case ports.NodeFile:
			files = append(files, node)
			continue
		case ports.NodeProject:
			o.projectID = node.ID
		case ports.NodeFolder:
			if rel, err := filepath.Rel(o.root, node.Path); err == nil {
				o.folderIDs[filepath.ToSlash(rel)] = node.ID
			}
		case ports.NodePackage:
			o.table.MarkPackageMaterialized(node.QName)
		}
		if node.QName != "" {
			o.table.AddSymbol(node.QName, node.ID)
		}
	}
	for _, node := range files {
		o.fileIDs[node.Path] = node.ID
		if node.QName != "" {
			o.table.AddSymbol(node.QName, node.ID)
		}
	}
	o.folderIDs[""] = o.projectID

	// Resume Contains ordering after the largest persisted sibling position.
	edges, err := o.store.FindEdges(ctx, ports.EdgeFilter{Kind: ports.EdgeContains})
	if err != nil {
		return err
	}
	for _, edge := range edges {
		if edge.Order >= o.childOrder[edge.From] {
			o.childOrder[edge.From] = edge.Order + 1
		}
	}
	return nil
}

// affectedFiles widens the changed set to importers of the changed modules.
func (o *Orchestrator) affectedFiles(ctx context.Context, changed []string) ([]string, error) {
	set := make(map[string]bool)
	for _, p := range changed {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if filepath.Ext(abs) != ".py" {
			continue
		}
		set[abs] = true
	}

	if o.cfg.IncludeDependents() && len(set) > 0 {
		usages, err := o.store.FindEdges(ctx, ports.EdgeFilter{Kind: ports.EdgeUsesImport})
		if err != nil {
			return nil, err
		}
		roots := make([]string, 0, len(set))
		for p := range set {
			roots = append(roots, p)
		}
		for _, changedPath := range roots {
			qname := parser.ModuleQName(o.root, changedPath)
			for _, edge := range usages {
				if edge.TargetQName != qname && !strings.HasPrefix(edge.TargetQName, qname+".") {
					continue
				}
				consumer, err := o.store.GetNode(ctx, edge.From)
				if err != nil || consumer.Path == "" {
					continue
				}
				set[consumer.Path] = true
			}
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// retireFile drops one file's declarations from the graph and the symbol
// table ahead of re-analysis. The file node itself stays.
func (o *Orchestrator) retireFile(ctx context.Context, filePath string) error {
	stale, err := o.store.FindNodes(ctx, ports.NodeFilter{Path: filePath})
	if err != nil {
		return err
	}
	for _, node := range stale {
		switch node.Kind {
		case ports.NodeFunction, ports.NodeClass, ports.NodeVariable:
			o.table.ClearSymbol(node.QName)
		}
	}
	if err := o.store.DeleteBySourceFile(ctx, filePath); err != nil {
		return err
	}
	if fileID := o.fileIDs[filePath]; fileID != "" {
		o.table.ClearFileImports(fileID)
	}
	return nil
}
