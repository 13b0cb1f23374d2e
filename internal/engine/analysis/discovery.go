package analysis

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"codegraph/internal/core/ports"
	"codegraph/internal/core/scanner"
	"codegraph/internal/engine/parser"
	"codegraph/internal/shared/observability"
)

// discover walks the project, persists the structural skeleton (project,
// folders, files, Contains and BelongsTo edges), and registers every module
// qname in the symbol table. Returns the ordered list of source files.
func (o *Orchestrator) discover(ctx context.Context, report *Report) ([]string, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysis.discover")
	defer span.End()
	defer observePhase("discovery", time.Now())

	nav, err := scanner.NewNavigator(o.root, o.cfg.IgnoreFile, o.cfg.Exclude.Dirs, o.cfg.Exclude.Files)
	if err != nil {
		return nil, fmt.Errorf("build navigator: %w", err)
	}
	files, err := nav.FindFiles([]string{".py"})
	if err != nil {
		return nil, fmt.Errorf("discover source files: %w", err)
	}

	name := filepath.Base(o.root)
	project, err := o.createNode(ctx, report, ports.Node{
		Kind:  ports.NodeProject,
		Name:  name,
		QName: name,
		Path:  o.root,
	})
	if err != nil {
		return nil, fmt.Errorf("persist project node: %w", err)
	}
	o.projectID = project.ID
	o.folderIDs[""] = project.ID

	for _, filePath := range files {
		if err := o.registerFile(ctx, report, filePath); err != nil {
			return nil, err
		}
	}

	return files, nil
}

// registerFile persists the File node (and any folders above it) and maps
// the module qname to the file's id. A package __init__ shares its folder's
// qname; the file wins the mapping so imports resolve to the module.
func (o *Orchestrator) registerFile(ctx context.Context, report *Report, filePath string) error {
	rel, err := filepath.Rel(o.root, filePath)
	if err != nil {
		return fmt.Errorf("relativize %q: %w", filePath, err)
	}
	rel = filepath.ToSlash(rel)

	parentID, err := o.ensureFolder(ctx, report, path.Dir(rel))
	if err != nil {
		return err
	}

	qname := parser.ModuleQName(o.root, filePath)
	file, err := o.createNode(ctx, report, ports.Node{
		Kind:  ports.NodeFile,
		Name:  path.Base(rel),
		QName: qname,
		Path:  filePath,
	})
	if err != nil {
		return fmt.Errorf("persist file node %q: %w", rel, err)
	}

	if err := o.contains(ctx, report, parentID, file.ID); err != nil {
		return err
	}
	if err := o.createEdge(ctx, report, ports.Edge{
		From: file.ID,
		To:   o.projectID,
		Kind: ports.EdgeBelongsTo,
	}); err != nil {
		return err
	}

	o.fileIDs[filePath] = file.ID
	o.table.AddSymbol(qname, file.ID)
	return nil
}

// ensureFolder persists the folder chain down to relDir and returns the id
// of the innermost one. relDir "." or "" means the project itself.
func (o *Orchestrator) ensureFolder(ctx context.Context, report *Report, relDir string) (string, error) {
	if relDir == "." || relDir == "" {
		return o.projectID, nil
	}
	if id, ok := o.folderIDs[relDir]; ok {
		return id, nil
	}

	parentID, err := o.ensureFolder(ctx, report, path.Dir(relDir))
	if err != nil {
		return "", err
	}

	qname := strings.ReplaceAll(relDir, "/", ".")
	folder, err := o.createNode(ctx, report, ports.Node{
		Kind:  ports.NodeFolder,
		Name:  path.Base(relDir),
		QName: qname,
		Path:  filepath.Join(o.root, filepath.FromSlash(relDir)),
	})
	if err != nil {
		return "", fmt.Errorf("persist folder node %q: %w", relDir, err)
	}

	if err := o.contains(ctx, report, parentID, folder.ID); err != nil {
		return "", err
	}
	if err := o.createEdge(ctx, report, ports.Edge{
		From: folder.ID,
		To:   o.projectID,
		Kind: ports.EdgeBelongsTo,
	}); err != nil {
		return "", err
	}

	o.folderIDs[relDir] = folder.ID
	o.table.AddSymbol(qname, folder.ID)
	return folder.ID, nil
}
