package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/fsutil"
	"github.com/specialistvlad/stashgraph/internal/graph"
	"github.com/specialistvlad/stashgraph/internal/resolver"
	"github.com/specialistvlad/stashgraph/internal/workflow"
)

// loadedWorkflow is one workflow file with its tree and resolver.
type loadedWorkflow struct {
	file     string
	doc      *workflow.Document
	tree     *graph.Tree
	resolver *resolver.Resolver
}

// loadWorkflows expands the configured workflow argument and builds a tree
// for every file it names.
func (a *App) loadWorkflows(ctx context.Context) ([]*loadedWorkflow, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ExpandWorkflows(a.config.WorkflowPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered workflow files.", "count", len(files))

	loaded := make([]*loadedWorkflow, 0, len(files))
	for _, file := range files {
		doc, err := workflow.Load(file)
		if err != nil {
			return nil, err
		}
		tree, err := doc.Tree(ctxlog.WithLogger(ctx, logger.With("file", file)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		loaded = append(loaded, &loadedWorkflow{
			file:     file,
			doc:      doc,
			tree:     tree,
			resolver: resolver.New(tree, tree.Root()),
		})
	}
	return loaded, nil
}

// nodeType returns the node's type, or "" for a removed node.
func (w *loadedWorkflow) nodeType(n graph.NodeRef) string {
	info, ok := w.tree.NodeInfo(n)
	if !ok {
		return ""
	}
	return info.Type
}
