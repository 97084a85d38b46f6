package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/graph"
)

// Tree builds the graph-of-graphs described by the document.
//
// Containers are attached in pre-order from the root, so when a definition is
// instantiated by several containers the first one wins and the others are
// kept as plain nodes. Definitions no container reaches stay detached.
func (d *Document) Tree(ctx context.Context) (*graph.Tree, error) {
	logger := ctxlog.FromContext(ctx)
	tree := graph.NewTree()

	defs := d.definitions()
	contents := make(map[graph.GraphRef][]Node, len(defs))
	for _, def := range defs {
		if _, err := uuid.Parse(def.id); err != nil {
			return nil, fmt.Errorf("%w: subgraph id %q is not a UUID", ErrInvalidDocument, def.id)
		}
		ref, err := tree.AddSubgraph(def.id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		contents[ref] = def.nodes
	}

	b := &treeBuilder{tree: tree, contents: contents, populated: make(map[graph.GraphRef]bool)}
	if err := b.populate(ctx, tree.Root(), nodeList(d.raw)); err != nil {
		return nil, err
	}
	for _, def := range defs {
		ref, _ := tree.SubgraphByID(def.id)
		if b.populated[ref] {
			continue
		}
		logger.Debug("Subgraph definition is not reachable from the root.", "subgraph_id", def.id)
		if err := b.populate(ctx, ref, def.nodes); err != nil {
			return nil, err
		}
	}

	logger.Debug("Workflow tree built.", "subgraphs", len(defs), "nodes", len(tree.AllNodes()))
	return tree, nil
}

type treeBuilder struct {
	tree      *graph.Tree
	contents  map[graph.GraphRef][]Node
	populated map[graph.GraphRef]bool
}

// populate adds nodes to owner and descends into each container before
// moving on to the next sibling.
func (b *treeBuilder) populate(ctx context.Context, owner graph.GraphRef, nodes []Node) error {
	logger := ctxlog.FromContext(ctx)
	b.populated[owner] = true

	for _, n := range nodes {
		id, ok := n.ID()
		if !ok {
			return fmt.Errorf("%w: node without a valid id in graph %q", ErrInvalidDocument, b.tree.SubgraphID(owner))
		}
		ref, err := b.tree.AddNode(owner, id, n.Type())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}

		sub, isContainer := b.tree.SubgraphByID(n.Type())
		if !isContainer || sub == b.tree.Root() {
			continue
		}
		if err := b.tree.Attach(ref, sub); err != nil {
			logger.Warn("Container node not attached to its subgraph.", "local_id", id, "subgraph_id", n.Type(), "error", err)
			continue
		}
		if err := b.populate(ctx, sub, b.contents[sub]); err != nil {
			return err
		}
	}
	return nil
}
