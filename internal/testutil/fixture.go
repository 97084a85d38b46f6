package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/graph"
	"github.com/stretchr/testify/require"
)

// PassthroughType is the node type given to plain fixture nodes.
const PassthroughType = "PromptStashPassthrough"

// Nested is the fixture used across tests:
//
//	root
//	├── 54 ─► S1
//	│         ├── 62 ─► S2
//	│         │         └── 174
//	│         └── 73
//	└── 73
type Nested struct {
	Tree       *graph.Tree
	S1, S2     graph.GraphRef
	Container  graph.NodeRef // 54 in root
	Inner      graph.NodeRef // 62 in S1
	Leaf       graph.NodeRef // 174 in S2
	RootNode73 graph.NodeRef
	S1Node73   graph.NodeRef
}

// NewNested builds the Nested fixture.
func NewNested(t *testing.T) *Nested {
	t.Helper()
	tree := graph.NewTree()
	f := &Nested{Tree: tree}

	f.Container, f.S1 = AddContainer(t, tree, tree.Root(), 54)
	f.RootNode73 = AddNode(t, tree, tree.Root(), 73)
	f.Inner, f.S2 = AddContainer(t, tree, f.S1, 62)
	f.S1Node73 = AddNode(t, tree, f.S1, 73)
	f.Leaf = AddNode(t, tree, f.S2, 174)
	return f
}

// AddNode adds a plain node to owner.
func AddNode(t *testing.T, tree *graph.Tree, owner graph.GraphRef, localID int64) graph.NodeRef {
	t.Helper()
	ref, err := tree.AddNode(owner, localID, PassthroughType)
	require.NoError(t, err)
	return ref
}

// AddContainer adds a node to owner holding a new subgraph, typed by the
// subgraph id as the editor does.
func AddContainer(t *testing.T, tree *graph.Tree, owner graph.GraphRef, localID int64) (graph.NodeRef, graph.GraphRef) {
	t.Helper()
	sub, err := tree.AddSubgraph("")
	require.NoError(t, err)
	ref, err := tree.AddNode(owner, localID, tree.SubgraphID(sub))
	require.NoError(t, err)
	require.NoError(t, tree.Attach(ref, sub))
	return ref, sub
}

// LogContext returns a context carrying a debug logger writing to the
// returned buffer. The log is dumped when STASHGRAPH_TEST_LOGS=true.
func LogContext(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Cleanup(func() {
		if os.Getenv("STASHGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}
