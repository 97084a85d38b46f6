package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/graph"
	"github.com/specialistvlad/stashgraph/internal/push"
	"github.com/specialistvlad/stashgraph/internal/workflow"
)

// runListen routes pushed events to the nodes of one workflow and prints what
// each event does to them.
func (a *App) runListen(ctx context.Context) error {
	workflows, err := a.loadWorkflows(ctx)
	if err != nil {
		return err
	}
	if len(workflows) != 1 {
		return fmt.Errorf("listen: expected one workflow, found %d", len(workflows))
	}
	return push.Listen(ctx, a.listenerConfig(), a.newRouter(workflows[0]))
}

// newRouter watches every node of w. Prompt updates are applied to the
// in-memory document, and saved to its file when write-back is enabled.
func (a *App) newRouter(w *loadedWorkflow) *push.Router {
	router := push.NewRouter(w.resolver)
	router.Watch(w.tree.AllNodes()...)

	router.OnNode(push.EventUpdatePrompt, func(ctx context.Context, n graph.NodeRef, payload json.RawMessage) {
		var ev push.UpdatePrompt
		if err := json.Unmarshal(payload, &ev); err != nil {
			ctxlog.FromContext(ctx).Warn("Dropping prompt update.", "error", err)
			return
		}
		path := w.resolver.ResolvePath(ctx, n)
		if err := w.doc.UpdateNode(path, workflow.SetPromptText(ev.Prompt)); err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to apply prompt update.", "node_id", path, "error", err)
			return
		}
		if a.config.WriteBack {
			if err := w.doc.Save(w.file); err != nil {
				ctxlog.FromContext(ctx).Error("Failed to write workflow back.", "file", w.file, "error", err)
				return
			}
		}
		fmt.Fprintf(a.outW, "%s\tprompt\t%q\n", path, ev.Prompt)
	})

	router.OnNode(push.EventSetContinue, func(ctx context.Context, n graph.NodeRef, payload json.RawMessage) {
		var ev push.SetContinue
		if err := json.Unmarshal(payload, &ev); err != nil {
			ctxlog.FromContext(ctx).Warn("Dropping continue state.", "error", err)
			return
		}
		fmt.Fprintf(a.outW, "%s\tcontinue\t%t\n", w.resolver.ResolvePath(ctx, n), ev.Show)
	})

	router.OnBroadcast(push.EventUpdateAll, func(ctx context.Context, payload json.RawMessage) {
		var ev push.UpdateAll
		if err := json.Unmarshal(payload, &ev); err != nil {
			ctxlog.FromContext(ctx).Warn("Dropping list update.", "error", err)
			return
		}
		fmt.Fprintf(a.outW, "*\tlists\t%s\n", strings.Join(ev.ListNames(), ","))
	})
	return router
}
