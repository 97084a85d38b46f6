// Package passthrough runs the prompt-stash passthrough node: choose the
// output text, optionally pause for an edit, then record the result in the
// workflow and the API prompt so a re-run starts from the edited text.
package passthrough

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
	"github.com/specialistvlad/stashgraph/internal/pause"
	"github.com/specialistvlad/stashgraph/internal/push"
	"github.com/specialistvlad/stashgraph/internal/workflow"
)

// Inputs are the node's widget and socket values for one execution.
type Inputs struct {
	UseInputText bool    `json:"use_input_text"`
	Text         *string `json:"text,omitempty"` // nil when the socket is not connected
	PromptText   string  `json:"prompt_text"`
	PauseToEdit  bool    `json:"pause_to_edit"`
}

// Processor executes passthrough nodes against a pause registry.
type Processor struct {
	registry *pause.Registry
	emitter  push.Emitter
}

// New creates a Processor. A nil emitter disables prompt-update events.
func New(registry *pause.Registry, emitter push.Emitter) *Processor {
	return &Processor{registry: registry, emitter: emitter}
}

// Process returns the text node rawID outputs for in.
//
// doc and prompt may be nil. When the node took its input text or paused,
// the node in doc gets [false, text, false] as widget values and the prompt
// entry keyed by the node path gets the same text; a node missing from
// either is left alone.
func (p *Processor) Process(ctx context.Context, rawID string, in Inputs, doc *workflow.Document, prompt map[string]any) (string, error) {
	path, err := nodeid.Parse(rawID)
	if err != nil {
		return "", err
	}
	nodeID := path.String()
	logger := ctxlog.FromContext(ctx).With("node_id", nodeID)

	output := in.PromptText
	tookInput := in.UseInputText && in.Text != nil
	if tookInput {
		output = *in.Text
		if p.emitter != nil {
			if err := p.emitter.Emit(push.EventUpdatePrompt, push.UpdatePrompt{NodeID: push.NodeID(nodeID), Prompt: output}); err != nil {
				logger.Warn("Failed to emit prompt update.", "error", err)
			}
		}
	}

	if in.PauseToEdit {
		text, edited, err := p.registry.Pause(ctx, nodeID)
		if err != nil {
			return "", fmt.Errorf("pause %s: %w", nodeID, err)
		}
		if edited {
			output = text
		}
	}

	if !tookInput && !in.PauseToEdit {
		return output, nil
	}

	if doc != nil {
		err := doc.UpdateNode(nodeID, workflow.ApplyStashChanges(output))
		switch {
		case errors.Is(err, workflow.ErrNodeNotFound):
			logger.Debug("Node not in workflow, skipping workflow update.")
		case err != nil:
			return "", err
		}
	}
	if prompt != nil && !workflow.PatchPrompt(prompt, nodeID, output) {
		logger.Debug("Node not in prompt, skipping prompt update.")
	}
	logger.Debug("Passthrough processed.", "paused", in.PauseToEdit, "took_input", tookInput)
	return output, nil
}
