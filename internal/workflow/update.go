package workflow

import (
	"fmt"

	"github.com/specialistvlad/stashgraph/internal/nodeid"
)

// Widget positions of the passthrough node. Force-input sockets do not take
// a slot in widgets_values.
const (
	useInputTextIndex = 0
	promptTextIndex   = 1
	pauseToEditIndex  = 2
)

// FindNode returns the raw node addressed by rawPath.
func (d *Document) FindNode(rawPath string) (Node, error) {
	path, err := nodeid.Parse(rawPath)
	if err != nil {
		return nil, err
	}

	nodes := nodeList(d.raw)
	for _, containerID := range path.Prefix() {
		container, ok := findByID(nodes, containerID)
		if !ok {
			return nil, fmt.Errorf("%w: container %d of %q", ErrNodeNotFound, containerID, rawPath)
		}
		def, ok := d.definitionByID(container.Type())
		if !ok {
			return nil, fmt.Errorf("%w: node %d of %q is not a subgraph container", ErrNodeNotFound, containerID, rawPath)
		}
		nodes = def.nodes
	}

	target, ok := findByID(nodes, path.Target())
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, rawPath)
	}
	return target, nil
}

// UpdateNode applies fn to the node addressed by rawPath, in place.
func (d *Document) UpdateNode(rawPath string, fn func(Node)) error {
	n, err := d.FindNode(rawPath)
	if err != nil {
		return err
	}
	fn(n)
	return nil
}

func findByID(nodes []Node, id int64) (Node, bool) {
	for _, n := range nodes {
		if nid, ok := n.ID(); ok && nid == id {
			return n, true
		}
	}
	return nil, false
}

// ApplyStashChanges returns the mutation recorded for a passthrough node once
// it has produced text: input mode and pausing are switched off and the
// prompt widget holds the text. Nodes with fewer widgets are left alone.
func ApplyStashChanges(text string) func(Node) {
	return func(n Node) {
		values, ok := n.WidgetValues()
		if !ok || len(values) <= pauseToEditIndex {
			return
		}
		values[useInputTextIndex] = false
		values[promptTextIndex] = text
		values[pauseToEditIndex] = false
	}
}

// SetPromptText replaces only the prompt widget, as a pushed prompt update
// does while the node keeps its input mode.
func SetPromptText(text string) func(Node) {
	return func(n Node) {
		values, ok := n.WidgetValues()
		if !ok || len(values) <= promptTextIndex {
			return
		}
		values[promptTextIndex] = text
	}
}

// PatchPrompt applies the same change to an API prompt, which is keyed by
// the full path string. It reports whether the entry was found.
func PatchPrompt(prompt map[string]any, rawPath, text string) bool {
	entry, ok := prompt[rawPath].(map[string]any)
	if !ok {
		return false
	}
	inputs, ok := entry["inputs"].(map[string]any)
	if !ok {
		return false
	}
	inputs["use_input_text"] = false
	inputs["prompt_text"] = text
	return true
}
