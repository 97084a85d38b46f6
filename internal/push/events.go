package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Event names shared with the backend.
const (
	EventUpdatePrompt = "prompt-stash-update-prompt"
	EventSetContinue  = "prompt-stash-set-continue"
	EventUpdateAll    = "prompt-stash-update-all"
)

// NodeID is a node path as it travels on the wire. The backend may send it
// as a string or, for root-graph nodes, as a bare number.
type NodeID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node_id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("node_id %s is not an integer", n)
	}
	*id = NodeID(n.String())
	return nil
}

// Envelope holds the fields common to node-addressed events.
type Envelope struct {
	NodeID NodeID `json:"node_id"`
}

// UpdatePrompt tells a node to replace its prompt text.
type UpdatePrompt struct {
	NodeID NodeID `json:"node_id"`
	Prompt string `json:"prompt"`
}

// SetContinue shows or hides a node's continue control.
type SetContinue struct {
	NodeID NodeID `json:"node_id"`
	Show   bool   `json:"show"`
}

// UpdateAll carries the full list state to every manager node. Lists map a
// list name to its saved prompts by name.
type UpdateAll struct {
	Lists map[string]map[string]string `json:"lists"`
}

// ListNames returns the names of all lists, sorted.
func (u UpdateAll) ListNames() []string {
	names := make([]string, 0, len(u.Lists))
	for name := range u.Lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
