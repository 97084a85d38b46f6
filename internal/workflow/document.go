package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrInvalidDocument is returned for documents that do not have the expected shape.
	ErrInvalidDocument = errors.New("invalid workflow document")
	// ErrNodeNotFound is returned when a path does not address a node of the document.
	ErrNodeNotFound = errors.New("node not found in workflow")
)

// Node is the raw JSON object of a single node.
type Node map[string]any

// Document is a decoded workflow.
type Document struct {
	raw map[string]any
}

// Decode reads a workflow document from r.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDocument)
	}
	return &Document{raw: raw}, nil
}

// Load reads a workflow document from a file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", path, err)
	}
	return doc, nil
}

// FromMap wraps an already decoded workflow, e.g. one embedded in a request.
// The document shares the map; patches are visible to the caller.
func FromMap(raw map[string]any) *Document {
	return &Document{raw: raw}
}

// Raw returns the underlying JSON object.
func (d *Document) Raw() map[string]any {
	return d.raw
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.raw); err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Save encodes the document to path, replacing the file through a rename so a
// reader never sees a partial workflow.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := d.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save workflow %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", path, err)
	}
	return nil
}

// subgraphDef is one entry of definitions.subgraphs.
type subgraphDef struct {
	id    string
	nodes []Node
}

// definitions returns the subgraph definitions in document order.
func (d *Document) definitions() []subgraphDef {
	defsObj, ok := d.raw["definitions"].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := defsObj["subgraphs"].([]any)
	if !ok {
		return nil
	}

	defs := make([]subgraphDef, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := obj["id"].(string)
		defs = append(defs, subgraphDef{id: id, nodes: nodeList(obj)})
	}
	return defs
}

// definitionByID finds a subgraph definition by id.
func (d *Document) definitionByID(id string) (subgraphDef, bool) {
	if id == "" {
		return subgraphDef{}, false
	}
	for _, def := range d.definitions() {
		if def.id == id {
			return def, true
		}
	}
	return subgraphDef{}, false
}

// nodeList extracts the "nodes" array of a graph object.
func nodeList(obj map[string]any) []Node {
	list, ok := obj["nodes"].([]any)
	if !ok {
		return nil
	}
	nodes := make([]Node, 0, len(list))
	for _, item := range list {
		if n, ok := item.(map[string]any); ok {
			nodes = append(nodes, Node(n))
		}
	}
	return nodes
}

// ID returns the node's local id.
func (n Node) ID() (int64, bool) {
	switch v := n["id"].(type) {
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// Type returns the node's type, which for containers is a subgraph id.
func (n Node) Type() string {
	s, _ := n["type"].(string)
	return s
}

// WidgetValues returns the node's widget values, if any.
func (n Node) WidgetValues() ([]any, bool) {
	v, ok := n["widgets_values"].([]any)
	return v, ok
}
