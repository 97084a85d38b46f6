package stashapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/specialistvlad/stashgraph/internal/push"
)

// List endpoints served by the backend plugin.
const (
	AddListPath    = "/prompt_stash_saver/add_list"
	DeleteListPath = "/prompt_stash_saver/delete_list"
	InitPath       = "/prompt_stash_saver/init"
)

// Client calls the stash endpoints of a backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. A nil hc uses http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type successResponse struct {
	Success bool `json:"success"`
}

type listRequest struct {
	ListName string `json:"list_name"`
}

type initRequest struct {
	NodeID string `json:"node_id"`
}

// Continue releases a paused node with edited text.
func (c *Client) Continue(ctx context.Context, nodeID, text string) error {
	var resp statusResponse
	return c.post(ctx, ContinuePath+url.PathEscape(nodeID), continueRequest{Text: text}, &resp)
}

// ClearAll releases every paused node.
func (c *Client) ClearAll(ctx context.Context) error {
	var resp statusResponse
	return c.post(ctx, ClearAllPath, nil, &resp)
}

// Pause blocks until the node is continued or cleared on the server, or ctx
// is done.
func (c *Client) Pause(ctx context.Context, nodeID string) (PauseResult, error) {
	var resp PauseResult
	err := c.post(ctx, PausePath+url.PathEscape(nodeID), nil, &resp)
	return resp, err
}

// AddList creates a list; the bool mirrors the backend's success flag.
func (c *Client) AddList(ctx context.Context, name string) (bool, error) {
	var resp successResponse
	if err := c.post(ctx, AddListPath, listRequest{ListName: name}, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// DeleteList removes a list.
func (c *Client) DeleteList(ctx context.Context, name string) (bool, error) {
	var resp successResponse
	if err := c.post(ctx, DeleteListPath, listRequest{ListName: name}, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Init fetches the list state for a node, addressed by its resolved path.
func (c *Client) Init(ctx context.Context, nodeID string) (push.UpdateAll, error) {
	var resp push.UpdateAll
	err := c.post(ctx, InitPath, initRequest{NodeID: nodeID}, &resp)
	return resp, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: unexpected status %s: %s", req.Method, path, resp.Status, bytes.TrimSpace(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
