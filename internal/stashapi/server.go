package stashapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
	"github.com/specialistvlad/stashgraph/internal/passthrough"
	"github.com/specialistvlad/stashgraph/internal/pause"
	"github.com/specialistvlad/stashgraph/internal/push"
	"github.com/specialistvlad/stashgraph/internal/workflow"
)

// Route paths.
const (
	ContinuePath = "/prompt_stash_passthrough/continue/"
	ClearAllPath = "/prompt_stash_passthrough/clear_all"
	PausePath    = "/prompt_stash_passthrough/pause/"
	ProcessPath  = "/prompt_stash_passthrough/process/"
	PausedPath   = "/prompt_stash_passthrough/paused"
	HealthPath   = "/health"
)

// maxBodyBytes bounds request bodies; edited prompts are small.
const maxBodyBytes = 1 << 20

// Server serves the pause routes over a registry.
type Server struct {
	ctx       context.Context
	registry  *pause.Registry
	processor *passthrough.Processor
	mux       *http.ServeMux
	http      *http.Server
}

// NewServer wires the routes. ctx carries the logger used by handlers;
// emitter receives prompt updates from processed nodes and may be nil.
func NewServer(ctx context.Context, registry *pause.Registry, emitter push.Emitter) *Server {
	s := &Server{
		ctx:       ctx,
		registry:  registry,
		processor: passthrough.New(registry, emitter),
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("POST "+ContinuePath+"{node_id}", s.handleContinue)
	s.mux.HandleFunc("POST "+ClearAllPath, s.handleClearAll)
	s.mux.HandleFunc("POST "+PausePath+"{node_id}", s.handlePause)
	s.mux.HandleFunc("POST "+ProcessPath+"{node_id}", s.handleProcess)
	s.mux.HandleFunc("GET "+PausedPath, s.handlePaused)
	s.mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	return s
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type statusResponse struct {
	Status string `json:"status"`
}

type continueRequest struct {
	Text string `json:"text"`
}

// PauseResult is what a pause long poll answers with.
type PauseResult struct {
	Text   string `json:"text"`
	Edited bool   `json:"edited"`
}

// ProcessRequest runs one passthrough node. Workflow and Prompt are
// optional and come back patched.
type ProcessRequest struct {
	Inputs   passthrough.Inputs `json:"inputs"`
	Workflow map[string]any     `json:"workflow,omitempty"`
	Prompt   map[string]any     `json:"prompt,omitempty"`
}

// ProcessResponse carries the node output.
type ProcessResponse struct {
	Text     string         `json:"text"`
	Workflow map[string]any `json:"workflow,omitempty"`
	Prompt   map[string]any `json:"prompt,omitempty"`
}

type pausedResponse struct {
	Paused []string `json:"paused"`
}

// canonicalNodeID parses the node_id path value so "054:73" and "54:73"
// address the same waiter. A malformed id is answered with 400.
func canonicalNodeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	path, err := nodeid.Parse(strings.TrimSpace(r.PathValue("node_id")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: err.Error()})
		return "", false
	}
	return path.String(), true
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(s.ctx)
	nodeID, ok := canonicalNodeID(w, r)
	if !ok {
		return
	}

	var req continueRequest
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Debug("Rejecting continue request.", "node_id", nodeID, "error", err)
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "invalid request body"})
		return
	}

	released := s.registry.Continue(s.ctx, nodeID, req.Text)
	logger.Debug("Continue request handled.", "node_id", nodeID, "released", released)
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	s.registry.ClearAll(s.ctx)
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// handlePause blocks for as long as the node stays paused. The request
// context ending (client gone) withdraws the node.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := canonicalNodeID(w, r)
	if !ok {
		return
	}
	ctx := ctxlog.WithLogger(r.Context(), ctxlog.FromContext(s.ctx))

	text, edited, err := s.registry.Pause(ctx, nodeID)
	switch {
	case errors.Is(err, pause.ErrAlreadyPaused):
		writeJSON(w, http.StatusConflict, statusResponse{Status: err.Error()})
		return
	case err != nil:
		ctxlog.FromContext(s.ctx).Debug("Pause request withdrawn.", "node_id", nodeID, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, PauseResult{Text: text, Edited: edited})
}

// handleProcess runs the passthrough node and answers with its output and the
// patched workflow and prompt. Like the pause route it blocks while the node
// is paused.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := canonicalNodeID(w, r)
	if !ok {
		return
	}
	logger := ctxlog.FromContext(s.ctx)

	var req ProcessRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 16*maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		logger.Debug("Rejecting process request.", "node_id", nodeID, "error", err)
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "invalid request body"})
		return
	}

	var doc *workflow.Document
	if req.Workflow != nil {
		doc = workflow.FromMap(req.Workflow)
	}
	ctx := ctxlog.WithLogger(r.Context(), logger)
	text, err := s.processor.Process(ctx, nodeID, req.Inputs, doc, req.Prompt)
	switch {
	case errors.Is(err, pause.ErrAlreadyPaused):
		writeJSON(w, http.StatusConflict, statusResponse{Status: err.Error()})
		return
	case r.Context().Err() != nil:
		logger.Debug("Process request withdrawn.", "node_id", nodeID)
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: err.Error()})
		return
	}

	resp := ProcessResponse{Text: text, Prompt: req.Prompt}
	if doc != nil {
		resp.Workflow = doc.Raw()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePaused(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pausedResponse{Paused: s.registry.Paused()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(s.ctx).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe runs the server on addr until ctx is done, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	logger := ctxlog.FromContext(s.ctx)
	s.http = &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Stash API server starting", "address", addr)
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("stash API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("Shutting down stash API server...")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stash API server shutdown failed: %w", err)
	}
	logger.Debug("Stash API server shut down gracefully.")
	return nil
}
