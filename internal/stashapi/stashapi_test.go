package stashapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/stashgraph/internal/pause"
	"github.com/specialistvlad/stashgraph/internal/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServer starts the stash API over a fresh registry.
func setupServer(t *testing.T) (*httptest.Server, *pause.Registry, *push.Recorder) {
	t.Helper()
	rec := &push.Recorder{}
	reg := pause.New(rec, pause.WithResyncInterval(time.Hour))
	srv := httptest.NewServer(NewServer(context.Background(), reg, rec).Handler())
	t.Cleanup(srv.Close)
	return srv, reg, rec
}

type waitResult struct {
	text   string
	edited bool
}

func pauseNode(t *testing.T, reg *pause.Registry, id string) <-chan waitResult {
	t.Helper()
	done := make(chan waitResult, 1)
	go func() {
		text, edited, err := reg.Pause(context.Background(), id)
		assert.NoError(t, err)
		done <- waitResult{text: text, edited: edited}
	}()
	require.Eventually(t, func() bool { return contains(reg.Paused(), id) }, time.Second, time.Millisecond)
	return done
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestContinueRoute_ReleasesNestedNode(t *testing.T) {
	srv, reg, _ := setupServer(t)
	client := NewClient(srv.URL, srv.Client())

	done := pauseNode(t, reg, "54:62:174")
	require.NoError(t, client.Continue(context.Background(), "54:62:174", "edited"))

	select {
	case res := <-done:
		assert.True(t, res.edited)
		assert.Equal(t, "edited", res.text)
	case <-time.After(2 * time.Second):
		t.Fatal("node was not released")
	}
}

func TestContinueRoute_UnknownNodeStillOK(t *testing.T) {
	srv, _, _ := setupServer(t)

	resp, err := http.Post(srv.URL+ContinuePath+"73", "application/json", strings.NewReader(`{"text":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestContinueRoute_EmptyBodyAndBadBody(t *testing.T) {
	srv, reg, _ := setupServer(t)

	done := pauseNode(t, reg, "5")
	resp, err := http.Post(srv.URL+ContinuePath+"5", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	res := <-done
	assert.True(t, res.edited)
	assert.Empty(t, res.text)

	resp, err = http.Post(srv.URL+ContinuePath+"5", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestContinueRoute_CanonicalizesNodeID(t *testing.T) {
	srv, reg, _ := setupServer(t)

	done := pauseNode(t, reg, "54:73")
	resp, err := http.Post(srv.URL+ContinuePath+"054:073", "application/json", strings.NewReader(`{"text":"same node"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res := <-done
	assert.True(t, res.edited)
	assert.Equal(t, "same node", res.text)
}

func TestNodeRoutes_RejectMalformedID(t *testing.T) {
	srv, reg, _ := setupServer(t)

	for _, path := range []string{ContinuePath + "54::73", PausePath + "abc", ProcessPath + "-1"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
	assert.Empty(t, reg.Paused())
}

func TestProcessRoute_PausesAndPatchesWorkflow(t *testing.T) {
	srv, reg, rec := setupServer(t)
	client := NewClient(srv.URL, srv.Client())

	body := `{
		"inputs": {"use_input_text": true, "text": "upstream", "prompt_text": "typed", "pause_to_edit": true},
		"workflow": {"nodes": [{"id": 73, "type": "PromptStashPassthrough", "widgets_values": [true, "typed", true]}]},
		"prompt": {"73": {"inputs": {"use_input_text": true, "prompt_text": "typed"}}}
	}`

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.Post(srv.URL+ProcessPath+"73", "application/json", strings.NewReader(body))
		done <- result{resp, err}
	}()
	require.Eventually(t, func() bool { return contains(reg.Paused(), "73") }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, client.Continue(context.Background(), "73", "edited"))

	got := <-done
	require.NoError(t, got.err)
	defer got.resp.Body.Close()
	require.Equal(t, http.StatusOK, got.resp.StatusCode)

	var out ProcessResponse
	require.NoError(t, json.NewDecoder(got.resp.Body).Decode(&out))
	assert.Equal(t, "edited", out.Text)
	node := out.Workflow["nodes"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{false, "edited", false}, node["widgets_values"])
	inputs := out.Prompt["73"].(map[string]any)["inputs"].(map[string]any)
	assert.Equal(t, "edited", inputs["prompt_text"])
	assert.Equal(t, false, inputs["use_input_text"])

	var updates []push.UpdatePrompt
	for _, e := range rec.Events() {
		if e.Event == push.EventUpdatePrompt {
			updates = append(updates, e.Payload.(push.UpdatePrompt))
		}
	}
	assert.Equal(t, []push.UpdatePrompt{{NodeID: "73", Prompt: "upstream"}}, updates)
}

func TestClearAllRoute(t *testing.T) {
	srv, reg, rec := setupServer(t)
	client := NewClient(srv.URL+"/", nil)

	a := pauseNode(t, reg, "1")
	b := pauseNode(t, reg, "54:1")

	require.NoError(t, client.ClearAll(context.Background()))
	assert.False(t, (<-a).edited)
	assert.False(t, (<-b).edited)
	assert.Empty(t, reg.Paused())

	hidden := 0
	for _, e := range rec.Events() {
		if e.Event == push.EventSetContinue && !e.Payload.(push.SetContinue).Show {
			hidden++
		}
	}
	assert.Equal(t, 2, hidden)
}

func TestPausedAndHealthRoutes(t *testing.T) {
	srv, reg, _ := setupServer(t)
	done := pauseNode(t, reg, "54:73")

	resp, err := http.Get(srv.URL + PausedPath)
	require.NoError(t, err)
	var paused pausedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&paused))
	resp.Body.Close()
	assert.Equal(t, []string{"54:73"}, paused.Paused)

	resp, err = http.Get(srv.URL + HealthPath)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK\n", string(body))

	resp, err = http.Get(srv.URL + ClearAllPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	reg.Continue(context.Background(), "54:73", "")
	<-done
}

func TestPauseRoute_LongPoll(t *testing.T) {
	srv, reg, _ := setupServer(t)
	client := NewClient(srv.URL, srv.Client())

	type result struct {
		res PauseResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := client.Pause(context.Background(), "54:62:174")
		done <- result{res, err}
	}()
	require.Eventually(t, func() bool { return contains(reg.Paused(), "54:62:174") }, 2*time.Second, 5*time.Millisecond)

	_, err := client.Pause(context.Background(), "54:62:174")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")

	require.NoError(t, client.Continue(context.Background(), "54:62:174", "new prompt"))
	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, PauseResult{Text: "new prompt", Edited: true}, got.res)
}

func TestPauseRoute_ClientGoneWithdrawsNode(t *testing.T) {
	srv, reg, _ := setupServer(t)
	client := NewClient(srv.URL, srv.Client())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Pause(ctx, "9")
		done <- err
	}()
	require.Eventually(t, func() bool { return contains(reg.Paused(), "9") }, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.Error(t, <-done)
	assert.Eventually(t, func() bool { return len(reg.Paused()) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestClient_ListEndpoints(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, r.URL.Path+" "+string(body))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case InitPath:
			io.WriteString(w, `{"lists":{"default":{"Instructions":"tips"},"faces":{}}}`)
		case DeleteListPath:
			io.WriteString(w, `{"success":false}`)
		default:
			io.WriteString(w, `{"success":true}`)
		}
	}))
	t.Cleanup(backend.Close)

	client := NewClient(backend.URL, backend.Client())
	ctx := context.Background()

	ok, err := client.AddList(ctx, "faces")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.DeleteList(ctx, "faces")
	require.NoError(t, err)
	assert.False(t, ok)

	state, err := client.Init(ctx, "54:62:174")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "faces"}, state.ListNames())
	assert.Equal(t, "tips", state.Lists["default"]["Instructions"])

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 3)
	assert.Equal(t, AddListPath+` {"list_name":"faces"}`, calls[0])
	assert.Equal(t, InitPath+` {"node_id":"54:62:174"}`, calls[2])
}

func TestClient_ErrorStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(backend.Close)

	_, err := NewClient(backend.URL, nil).AddList(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_BadJSON(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	t.Cleanup(backend.Close)

	_, err := NewClient(backend.URL, nil).Init(context.Background(), "1")
	assert.Error(t, err)
}

func TestServer_ListenAndServeShutsDown(t *testing.T) {
	reg := pause.New(nil)
	s := NewServer(context.Background(), reg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
