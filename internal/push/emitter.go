package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Emitter sends an event to connected clients.
type Emitter interface {
	Emit(event string, payload any) error
}

// toWire converts a typed payload into the plain JSON value the socket
// library serializes.
func toWire(payload any) (any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to re-decode payload: %w", err)
	}
	return out, nil
}

// SocketEmitter emits events over a connected socket.io client.
type SocketEmitter struct {
	io *socket.Socket
}

// NewSocketEmitter wraps a connected socket.
func NewSocketEmitter(io *socket.Socket) *SocketEmitter {
	return &SocketEmitter{io: io}
}

// Emit sends the event.
func (e *SocketEmitter) Emit(event string, payload any) error {
	data, err := toWire(payload)
	if err != nil {
		return err
	}
	e.io.Emit(event, data)
	return nil
}

// LogEmitter writes events to the context logger instead of a connection.
type LogEmitter struct {
	ctx context.Context
}

// NewLogEmitter creates an emitter that logs at info level.
func NewLogEmitter(ctx context.Context) *LogEmitter {
	return &LogEmitter{ctx: ctx}
}

// Emit logs the event.
func (e *LogEmitter) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	ctxlog.FromContext(e.ctx).Info("Push event.", "event", event, "payload", string(data))
	return nil
}

// Emission is one recorded event.
type Emission struct {
	Event   string
	Payload any
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Emission
}

// Emit records the event.
func (r *Recorder) Emit(event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Emission{Event: event, Payload: payload})
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Emission, len(r.events))
	copy(out, r.events)
	return out
}
