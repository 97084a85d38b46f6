package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/pause"
	"github.com/specialistvlad/stashgraph/internal/push"
	"github.com/specialistvlad/stashgraph/internal/stashapi"
)

// runServe hosts the pause registry behind the stash API until ctx is done.
// Continue-control state is pushed to the backend when a server URL is
// configured and reachable, otherwise it is only logged.
func (a *App) runServe(ctx context.Context) error {
	emitter, closeEmitter := a.newEmitter(ctx)
	defer closeEmitter()

	registry := pause.New(emitter, pause.WithResyncInterval(a.config.ResyncInterval))
	server := stashapi.NewServer(ctx, registry, emitter)
	return server.ListenAndServe(ctx, fmt.Sprintf(":%d", a.config.Port))
}

func (a *App) newEmitter(ctx context.Context) (push.Emitter, func()) {
	logger := ctxlog.FromContext(ctx)
	if a.config.ServerURL == "" {
		logger.Debug("No server URL configured, continue state is logged only.")
		return push.NewLogEmitter(ctx), func() {}
	}

	io, err := push.Connect(ctx, a.listenerConfig())
	if err != nil {
		logger.Warn("Push server unreachable, continue state is logged only.", "url", a.config.ServerURL, "error", err)
		return push.NewLogEmitter(ctx), func() {}
	}
	return push.NewSocketEmitter(io), func() { io.Disconnect() }
}

func (a *App) listenerConfig() push.ListenerConfig {
	return push.ListenerConfig{
		URL:                a.config.ServerURL,
		Namespace:          a.config.Namespace,
		InsecureSkipVerify: a.config.InsecureSkipVerify,
	}
}
