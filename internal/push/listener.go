package push

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// connectTimeout bounds the wait for the initial connection.
const connectTimeout = 15 * time.Second

// ListenerConfig describes the socket.io endpoint to listen on.
type ListenerConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// dial prepares, but does not connect, a socket for cfg.
func dial(ctx context.Context, cfg ListenerConfig) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must include scheme and host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	return manager.Socket(cfg.Namespace, opts), nil
}

// awaitConnect connects io and waits for the outcome.
func awaitConnect(ctx context.Context, io *socket.Socket) error {
	logger := ctxlog.FromContext(ctx)
	connectChan := make(chan error, 1)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		io.Disconnect()
		return fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Connect opens a socket.io client, e.g. to back a SocketEmitter.
func Connect(ctx context.Context, cfg ListenerConfig) (*socket.Socket, error) {
	io, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := awaitConnect(ctx, io); err != nil {
		return nil, err
	}
	return io, nil
}

// Listen subscribes router to every event it handles and blocks until ctx is
// done. Handlers run on the socket library's goroutines.
func Listen(ctx context.Context, cfg ListenerConfig, router *Router) error {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)
	ctx = ctxlog.WithLogger(ctx, logger)

	io, err := dial(ctx, cfg)
	if err != nil {
		return err
	}

	for _, event := range router.Events() {
		io.On(types.EventName(event), func(args ...any) {
			var payload any
			if len(args) > 0 {
				payload = args[0]
			}
			data, err := json.Marshal(payload)
			if err != nil {
				logger.Warn("Dropping undecodable event.", "event", event, "error", err)
				return
			}
			if _, err := router.Dispatch(ctx, event, data); err != nil {
				logger.Warn("Dropping event.", "event", event, "error", err)
			}
		})
	}

	if err := awaitConnect(ctx, io); err != nil {
		return err
	}
	logger.Info("Listening for push events.", "events", router.Events())

	<-ctx.Done()
	logger.Debug("Disconnecting socket client")
	io.Disconnect()
	return nil
}
