package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
)

// ErrNoMatch is returned when no node of the workflow has the path.
var ErrNoMatch = errors.New("no node matches path")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp creates an App printing results to outW and logging to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, logger: logger, config: cfg}
}

// Run executes the configured command until it finishes or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	var err error
	switch a.config.Command {
	case CmdResolve:
		err = a.runResolve(ctx)
	case CmdMatch:
		err = a.runMatch(ctx, a.config.Args[0])
	case CmdServe:
		err = a.runServe(ctx)
	case CmdListen:
		err = a.runListen(ctx)
	case CmdContinue, CmdClear, CmdPause, CmdLists:
		err = a.runRemote(ctx)
	default:
		err = errors.New("unknown command " + a.config.Command)
	}

	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}
