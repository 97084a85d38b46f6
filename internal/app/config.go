package app

import (
	"errors"
	"fmt"
	"time"
)

// Commands understood by Run.
const (
	CmdResolve = "resolve"
	CmdMatch   = "match"
	CmdServe   = "serve"
	CmdListen  = "listen"

	// Commands calling a running stash API.
	CmdContinue = "continue"
	CmdClear    = "clear"
	CmdPause    = "pause"
	CmdLists    = "lists"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	Args    []string

	WorkflowPath string // file, directory or glob

	ServerURL          string
	Namespace          string
	InsecureSkipVerify bool

	Port           int
	ResyncInterval time.Duration

	// APIURL is the stash API the remote commands call. It defaults to the
	// server URL, or to the local serve port.
	APIURL string
	// WriteBack makes listen save the workflow after every applied update.
	WriteBack bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg for its command.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CmdResolve, CmdListen:
		if cfg.WorkflowPath == "" {
			return nil, fmt.Errorf("%s: a workflow is required", cfg.Command)
		}
	case CmdMatch:
		if cfg.WorkflowPath == "" {
			return nil, errors.New("match: a workflow is required")
		}
		if len(cfg.Args) != 1 {
			return nil, errors.New("match: exactly one PATH argument is required")
		}
	case CmdServe:
		if cfg.Port <= 0 || cfg.Port > 65535 {
			return nil, fmt.Errorf("serve: invalid port %d", cfg.Port)
		}
	case CmdContinue:
		if len(cfg.Args) < 1 || len(cfg.Args) > 2 {
			return nil, errors.New("continue: PATH and an optional TEXT are required")
		}
	case CmdPause:
		if len(cfg.Args) != 1 {
			return nil, errors.New("pause: exactly one PATH argument is required")
		}
	case CmdClear:
		if len(cfg.Args) != 0 {
			return nil, errors.New("clear: takes no arguments")
		}
	case CmdLists:
		if len(cfg.Args) != 2 {
			return nil, errors.New("lists: usage is 'lists add|delete NAME' or 'lists init PATH'")
		}
		switch cfg.Args[0] {
		case "add", "delete", "init":
		default:
			return nil, fmt.Errorf("lists: unknown action %q", cfg.Args[0])
		}
	case "":
		return nil, errors.New("a command is required")
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.Command == CmdListen && cfg.ServerURL == "" {
		return nil, errors.New("listen: a server URL is required")
	}
	if cfg.APIURL == "" {
		switch {
		case cfg.ServerURL != "":
			cfg.APIURL = cfg.ServerURL
		case cfg.Port > 0:
			cfg.APIURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
		}
	}
	if cfg.APIURL == "" && isRemote(cfg.Command) {
		return nil, fmt.Errorf("%s: an API URL is required", cfg.Command)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	return &cfg, nil
}

func isRemote(command string) bool {
	switch command {
	case CmdContinue, CmdClear, CmdPause, CmdLists:
		return true
	}
	return false
}
