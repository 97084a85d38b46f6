package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/stashgraph/internal/app"
	"github.com/specialistvlad/stashgraph/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

const usageText = `
stashgraph - resolve and route node identities across nested subgraphs.

Usage:
  stashgraph [options] COMMAND [ARGS]

Commands:
  resolve       Print "path<TAB>type" for every node of the workflow.
  match PATH    Print the node addressed by PATH (exit code 1 when none).
  serve         Serve the pause/continue API.
  listen        Route pushed events from the server to workflow nodes.
  continue PATH [TEXT]
                Release a paused node with TEXT.
  pause PATH    Pause a node and wait until it is continued or cleared.
  clear         Release every paused node without edits.
  lists add|delete NAME
                Create or remove a prompt list.
  lists init PATH
                Print the list names known to a saver node.

With a workflow, PATH must address one of its nodes.

Options may also follow COMMAND. Values in the config file are overridden by
options given on the command line.

Options:
`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("stashgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the HCL config file. Defaults to ./"+config.DefaultFileName+" when present.")
	workflowFlag := flagSet.String("workflow", "", "Workflow JSON file, directory or glob pattern.")
	wFlag := flagSet.String("w", "", "Workflow JSON file, directory or glob pattern (shorthand).")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	portFlag := flagSet.Int("port", 0, "Port the serve command listens on.")
	urlFlag := flagSet.String("url", "", "URL of the socket.io server pushing events.")
	namespaceFlag := flagSet.String("namespace", "", "socket.io namespace.")
	insecureFlag := flagSet.Bool("insecure", false, "Skip TLS certificate verification.")
	apiFlag := flagSet.String("api", "", "Base URL of the stash API. Defaults to -url, then to the local serve port.")
	writeFlag := flagSet.Bool("write", false, "listen: save the workflow after every applied update.")

	if err := parseInterleaved(flagSet, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	positional := flagSet.Args()
	if len(positional) == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	file, err := loadConfigFile(*configFlag)
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}
	resync, err := file.Resync()
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := app.Config{
		Command:            positional[0],
		Args:               positional[1:],
		WorkflowPath:       file.Workflow,
		ServerURL:          file.Server.URL,
		Namespace:          file.Server.Namespace,
		InsecureSkipVerify: file.Server.InsecureSkipVerify,
		Port:               file.Listen.Port,
		ResyncInterval:     resync,
		LogFormat:          file.LogFormat,
		LogLevel:           file.LogLevel,
	}
	switch {
	case set["workflow"]:
		cfg.WorkflowPath = *workflowFlag
	case set["w"]:
		cfg.WorkflowPath = *wFlag
	}
	if set["log-format"] {
		cfg.LogFormat = *logFormatFlag
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevelFlag
	}
	if set["port"] {
		cfg.Port = *portFlag
	}
	if set["url"] {
		cfg.ServerURL = *urlFlag
	}
	if set["namespace"] {
		cfg.Namespace = *namespaceFlag
	}
	if set["insecure"] {
		cfg.InsecureSkipVerify = *insecureFlag
	}
	cfg.APIURL = *apiFlag
	cfg.WriteBack = *writeFlag

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "command", appConfig.Command)
	return appConfig, false, nil
}

// parseInterleaved lets options follow the command: flag stops at the first
// positional argument, so parsing resumes after each one.
func parseInterleaved(flagSet *flag.FlagSet, args []string) error {
	var positional []string
	for {
		if err := flagSet.Parse(args); err != nil {
			return err
		}
		rest := flagSet.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
	// Leave the collected positionals in flagSet.Args().
	return flagSet.Parse(append([]string{"--"}, positional...))
}

// loadConfigFile loads path, or the default file when path is empty and the
// default exists, or falls back to built-in defaults.
func loadConfigFile(path string) (*config.File, error) {
	ctx := context.Background()
	if path != "" {
		return config.Load(ctx, path)
	}
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		slog.Debug("Using default config file.", "file", config.DefaultFileName)
		return config.Load(ctx, config.DefaultFileName)
	}
	return config.Default(), nil
}
