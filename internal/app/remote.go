package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
	"github.com/specialistvlad/stashgraph/internal/stashapi"
)

// runRemote calls the stash API for the continue, clear, pause and lists
// commands.
func (a *App) runRemote(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	client := stashapi.NewClient(a.config.APIURL, a.httpClient())
	args := a.config.Args
	logger.Debug("Calling stash API.", "url", a.config.APIURL, "command", a.config.Command)

	switch a.config.Command {
	case CmdContinue:
		nodeID, err := a.canonicalPath(ctx, args[0])
		if err != nil {
			return err
		}
		text := ""
		if len(args) > 1 {
			text = args[1]
		}
		if err := client.Continue(ctx, nodeID, text); err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "%s\tcontinued\n", nodeID)

	case CmdClear:
		if err := client.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.outW, "*\tcleared")

	case CmdPause:
		nodeID, err := a.canonicalPath(ctx, args[0])
		if err != nil {
			return err
		}
		res, err := client.Pause(ctx, nodeID)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "%s\t%t\t%q\n", nodeID, res.Edited, res.Text)

	case CmdLists:
		return a.runLists(ctx, client, args[0], args[1])
	}
	return nil
}

func (a *App) runLists(ctx context.Context, client *stashapi.Client, action, arg string) error {
	if action == "init" {
		nodeID, err := a.canonicalPath(ctx, arg)
		if err != nil {
			return err
		}
		state, err := client.Init(ctx, nodeID)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "%s\tlists\t%s\n", nodeID, strings.Join(state.ListNames(), ","))
		return nil
	}

	update := client.AddList
	if action == "delete" {
		update = client.DeleteList
	}
	ok, err := update(ctx, arg)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("lists %s %q: rejected by server", action, arg)
	}
	fmt.Fprintf(a.outW, "%s\t%s\n", arg, action)
	return nil
}

// canonicalPath parses rawPath and, when a workflow is configured, checks that
// it addresses a node there. The returned path is the one the server keys
// pauses by.
func (a *App) canonicalPath(ctx context.Context, rawPath string) (string, error) {
	path, err := nodeid.Parse(rawPath)
	if err != nil {
		return "", err
	}
	if a.config.WorkflowPath == "" {
		return path.String(), nil
	}

	workflows, err := a.loadWorkflows(ctx)
	if err != nil {
		return "", err
	}
	for _, w := range workflows {
		if n, ok := w.resolver.Find(path); ok {
			return w.resolver.ResolvePath(ctx, n), nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrNoMatch, rawPath)
}

func (a *App) httpClient() *http.Client {
	if !a.config.InsecureSkipVerify {
		return http.DefaultClient
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return &http.Client{Transport: transport}
}
