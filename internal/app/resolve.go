package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
)

// runResolve prints "path<TAB>type" for every node reachable from the root of
// each workflow, in path order. With several workflows each line is prefixed
// by the file name.
func (a *App) runResolve(ctx context.Context) error {
	workflows, err := a.loadWorkflows(ctx)
	if err != nil {
		return err
	}

	for _, w := range workflows {
		index := w.resolver.Index(ctx)
		paths := make([]nodeid.Path, 0, len(index))
		for raw := range index {
			p, err := nodeid.Parse(raw)
			if err != nil {
				// Index only produces well-formed paths.
				return fmt.Errorf("%s: %w", w.file, err)
			}
			paths = append(paths, p)
		}
		slices.SortFunc(paths, func(x, y nodeid.Path) int { return slices.Compare(x, y) })

		for _, p := range paths {
			a.printRow(len(workflows) > 1, w.file, p.String(), w.nodeType(index[p.String()]))
		}
		ctxlog.FromContext(ctx).Info("Workflow resolved.", "file", w.file, "nodes", len(paths))
	}
	return nil
}

// runMatch prints every node whose identity matches rawPath. It returns
// ErrNoMatch when there is none.
func (a *App) runMatch(ctx context.Context, rawPath string) error {
	logger := ctxlog.FromContext(ctx)
	if _, err := nodeid.Parse(rawPath); err != nil {
		return err
	}

	workflows, err := a.loadWorkflows(ctx)
	if err != nil {
		return err
	}

	found := 0
	for _, w := range workflows {
		for _, n := range w.tree.AllNodes() {
			ok, err := w.resolver.MatchesPath(ctx, n, rawPath)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			found++
			a.printRow(len(workflows) > 1, w.file, w.resolver.ResolvePath(ctx, n), w.nodeType(n))
		}
	}

	if found == 0 {
		logger.Debug("No node matched.", "path", rawPath)
		return fmt.Errorf("%w %q", ErrNoMatch, rawPath)
	}
	return nil
}

func (a *App) printRow(withFile bool, file, path, typ string) {
	if withFile {
		fmt.Fprintf(a.outW, "%s\t%s\t%s\n", file, path, typ)
		return
	}
	fmt.Fprintf(a.outW, "%s\t%s\n", path, typ)
}
