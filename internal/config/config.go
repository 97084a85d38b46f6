package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// DefaultFileName is looked up in the working directory when no -config flag
// is given.
const DefaultFileName = "stashgraph.hcl"

// File is the decoded configuration file.
type File struct {
	LogLevel  string       `hcl:"log_level,optional"`
	LogFormat string       `hcl:"log_format,optional"`
	Workflow  string       `hcl:"workflow,optional"`
	Server    *ServerBlock `hcl:"server,block"`
	Listen    *ListenBlock `hcl:"listen,block"`
}

// ServerBlock addresses the backend pushing events.
type ServerBlock struct {
	URL                string `hcl:"url,optional"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// ListenBlock configures the local stash API.
type ListenBlock struct {
	Port           int    `hcl:"port,optional"`
	ResyncInterval string `hcl:"resync_interval,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *File {
	return &File{
		LogLevel:  "info",
		LogFormat: "text",
		Server:    &ServerBlock{Namespace: "/"},
		Listen:    &ListenBlock{Port: 8189, ResyncInterval: "2s"},
	}
}

// Load parses and decodes the file at path.
func Load(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(ctx, src, path)
}

// Parse decodes HCL source. filename is used in diagnostics only.
func Parse(ctx context.Context, src []byte, filename string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing config file.", "file", filename)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}

	var file File
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	file.fillDefaults()
	if _, err := file.Resync(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", filename, err)
	}
	logger.Debug("Config file loaded.", "file", filename, "workflow", file.Workflow)
	return &file, nil
}

// Resync parses listen.resync_interval.
func (f *File) Resync() (time.Duration, error) {
	if f.Listen == nil || f.Listen.ResyncInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Listen.ResyncInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid resync_interval %q: %w", f.Listen.ResyncInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid resync_interval %q: must be positive", f.Listen.ResyncInterval)
	}
	return d, nil
}

func (f *File) fillDefaults() {
	def := Default()
	if f.LogLevel == "" {
		f.LogLevel = def.LogLevel
	}
	if f.LogFormat == "" {
		f.LogFormat = def.LogFormat
	}
	if f.Server == nil {
		f.Server = def.Server
	} else if f.Server.Namespace == "" {
		f.Server.Namespace = def.Server.Namespace
	}
	if f.Listen == nil {
		f.Listen = def.Listen
	} else {
		if f.Listen.Port == 0 {
			f.Listen.Port = def.Listen.Port
		}
		if f.Listen.ResyncInterval == "" {
			f.Listen.ResyncInterval = def.Listen.ResyncInterval
		}
	}
}

// evalContext exposes the process environment as `env`.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
