package smx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"
	"mvdan.cc/sh/v3/shell"
)

// DefaultTargetAlias is the args token replaced with the path to open.
const DefaultTargetAlias = "__TARGET_PATH"

// EditorContext is the kind of path an editor is asked to open.
type EditorContext string

// Editor contexts.
const (
	ContextFile   EditorContext = "file"
	ContextFolder EditorContext = "folder"
	ContextDiff   EditorContext = "diff"
)

// ParseContext converts a context name.
func ParseContext(s string) (EditorContext, error) {
	switch c := EditorContext(strings.ToLower(strings.TrimSpace(s))); c {
	case ContextFile, ContextFolder, ContextDiff:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContext, s)
	}
}

// Contexts is the set of contexts an editor supports. A single context is
// stored as a plain string, several as an array.
type Contexts []EditorContext

// ParseContexts converts a comma separated list of context names.
func ParseContexts(s string) (Contexts, error) {
	parts := strings.Split(s, ",")
	trim(parts)

	out := make(Contexts, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		c, err := ParseContext(p)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}

	return out, nil
}

// Has returns true if c contains ctx.
func (c Contexts) Has(ctx EditorContext) bool {
	return slices.Contains(c, ctx)
}

// MarshalJSON implements json.Marshaler.
func (c Contexts) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(string(c[0]))
	}

	return json.Marshal([]EditorContext(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Contexts) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s EditorContext
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Contexts{s}

		return nil
	}

	var cs []EditorContext
	if err := json.Unmarshal(b, &cs); err != nil {
		return err
	}
	*c = cs

	return nil
}

// EditorConfig describes how to launch an editor.
//
// Args is the command line. The token equal to the alias (TargetAlias or
// __TARGET_PATH) is replaced with the path to open.
type EditorConfig struct {
	Args        []string `json:"args"`
	Context     Contexts `json:"context"`
	TargetAlias string   `json:"targetAlias,omitempty"`
}

// Alias returns the placeholder token.
func (e EditorConfig) Alias() string {
	if e.TargetAlias != "" {
		return e.TargetAlias
	}

	return DefaultTargetAlias
}

// Expand returns the command line for path. If args have no placeholder
// the path is appended.
func (e EditorConfig) Expand(path string) []string {
	alias := e.Alias()
	out := make([]string, 0, len(e.Args)+1)
	var replaced bool
	for _, a := range e.Args {
		if a == alias {
			out = append(out, path)
			replaced = true

			continue
		}
		out = append(out, a)
	}

	if !replaced {
		out = append(out, path)
	}

	return out
}

// ParseCommand splits a shell quoted command line into args.
//
// Example:
//
//	args, err := ParseCommand(`code --wait "__TARGET_PATH"`)
//	// []string{"code", "--wait", "__TARGET_PATH"}
func ParseCommand(line string) ([]string, error) {
	args, err := shell.Fields(line, func(string) string { return "" })
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", line, err)
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("empty command %q", line)
	}

	return args, nil
}

// Editors manages the editors of the local config.
type Editors struct {
	handler *Handler
	runner  Runner
}

// NewEditors creates an Editors launching through r. A nil runner uses an ExecRunner.
func NewEditors(h *Handler, r Runner) *Editors {
	if r == nil {
		r = &ExecRunner{}
	}

	return &Editors{
		handler: h,
		runner:  r,
	}
}

func (e *Editors) local() (*ConfigFile[LocalConfig], error) {
	f := e.handler.LocalFile()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrScopeNotLoaded, ScopeLocal)
	}

	return f, nil
}

// Names returns the sorted editor names.
func (e *Editors) Names() []string {
	f, err := e.local()
	if err != nil {
		return nil
	}

	return set.SortedKeys(f.Config().Editors)
}

// Get returns the editor with the given name.
func (e *Editors) Get(name string) (EditorConfig, bool) {
	f, err := e.local()
	if err != nil {
		return EditorConfig{}, false
	}

	ec, found := f.Config().Editors[name]

	return ec, found
}

// Add adds or replaces an editor. An empty context list means files only.
func (e *Editors) Add(name string, ec EditorConfig) error {
	if !validID(name) {
		return fmt.Errorf("%w: editor name %q", ErrInvalidKey, name)
	}
	if len(ec.Args) < 1 {
		return fmt.Errorf("editor %s needs a command", name)
	}
	if len(ec.Context) < 1 {
		ec.Context = Contexts{ContextFile}
	}
	for _, c := range ec.Context {
		if _, err := ParseContext(string(c)); err != nil {
			return err
		}
	}

	f, err := e.local()
	if err != nil {
		return err
	}
	f.Config().Editors[name] = ec

	debug.V(1).Log("added editor %s: %q", name, ec.Args)

	return f.Save()
}

// Remove deletes an editor.
func (e *Editors) Remove(name string) error {
	f, err := e.local()
	if err != nil {
		return err
	}

	editors := f.Config().Editors
	if _, found := editors[name]; !found {
		return fmt.Errorf("%w: %s", ErrEditorNotFound, name)
	}
	delete(editors, name)

	return f.Save()
}

// Command returns the command line opening path with the named editor.
// The editor must support ctx.
func (e *Editors) Command(name, path string, ctx EditorContext) ([]string, error) {
	ec, found := e.Get(name)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrEditorNotFound, name)
	}
	if !ec.Context.Has(ctx) {
		return nil, fmt.Errorf("%w: %s can not open %s", ErrUnsupportedContext, name, ctx)
	}

	return ec.Expand(path), nil
}

// Open launches the named editor on path from cwd.
func (e *Editors) Open(ctx context.Context, name, path string, ec EditorContext, cwd string) (Result, error) {
	args, err := e.Command(name, path, ec)
	if err != nil {
		return Result{}, err
	}

	res, err := e.runner.Run(ctx, args, cwd)
	if err != nil {
		return res, err
	}
	if !res.Success {
		debug.Log("editor %s exited with %d: %s", name, res.Code, res.Stderr)
	}

	return res, nil
}
