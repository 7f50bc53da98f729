// Package tools implements the tool contracts exposed over MCP: one handler
// per tool, a feature-toggled registry, and the dispatcher that classifies
// every failure into the shared error taxonomy.
package tools

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tomasbasham/chrome-mcp/internal/devtools"
	"github.com/tomasbasham/chrome-mcp/internal/respond"
	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// Handler binds one tool name to its schema and implementation.
type Handler struct {
	Name        string
	Description string
	Schema      string // JSON Schema for the tool's input
	Run         func(ctx context.Context, args Args) (string, error)
}

// Response is the dispatch outcome handed to the transport layer.
type Response struct {
	Text        string
	IsError     bool
	ToolName    string
	ErrorType   string
	Recoverable bool
}

// Registry holds the active tool set. The set is fixed at startup by the
// legacy toggle; shared tools are present in both sets.
type Registry struct {
	manager  *devtools.Manager
	log      zerolog.Logger
	limit    int
	handlers map[string]*Handler
	ordered  []*Handler
}

// NewRegistry builds the registry for the selected tool set and validates it
// eagerly: a registered name without an implementation is a programming
// error surfaced at startup, not at call time.
func NewRegistry(manager *devtools.Manager, log zerolog.Logger, legacy bool, limit int) (*Registry, error) {
	if limit <= 0 {
		limit = respond.DefaultLimit
	}
	r := &Registry{
		manager:  manager,
		log:      log,
		limit:    limit,
		handlers: make(map[string]*Handler),
	}

	set := r.sharedHandlers()
	if legacy {
		set = append(set, r.legacyHandlers()...)
	} else {
		set = append(set, r.smartHandlers()...)
	}

	for _, h := range set {
		if h.Name == "" || h.Run == nil {
			return nil, errors.Errorf("tool %q registered without an implementation", h.Name)
		}
		if _, dup := r.handlers[h.Name]; dup {
			return nil, errors.Errorf("tool %q registered twice", h.Name)
		}
		r.handlers[h.Name] = h
		r.ordered = append(r.ordered, h)
	}
	return r, nil
}

// Tools returns the active tool definitions in registration order.
func (r *Registry) Tools() []*Handler {
	return r.ordered
}

// Dispatch looks up and invokes a tool, classifying any failure exactly
// here. Oversize successful responses are replaced by the size-guard
// diagnostic; handlers that want payload-aware narrowing advice guard
// before returning.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs map[string]any) *Response {
	h, ok := r.handlers[name]
	if !ok {
		return r.failure(name, toolerr.Classify(fmt.Errorf("unknown tool: %s", name)))
	}

	text, err := h.Run(ctx, Args(rawArgs))
	if err != nil {
		return r.failure(name, toolerr.Classify(err))
	}

	return &Response{
		Text:     respond.Guard(text, nil, r.limit),
		ToolName: name,
	}
}

// failure renders a typed error into the uniform failure response and logs
// it — recoverable kinds at warn, the rest at error.
func (r *Registry) failure(name string, te *toolerr.Error) *Response {
	text := te.Message
	if te.Hint != "" {
		text += "\nSuggestion: " + te.Hint
	}

	evt := r.log.Error()
	if te.Recoverable() {
		evt = r.log.Warn()
	}
	evt.Str("tool", name).Str("errorType", string(te.Kind)).Msg(te.Message)

	return &Response{
		Text:        text,
		IsError:     true,
		ToolName:    name,
		ErrorType:   string(te.Kind),
		Recoverable: te.Recoverable(),
	}
}
