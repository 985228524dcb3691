package tool

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Handler fulfills one named tool call. Handlers validate their own
// arguments, enforce their own authorization, and report failures as a
// Result instead of an error: a failing tool must never abort the batch.
type Handler func(ctx context.Context, tc *Context, args map[string]any) Result

// OverrideFunc builds the deterministic confirmation message for a
// successful result. Returning false leaves the reply to the remote agent.
type OverrideFunc func(args map[string]any, res Result) (string, bool)

// Registration binds a handler to its canonical name, the aliases the
// remote agent has been observed to emit, and an optional override policy.
type Registration struct {
	Name     string
	Aliases  []string
	Handler  Handler
	Override OverrideFunc
}

// Registry resolves normalized tool names to handlers. Built once at
// startup from a static table; lookups are read-only afterwards.
type Registry struct {
	handlers map[string]*Registration
	log      zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]*Registration),
		log:      log.With().Str("component", "tool_registry").Logger(),
	}
}

// Register adds a handler under its canonical name and all aliases.
func (r *Registry) Register(reg Registration) {
	entry := reg
	r.handlers[NormalizeName(reg.Name)] = &entry
	for _, alias := range reg.Aliases {
		r.handlers[NormalizeName(alias)] = &entry
	}
}

// Resolve looks up a handler by raw tool name.
func (r *Registry) Resolve(name string) (*Registration, bool) {
	reg, ok := r.handlers[NormalizeName(name)]
	return reg, ok
}

// Names returns the canonical names currently registered, aliases excluded.
func (r *Registry) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, reg := range r.handlers {
		if !seen[reg.Name] {
			seen[reg.Name] = true
			names = append(names, reg.Name)
		}
	}
	return names
}

// Dispatch resolves and executes one invocation. Any panic inside a
// handler is converted to a failed result so the run loop survives and
// the batch submission still carries an answer for this call. The second
// return value is the deterministic override message, when the handler's
// policy produces one.
func (r *Registry) Dispatch(ctx context.Context, tc *Context, inv Invocation) (res Result, override string, hasOverride bool) {
	reg, ok := r.Resolve(inv.Name)
	if !ok {
		r.log.Warn().Str("tool", inv.Name).Msg("unknown tool requested by agent")
		return Fail(CodeNotFound, fmt.Sprintf("unknown tool %q", inv.Name)), "", false
	}

	args, err := ParseArguments(inv.RawArguments)
	if err != nil {
		return Fail(CodeValidation, fmt.Sprintf("malformed arguments for %s: %v", reg.Name, err)), "", false
	}

	res = r.execute(ctx, reg, tc, args)
	if res.OK && reg.Override != nil {
		if msg, ok := reg.Override(args, res); ok {
			return res, msg, true
		}
	}
	return res, "", false
}

func (r *Registry) execute(ctx context.Context, reg *Registration, tc *Context, args map[string]any) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("tool", reg.Name).Interface("panic", rec).Msg("tool handler panicked")
			res = Fail(CodeInternal, fmt.Sprintf("%s failed internally", reg.Name))
		}
	}()
	return reg.Handler(ctx, tc, args)
}
