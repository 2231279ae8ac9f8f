// Package tools implements the administrative capabilities the
// conversational agent can invoke. Every tool shares one signature: a
// single string argument in, a human-readable string out. Tools never
// fail past their own boundary; errors become error-prefixed result
// strings because the reasoning backend consumes text, not structured
// errors.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Handler executes a tool. The returned string is shown to the reasoning
// backend as an observation, so it must be self-contained text.
type Handler func(ctx context.Context, arg string) string

// Definition is a named tool with its description for the backend prompt.
type Definition struct {
	Name        string
	Description string
	Handler     Handler
}

// Info is the handler-free view of a tool, passed to reasoning backends.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// callerRoleKey carries the invoking session's role through tool calls.
type callerRoleKey struct{}

// WithCallerRole tags ctx with the role of the session invoking a tool.
// Role-scoped tools read it back instead of trusting an argument.
func WithCallerRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, callerRoleKey{}, role)
}

// CallerRole returns the role set by WithCallerRole, or the empty string.
func CallerRole(ctx context.Context) string {
	role, _ := ctx.Value(callerRoleKey{}).(string)
	return role
}

// Registry holds every registered tool by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Definition)}
}

// Register adds a tool. Registering a duplicate name is a programming
// error and is rejected.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %s has no handler", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}
	r.tools[def.Name] = &def

	log.Debug().Str("tool", def.Name).Msg("Tool registered")
	return nil
}

// Get returns a tool definition or nil when unknown.
func (r *Registry) Get(name string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Run executes a named tool. The only error case is an unknown name;
// everything that happens inside the tool comes back as result text.
func (r *Registry) Run(ctx context.Context, name, arg string) (string, error) {
	def := r.Get(name)
	if def == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return def.Handler(ctx, arg), nil
}

// Describe returns Info for the given subset of tool names, skipping
// names that are not registered.
func (r *Registry) Describe(names []string) []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		if def, ok := r.tools[name]; ok {
			infos = append(infos, Info{Name: def.Name, Description: def.Description})
		}
	}
	return infos
}

// Names returns all registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}
