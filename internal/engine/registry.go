package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Tool is one executable capability the model may call.
type Tool interface {
	// Name returns the tool identifier exposed to the model.
	Name() string

	// Description describes the tool for the model.
	Description() string

	// Schema returns the JSON schema for the tool's arguments.
	Schema() json.RawMessage

	// Execute runs the tool with already-decoded arguments.
	Execute(ctx context.Context, args map[string]any) (Outcome, error)
}

// Executor is the capability the router delegates to: run one named tool
// call and report its outcome. Registry is the shipped implementation;
// callers may substitute their own.
type Executor interface {
	Execute(ctx context.Context, name string, args map[string]any) (Outcome, error)
}

// Registry holds tools with thread-safe registration and lookup, and
// validates call arguments against each tool's declared schema before
// executing.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a tool, compiling its argument schema. A tool with the
// same name is replaced.
func (r *Registry) Register(tool Tool) error {
	name := strings.TrimSpace(tool.Name())
	if name == "" {
		return fmt.Errorf("tool name is required")
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name+".json", strings.NewReader(string(tool.Schema()))); err != nil {
		return fmt.Errorf("add schema for %s: %w", name, err)
	}
	schema, err := compiler.Compile(name + ".json")
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
	r.schemas[name] = schema
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Execute validates args against the tool's schema and runs it.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (Outcome, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if schema != nil {
		if err := schema.Validate(normalizeForSchema(args)); err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
	}
	return tool.Execute(ctx, args)
}

// Declarations returns the wire-facing declarations for all registered
// tools, sorted by name so requests are deterministic.
func (r *Registry) Declarations() []ToolDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]ToolDeclaration, 0, len(r.tools))
	for name, tool := range r.tools {
		var params map[string]any
		if err := json.Unmarshal(tool.Schema(), &params); err != nil {
			params = map[string]any{"type": "object"}
		}
		decls = append(decls, ToolDeclaration{
			Name:        name,
			Description: tool.Description(),
			Parameters:  params,
		})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}

// normalizeForSchema round-trips args through JSON so the validator sees
// the canonical types it expects (float64 numbers, no typed nil).
func normalizeForSchema(args map[string]any) any {
	data, err := json.Marshal(args)
	if err != nil {
		return args
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return args
	}
	return doc
}
