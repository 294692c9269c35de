package tools

import (
	"fmt"
	"sort"

	"github.com/Fareedsea/todo-chatbot/internal/llm"
)

// Registry maps tool names to contracts. It is populated during startup
// and read-only afterwards, so concurrent lookups need no locking.
type Registry struct {
	contracts map[string]*Contract
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{contracts: map[string]*Contract{}}
}

// Register adds a contract. A duplicate name is a programming error and
// callers treat the returned error as fatal at startup.
func (r *Registry) Register(c *Contract) error {
	if c.Name == "" {
		return fmt.Errorf("tool contract has no name")
	}
	if c.Handler == nil {
		return fmt.Errorf("tool %q has no handler", c.Name)
	}
	if _, exists := r.contracts[c.Name]; exists {
		return fmt.Errorf("tool %q already registered", c.Name)
	}
	r.contracts[c.Name] = c
	return nil
}

// Lookup returns the named contract, or nil if unregistered.
func (r *Registry) Lookup(name string) *Contract {
	return r.contracts[name]
}

// List returns all contracts sorted by name.
func (r *Registry) List() []*Contract {
	out := make([]*Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Specs returns the model-facing tool definitions. The reserved owner key
// is an internal channel and never appears here.
func (r *Registry) Specs() []llm.ToolDefinition {
	var defs []llm.ToolDefinition
	for _, c := range r.List() {
		defs = append(defs, llm.ToolDefinition{
			Name:        c.Name,
			Description: c.Description,
			Parameters:  parameterSchema(c),
		})
	}
	return defs
}

// parameterSchema renders a contract's input as a JSON-schema object.
func parameterSchema(c *Contract) map[string]any {
	properties := map[string]any{}
	var required []string

	names := make([]string, 0, len(c.Input))
	for name := range c.Input {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := c.Input[name]
		prop := map[string]any{
			"type":        spec.Type,
			"description": spec.Description,
		}
		if spec.MinLen > 0 {
			prop["minLength"] = spec.MinLen
		}
		if spec.MaxLen > 0 {
			prop["maxLength"] = spec.MaxLen
		}
		if len(spec.Enum) > 0 {
			prop["enum"] = spec.Enum
		}
		properties[name] = prop
		if spec.Required {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
