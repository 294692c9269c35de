// Package tools is the gateway between the reasoning model and the task
// store: declared contracts, schema validation, and a dispatcher that
// injects the verified caller identity into every handler call.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// OwnerKey is the reserved argument the dispatcher injects after
// validation. It never appears in model-facing schemas, and any value the
// model smuggles under it is discarded.
const OwnerKey = "owner_id"

// Field types accepted by contracts.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
)

// FieldSpec declares one argument of a tool contract.
type FieldSpec struct {
	Type        string
	Description string
	Required    bool
	MinLen      int // strings only; 0 means no bound
	MaxLen      int
	Enum        []string
}

// Args is a validated, typed argument set. Handlers receive only values
// that passed validation, plus the injected owner identity.
type Args map[string]any

// String returns the named string argument, or "" if absent.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Bool returns the named boolean argument and whether it was supplied.
func (a Args) Bool(key string) (bool, bool) {
	b, ok := a[key].(bool)
	return b, ok
}

// Handler executes a validated tool call on behalf of the owner carried
// in args under OwnerKey.
type Handler func(ctx context.Context, args Args) Result

// Contract is an immutable tool declaration, registered once at startup.
type Contract struct {
	Name        string
	Description string
	Input       map[string]FieldSpec
	Output      map[string]FieldSpec // informational, checked in tests
	Destructive bool                 // gated behind user confirmation
	Handler     Handler
}

// FieldError describes one failing field of a validation pass.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError enumerates every failing field of a tool call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "invalid arguments: " + strings.Join(parts, "; ")
}

// Validate checks raw arguments against the contract's input schema.
// Unknown fields are rejected rather than dropped, and all failures are
// reported at once. The reserved owner key is stripped before checking so
// the dispatcher's injected value is never in competition with the model's.
func Validate(contract *Contract, raw map[string]any) (Args, *ValidationError) {
	var fieldErrs []FieldError
	args := Args{}

	for name, value := range raw {
		if name == OwnerKey {
			continue
		}
		spec, ok := contract.Input[name]
		if !ok {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: "unknown field"})
			continue
		}
		coerced, reason := checkField(spec, value)
		if reason != "" {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: reason})
			continue
		}
		args[name] = coerced
	}

	for name, spec := range contract.Input {
		if spec.Required {
			if _, ok := args[name]; !ok {
				if !hasFieldError(fieldErrs, name) {
					fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: "required"})
				}
			}
		}
	}

	if len(fieldErrs) > 0 {
		sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
		return nil, &ValidationError{Fields: fieldErrs}
	}
	return args, nil
}

func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func checkField(spec FieldSpec, value any) (any, string) {
	switch spec.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, "must be a string"
		}
		if spec.MinLen > 0 && len(s) < spec.MinLen {
			return nil, fmt.Sprintf("must be at least %d characters", spec.MinLen)
		}
		if spec.MaxLen > 0 && len(s) > spec.MaxLen {
			return nil, fmt.Sprintf("must be at most %d characters", spec.MaxLen)
		}
		if len(spec.Enum) > 0 && !containsString(spec.Enum, s) {
			return nil, "must be one of " + strings.Join(spec.Enum, ", ")
		}
		return s, ""

	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, "must be a boolean"
		}
		return b, ""

	case TypeInteger:
		// JSON numbers decode as float64; accept only whole values.
		switch v := value.(type) {
		case int:
			return v, ""
		case int64:
			return int(v), ""
		case float64:
			if v != float64(int(v)) {
				return nil, "must be an integer"
			}
			return int(v), ""
		default:
			return nil, "must be an integer"
		}

	case TypeNumber:
		switch v := value.(type) {
		case float64:
			return v, ""
		case int:
			return float64(v), ""
		default:
			return nil, "must be a number"
		}

	default:
		return nil, "unsupported field type"
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
