package tools

import (
	"context"
	"fmt"
	"log"
)

// Recorder receives one audit entry per dispatched invocation. Implemented
// by the audit store; a nil Recorder disables auditing.
type Recorder interface {
	Record(ctx context.Context, subjectID, tool string, args map[string]any, res Result)
}

// Dispatcher validates tool calls, injects the verified subject identity,
// and normalizes every handler outcome into a Result envelope. It never
// lets a handler failure escape as a raw error or panic.
type Dispatcher struct {
	registry *Registry
	audit    Recorder
}

// NewDispatcher creates a dispatcher over the given registry. recorder may
// be nil.
func NewDispatcher(registry *Registry, recorder Recorder) *Dispatcher {
	return &Dispatcher{registry: registry, audit: recorder}
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke runs one tool call for the verified subject. Raw arguments come
// straight from the model and are never trusted: they are validated
// against the contract, and the subject identity is injected afterwards so
// a smuggled owner field can never be honored.
func (d *Dispatcher) Invoke(ctx context.Context, name string, raw map[string]any, subjectID string) Result {
	if subjectID == "" {
		return Fail(CodeIdentityRequired, "no verified identity for this request")
	}

	contract := d.registry.Lookup(name)
	if contract == nil {
		return Fail(CodeToolNotFound, fmt.Sprintf("unknown tool %q", name))
	}

	args, verr := Validate(contract, raw)
	if verr != nil {
		return d.record(ctx, subjectID, name, raw, Fail(CodeValidationError, verr.Error()))
	}
	args[OwnerKey] = subjectID

	res := d.run(ctx, contract, args)
	return d.record(ctx, subjectID, name, args, res)
}

// run invokes the handler with panic recovery. A panicking handler is a
// bug, but it must surface as a normalized envelope, not take down the
// turn.
func (d *Dispatcher) run(ctx context.Context, contract *Contract, args Args) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tool %s panicked: %v", contract.Name, r)
			res = Fail(CodeExecutionError, "the operation failed unexpectedly")
		}
	}()
	return contract.Handler(ctx, args)
}

func (d *Dispatcher) record(ctx context.Context, subjectID, tool string, args map[string]any, res Result) Result {
	if d.audit != nil {
		d.audit.Record(ctx, subjectID, tool, args, res)
	}
	return res
}
