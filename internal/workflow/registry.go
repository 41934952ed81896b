package workflow

import (
	"errors"
	"fmt"
)

// ErrWorkflowMissing names a workflow not present in the registry.
var ErrWorkflowMissing = errors.New("workflow missing")

// ErrProcessMissing names a process not present in the registry.
var ErrProcessMissing = errors.New("process missing")

// Process is a named pipeline stage modeled as a capability rather than a
// bare function pointer, so a stateful process — one closing over a
// *store.Store or carrying its own config — can be constructed directly.
type Process interface {
	Name() string
	Run(ctx *Context) error
}

// Registry maps process name to Process and workflow name to an ordered
// list of process names. Workflows are data: registering one is appending
// to a map, never adding a new code path.
type Registry struct {
	processes map[string]Process
	workflows map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processes: make(map[string]Process),
		workflows: make(map[string][]string),
	}
}

// RegisterProcess adds p under its own Name(), overwriting any process
// previously registered under that name.
func (r *Registry) RegisterProcess(p Process) {
	r.processes[p.Name()] = p
}

// RegisterWorkflow names an ordered list of processes to run for workflow
// name.
func (r *Registry) RegisterWorkflow(name string, processNames ...string) {
	r.workflows[name] = processNames
}

func (r *Registry) process(name string) (Process, error) {
	p, ok := r.processes[name]
	if !ok {
		return nil, fmt.Errorf("workflow: %w: %s", ErrProcessMissing, name)
	}
	return p, nil
}

func (r *Registry) workflow(name string) ([]string, error) {
	names, ok := r.workflows[name]
	if !ok {
		return nil, fmt.Errorf("workflow: %w: %s", ErrWorkflowMissing, name)
	}
	return names, nil
}
