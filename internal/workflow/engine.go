package workflow

import "github.com/dohuyhoang93/deepsearch-go/internal/events"

// Engine runs a named workflow's processes in order over one Context.
type Engine struct {
	registry *Registry
}

// NewEngine builds an Engine over registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// RunWorkflow looks up name and runs its processes in order, threading ctx.
// The first process to fail aborts the remaining ones; exactly one
// events.Error is emitted for that failure and the error is also returned
// to the caller.
func (e *Engine) RunWorkflow(name string, ctx *Context) error {
	procNames, err := e.registry.workflow(name)
	if err != nil {
		ctx.emit(events.Error{Message: err.Error()})
		return err
	}

	for _, pname := range procNames {
		proc, err := e.registry.process(pname)
		if err != nil {
			ctx.emit(events.Error{Message: err.Error()})
			return err
		}
		if err := proc.Run(ctx); err != nil {
			ctx.emit(events.Error{Message: err.Error()})
			return err
		}
	}
	return nil
}
