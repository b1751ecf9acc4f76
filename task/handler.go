package task

import (
	"context"
	"fmt"
	"sync"
)

// Handler invokes the named external task with its input view and returns the
// task output. Transport is up to the implementation.
type Handler interface {
	Invoke(ctx context.Context, name string, input map[string]any) (map[string]any, error)
}

type HandlerFunc func(ctx context.Context, input map[string]any) (map[string]any, error)

// Registry dispatches to in-process handler functions keyed by task name.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

var _ Handler = new(Registry)

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
	}
}

func (r *Registry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

func (r *Registry) Invoke(ctx context.Context, name string, input map[string]any) (map[string]any, error) {
	r.mu.RLock()
	fn, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &Error{Kind: ERROR_TERMINAL, Task: name, Message: fmt.Sprintf("no handler registered for task %s", name)}
	}
	return fn(ctx, input)
}
