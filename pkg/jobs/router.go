package jobs

import (
	"context"
	"fmt"
	"sync"
)

// Router dispatches jobs to the handler registered for their Type.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Handle registers h for jobType, replacing any previous handler.
func (r *Router) Handle(jobType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = h
}

// Types lists the registered job types.
func (r *Router) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch is a Handler that routes by job type. Unknown types fail permanently.
func (r *Router) Dispatch(ctx context.Context, job Job) error {
	r.mu.RLock()
	h, ok := r.handlers[job.Type]
	r.mu.RUnlock()
	if !ok {
		return Permanent(fmt.Errorf("no handler for job type %q", job.Type))
	}
	return h(ctx, job)
}
