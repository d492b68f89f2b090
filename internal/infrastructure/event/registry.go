package event

import (
	"slices"
	"sync"

	"github.com/treeofhope/backend/internal/domain/shared"
)

// anyType is the registry key for handlers subscribed to every event
const anyType = "*"

// HandlerRegistry tracks which handlers receive which event types
type HandlerRegistry struct {
	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes handler to eventTypes, or to every event when none are given
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{anyType}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range eventTypes {
		r.byType[t] = append(r.byType[t], handler)
	}
}

// Unregister removes handler everywhere it is subscribed
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for t, hs := range r.byType {
		hs = slices.DeleteFunc(slices.Clone(hs), func(h shared.EventHandler) bool { return h == handler })
		if len(hs) == 0 {
			delete(r.byType, t)
			continue
		}
		r.byType[t] = hs
	}
}

// GetHandlers returns the handlers for eventType, then the catch-all handlers
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typed, catchAll := r.byType[eventType], r.byType[anyType]
	return append(append(slices.Grow([]shared.EventHandler(nil), len(typed)+len(catchAll)), typed...), catchAll...)
}
