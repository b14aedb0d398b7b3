// Package services implements the "Clipmunk - Paste N" system services: an
// explicit registry from stable service identifiers to Go handlers, and the
// provider that copies a template slot onto the pasteboard.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	// ErrUnknownService is returned by Invoke for an unregistered identifier.
	ErrUnknownService = errors.New("services: unknown service")

	// ErrDuplicateService is returned by Register when the identifier is taken.
	ErrDuplicateService = errors.New("services: service already registered")
)

// Handler performs one service invocation.
type Handler func(ctx context.Context) error

// Registry maps service identifiers to handlers. Registration normally
// happens once at startup; there is no unregister.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	alerter  Alerter
}

// Option configures a Registry.
type Option func(*Registry)

// WithAlerter reports failed invocations to the user through a.
func WithAlerter(a Alerter) Option {
	return func(r *Registry) { r.alerter = a }
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		alerter:  NopAlerter{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register binds id to h.
func (r *Registry) Register(id string, h Handler) error {
	if id == "" {
		return errors.New("services: empty service id")
	}
	if h == nil {
		return fmt.Errorf("services: nil handler for %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateService, id)
	}
	r.handlers[id] = h
	return nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Invoke runs the handler registered under id. A handler error is shown to
// the user through the registry's Alerter and returned unchanged.
func (r *Registry) Invoke(ctx context.Context, id string) error {
	r.mu.RLock()
	h, ok := r.handlers[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownService, id)
	}

	if err := h(ctx); err != nil {
		slog.Warn("service failed", "service", id, "err", err)
		if aerr := r.alerter.Alert(id, err.Error()); aerr != nil {
			slog.Debug("service alert failed", "service", id, "err", aerr)
		}
		return err
	}
	slog.Info("service invoked", "service", id)
	return nil
}
