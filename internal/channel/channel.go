// Package channel implements named method channels: a closed set of
// operations per channel, each taking a decoded argument value and returning
// a result or an error.
//
// Errors follow three shapes:
//
//	*Error             structured failure reported to the caller
//	ErrNotImplemented  unknown channel or method
//	anything else      unexpected internal failure
package channel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotImplemented is returned for a channel or method with no handler.
var ErrNotImplemented = errors.New("channel: method not implemented")

// Error is a structured failure returned to the caller.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Handler serves one method. args is the decoded argument value (nil when
// none was sent).
type Handler func(ctx context.Context, args any) (any, error)

// Channel is a named set of method handlers.
type Channel struct {
	name    string
	methods map[string]Handler
}

// New returns a channel with no methods.
func New(name string) *Channel {
	return &Channel{name: name, methods: make(map[string]Handler)}
}

// Name returns the channel's full name.
func (c *Channel) Name() string { return c.name }

// Handle installs h for method, replacing any previous handler.
func (c *Channel) Handle(method string, h Handler) *Channel {
	c.methods[method] = h
	return c
}

// Methods returns the method names in sorted order.
func (c *Channel) Methods() []string {
	out := make([]string, 0, len(c.methods))
	for m := range c.methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Invoke runs method with args.
func (c *Channel) Invoke(ctx context.Context, method string, args any) (any, error) {
	h, ok := c.methods[method]
	if !ok {
		return nil, ErrNotImplemented
	}
	return h(ctx, args)
}

// Messenger routes calls to registered channels by name.
type Messenger struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewMessenger returns an empty Messenger.
func NewMessenger() *Messenger {
	return &Messenger{channels: make(map[string]*Channel)}
}

// Register makes c reachable under its own name and every alias.
func (m *Messenger) Register(c *Channel, aliases ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := append([]string{c.Name()}, aliases...)
	for _, n := range names {
		if _, ok := m.channels[n]; ok {
			return fmt.Errorf("channel: %q already registered", n)
		}
	}
	for _, n := range names {
		m.channels[n] = c
	}
	return nil
}

// Call invokes method on the named channel.
func (m *Messenger) Call(ctx context.Context, channel, method string, args any) (any, error) {
	m.mu.RLock()
	c, ok := m.channels[channel]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotImplemented
	}
	return c.Invoke(ctx, method, args)
}

// Channels returns every reachable channel name, aliases included.
func (m *Messenger) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.channels))
	for n := range m.channels {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
