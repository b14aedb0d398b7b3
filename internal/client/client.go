// Package client calls a running clipmunk daemon over the wire protocol.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go.klb.dev/clipmunk/internal/channel"
	"go.klb.dev/clipmunk/internal/crypto"
	"go.klb.dev/clipmunk/internal/ipc"
	"go.klb.dev/clipmunk/internal/message"
	"go.klb.dev/clipmunk/internal/wire"
)

// Client is a connection to the daemon. It is not safe for concurrent use.
type Client struct {
	wc *wire.Conn
}

// New wraps an established connection.
func New(conn net.Conn, key *crypto.Key) *Client {
	return &Client{wc: wire.New(conn, key)}
}

// DialIPC connects to the daemon's local socket.
func DialIPC() (*Client, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", ipc.SocketPath(), err)
	}
	return New(conn, nil), nil
}

// DialTCP connects to a daemon's TCP listener. token may be empty when the
// daemon runs without one.
func DialTCP(addr, token string) (*Client, error) {
	var key *crypto.Key
	if token != "" {
		var err error
		if key, err = crypto.DeriveKey(token); err != nil {
			return nil, err
		}
	}
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return New(conn, key), nil
}

func (c *Client) Close() error { return c.wc.Close() }

// Call invokes method on channel and returns the raw JSON result (nil when
// the method returns nothing). Failures come back as *channel.Error or
// channel.ErrNotImplemented.
func (c *Client) Call(ctx context.Context, ch, method string, args any) (json.RawMessage, error) {
	req, err := message.NewCall(ch, method, args)
	if err != nil {
		return nil, err
	}
	resp, err := c.wc.Request(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := replyErr(resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Invoke runs a registered service. A service failure comes back as
// *channel.Error with the service's message.
func (c *Client) Invoke(ctx context.Context, service string) error {
	resp, err := c.wc.Request(ctx, message.NewInvoke(service))
	if err != nil {
		return err
	}
	return replyErr(resp)
}

// Services lists the daemon's registered services.
func (c *Client) Services(ctx context.Context) ([]string, error) {
	resp, err := c.wc.Request(ctx, &message.Message{Type: message.TypeServices, ID: message.NewID()})
	if err != nil {
		return nil, err
	}
	if err := replyErr(resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

// Ping checks that the daemon answers.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.wc.Request(ctx, &message.Message{Type: message.TypePing, ID: message.NewID()})
	if err != nil {
		return err
	}
	if resp.Type != message.TypePong {
		return fmt.Errorf("unexpected reply %s", resp.Type)
	}
	return nil
}

func replyErr(resp *message.Message) error {
	switch resp.Type {
	case message.TypeResult, message.TypePong:
		return nil
	case message.TypeNotImplemented:
		return channel.ErrNotImplemented
	case message.TypeError:
		if resp.Error == nil {
			return &channel.Error{Code: message.CodeInternal}
		}
		return &channel.Error{Code: resp.Error.Code, Message: resp.Error.Message, Details: resp.Error.Details}
	default:
		return fmt.Errorf("unexpected reply %s", resp.Type)
	}
}
