// Package wire frames clipmunk messages over a net.Conn, one message per
// line, optionally sealed with a crypto.Key.
//
// Wire format (plaintext, IPC socket):
//
//	<json>\n
//
// Wire format (sealed, TCP):
//
//	<base64(nonce+ciphertext)>\n
//
// Sealed messages are base64 so the framing is identical in both cases.
package wire

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"time"

	"go.klb.dev/clipmunk/internal/crypto"
	"go.klb.dev/clipmunk/internal/message"
)

const (
	// MaxMessageSize is the largest line accepted (1 MiB). Templates are short
	// strings; anything larger is a framing error.
	MaxMessageSize = 1 << 20

	writeDeadline = 5 * time.Second
)

// ErrTooLarge is returned by ReadMsg for a line over MaxMessageSize.
var ErrTooLarge = errors.New("wire: message too large")

// Conn wraps a net.Conn with line framing and optional encryption.
type Conn struct {
	conn net.Conn
	br   *bufio.Reader
	key  *crypto.Key // nil = plaintext
}

// New wraps conn. A non-nil key seals every message written and opens every
// message read.
func New(conn net.Conn, key *crypto.Key) *Conn {
	return &Conn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 64*1024),
		key:  key,
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// WriteMsg encodes msg, seals it if a key is set, and writes it as one line.
func (c *Conn) WriteMsg(msg *message.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	line := raw
	if c.key != nil {
		sealed, err := c.key.Seal(raw)
		if err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}
		line = []byte(base64.StdEncoding.EncodeToString(sealed))
	}
	line = append(line, '\n')

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_, err = c.conn.Write(line)
	_ = c.conn.SetWriteDeadline(time.Time{})
	return err
}

// ReadMsg reads one line, opens it if a key is set, and decodes it.
func (c *Conn) ReadMsg() (*message.Message, error) {
	var buf bytes.Buffer
	for {
		chunk, err := c.br.ReadSlice('\n')
		buf.Write(chunk)
		if buf.Len() > MaxMessageSize {
			return nil, ErrTooLarge
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	line := bytes.TrimRight(buf.Bytes(), "\r\n")

	raw := line
	if c.key != nil {
		sealed, err := base64.StdEncoding.DecodeString(string(line))
		if err != nil {
			return nil, fmt.Errorf("base64 decode: %w", err)
		}
		raw, err = c.key.Open(sealed)
		if err != nil {
			return nil, err
		}
	}
	return message.Decode(raw)
}

// Request writes req and waits for the reply carrying the same ID. Cancelling
// ctx aborts the exchange by expiring the connection deadline.
func (c *Conn) Request(ctx context.Context, req *message.Message) (*message.Message, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetDeadline(time.Now()) })
	defer stop()

	if err := c.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	for {
		resp, err := c.ReadMsg()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read: %w", err)
		}
		if resp.ID == req.ID {
			return resp, nil
		}
	}
}
