package wire_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmunk/internal/crypto"
	"go.klb.dev/clipmunk/internal/message"
	"go.klb.dev/clipmunk/internal/wire"
)

func pipe(t *testing.T, clientKey, serverKey *crypto.Key) (*wire.Conn, *wire.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return wire.New(a, clientKey), wire.New(b, serverKey)
}

// echo answers every request on srv with a PONG carrying the request ID.
func echo(srv *wire.Conn) {
	for {
		req, err := srv.ReadMsg()
		if err != nil {
			return
		}
		if err := srv.WriteMsg(req.Reply(message.TypePong)); err != nil {
			return
		}
	}
}

func TestRequestPlaintext(t *testing.T) {
	cli, srv := pipe(t, nil, nil)
	go echo(srv)

	req := &message.Message{Type: message.TypePing, ID: message.NewID()}
	resp, err := cli.Request(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, message.TypePong, resp.Type)
	assert.Equal(t, req.ID, resp.ID)
}

func TestRequestEncrypted(t *testing.T) {
	k, err := crypto.DeriveKey("token")
	require.NoError(t, err)
	cli, srv := pipe(t, k, k)
	go echo(srv)

	call, err := message.NewCall("templates", "syncTemplates", map[string]string{"paste_template_0": strings.Repeat("x", 100_000)})
	require.NoError(t, err)
	resp, err := cli.Request(context.Background(), call)
	require.NoError(t, err)
	assert.Equal(t, call.ID, resp.ID)
}

func TestReadWrongKey(t *testing.T) {
	k1, _ := crypto.DeriveKey("one")
	k2, _ := crypto.DeriveKey("two")
	cli, srv := pipe(t, k1, k2)

	go func() { _ = cli.WriteMsg(&message.Message{Type: message.TypePing}) }()
	_, err := srv.ReadMsg()
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestRequestContextDeadline(t *testing.T) {
	cli, srv := pipe(t, nil, nil)
	// read but never answer
	go func() { _, _ = srv.ReadMsg() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := cli.Request(ctx, &message.Message{Type: message.TypePing, ID: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
