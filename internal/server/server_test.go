package server_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmunk/internal/bridge"
	"go.klb.dev/clipmunk/internal/channel"
	"go.klb.dev/clipmunk/internal/client"
	"go.klb.dev/clipmunk/internal/clip"
	"go.klb.dev/clipmunk/internal/crypto"
	"go.klb.dev/clipmunk/internal/keys"
	"go.klb.dev/clipmunk/internal/message"
	"go.klb.dev/clipmunk/internal/server"
	"go.klb.dev/clipmunk/internal/services"
	"go.klb.dev/clipmunk/internal/settings"
)

type fixture struct {
	srv    *server.Server
	store  *settings.MemoryStore
	board  *clip.Memory
	poster *keys.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  settings.NewMemory(),
		board:  clip.NewMemory(""),
		poster: &keys.Recorder{},
	}
	m := channel.NewMessenger()
	require.NoError(t, bridge.New(f.store, f.poster).Register(m))
	reg := services.NewRegistry()
	require.NoError(t, services.RegisterPasteTemplates(reg, services.NewProvider(f.store, f.board)))
	f.srv = server.New(m, reg)
	return f
}

func TestHandleCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := message.NewCall("templates", "syncTemplates", map[string]string{"paste_template_0": "Hello"})
	require.NoError(t, err)
	resp := f.srv.Handle(ctx, req)
	assert.Equal(t, message.TypeResult, resp.Type)
	assert.Equal(t, req.ID, resp.ID)
	assert.Empty(t, resp.Result)

	v, _, _ := f.store.Get("paste_template_0")
	assert.Equal(t, "Hello", v)
}

func TestHandleCallInvalidArgs(t *testing.T) {
	f := newFixture(t)
	req, err := message.NewCall("templates", "syncTemplates", []string{"nope"})
	require.NoError(t, err)

	resp := f.srv.Handle(context.Background(), req)
	require.Equal(t, message.TypeError, resp.Type)
	assert.Equal(t, "INVALID_ARGS", resp.Error.Code)
	assert.Equal(t, "expected map of index->content", resp.Error.Message)
}

func TestHandleCallMalformedArgs(t *testing.T) {
	f := newFixture(t)
	req := &message.Message{Type: message.TypeCall, ID: "1", Channel: "templates", Method: "syncTemplates", Args: []byte("{")}
	resp := f.srv.Handle(context.Background(), req)
	require.Equal(t, message.TypeError, resp.Type)
	assert.Equal(t, message.CodeBadRequest, resp.Error.Code)
}

func TestHandleNotImplemented(t *testing.T) {
	f := newFixture(t)
	for _, c := range []struct{ channel, method string }{
		{"templates", "deleteTemplates"},
		{"clipboard", "simulateCopy"},
		{"nope", "syncTemplates"},
	} {
		req, err := message.NewCall(c.channel, c.method, nil)
		require.NoError(t, err)
		assert.Equal(t, message.TypeNotImplemented, f.srv.Handle(context.Background(), req).Type)
	}
}

func TestHandleInvoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.srv.Handle(ctx, message.NewInvoke("Clipmunk - Paste 2"))
	require.Equal(t, message.TypeError, resp.Type)
	assert.Equal(t, message.CodeServiceError, resp.Error.Code)
	assert.Equal(t, "Template 2 is empty", resp.Error.Message)

	require.NoError(t, f.store.Set("paste_template_1", "two"))
	resp = f.srv.Handle(ctx, message.NewInvoke("Clipmunk - Paste 2"))
	assert.Equal(t, message.TypeResult, resp.Type)
	text, _ := f.board.ReadText()
	assert.Equal(t, "two", text)

	resp = f.srv.Handle(ctx, message.NewInvoke("Clipmunk - Paste 9"))
	require.Equal(t, message.TypeError, resp.Type)
	assert.Equal(t, message.CodeUnknownService, resp.Error.Code)
}

func TestHandleUnknownType(t *testing.T) {
	f := newFixture(t)
	resp := f.srv.Handle(context.Background(), &message.Message{Type: "BOGUS", ID: "x"})
	require.Equal(t, message.TypeError, resp.Type)
	assert.Equal(t, message.CodeBadRequest, resp.Error.Code)
}

func TestServeOverTCP(t *testing.T) {
	f := newFixture(t)
	key, err := crypto.DeriveKey("token")
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln, key) }()

	c, err := client.DialTCP(ln.Addr().String(), "token")
	require.NoError(t, err)
	defer c.Close()

	rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rcancel()

	require.NoError(t, c.Ping(rctx))

	_, err = c.Call(rctx, "templates", "syncTemplates", map[string]string{
		"paste_template_0": "a", "paste_template_1": "b", "paste_template_2": "c",
	})
	require.NoError(t, err)

	ids, err := c.Services(rctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	for i, want := range []string{"a", "b", "c"} {
		require.NoError(t, c.Invoke(rctx, services.PasteServiceName(i)))
		got, _ := f.board.ReadText()
		assert.Equal(t, want, got)
	}

	_, err = c.Call(rctx, "clipboard", "simulatePaste", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.poster.Count())

	_, err = c.Call(rctx, "clipboard", "unknown", nil)
	assert.ErrorIs(t, err, channel.ErrNotImplemented)

	_, err = c.Call(rctx, "templates", "syncTemplates", "bad")
	var cerr *channel.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "INVALID_ARGS", cerr.Code)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeRejectsWrongToken(t *testing.T) {
	f := newFixture(t)
	key, _ := crypto.DeriveKey("right")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.srv.Serve(ctx, ln, key) }()

	c, err := client.DialTCP(ln.Addr().String(), "wrong")
	require.NoError(t, err)
	defer c.Close()

	rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer rcancel()
	assert.Error(t, c.Ping(rctx))
}
