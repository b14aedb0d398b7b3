package bridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmunk/internal/bridge"
	"go.klb.dev/clipmunk/internal/channel"
	"go.klb.dev/clipmunk/internal/clip"
	"go.klb.dev/clipmunk/internal/keys"
	"go.klb.dev/clipmunk/internal/services"
	"go.klb.dev/clipmunk/internal/settings"
)

func newMessenger(t *testing.T, store settings.Store, poster keys.Poster) *channel.Messenger {
	t.Helper()
	m := channel.NewMessenger()
	require.NoError(t, bridge.New(store, poster).Register(m))
	return m
}

func TestSyncTemplatesWritesAndSyncs(t *testing.T) {
	store := settings.NewMemory()
	m := newMessenger(t, store, &keys.Recorder{})

	res, err := m.Call(context.Background(), "templates", bridge.MethodSyncTemplates,
		map[string]any{"paste_template_0": "Hello"})
	require.NoError(t, err)
	assert.Nil(t, res)

	v, ok, err := store.Get("paste_template_0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hello", v)
	assert.Equal(t, 1, store.Syncs())
}

func TestSyncTemplatesAcceptsTypedMapAndEmptyValues(t *testing.T) {
	store := settings.NewMemory()
	m := newMessenger(t, store, &keys.Recorder{})

	_, err := m.Call(context.Background(), bridge.TemplatesChannel, bridge.MethodSyncTemplates,
		map[string]string{"paste_template_1": "", "anything": "goes"})
	require.NoError(t, err)

	stored, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"anything", "paste_template_1"}, stored)
}

func TestSyncTemplatesInvalidArgs(t *testing.T) {
	cases := map[string]any{
		"nil":        nil,
		"string":     "paste_template_0",
		"list":       []any{"a", "b"},
		"non-string": map[string]any{"paste_template_0": "ok", "paste_template_1": 42.0},
		"nil typed":  map[string]string(nil),
		"nested map": map[string]any{"paste_template_0": map[string]any{}},
		"int keyed":  map[int]string{0: "x"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			store := settings.NewMemory()
			m := newMessenger(t, store, &keys.Recorder{})

			_, err := m.Call(context.Background(), "templates", bridge.MethodSyncTemplates, args)

			var cerr *channel.Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, "INVALID_ARGS", cerr.Code)
			assert.Equal(t, "expected map of index->content", cerr.Message)

			stored, err := store.Keys()
			require.NoError(t, err)
			assert.Empty(t, stored)
			assert.Zero(t, store.Syncs())
		})
	}
}

func TestSyncTemplatesStorageError(t *testing.T) {
	store := settings.NewMemory()
	require.NoError(t, store.Close())
	m := newMessenger(t, store, &keys.Recorder{})

	_, err := m.Call(context.Background(), "templates", bridge.MethodSyncTemplates, map[string]any{"k": "v"})
	var cerr *channel.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, bridge.CodeStorageError, cerr.Code)
}

func TestSimulatePasteAlwaysSucceeds(t *testing.T) {
	ok := &keys.Recorder{}
	broken := &keys.Recorder{Err: errors.New("event source unavailable")}

	for _, poster := range []*keys.Recorder{ok, broken} {
		m := newMessenger(t, settings.NewMemory(), poster)
		res, err := m.Call(context.Background(), "clipboard", bridge.MethodSimulatePaste, nil)
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, 1, poster.Count())
	}

	calls := 0
	denied := keys.PosterFunc(func() error {
		calls++
		return errors.New("not trusted for accessibility")
	})
	m := newMessenger(t, settings.NewMemory(), denied)
	_, err := m.Call(context.Background(), bridge.ClipboardChannel, bridge.MethodSimulatePaste, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUnknownMethodsNotImplemented(t *testing.T) {
	m := newMessenger(t, settings.NewMemory(), &keys.Recorder{})

	for _, ch := range []string{"templates", "clipboard", bridge.TemplatesChannel, bridge.ClipboardChannel} {
		_, err := m.Call(context.Background(), ch, "getTemplates", nil)
		assert.ErrorIs(t, err, channel.ErrNotImplemented, ch)
	}
	// methods are not shared across channels
	_, err := m.Call(context.Background(), "clipboard", bridge.MethodSyncTemplates, map[string]any{})
	assert.ErrorIs(t, err, channel.ErrNotImplemented)
}

func TestSyncedTemplatesReachPasteServices(t *testing.T) {
	store := settings.NewMemory()
	board := clip.NewMemory("")
	m := newMessenger(t, store, &keys.Recorder{})
	reg := services.NewRegistry()
	require.NoError(t, services.RegisterPasteTemplates(reg, services.NewProvider(store, board)))

	contents := []string{"first", "second\nline", "third ✓"}
	args := map[string]any{}
	for i, c := range contents {
		args[settings.TemplateKey(i)] = c
	}
	_, err := m.Call(context.Background(), "templates", bridge.MethodSyncTemplates, args)
	require.NoError(t, err)

	for i, c := range contents {
		require.NoError(t, reg.Invoke(context.Background(), services.PasteServiceName(i)))
		got, err := board.ReadText()
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}
