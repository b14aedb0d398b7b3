// Package bridge exposes the templates and clipboard method channels used by
// the UI layer: syncTemplates persists template slots for the paste services,
// simulatePaste posts a paste keystroke to the foreground application.
package bridge

import (
	"context"
	"log/slog"
	"sort"

	"go.klb.dev/clipmunk/internal/channel"
	"go.klb.dev/clipmunk/internal/keys"
	"go.klb.dev/clipmunk/internal/settings"
)

const (
	TemplatesChannel = "com.clipmunk.templates"
	ClipboardChannel = "com.clipmunk.clipboard"

	MethodSyncTemplates = "syncTemplates"
	MethodSimulatePaste = "simulatePaste"

	CodeInvalidArgs  = "INVALID_ARGS"
	CodeStorageError = "STORAGE_ERROR"
)

// Short channel names accepted alongside the fully qualified ones.
const (
	templatesAlias = "templates"
	clipboardAlias = "clipboard"
)

// Bridge serves the UI-facing channels.
type Bridge struct {
	store  settings.Store
	poster keys.Poster
}

// New returns a Bridge writing templates to store and pasting through poster.
func New(store settings.Store, poster keys.Poster) *Bridge {
	return &Bridge{store: store, poster: poster}
}

// Register installs the templates and clipboard channels on m.
func (b *Bridge) Register(m *channel.Messenger) error {
	templates := channel.New(TemplatesChannel).Handle(MethodSyncTemplates, b.SyncTemplates)
	if err := m.Register(templates, templatesAlias); err != nil {
		return err
	}
	clipboard := channel.New(ClipboardChannel).Handle(MethodSimulatePaste, b.SimulatePaste)
	return m.Register(clipboard, clipboardAlias)
}

// SyncTemplates writes every entry of a string→string mapping to settings and
// forces them to durable storage. Any other argument shape fails with
// INVALID_ARGS before anything is written.
func (b *Bridge) SyncTemplates(_ context.Context, args any) (any, error) {
	entries, ok := stringMap(args)
	if !ok {
		return nil, &channel.Error{Code: CodeInvalidArgs, Message: "expected map of index->content"}
	}

	names := make([]string, 0, len(entries))
	for k := range entries {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if err := b.store.Set(k, entries[k]); err != nil {
			return nil, &channel.Error{Code: CodeStorageError, Message: err.Error()}
		}
	}
	if err := b.store.Sync(); err != nil {
		return nil, &channel.Error{Code: CodeStorageError, Message: err.Error()}
	}

	logTemplates(names, entries)
	return nil, nil
}

// SimulatePaste posts Cmd+V. It always succeeds: a keystroke that could not
// be created or posted is logged and dropped.
func (b *Bridge) SimulatePaste(_ context.Context, _ any) (any, error) {
	if err := b.poster.PostPaste(); err != nil {
		slog.Debug("paste keystroke dropped", "err", err)
		return nil, nil
	}
	slog.Debug("paste keystroke posted")
	return nil, nil
}

// stringMap accepts map[string]string as-is and map[string]any (decoded
// JSON) only when every value is a string.
func stringMap(args any) (map[string]string, bool) {
	switch m := args.(type) {
	case map[string]string:
		if m == nil {
			return nil, false
		}
		return m, true
	case map[string]any:
		if m == nil {
			return nil, false
		}
		out := make(map[string]string, len(m))
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// logTemplates logs the synced keys at INFO and a content preview (up to 120
// runes) at DEBUG.
func logTemplates(names []string, entries map[string]string) {
	slog.Info("templates synced", "keys", names)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, k := range names {
		slog.Debug("template", "key", k, "preview", truncate(entries[k], previewRunes))
	}
}

const previewRunes = 120

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "…"
		}
		count++
	}
	return s
}
