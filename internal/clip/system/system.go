// Package system connects clip.Pasteboard to the real OS clipboard.
package system

import (
	"log/slog"

	"golang.design/x/clipboard"

	"go.klb.dev/clipmunk/internal/clip"
)

type nativeBackend struct{}

// New returns the best available pasteboard for this host: the native
// golang.design backend, then the command-line fallback, then clip.Headless.
// clipboard.Init is called here rather than in init() so that CLI
// sub-commands that never touch the pasteboard don't log spurious warnings.
func New() clip.Pasteboard {
	err := clipboard.Init()
	if err == nil {
		return nativeBackend{}
	}
	slog.Warn("native clipboard unavailable", "err", err)
	if fb, ok := newFallback(); ok {
		slog.Info("using command-line clipboard fallback")
		return fb
	}
	slog.Warn("no clipboard available, running headless")
	return clip.Headless{}
}

func (nativeBackend) Name() string { return nativeName }

func (nativeBackend) Clear() error {
	clearNative()
	return nil
}

func (nativeBackend) WriteText(s string) error {
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}

func (nativeBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}
