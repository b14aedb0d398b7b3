// Package clip defines the pasteboard that paste services write into.
//
// The platform implementations live in clip/system so that packages which
// only need the interface (and tests using Memory) do not pull in cgo:
//
//	system/system.go        : golang.design/x/clipboard, all platforms
//	system/clear_darwin.go  : NSPasteboard clearContents via cgo
//	system/fallback.go      : github.com/atotto/clipboard (pbcopy, xclip, ...)
package clip

import "errors"

// ErrUnavailable is returned when no pasteboard can be reached, e.g. on a
// headless host.
var ErrUnavailable = errors.New("clip: pasteboard unavailable")

// Pasteboard is the system clipboard, reduced to plain text.
type Pasteboard interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Clear removes every representation from the pasteboard.
	Clear() error

	// WriteText places s on the pasteboard as plain text.
	WriteText(s string) error

	// ReadText returns the plain-text content, or "" if there is none.
	ReadText() (string, error)
}

// Headless is a Pasteboard for hosts without a display server. Reads are
// empty and writes fail with ErrUnavailable.
type Headless struct{}

func (Headless) Name() string              { return "headless (no-op)" }
func (Headless) Clear() error              { return nil }
func (Headless) WriteText(string) error    { return ErrUnavailable }
func (Headless) ReadText() (string, error) { return "", nil }
