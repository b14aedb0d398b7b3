// Package keys synthesizes the paste keystroke that the clipboard channel's
// simulatePaste method delivers to the foreground application.
package keys

import "sync"

// Poster posts a paste keystroke (Cmd+V on macOS, Ctrl+V elsewhere) into the
// system input-event stream.
type Poster interface {
	PostPaste() error
}

// PosterFunc adapts a plain function to Poster.
type PosterFunc func() error

func (f PosterFunc) PostPaste() error { return f() }

// Recorder is a Poster that counts calls and returns Err.
type Recorder struct {
	mu  sync.Mutex
	n   int
	Err error
}

func (r *Recorder) PostPaste() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return r.Err
}

// Count returns how many keystrokes were posted.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}
