// Package robot posts synthetic key events through go-vgo/robotgo, which on
// macOS creates CGEvents from the HID system state source and posts them at
// the HID event tap.
package robot

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Poster implements keys.Poster with robotgo.
type Poster struct {
	// Modifier is held while "v" is pressed.
	Modifier string
}

// New returns a Poster using the platform paste modifier.
func New() *Poster {
	mod := "ctrl"
	if runtime.GOOS == "darwin" {
		mod = "cmd"
	}
	return &Poster{Modifier: mod}
}

// PostPaste sends a key-down then a key-up for "v" with the modifier held.
func (p *Poster) PostPaste() error {
	if err := robotgo.KeyToggle("v", "down", p.Modifier); err != nil {
		return fmt.Errorf("key down: %w", err)
	}
	if err := robotgo.KeyToggle("v", "up", p.Modifier); err != nil {
		return fmt.Errorf("key up: %w", err)
	}
	return nil
}
