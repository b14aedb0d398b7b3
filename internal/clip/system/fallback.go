package system

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// fallbackBackend shells out to pbcopy/xclip/xsel/wl-copy via atotto/clipboard.
type fallbackBackend struct{}

func newFallback() (fallbackBackend, bool) {
	return fallbackBackend{}, !clipboard.Unsupported
}

func (fallbackBackend) Name() string { return "command-line clipboard" }

func (fallbackBackend) Clear() error {
	if err := clipboard.WriteAll(""); err != nil {
		return fmt.Errorf("clear clipboard: %w", err)
	}
	return nil
}

func (fallbackBackend) WriteText(s string) error {
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

func (fallbackBackend) ReadText() (string, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return s, nil
}
