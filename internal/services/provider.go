package services

import (
	"context"
	"fmt"

	"go.klb.dev/clipmunk/internal/clip"
	"go.klb.dev/clipmunk/internal/settings"
)

// EmptyTemplateError reports that a template slot has no content.
type EmptyTemplateError struct {
	Index int // zero-based slot index
}

func (e *EmptyTemplateError) Error() string {
	return fmt.Sprintf("Template %d is empty", e.Index+1)
}

// PasteServiceName returns the menu title of the service for slot index.
func PasteServiceName(index int) string {
	return fmt.Sprintf("Clipmunk - Paste %d", index+1)
}

// Provider copies template slots onto the pasteboard.
type Provider struct {
	store settings.Store
	board clip.Pasteboard
}

// NewProvider returns a Provider reading from store and writing to board.
func NewProvider(store settings.Store, board clip.Pasteboard) *Provider {
	return &Provider{store: store, board: board}
}

// PasteTemplate replaces the pasteboard contents with the template stored in
// slot index. An absent or empty template yields *EmptyTemplateError and
// leaves the pasteboard untouched.
func (p *Provider) PasteTemplate(_ context.Context, index int) error {
	content, err := settings.Template(p.store, index)
	if err != nil {
		return fmt.Errorf("read template %d: %w", index+1, err)
	}
	if content == "" {
		return &EmptyTemplateError{Index: index}
	}

	if err := p.board.Clear(); err != nil {
		return fmt.Errorf("clear pasteboard: %w", err)
	}
	if err := p.board.WriteText(content); err != nil {
		return fmt.Errorf("write pasteboard: %w", err)
	}
	return nil
}

// RegisterPasteTemplates registers one paste service per template slot.
func RegisterPasteTemplates(r *Registry, p *Provider) error {
	for i := 0; i < settings.SlotCount; i++ {
		index := i
		err := r.Register(PasteServiceName(index), func(ctx context.Context) error {
			return p.PasteTemplate(ctx, index)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
