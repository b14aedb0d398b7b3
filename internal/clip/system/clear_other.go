//go:build !darwin

package system

import "golang.design/x/clipboard"

const nativeName = "native clipboard"

// Outside macOS there is no separate "clear" call; an empty text write
// replaces whatever the clipboard held.
func clearNative() { clipboard.Write(clipboard.FmtText, []byte{}) }
