//go:build darwin

package system

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// void clipmunk_clear_contents() {
//     [[NSPasteboard generalPasteboard] clearContents];
// }
import "C"

const nativeName = "macOS NSPasteboard"

func clearNative() { C.clipmunk_clear_contents() }
