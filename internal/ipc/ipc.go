// Package ipc locates and opens the local socket that the clipmunk daemon
// serves the wire protocol on. CLI sub-commands and the UI layer on the same
// machine use it instead of the optional TCP listener.
//
//   - Linux:   $XDG_RUNTIME_DIR/clipmunk.sock
//   - macOS:   $TMPDIR/clipmunk.sock
//   - Windows: \\.\pipe\clipmunk (go-winio)
//
// $CLIPMUNK_SOCKET overrides the path on every platform except Windows.
package ipc

import (
	"net"
	"os"
	"time"
)

const dialTimeout = 2 * time.Second

// SocketPath returns the platform-appropriate path for the IPC socket.
func SocketPath() string {
	if s := os.Getenv("CLIPMUNK_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// Listen opens the IPC listener.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to a running daemon.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}

// IsRunning reports whether a daemon appears to be listening. It does a
// cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
