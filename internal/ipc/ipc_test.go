//go:build !windows

package ipc_test

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmunk/internal/ipc"
)

func TestListenDial(t *testing.T) {
	// t.TempDir paths can exceed the sun_path limit on macOS.
	dir, err := os.MkdirTemp("", "cm")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, "c.sock")
	t.Setenv("CLIPMUNK_SOCKET", path)
	assert.Equal(t, path, ipc.SocketPath())
	assert.False(t, ipc.IsRunning())

	var ln net.Listener
	ln, err = ipc.Listen()
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err == nil {
			_ = c.Close()
		}
	}()
	assert.True(t, ipc.IsRunning())
}
