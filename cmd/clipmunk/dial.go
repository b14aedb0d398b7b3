package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmunk/internal/client"
	"go.klb.dev/clipmunk/internal/ipc"
)

// addClientFlags adds the flags shared by commands that talk to the daemon.
func addClientFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("server", "", "daemon TCP address (default: local IPC socket)")
	f.String("token", "", "shared secret for --server (default: OS keyring)")
	f.Duration("timeout", 5*time.Second, "request timeout")
	addConfigFlag(cmd)
}

// connect opens a client to the local daemon, or to --server when given.
func connect(v *viper.Viper) (*client.Client, error) {
	if addr := v.GetString("server"); addr != "" {
		token := v.GetString("token")
		if token == "" {
			token = keyringToken()
		}
		return client.DialTCP(addr, token)
	}
	if !ipc.IsRunning() {
		return nil, fmt.Errorf("no clipmunk daemon on %s (start one with \"clipmunk serve\")", ipc.SocketPath())
	}
	return client.DialIPC()
}

func requestContext(v *viper.Viper) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), v.GetDuration("timeout"))
}

// withClient connects, runs fn with a request context, and closes the client.
func withClient(v *viper.Viper, fn func(ctx context.Context, c *client.Client) error) error {
	c, err := connect(v)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := requestContext(v)
	defer cancel()
	return fn(ctx, c)
}
