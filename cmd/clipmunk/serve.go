package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmunk/internal/bridge"
	"go.klb.dev/clipmunk/internal/channel"
	"go.klb.dev/clipmunk/internal/clip/system"
	"go.klb.dev/clipmunk/internal/crypto"
	"go.klb.dev/clipmunk/internal/httpapi"
	"go.klb.dev/clipmunk/internal/ipc"
	"go.klb.dev/clipmunk/internal/keys/robot"
	"go.klb.dev/clipmunk/internal/server"
	"go.klb.dev/clipmunk/internal/services"
	"go.klb.dev/clipmunk/internal/settings"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipmunk daemon",
		Long: `Starts the clipmunk daemon. It registers the "Clipmunk - Paste 1..3"
services, serves the templates and clipboard channels on the local IPC
socket, and optionally on TCP (--addr) and HTTP/websocket (--http).

TCP traffic is sealed with a key derived from --token; HTTP requests must
carry "Authorization: Bearer <token>", and requests from non-loopback browser
origins are always refused. With no --token the OS keyring entry
written by "clipmunk token init" is used, if present.

Precedence (lowest → highest): defaults → config file → CLIPMUNK_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.String("addr", "", "TCP listen address for the wire protocol (empty = disabled)")
	f.String("http", "", "HTTP/websocket listen address, e.g. 127.0.0.1:8753 (empty = disabled)")
	f.String("token", "", "shared secret for TCP and HTTP (default: OS keyring)")
	f.String("db", "", "settings database path (default: <user config dir>/clipmunk/settings.db)")
	f.Bool("ephemeral", false, "keep templates in memory only")
	f.Bool("no-alerts", false, "do not show a desktop alert when a service fails")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	d := &daemon{v: v}
	svc, err := newSystemService(d, nil)
	if err != nil {
		return err
	}
	return svc.Run()
}

// daemon is the service.Interface behind "clipmunk serve". Start opens every
// listener before returning so that startup errors reach the caller.
type daemon struct {
	v *viper.Viper

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	store   settings.Store
	httpSrv *http.Server
}

func (d *daemon) Start(_ service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	if err := d.start(ctx); err != nil {
		cancel()
		d.shutdown()
		return err
	}
	return nil
}

func (d *daemon) Stop(_ service.Service) error {
	if d.cancel != nil {
		d.cancel()
	}
	d.shutdown()
	slog.Info("clipmunk stopped")
	return nil
}

func (d *daemon) start(ctx context.Context) error {
	v := d.v

	store, err := openStore(v)
	if err != nil {
		return err
	}
	d.store = store

	board := system.New()

	var alerter services.Alerter = services.DesktopAlerter{AppName: "Clipmunk"}
	if v.GetBool("no-alerts") {
		alerter = services.NopAlerter{}
	}

	messenger := channel.NewMessenger()
	if err := bridge.New(store, robot.New()).Register(messenger); err != nil {
		return err
	}
	registry := services.NewRegistry(services.WithAlerter(alerter))
	if err := services.RegisterPasteTemplates(registry, services.NewProvider(store, board)); err != nil {
		return err
	}
	srv := server.New(messenger, registry)

	token := v.GetString("token")
	if token == "" {
		token = keyringToken()
	}

	slog.Info("clipmunk starting",
		"version", Version,
		"pasteboard", board.Name(),
		"services", registry.IDs(),
		"channels", messenger.Channels(),
		"token", token != "",
	)

	ipcLn, err := ipc.Listen()
	if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		d.serve(ctx, srv, ipcLn, nil)
	}

	if addr := v.GetString("addr"); addr != "" {
		var key *crypto.Key
		if token != "" {
			if key, err = crypto.DeriveKey(token); err != nil {
				return fmt.Errorf("key derivation: %w", err)
			}
		} else {
			slog.Warn("TCP listener has no token; traffic is unencrypted", "addr", addr)
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		slog.Info("TCP listening", "addr", ln.Addr(), "encrypted", key != nil)
		d.serve(ctx, srv, ln, key)
	}

	if addr := v.GetString("http"); addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		d.httpSrv = &http.Server{
			Handler:           httpapi.Routes(srv, token),
			ReadHeaderTimeout: 5 * time.Second,
		}
		if token == "" {
			slog.Warn("HTTP listener has no token; any local process can call it", "addr", addr)
		}
		slog.Info("HTTP listening", "addr", ln.Addr(), "auth", token != "")
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("HTTP server failed", "err", err)
			}
		}()
	}
	return nil
}

func (d *daemon) serve(ctx context.Context, srv *server.Server, ln net.Listener, key *crypto.Key) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := srv.Serve(ctx, ln, key); err != nil {
			slog.Error("listener failed", "addr", ln.Addr(), "err", err)
		}
	}()
}

func (d *daemon) shutdown() {
	if d.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = d.httpSrv.Shutdown(ctx)
		cancel()
	}
	d.wg.Wait()
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			slog.Warn("closing settings failed", "err", err)
		}
	}
}

func openStore(v *viper.Viper) (settings.Store, error) {
	if v.GetBool("ephemeral") {
		slog.Info("settings kept in memory")
		return settings.NewMemory(), nil
	}
	path := v.GetString("db")
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	store, err := settings.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	slog.Info("settings opened", "path", path)
	return store, nil
}
