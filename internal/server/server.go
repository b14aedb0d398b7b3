// Package server dispatches wire messages to the method channels and the
// service registry. It is transport-agnostic: Handle serves one request, and
// Serve runs it over every connection accepted from a listener.
//
// All requests are handled one at a time, in arrival order across every
// connection, so handlers observe the same single-threaded contract as a
// UI event loop.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"go.klb.dev/clipmunk/internal/channel"
	"go.klb.dev/clipmunk/internal/crypto"
	"go.klb.dev/clipmunk/internal/message"
	"go.klb.dev/clipmunk/internal/services"
	"go.klb.dev/clipmunk/internal/wire"
)

// Server routes requests to a Messenger and a Registry.
type Server struct {
	messenger *channel.Messenger
	registry  *services.Registry

	dispatchMu sync.Mutex

	connsMu sync.Mutex
	conns   map[*wire.Conn]struct{}
}

// New returns a Server.
func New(m *channel.Messenger, r *services.Registry) *Server {
	return &Server{
		messenger: m,
		registry:  r,
		conns:     make(map[*wire.Conn]struct{}),
	}
}

// Handle serves a single request and returns its reply.
func (s *Server) Handle(ctx context.Context, req *message.Message) *message.Message {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	switch req.Type {
	case message.TypeCall:
		return s.handleCall(ctx, req)
	case message.TypeInvoke:
		return s.handleInvoke(ctx, req)
	case message.TypeServices:
		r := req.Reply(message.TypeResult)
		r.Services = s.registry.IDs()
		return r
	case message.TypePing:
		return req.Reply(message.TypePong)
	default:
		return req.Fail(message.CodeBadRequest, "unknown message type "+string(req.Type), nil)
	}
}

func (s *Server) handleCall(ctx context.Context, req *message.Message) *message.Message {
	args, err := req.DecodeArgs()
	if err != nil {
		return req.Fail(message.CodeBadRequest, err.Error(), nil)
	}

	slog.Debug("channel call", "channel", req.Channel, "method", req.Method)
	result, err := s.messenger.Call(ctx, req.Channel, req.Method, args)

	var cerr *channel.Error
	switch {
	case err == nil:
	case errors.Is(err, channel.ErrNotImplemented):
		slog.Debug("channel method not implemented", "channel", req.Channel, "method", req.Method)
		return req.Reply(message.TypeNotImplemented)
	case errors.As(err, &cerr):
		return req.Fail(cerr.Code, cerr.Message, cerr.Details)
	default:
		slog.Error("channel call failed", "channel", req.Channel, "method", req.Method, "err", err)
		return req.Fail(message.CodeInternal, err.Error(), nil)
	}

	r := req.Reply(message.TypeResult)
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return req.Fail(message.CodeInternal, "encode result: "+err.Error(), nil)
		}
		r.Result = raw
	}
	return r
}

func (s *Server) handleInvoke(ctx context.Context, req *message.Message) *message.Message {
	err := s.registry.Invoke(ctx, req.Service)
	switch {
	case err == nil:
		return req.Reply(message.TypeResult)
	case errors.Is(err, services.ErrUnknownService):
		return req.Fail(message.CodeUnknownService, err.Error(), nil)
	default:
		return req.Fail(message.CodeServiceError, err.Error(), nil)
	}
}

// Serve accepts connections from ln until ctx is cancelled or ln fails.
// A non-nil key seals every message on these connections. Serve closes ln
// and every open connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener, key *crypto.Key) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
		s.closeConns()
	})
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		wc := wire.New(conn, key)
		s.track(wc, true)
		if ctx.Err() != nil {
			// cancelled between Accept and track; closeConns already ran
			_ = wc.Close()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.track(wc, false)
			s.serveConn(ctx, wc)
		}()
	}
}

// serveConn answers requests on wc until the peer hangs up.
func (s *Server) serveConn(ctx context.Context, wc *wire.Conn) {
	defer wc.Close()
	for {
		req, err := wc.ReadMsg()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Debug("connection read failed", "remote", wc.RemoteAddr(), "err", err)
			}
			return
		}
		if err := wc.WriteMsg(s.Handle(ctx, req)); err != nil {
			slog.Debug("connection write failed", "remote", wc.RemoteAddr(), "err", err)
			return
		}
	}
}

func (s *Server) track(wc *wire.Conn, add bool) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if add {
		s.conns[wc] = struct{}{}
	} else {
		delete(s.conns, wc)
	}
}

func (s *Server) closeConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for wc := range s.conns {
		_ = wc.Close()
	}
}
