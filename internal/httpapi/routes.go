// Package httpapi exposes the daemon's channels and services over local
// HTTP and a websocket, for UI layers that cannot open the IPC socket.
//
//	POST /v1/channels/{channel}/{method}   body = JSON args
//	GET  /v1/services
//	POST /v1/services/{id}
//	GET  /v1/ws                            wire-protocol envelopes as JSON frames
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go.klb.dev/clipmunk/internal/message"
	"go.klb.dev/clipmunk/internal/server"
)

// maxBody bounds request bodies; templates are short strings.
const maxBody = 1 << 20

// Routes returns the HTTP handler. A non-empty token requires every request
// to carry "Authorization: Bearer <token>".
//
// Requests whose Origin is not a loopback page are refused with 403, and POST
// bodies must be application/json, so a web page in the user's browser can
// neither read nor trigger anything here.
func Routes(srv *server.Server, token string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requireLocalOrigin)
	if token != "" {
		r.Use(bearerAuth(token))
	}

	h := &handler{srv: srv}
	r.Route("/v1", func(r chi.Router) {
		r.With(requireContentType, middleware.AllowContentType("application/json")).Group(func(r chi.Router) {
			r.Post("/channels/{channel}/{method}", h.call)
			r.Post("/services/{id}", h.invoke)
		})
		r.Get("/services", h.listServices)
		r.Get("/ws", h.handleWS)
	})
	return r
}

type handler struct {
	srv *server.Server
}

type errorBody struct {
	Error *message.ErrorInfo `json:"error"`
}

func (h *handler) call(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{&message.ErrorInfo{Code: message.CodeBadRequest, Message: err.Error()}})
		return
	}
	req := &message.Message{
		Type:    message.TypeCall,
		ID:      message.NewID(),
		Channel: chi.URLParam(r, "channel"),
		Method:  chi.URLParam(r, "method"),
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		req.Args = body
	}
	h.reply(w, h.srv.Handle(r.Context(), req))
}

func (h *handler) listServices(w http.ResponseWriter, r *http.Request) {
	resp := h.srv.Handle(r.Context(), &message.Message{Type: message.TypeServices, ID: message.NewID()})
	writeJSON(w, http.StatusOK, map[string][]string{"services": resp.Services})
}

func (h *handler) invoke(w http.ResponseWriter, r *http.Request) {
	h.reply(w, h.srv.Handle(r.Context(), message.NewInvoke(chi.URLParam(r, "id"))))
}

// reply maps a wire reply onto an HTTP status and JSON body.
func (h *handler) reply(w http.ResponseWriter, resp *message.Message) {
	switch resp.Type {
	case message.TypeResult:
		result := resp.Result
		if len(result) == 0 {
			result = json.RawMessage("null")
		}
		writeJSON(w, http.StatusOK, map[string]json.RawMessage{"result": result})
	case message.TypeNotImplemented:
		writeJSON(w, http.StatusNotImplemented, errorBody{&message.ErrorInfo{Code: "NOT_IMPLEMENTED"}})
	case message.TypeError:
		writeJSON(w, errorStatus(resp.Error.Code), errorBody{resp.Error})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{&message.ErrorInfo{Code: message.CodeInternal}})
	}
}

func errorStatus(code string) int {
	switch code {
	case message.CodeUnknownService:
		return http.StatusNotFound
	case message.CodeServiceError:
		return http.StatusUnprocessableEntity
	case message.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("http: write response failed", "err", err)
	}
}

func requireLocalOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !localOrigin(r) {
			slog.Warn("http: refused cross-origin request", "origin", r.Header.Get("Origin"), "path", r.URL.Path)
			writeJSON(w, http.StatusForbidden, errorBody{&message.ErrorInfo{Code: "FORBIDDEN", Message: "cross-origin requests are not allowed"}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireContentType rejects POSTs with no Content-Type at all.
// middleware.AllowContentType lets bodiless requests through, which would
// leave simulatePaste open to a bare cross-site POST.
func requireContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") == "" {
			writeJSON(w, http.StatusUnsupportedMediaType, errorBody{&message.ErrorInfo{Code: message.CodeBadRequest, Message: "Content-Type must be application/json"}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	want := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody{&message.ErrorInfo{Code: "UNAUTHENTICATED"}})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
