package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/devghori1264/aerophoenix/razord/internal/commands"
	"github.com/devghori1264/aerophoenix/razord/internal/models"
	"github.com/devghori1264/aerophoenix/razord/internal/server"
)

// Service is what the HTTP layer needs from the node service.
type Service interface {
	Execute(ctx context.Context, name string, payload map[string]any) (commands.Result, error)
	CommandNames() []string
	Commands(ctx context.Context) ([]*models.CommandRecord, error)
	GetNode(ctx context.Context, name string) (*server.NodeView, error)
	ListNodes(ctx context.Context) ([]*server.NodeView, error)
}

// Credentials enables basic auth on /api when non-nil.
type Credentials struct {
	Username string
	Password string
}

type Handler struct {
	srv     Service
	metrics *Metrics
	logger  *zap.Logger
	creds   *Credentials
}

func NewHTTPHandler(srv Service, metrics *Metrics, creds *Credentials, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{srv: srv, metrics: metrics, logger: logger, creds: creds}

	r := mux.NewRouter()
	r.HandleFunc("/ping", h.handlePing).Methods(http.MethodGet)

	apiR := r.PathPrefix("/api").Subrouter()
	apiR.Use(h.basicAuth)
	apiR.HandleFunc("/commands", h.handleListCommands).Methods(http.MethodGet)
	apiR.HandleFunc("/commands/{command}", h.handleCommand).Methods(http.MethodPost)
	apiR.HandleFunc("/collections/commands", h.handleCommandHistory).Methods(http.MethodGet)
	apiR.HandleFunc("/collections/nodes", h.handleListNodes).Methods(http.MethodGet)
	apiR.HandleFunc("/collections/nodes/{name}", h.handleGetNode).Methods(http.MethodGet)

	return r
}

func (h *Handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"msg": "pong from razord"})
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	name := mux.Vars(r)["command"]

	status, body := h.runCommand(r, name)
	h.metrics.observe(name, status, started)
	if status >= http.StatusBadRequest {
		h.logger.Info("command response",
			zap.String("command", name),
			zap.Int("status", status),
			zap.Any("error", body["error"]))
	}
	writeJSON(w, status, body)
}

func (h *Handler) runCommand(r *http.Request, name string) (int, map[string]any) {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return http.StatusUnsupportedMediaType, errBody("content type must be application/json")
	}

	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return http.StatusBadRequest, errBody("invalid JSON payload")
	}
	payload, ok := raw.(map[string]any)
	if !ok {
		return http.StatusBadRequest, errBody("request body must be a JSON object")
	}

	res, err := h.srv.Execute(r.Context(), name, payload)
	if err != nil {
		status := commands.StatusFor(err)
		msg := err.Error()
		switch {
		case errors.Is(err, commands.ErrUnknownCommand):
			msg = "no command named " + name
		case status == http.StatusInternalServerError:
			h.logger.Error("command infrastructure failure", zap.String("command", name), zap.Error(err))
			msg = "internal error, retry later"
		}
		return status, errBody(msg)
	}
	return res.Status, map[string]any{"result": res.Message, "command": res.ID}
}

func (h *Handler) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"commands": h.srv.CommandNames()})
}

func (h *Handler) handleCommandHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := h.srv.Commands(r.Context())
	if err != nil {
		h.logger.Error("list commands", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to list commands"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": recs})
}

func (h *Handler) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.srv.ListNodes(r.Context())
	if err != nil {
		h.logger.Error("list nodes", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to list nodes"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": nodes})
}

func (h *Handler) handleGetNode(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	node, err := h.srv.GetNode(r.Context(), name)
	if err != nil {
		if errors.Is(err, server.ErrNodeNotFound) {
			writeJSON(w, http.StatusNotFound, errBody("no node named '"+name+"'"))
			return
		}
		h.logger.Error("get node", zap.String("node", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("failed to get node"))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (h *Handler) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.creds == nil {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(h.creds.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(h.creds.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="razord"`)
			writeJSON(w, http.StatusUnauthorized, errBody("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func errBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
