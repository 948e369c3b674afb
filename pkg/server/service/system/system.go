package system

import (
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/synapse/pkg/utils"
)

// NewHandler registers the welcome, health and logger routes. db may be nil
// when no database is configured.
func NewHandler(mux *http.ServeMux, levelVar *slog.LevelVar, db Pinger) *Handler {
	h := &Handler{
		logLevel: utils.NewLogLevelHandler(levelVar),
		db:       db,
	}
	h.RegisterRoutes(mux)

	return h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handlerRootGet)
	mux.HandleFunc("GET /v1/health", h.handlerHealthGet)
	mux.HandleFunc("GET /v1/logger", h.logLevel.HandleGet)
	mux.HandleFunc("PUT /v1/logger", h.logLevel.HandleUpdate)
}

func (h *Handler) handlerRootGet(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Message string `json:"message"`
	}{
		Message: WelcomeMessage,
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

// handlerHealthGet always answers 200, a failing database is reported in the body.
func (h *Handler) handlerHealthGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerHealthGet")
	defer slog.Debug("<<handlerHealthGet")

	response := struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}{
		Status:   "ok",
		Database: h.databaseStatus(r),
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) databaseStatus(r *http.Request) string {
	if h.db == nil {
		return DatabaseDisabled
	}

	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Warn("Database ping failed", "request_id", utils.RequestIDFromContext(r.Context()), "error", err)
		return DatabaseError
	}

	return DatabaseOK
}
