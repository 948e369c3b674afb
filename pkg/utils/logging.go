package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
	"fatal":   slog.LevelError, // No fatal in slog, map to error.
}

// ParseLogLevel accepts the level names used by the -log_level flag and the
// logger endpoint. Unknown names return LevelInfo and an error.
func ParseLogLevel(logLevel string) (slog.Level, error) {
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(logLevel))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", logLevel)
	}

	return level, nil
}

// NewLogger returns a text logger whose level follows levelVar.
func NewLogger(w io.Writer, levelVar *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

const maxLogLevelBody = 1 << 10

// LogLevelHandler reads and changes the level of a running logger.
type LogLevelHandler struct {
	levelVar *slog.LevelVar
}

type logLevelBody struct {
	LogLevel string `json:"log_level"`
}

func NewLogLevelHandler(levelVar *slog.LevelVar) *LogLevelHandler {
	return &LogLevelHandler{levelVar: levelVar}
}

func (lh *LogLevelHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, logLevelBody{LogLevel: lh.levelVar.Level().String()})
}

// HandleUpdate sets the level from a {"log_level": "..."} body and echoes the
// level now in effect.
func (lh *LogLevelHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var request logLevelBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLogLevelBody)).Decode(&request); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	level, err := ParseLogLevel(request.LogLevel)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid log level", err)
		return
	}

	previous := lh.levelVar.Level()
	lh.levelVar.Set(level)
	slog.Info("Log level updated", "from", previous.String(), "to", level.String(), "request_id", RequestIDFromContext(r.Context()))

	RespondWithJSON(w, http.StatusOK, logLevelBody{LogLevel: level.String()})
}
