package utils

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/synapse/pkg/directory"
)

func RespondWithJSON(writer http.ResponseWriter, code int, payload interface{}) {
	resultData, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(writer, http.StatusInternalServerError, "Error marshalling result", err)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	writer.Write(resultData)
}

func RespondWithError(writer http.ResponseWriter, code int, message string, err error) {
	slog.Error(message, "http_status", code, "error", err)

	response := struct {
		Error string `json:"error"`
	}{
		Error: message,
	}

	RespondWithJSON(writer, code, response)
}

// RespondWithUpstreamError picks the status code from the directory error taxonomy.
func RespondWithUpstreamError(writer http.ResponseWriter, request *http.Request, message string, err error) {
	code := StatusForError(err)
	slog.Error(message, "http_status", code, "request_id", RequestIDFromContext(request.Context()), "error", err)

	response := struct {
		Error string `json:"error"`
	}{
		Error: message + ": " + err.Error(),
	}

	RespondWithJSON(writer, code, response)
}

func StatusForError(err error) int {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, directory.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, directory.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, directory.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, directory.ErrNotSupported):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}

func RespondWithString(writer http.ResponseWriter, contentType string, code int, msg string) {
	writer.Header().Set("Content-Type", contentType)
	writer.WriteHeader(code)
	io.WriteString(writer, msg)
}

func RespondWithNoContent(writer http.ResponseWriter, code int) {
	writer.WriteHeader(code)
}
