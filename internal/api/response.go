// internal/api/response.go
//
// JSON response envelope.
//
// Context
// -------
// Every endpoint answers the same shape, success or failure:
//
//	{"message": "...", "data": <value or null>}
//
// Only the status code and message vary.  Internal errors never leak
// driver messages or stack traces; handlers log the cause and answer a
// generic message.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// envelope is the uniform response body.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// respond writes the envelope with the given status code.
func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Message: message, Data: data}); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

func ok(w http.ResponseWriter, message string, data any) {
	respond(w, http.StatusOK, message, data)
}

func badRequest(w http.ResponseWriter, message string) {
	respond(w, http.StatusBadRequest, message, nil)
}

func unauthorized(w http.ResponseWriter) {
	respond(w, http.StatusUnauthorized, "Unauthorized.", nil)
}

func notFound(w http.ResponseWriter, message string) {
	respond(w, http.StatusNotFound, message, nil)
}

func serverError(w http.ResponseWriter, message string) {
	respond(w, http.StatusInternalServerError, message, nil)
}
