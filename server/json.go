package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/terrafusion/auth-gateway/internal/apperror"
)

type errorBody struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, status int, kind apperror.Kind, message string) {
	writeJSON(w, status, errorBody{Error: message, ErrorType: string(kind)})
}

func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, apperror.StatusOf(err), apperror.KindOf(err), err.Error())
}
