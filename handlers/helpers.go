package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"clementus360/focusflow/config"
	"clementus360/focusflow/types"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		config.Logger.WithError(err).Warn("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindValidation, types.KindBadRequest:
		return http.StatusBadRequest
	case types.KindUnauthorized:
		return http.StatusUnauthorized
	case types.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func failureStatus(err *types.AppError) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	return statusFor(err.Kind)
}

func writeTaskResult(w http.ResponseWriter, res types.TaskResult, okStatus int) {
	if !res.Success {
		writeJSON(w, failureStatus(res.Err), res)
		return
	}
	writeJSON(w, okStatus, res)
}

func writeSessionResult(w http.ResponseWriter, res types.SessionResult, okStatus int) {
	if !res.Success {
		writeJSON(w, failureStatus(res.Err), res)
		return
	}
	writeJSON(w, okStatus, res)
}

// decodeBody decodes a JSON body into v. An empty body is accepted when
// optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
