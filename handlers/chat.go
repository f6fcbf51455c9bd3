package handlers

import (
	"net/http"

	"clementus360/focusflow/auth"
	"clementus360/focusflow/config"
	"clementus360/focusflow/types"
)

func (a *API) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := decodeBody(r, &req, false); err != nil {
		config.Logger.WithError(err).Warn("Failed to decode chat request")
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	resp, appErr := a.Assistant.Chat(r.Context(), auth.UserFromContext(r.Context()), req)
	if appErr != nil {
		switch appErr.Kind {
		case types.KindServiceUnavailable:
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{
				Error:   "AI service not configured",
				Message: appErr.Message,
			})
		case types.KindInternal, types.KindUpstream:
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{
				Error:   "Internal server error",
				Message: appErr.Message,
			})
		default:
			writeError(w, appErr.Message, statusFor(appErr.Kind))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
