package handlers

import (
	"net/http"

	"clementus360/focusflow/auth"
	"clementus360/focusflow/types"
)

func (a *API) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions := a.Sessions.GetUserSessions(r.Context(), auth.UserFromContext(r.Context()), parseDays(r))
	writeJSON(w, http.StatusOK, types.GetSessionsResponse{Success: true, Sessions: sessions})
}

func (a *API) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req types.StartSessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	res := a.Sessions.StartSession(r.Context(), auth.UserFromContext(r.Context()), req.TaskID, req.Type, req.Duration)
	writeSessionResult(w, res, http.StatusCreated)
}

func (a *API) CompleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req types.CompleteSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	endTime := a.now()
	if req.EndTime != nil {
		endTime = *req.EndTime
	}

	res := a.Sessions.CompleteSession(r.Context(), auth.UserFromContext(r.Context()), sessionID, endTime)
	writeSessionResult(w, res, http.StatusOK)
}

func (a *API) CancelSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r)
	if !ok {
		return
	}
	res := a.Sessions.CancelSession(r.Context(), auth.UserFromContext(r.Context()), sessionID)
	writeSessionResult(w, res, http.StatusOK)
}
