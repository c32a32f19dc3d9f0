package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"favefm/core/discovery"
	"favefm/logger"
)

// saveRequest is the body of POST /save.
type saveRequest struct {
	NewArtist []string `json:"new_artist"`
}

// RootHandler sends authenticated visitors to the index page and everyone
// else to login.
func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	if h.currentUser(r) != nil {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// IndexHandler renders the index page with the playback payload embedded as
// JSON. A user without saved artists gets the empty payload; a provider
// failure fails the request.
func (h *APIHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	username, err := GetUsernameFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playback, err := h.discovery.PickTrack(r.Context(), username)
	if err != nil {
		if errors.Is(err, discovery.ErrUpstream) {
			logger.Error("[Index] music provider failure", logger.ErrorField(err))
			http.Error(w, "Music provider unavailable", http.StatusBadGateway)
			return
		}
		logger.Error("[Index] failed to build playback", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(playback)
	if err != nil {
		logger.Error("[Index] failed to marshal playback", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderPage(w, "index.html", struct {
		Data template.JS
	}{Data: template.JS(data)})
}

// SaveArtistsHandler runs the save workflow for the submitted artist IDs and
// reports the structured outcome.
func (h *APIHandler) SaveArtistsHandler(w http.ResponseWriter, r *http.Request) {
	username, err := GetUsernameFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.discovery.SaveFavorites(r.Context(), username, req.NewArtist)
	if err != nil {
		if errors.Is(err, discovery.ErrUpstream) {
			logger.Error("[Save] music provider failure", logger.ErrorField(err))
			http.Error(w, "Music provider unavailable", http.StatusBadGateway)
			return
		}
		logger.Error("[Save] failed to save favorites", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(outcome.Status)
	json.NewEncoder(w).Encode(outcome)
}
