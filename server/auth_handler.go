package server

import (
	"encoding/json"
	"net/http"

	"favefm/logger"
)

// statusPayload is the structured outcome body used by the identity routes.
type statusPayload struct {
	Status int    `json:"status"`
	Reason string `json:"reason"`
}

// SignupPageHandler renders the signup form.
func (h *APIHandler) SignupPageHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "signup.html", nil)
}

// SignupHandler registers a username. Signing up an existing username is a
// no-op; either way the client is sent on to the login page.
func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.FindUser(username)
	if err != nil {
		logger.Error("[Signup] failed to look up user", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if user == nil {
		if _, err := h.userRepo.CreateUser(username); err != nil {
			logger.Error("[Signup] failed to create user",
				logger.String("username", username),
				logger.ErrorField(err))
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
		logger.Info("[Signup] user created", logger.String("username", username))
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginPageHandler renders the login form.
func (h *APIHandler) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "login.html", nil)
}

// LoginHandler establishes a session for a registered username and redirects
// to the index page. Unknown usernames get the structured 401 payload and no
// session.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")

	user, err := h.userRepo.FindUser(username)
	if err != nil {
		logger.Error("[Login] failed to look up user", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if user == nil {
		logger.Warn("[Login] unknown username", logger.String("username", username))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(statusPayload{Status: 401, Reason: "Username or Password Error"})
		return
	}

	token, err := h.sessions.IssueToken(user.Username)
	if err != nil {
		logger.Error("[Login] failed to issue session token", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("[Login] session established", logger.String("username", user.Username))
	http.SetCookie(w, h.sessions.SessionCookie(token))
	http.Redirect(w, r, "/index", http.StatusFound)
}

// SignoutHandler terminates the session unconditionally and redirects to the
// login page.
func (h *APIHandler) SignoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.ExpiredCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}
