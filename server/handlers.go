package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"favefm/config"
	"favefm/core/auth"
	"favefm/core/discovery"
	"favefm/logger"
	"favefm/model"
	"favefm/repository"
	"favefm/web"
)

// APIHandler handles all HTTP requests.
type APIHandler struct {
	userRepo  repository.UserRepository
	discovery *discovery.Service
	sessions  *auth.SessionManager
	templates *template.Template
	cfg       *config.Config
}

// NewAPIHandler creates a new API handler with the page templates parsed.
func NewAPIHandler(
	userRepo repository.UserRepository,
	discoverySvc *discovery.Service,
	sessions *auth.SessionManager,
	cfg *config.Config,
) (*APIHandler, error) {
	templates, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	return &APIHandler{
		userRepo:  userRepo,
		discovery: discoverySvc,
		sessions:  sessions,
		templates: templates,
		cfg:       cfg,
	}, nil
}

// currentUser resolves the session cookie to a persisted user. Returns nil
// when there is no cookie, the token does not verify, or the username no
// longer maps to a user record.
func (h *APIHandler) currentUser(r *http.Request) *model.User {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil {
		return nil
	}

	claims, err := h.sessions.ParseToken(cookie.Value)
	if err != nil {
		return nil
	}

	user, err := h.userRepo.FindUser(claims.Username)
	if err != nil {
		logger.Error("[Auth] failed to resolve session user",
			logger.String("username", claims.Username),
			logger.ErrorField(err))
		return nil
	}
	return user
}

// RequirePage guards a page route; unauthenticated requests are redirected
// to the login page.
func (h *APIHandler) RequirePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), "username", user.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireUser guards an API route; unauthenticated requests get a plain 401.
func (h *APIHandler) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "username", user.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUsernameFromContext extracts the username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value("username").(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

// renderPage executes one of the embedded page templates.
func (h *APIHandler) renderPage(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		logger.Error("[Render] failed to execute template",
			logger.String("template", name),
			logger.ErrorField(err))
	}
}
