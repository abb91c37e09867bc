package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jw6ventures/orgcal/internal/auth"
)

// LoginForm shows the login page. Authenticated users go straight home.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := h.withFlash(r, map[string]any{
		"Title":      "Logg inn",
		"SSOEnabled": h.authService.SSOEnabled(),
	})
	h.render(w, r, "login.html", data)
}

// Login handles the email/password form.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.redirect(w, r, "/login", map[string]string{"error": "missing_credentials"})
		return
	}

	user, err := h.authService.LoginWithPassword(r.Context(), email, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.redirect(w, r, "/login", map[string]string{"error": "invalid_credentials"})
		return
	}
	if err != nil {
		h.renderError(w, r, err, "login failed")
		return
	}

	if err := h.authService.StartSession(w, user); err != nil {
		h.renderError(w, r, err, "failed to start session")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
