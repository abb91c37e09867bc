package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/jw6ventures/orgcal/internal/config"
	"github.com/jw6ventures/orgcal/internal/store"
)

// ErrInvalidCredentials is returned when a login attempt fails, without
// distinguishing an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service encapsulates the password and OIDC login flows and the session
// middleware built on top of them.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	sessions *SessionManager

	provider    *oidc.Provider
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// NewService wires the auth flows. When an OIDC issuer is configured, the
// provider is discovered up front so misconfiguration fails at startup.
func NewService(ctx context.Context, cfg *config.Config, st *store.Store, sessions *SessionManager) (*Service, error) {
	s := &Service{cfg: cfg, store: st, sessions: sessions}

	if cfg.SSOConfigured() {
		provider, err := oidc.NewProvider(ctx, cfg.OAuth.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("discover oidc provider: %w", err)
		}
		s.provider = provider
		s.oauthConfig = &oauth2.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  strings.TrimRight(cfg.BaseURL, "/") + cfg.OAuth.RedirectPath,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		}
		s.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.OAuth.ClientID})
	}

	return s, nil
}

// SSOEnabled reports whether the SSO login option should be offered.
func (s *Service) SSOEnabled() bool {
	return s.provider != nil
}

// LoginWithPassword checks an email/password pair and returns the account.
func (s *Service) LoginWithPassword(ctx context.Context, email, password string) (*store.User, error) {
	user, err := s.store.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.store.Users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// BeginOAuth starts the OIDC authorization flow.
func (s *Service) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	if !s.SSOEnabled() {
		http.Error(w, "sso is not configured", http.StatusNotFound)
		return
	}

	state, err := randomState()
	if err != nil {
		http.Error(w, "failed to start login", http.StatusInternalServerError)
		return
	}
	if err := s.sessions.IssueState(w, state); err != nil {
		http.Error(w, "failed to start login", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, s.oauthConfig.AuthCodeURL(state), http.StatusFound)
}

// HandleOAuthCallback completes the OIDC flow and creates a session.
func (s *Service) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !s.SSOEnabled() {
		http.Error(w, "sso is not configured", http.StatusNotFound)
		return
	}

	if !s.sessions.CheckState(w, r, r.URL.Query().Get("state")) {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token, err := s.oauthConfig.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "token exchange failed", http.StatusBadGateway)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "missing id token", http.StatusBadGateway)
		return
	}
	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		http.Error(w, "invalid id token", http.StatusBadGateway)
		return
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		http.Error(w, "id token has no email claim", http.StatusBadGateway)
		return
	}

	user, err := s.store.Users.UpsertOAuthUser(ctx, idToken.Subject, strings.ToLower(claims.Email))
	if err != nil {
		http.Error(w, "failed to store account", http.StatusInternalServerError)
		return
	}
	if err := s.store.Users.TouchLastLogin(ctx, user.ID); err != nil {
		http.Error(w, "failed to store account", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Issue(w, user.ID); err != nil {
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// StartSession issues a session cookie for an already authenticated user.
func (s *Service) StartSession(w http.ResponseWriter, user *store.User) error {
	return s.sessions.Issue(w, user.ID)
}

// ClearSession removes the session cookie.
func (s *Service) ClearSession(w http.ResponseWriter) {
	s.sessions.Clear(w)
}

// RequireSession loads the current user into the request context, or
// redirects to the login page.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.sessions.CurrentUserID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		user, err := s.store.Users.GetByID(r.Context(), userID)
		if err != nil {
			s.sessions.Clear(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin rejects requests from accounts without the admin role. It
// must run inside RequireSession.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
