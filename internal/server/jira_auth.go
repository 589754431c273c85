package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"cardflow-backend/internal/store"
)

// GET /api/jira/status
// Returns { configured, connected?, account? }
func (s *Server) handleJiraStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	sid := getSessionID(r)

	resp := map[string]any{"configured": s.tracker.Configured()}
	if sid != "" {
		if account := s.sessions.GetAccount(sid); account != "" {
			resp["account"] = account
		}
	}

	if r.URL.Query().Get("test") == "true" && s.tracker.Configured() {
		ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
		defer cancel()
		user, err := s.tracker.TestConnection(ctx)
		if err != nil {
			resp["connected"] = false
			resp["error"] = err.Error()
		} else {
			resp["connected"] = true
			resp["account"] = user.DisplayName
			if sid != "" {
				s.sessions.SetAccount(sid, user.DisplayName)
			}
		}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GET /api/jira/auth
// Initiates the Atlassian OAuth flow and returns { url } for the browser
func (s *Server) handleJiraAuth(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil || s.oauthCfg.ClientID == "" || s.oauthCfg.ClientSecret == "" {
		s.writeError(w, http.StatusBadRequest, "atlassian oauth not configured")
		return
	}
	sid := getOrCreateSessionID(r, w)
	state := randomState()
	s.sessions.SetOAuthState(sid, state)
	url := s.oauthCfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("audience", "api.atlassian.com"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(map[string]string{"url": url, "sessionId": sid})
}

// GET /api/jira/callback?code=...&state=...
// Exchanges the code for a token and persists it
func (s *Server) handleJiraCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		s.writeError(w, http.StatusBadRequest, "atlassian oauth not configured")
		return
	}
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		s.writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	sid := s.sessions.GetSessionByOAuthState(state)
	if sid == "" || s.sessions.GetOAuthState(sid) != state {
		s.writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	ctx := r.Context()
	tok, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("oauth token exchange failed")
		s.writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}
	if err := s.tokenStore.Write(&store.OAuthToken{AccessToken: tok.AccessToken, TokenType: tok.TokenType}); err != nil {
		s.writeError(w, http.StatusInternalServerError, "token persist failed")
		return
	}

	// Record the account name so the status endpoint can show it
	if user, err := s.tracker.TestConnection(ctx); err == nil {
		s.sessions.SetAccount(sid, user.DisplayName)
	}
	s.sessions.ClearOAuthState(sid)

	// Cookie so popup and main window share the same session
	SetSessionCookie(w, sid)

	redirectURL := fmt.Sprintf("%s?jiraAuth=success", s.cfg.FrontendURL)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// GET /api/jira/reference
// Projects, issue types, priorities and statuses of the connected instance
func (s *Server) handleJiraReference(w http.ResponseWriter, r *http.Request) {
	if !s.tracker.Configured() {
		s.writeError(w, http.StatusBadRequest, "jira not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	ref, err := s.tracker.LoadReferenceData(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load jira reference data")
		s.writeError(w, http.StatusBadGateway, "failed to load jira reference data")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ref)
}

func randomState() string {
	var b [24]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
