package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"cardflow-backend/internal/ai"
	"cardflow-backend/internal/chat"
	"cardflow-backend/internal/config"
	"cardflow-backend/internal/db"
	"cardflow-backend/internal/jira"
	"cardflow-backend/internal/store"
	"cardflow-backend/internal/template"
	"cardflow-backend/internal/types"
)

type Server struct {
	router      *chi.Mux
	cfg         config.Config
	registry    *template.Registry
	aiClient    *ai.Client
	tracker     jira.Tracker
	sessions    *store.MemoryStore
	oauthCfg    *oauth2.Config
	tokenStore  *store.FileTokenStore
	database    *db.DB
	configStore *store.ConfigStore
}

func NewServer(cfg config.Config) (*Server, error) {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true, // Enable credentials for cookies
		MaxAge:           300,
	}))

	registry := template.NewRegistry()
	if cfg.TemplateCatalogFile != "" {
		var err error
		registry, err = template.LoadRegistry(cfg.TemplateCatalogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load template catalog: %w", err)
		}
		log.Info().Str("file", cfg.TemplateCatalogFile).Msg("template catalog loaded")
	}

	aiClient := ai.NewClient(ai.Config{
		APIURL:      cfg.OpenAIAPIURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: float32(cfg.OpenAITemperature),
		Timeout:     cfg.OpenAITimeout,
	})

	tokenStore := store.NewFileTokenStore(cfg.JiraTokenFile)
	tracker := jira.NewClient(jira.Config{
		BaseURL:        cfg.JiraBaseURL,
		Email:          cfg.JiraEmail,
		APIToken:       cfg.JiraAPIToken,
		DefaultProject: cfg.JiraDefaultProject,
		Timeout:        cfg.JiraTimeout,
	}, func() string {
		tok, _ := tokenStore.Read()
		if tok == nil {
			return ""
		}
		return tok.AccessToken
	})

	// OAuth2 config (may be partially empty if env not set; handlers check)
	oCfg := &oauth2.Config{
		ClientID:     cfg.AtlassianClientID,
		ClientSecret: cfg.AtlassianClientSecret,
		RedirectURL:  cfg.AtlassianRedirectURL,
		Scopes:       cfg.AtlassianScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://auth.atlassian.com/authorize",
			TokenURL: "https://auth.atlassian.com/oauth/token",
		},
	}

	// Database is optional; saved configs need it, the chat flow does not.
	var database *db.DB
	var configStore *store.ConfigStore
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info().Msg("database connection established")
		if err := database.RunMigrations("./migrations"); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		configStore = store.NewConfigStore(database)
	} else {
		log.Warn().Msg("DB_URL not provided, saved configurations are disabled")
	}

	sessions := store.NewMemoryStore(func() *chat.Conversation {
		return chat.New(chat.Options{
			Registry:   registry,
			Augmenter:  aiClient,
			Tracker:    tracker,
			ProjectKey: cfg.JiraDefaultProject,
		})
	})

	s := &Server{
		router:      r,
		cfg:         cfg,
		registry:    registry,
		aiClient:    aiClient,
		tracker:     tracker,
		sessions:    sessions,
		oauthCfg:    oCfg,
		tokenStore:  tokenStore,
		database:    database,
		configStore: configStore,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Delete("/api/chat", s.handleClearChat)
	s.router.Get("/api/templates", s.handleTemplates)
	// Jira connection
	s.router.Get("/api/jira/status", s.handleJiraStatus)
	s.router.Get("/api/jira/auth", s.handleJiraAuth)
	s.router.Get("/api/jira/callback", s.handleJiraCallback)
	s.router.Get("/api/jira/reference", s.handleJiraReference)
	// Saved configurations
	s.router.Get("/api/configs", s.handleListConfigs)
	s.router.Post("/api/configs", s.handleSaveConfig)
	s.router.Get("/api/configs/{id}", s.handleGetConfig)
	s.router.Delete("/api/configs/{id}", s.handleDeleteConfig)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sid := getOrCreateSessionID(r, w)

	ctx := r.Context()
	var resp types.ChatResponse
	s.sessions.Session(sid).Do(func(c *chat.Conversation) {
		replies := c.Process(ctx, req.Message)
		resp = types.ChatResponse{
			SessionID:      sid,
			Messages:       replies,
			HasPendingCard: c.Pending() != nil,
		}
		if len(replies) > 0 {
			resp.Reply = replies[len(replies)-1].Text
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)
	if sid == "" {
		s.writeError(w, http.StatusBadRequest, "no session")
		return
	}
	var resp types.ChatResponse
	s.sessions.Session(sid).Do(func(c *chat.Conversation) {
		replies := c.Clear()
		resp = types.ChatResponse{SessionID: sid, Messages: replies}
		if len(replies) > 0 {
			resp.Reply = replies[len(replies)-1].Text
		}
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
	}
	all := s.registry.All()
	out := make([]entry, 0, len(all))
	for _, t := range all {
		out = append(out, entry{ID: t.ID, Name: t.Name, Description: t.Description, Keywords: t.Keywords})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"templates": out})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

func newSessionID() string {
	return fmt.Sprintf("s_%d", time.Now().UnixNano())
}

// getSessionID retrieves the session ID from cookie, header or query
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets existing session ID or creates a new one, setting the cookie
func getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = newSessionID()
		log.Debug().Str("session", sid).Str("path", r.URL.Path).Msg("creating new session")
		SetSessionCookie(w, sid)
	}
	return sid
}
