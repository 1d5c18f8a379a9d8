package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sloghttp "github.com/samber/slog-http"
	feedService "github.com/subonly/gate/internal/modules/feed/service"
	policyDomain "github.com/subonly/gate/internal/modules/policy/domain"
	policyService "github.com/subonly/gate/internal/modules/policy/service"
	settingsDomain "github.com/subonly/gate/internal/modules/settings/domain"
	settingsService "github.com/subonly/gate/internal/modules/settings/service"
	"github.com/subonly/gate/internal/shared/config"
	sharederrors "github.com/subonly/gate/internal/shared/errors"
)

// Server exposes the decision engine and the management API over HTTP.
type Server struct {
	cfg      *config.Config
	engine   *policyService.Engine
	settings *settingsService.Service
	resolver settingsService.Resolver
	feeds    *feedService.Service
	logger   *slog.Logger
}

// New creates a new HTTP server.
func New(cfg *config.Config, engine *policyService.Engine, settings *settingsService.Service, resolver settingsService.Resolver, feeds *feedService.Service) *Server {
	return &Server{
		cfg:      cfg,
		engine:   engine,
		settings: settings,
		resolver: resolver,
		feeds:    feeds,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler builds the route table. Split out from Start so tests can drive
// the server without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Decision engine
	mux.HandleFunc("POST /v1/decision", s.handleDecision)
	mux.HandleFunc("POST /v1/decision/resolve", s.handleDecisionResolve)

	// Settings management
	mux.HandleFunc("GET /v1/settings", s.handleGetSettings)
	mux.HandleFunc("POST /v1/toggle", s.handleToggle)
	mux.HandleFunc("POST /v1/channels", s.handleAddChannel)
	mux.HandleFunc("DELETE /v1/channels/{key}", s.handleRemoveChannel)
	mux.HandleFunc("POST /v1/schedule", s.handleSetSchedule)
	mux.HandleFunc("POST /v1/schedule/rules", s.handleAddRule)
	mux.HandleFunc("DELETE /v1/schedule/rules/{index}", s.handleRemoveRule)
	mux.HandleFunc("POST /v1/resolve", s.handleResolve)

	// Interstitial and feed
	mux.HandleFunc("GET /blocked", s.handleBlocked)
	mux.HandleFunc("GET /rss", s.handleRSS)

	// Health check endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	// Root endpoint with instructions
	mux.HandleFunc("GET /", s.handleRoot)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)
	return handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("Gate server starting", "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

type decisionRequest struct {
	URL     string                   `json:"url"`
	Channel *policyDomain.ChannelRef `json:"channel,omitempty"`
}

type decisionResponse struct {
	policyDomain.Verdict
	Redirect string `json:"redirect,omitempty"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.Get()
	if err != nil {
		s.logger.Error("Failed to load settings", "error", err)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	verdict := s.engine.Decide(settings, req.URL, time.Now())
	s.writeVerdict(w, r, verdict)
}

func (s *Server) handleDecisionResolve(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Channel == nil {
		http.Error(w, "request must carry url and channel", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.Get()
	if err != nil {
		s.logger.Error("Failed to load settings", "error", err)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	verdict := s.engine.ResolveDeferred(settings, req.URL, *req.Channel, time.Now())
	s.writeVerdict(w, r, verdict)
}

// writeVerdict serializes a verdict, attaching the interstitial redirect for
// blocked navigations so the client can divert without knowing our routes.
func (s *Server) writeVerdict(w http.ResponseWriter, r *http.Request, verdict policyDomain.Verdict) {
	resp := decisionResponse{Verdict: verdict}
	if verdict.Decision == policyDomain.DecisionBlock {
		resp.Redirect = fmt.Sprintf("%s://%s/blocked?url=%s", getScheme(r), r.Host, url.QueryEscape(verdict.URL))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get()
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	// An empty body means "flip whatever the current state is".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var settings *settingsDomain.Settings
	var err error
	if req.Enabled != nil {
		settings, err = s.settings.SetEnabled(*req.Enabled)
	} else {
		settings, err = s.settings.Toggle()
	}
	if err != nil {
		http.Error(w, "failed to update settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleAddChannel(w http.ResponseWriter, r *http.Request) {
	var channel settingsDomain.Channel
	if err := json.NewDecoder(r.Body).Decode(&channel); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.AddChannel(r.Context(), channel)
	if err != nil {
		s.writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settings)
}

func (s *Server) handleRemoveChannel(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.RemoveChannel(r.PathValue("key"))
	if err != nil {
		s.writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSetSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.SetScheduleEnabled(req.Enabled)
	if err != nil {
		http.Error(w, "failed to update schedule", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var rule settingsDomain.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.AddRule(rule)
	if err != nil {
		s.writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settings)
}

func (s *Server) handleRemoveRule(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "rule index must be a number", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.RemoveRule(index)
	if err != nil {
		s.writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Handle == "" {
		http.Error(w, "request must carry a handle", http.StatusBadRequest)
		return
	}
	if s.resolver == nil {
		http.Error(w, "resolver not configured", http.StatusServiceUnavailable)
		return
	}

	info, err := s.resolver.Resolve(r.Context(), req.Handle)
	if err != nil {
		s.logger.Warn("Resolution failed", "handle", req.Handle, "error", err)
		http.Error(w, "could not resolve channel", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleBlocked renders the interstitial shown in place of a blocked
// destination, carrying the original URL for user recovery.
func (s *Server) handleBlocked(w http.ResponseWriter, r *http.Request) {
	blockedURL := r.URL.Query().Get("url")
	if blockedURL == "" {
		blockedURL = "Unknown URL"
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Page Blocked</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 600px; margin: 80px auto; padding: 20px; text-align: center; }
        h1 { color: #c0392b; }
        .url { background: #f5f5f5; padding: 10px; border-radius: 5px; word-break: break-all; margin: 20px 0; }
        a { color: #2980b9; }
    </style>
</head>
<body>
    <h1>This page is blocked</h1>
    <p>The destination is not on your channel allow-list.</p>
    <div class="url">%s</div>
    <p><a href="https://www.youtube.com/feed/subscriptions">Go to your subscriptions</a></p>
    <p><a href="/v1/settings">Review gate settings</a></p>
</body>
</html>`, html.EscapeString(blockedURL))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(page))
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed := s.feeds.GenerateFeed(baseURL)
	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300") // Cache for 5 minutes
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	page := `<!DOCTYPE html>
<html>
<head>
    <title>Subonly Gate</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; }
        code { background: #e8e8e8; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>Subonly Gate</h1>
    <div class="info">
        <p>This service decides whether a browsing destination is allowed, based on your channel allow-list and schedule.</p>
        <p>Ask for a decision: <code>POST /v1/decision {"url": "..."}</code></p>
        <p>Manage settings: <code>GET /v1/settings</code></p>
        <p>Allowed-channel uploads: <a href="/rss">/rss</a></p>
    </div>
    <p><a href="/health">Health Check</a></p>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(page))
}

// writeSettingsError maps the settings sentinels to client errors.
func (s *Server) writeSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sharederrors.ErrChannelExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, sharederrors.ErrChannelNotFound),
		errors.Is(err, sharederrors.ErrRuleNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, sharederrors.ErrChannelUnmatchable),
		errors.Is(err, sharederrors.ErrInvalidDay),
		errors.Is(err, sharederrors.ErrInvalidTime):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("Settings operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
