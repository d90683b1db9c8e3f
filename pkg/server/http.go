// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2agrpc"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/aworld-dev/aworld/pkg/auth"
	"github.com/aworld-dev/aworld/pkg/config"
	"github.com/aworld-dev/aworld/pkg/observability"
	"google.golang.org/grpc"
)

// webUIHTML contains the embedded web UI.
// The UI is built from ui/ directory and embedded at build time.
// Run `go generate ./pkg/server` or `make build` to generate this file.
//
//go:embed static/index.html
var webUIHTML []byte

// HTTPServer is the Hector HTTP server.
// Uses a2a-go native handlers for A2A protocol compliance.
type HTTPServer struct {
	serverCfg *config.ServerConfig
	appCfg    *config.Config
	server    *http.Server

	// gRPC server (only when Transport == TransportGRPC)
	grpcServer *grpc.Server
	//nolint:unused // Reserved for future use
	grpcListener net.Listener

	// TaskStore for persistent task storage (nil = in-memory)
	taskStore a2asrv.TaskStore

	// Auth: JWT validator and a2a-go interceptor
	authValidator   auth.TokenValidator
	authInterceptor *auth.Interceptor

	// Observability: tracing and metrics
	observability *observability.Manager

	// Per-agent: JSON-RPC handler + agent card handler (both from a2a-go)
	agentJSONRPCHandlers map[string]http.Handler
	agentCardHandlers    map[string]http.Handler
	agentCards           map[string]*a2a.AgentCard

	// Per-agent: gRPC handlers (only when Transport == TransportGRPC)
	agentGRPCHandlers map[string]*a2agrpc.Handler

	// Studio mode: config file path and studio mode flag
	configPath string
	studioMode bool
	mu         sync.RWMutex
}

// HTTPServerOption configures the HTTP server.
type HTTPServerOption func(*HTTPServer)

// WithTaskStore sets the task store for persistent task storage.
// If not set, a2a-go uses its internal in-memory store.
func WithTaskStore(store a2asrv.TaskStore) HTTPServerOption {
	return func(s *HTTPServer) {
		s.taskStore = store
	}
}

// WithAuthValidator sets the JWT validator for authentication.
// When set, HTTP requests will be validated and claims passed to agents.
func WithAuthValidator(validator auth.TokenValidator) HTTPServerOption {
	return func(s *HTTPServer) {
		s.authValidator = validator
	}
}

// WithObservability sets the observability manager for tracing and metrics.
func WithObservability(obs *observability.Manager) HTTPServerOption {
	return func(s *HTTPServer) {
		s.observability = obs
	}
}

// NewHTTPServer creates a new HTTP server from config.
// executors is a map of agent name to its executor (one per agent).
func NewHTTPServer(appCfg *config.Config, executors map[string]*Executor, opts ...HTTPServerOption) *HTTPServer {
	serverCfg := &appCfg.Server

	if serverCfg.Host == "" || serverCfg.Port == 0 {
		serverCfg.SetDefaults()
	}

	s := &HTTPServer{
		serverCfg:            serverCfg,
		appCfg:               appCfg,
		agentJSONRPCHandlers: make(map[string]http.Handler),
		agentCardHandlers:    make(map[string]http.Handler),
		agentCards:           make(map[string]*a2a.AgentCard),
		agentGRPCHandlers:    make(map[string]*a2agrpc.Handler),
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	// Build handlers using a2a-go native functions
	s.buildAgentHandlers(executors)

	return s
}

// buildAgentHandlers creates a2a-go native handlers for each configured agent.
func (s *HTTPServer) buildAgentHandlers(executors map[string]*Executor) {
	baseURL := "http://" + s.serverCfg.Address()

	// Create auth interceptor if validator is configured
	if s.authValidator != nil {
		requireAuth := true
		if s.serverCfg.Auth != nil {
			requireAuth = s.serverCfg.Auth.IsRequireAuth()
		}
		s.authInterceptor = auth.NewInterceptor(requireAuth)
	}

	for name, agentCfg := range s.appCfg.Agents {
		// Build A2A AgentCard
		agentURL := baseURL + "/agents/" + name
		card := s.buildAgentCard(name, agentCfg, agentURL)
		s.agentCards[name] = card

		// Get per-agent executor
		executor, ok := executors[name]
		if !ok {
			slog.Warn("No executor for agent, skipping", "agent", name)
			continue
		}

		// Create a2a-go native JSON-RPC handler with agent's executor
		// Include TaskStore if configured for persistent task storage
		var handlerOpts []a2asrv.RequestHandlerOption
		if s.taskStore != nil {
			handlerOpts = append(handlerOpts, a2asrv.WithTaskStore(s.taskStore))
		}

		// Add auth interceptor to bridge HTTP auth to a2a-go CallContext
		if s.authInterceptor != nil {
			handlerOpts = append(handlerOpts, a2asrv.WithCallInterceptor(s.authInterceptor))
		}

		requestHandler := a2asrv.NewHandler(executor, handlerOpts...)

		// Create transport-specific handlers based on config
		if s.serverCfg.Transport == config.TransportGRPC {
			// Create gRPC handler
			s.agentGRPCHandlers[name] = a2agrpc.NewHandler(requestHandler)
		} else {
			// Create JSON-RPC handler (default)
			s.agentJSONRPCHandlers[name] = a2asrv.NewJSONRPCHandler(requestHandler)
		}

		// Create a2a-go native agent card handler
		s.agentCardHandlers[name] = a2asrv.NewStaticAgentCardHandler(card)
	}
}

// buildAgentCard creates an A2A-compliant agent card.
func (s *HTTPServer) buildAgentCard(name string, cfg *config.AgentConfig, url string) *a2a.AgentCard {
	// Ensure input/output modes have defaults
	inputModes := cfg.InputModes
	if len(inputModes) == 0 {
		inputModes = []string{"text/plain"}
	}
	outputModes := cfg.OutputModes
	if len(outputModes) == 0 {
		outputModes = []string{"text/plain"}
	}

	// Determine display name: explicit name > map key
	displayName := cfg.Name
	if displayName == "" {
		displayName = name
	}

	// Build skills
	skills := s.buildAgentSkills(cfg)
	if len(skills) == 0 {
		skills = []a2a.AgentSkill{{
			ID:          name,
			Name:        displayName,
			Description: cfg.Description,
			Tags:        []string{"general", "assistant"},
		}}
	}

	// Version handling
	version := s.appCfg.Version
	if version == "" {
		version = "2.0.0"
	}

	card := &a2a.AgentCard{
		Name:               displayName,
		Description:        cfg.Description,
		URL:                url,
		Version:            version,
		ProtocolVersion:    "1.0",
		DefaultInputModes:  inputModes,
		DefaultOutputModes: outputModes,
		Skills:             skills,
		Capabilities: a2a.AgentCapabilities{
			Streaming:              true,
			PushNotifications:      false,
			StateTransitionHistory: false,
		},
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Provider: &a2a.AgentProvider{
			Org: "Hector",
			URL: "https://github.com/aworld-dev/aworld",
		},
	}

	// Add security schemes when auth is enabled (A2A spec section 5.5)
	if s.authValidator != nil && s.serverCfg.Auth != nil && s.serverCfg.Auth.IsEnabled() {
		card.SecuritySchemes = a2a.NamedSecuritySchemes{
			"BearerAuth": a2a.HTTPAuthSecurityScheme{
				Scheme:       "bearer",
				BearerFormat: "JWT",
				Description:  "JWT Bearer token authentication",
			},
		}
		card.Security = []a2a.SecurityRequirements{
			{"BearerAuth": a2a.SecuritySchemeScopes{}},
		}
	}

	return card
}

// buildAgentSkills converts config skills to A2A skills.
func (s *HTTPServer) buildAgentSkills(cfg *config.AgentConfig) []a2a.AgentSkill {
	var skills []a2a.AgentSkill
	for _, skill := range cfg.Skills {
		skills = append(skills, a2a.AgentSkill{
			ID:          skill.ID,
			Name:        skill.Name,
			Description: skill.Description,
			Tags:        skill.Tags,
			Examples:    skill.Examples,
		})
	}
	return skills
}

// Start starts the HTTP server.
func (s *HTTPServer) Start(ctx context.Context) error {
	mux := s.setupRoutes()

	// Apply middleware chain (order: observability -> logging -> cors -> auth -> routes)
	// Observability wraps everything so all requests are traced/measured
	var handler http.Handler = mux

	// Auth middleware: validates JWT and stores claims in context
	// Must be applied before CORS so OPTIONS preflight requests pass through
	if s.authValidator != nil {
		excludedPaths := []string{"/", "/health", "/.well-known/agent-card.json", "/agents", "/agents/"}
		if s.serverCfg.Auth != nil && len(s.serverCfg.Auth.ExcludedPaths) > 0 {
			excludedPaths = s.serverCfg.Auth.ExcludedPaths
			// Ensure defaults are always preserved unless explicitly overridden?
			// Usually we append, but here the config overrides.
			// Re-add critical system paths if they were overwritten by config
			// Note: User config should control this, but we need /agents/ excluded to support public visibility logic
			// If user provides custom list, they might lock themselves out of public agents if they don't include /agents/
			// Safest approach: Append critical internal exclusions to user list
			defaults := []string{"/agents", "/agents/"}
			for _, d := range defaults {
				found := false
				for _, u := range excludedPaths {
					if u == d {
						found = true
						break
					}
				}
				if !found {
					excludedPaths = append(excludedPaths, d)
				}
			}
		}
		// Also exclude metrics endpoint from auth
		if s.observability != nil && s.observability.MetricsEnabled() {
			excludedPaths = append(excludedPaths, s.observability.MetricsEndpoint())
		}
		handler = auth.MiddlewareWithExclusions(s.authValidator, excludedPaths)(handler)
		slog.Info("Authentication enabled", "excluded_paths", excludedPaths)
	}

	handler = s.corsMiddleware(handler)
	handler = s.loggingMiddleware(handler)

	// Observability middleware (outermost for complete request coverage)
	if s.observability != nil {
		handler = observability.HTTPMiddleware(s.observability.Tracer(), s.observability.Metrics())(handler)
	}

	s.server = &http.Server{
		Addr:         s.serverCfg.Address(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("HTTP server starting", "address", s.serverCfg.Address())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server(s).
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error

	// Shutdown HTTP server
	if s.server != nil {
		slog.Info("HTTP server shutting down")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown error: %w", err))
		}
	}

	// Shutdown gRPC server
	if s.grpcServer != nil {
		slog.Info("gRPC server shutting down")
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
			slog.Info("gRPC server stopped gracefully")
		case <-shutdownCtx.Done():
			slog.Warn("gRPC graceful stop timeout, forcing shutdown")
			s.grpcServer.Stop()
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	return nil
}

// Address returns the HTTP server address.
func (s *HTTPServer) Address() string {
	return s.serverCfg.Address()
}

// GRPCAddress returns the gRPC server address (if enabled).
func (s *HTTPServer) GRPCAddress() string {
	if s.serverCfg.Transport == config.TransportGRPC {
		return s.serverCfg.GRPCAddress()
	}
	return ""
}

// setupRoutes configures the HTTP routes.
// A2A spec compliant paths:
//   - GET  /.well-known/agent-card.json  → Default agent card (a2a-go native)
//   - GET  /agents                       → Discovery (Hector extension)
//   - GET  /agents/{name}                → Agent card (a2a-go native)
//   - POST /agents/{name}                → JSON-RPC (a2a-go native)
//   - GET  /agents/{name}/.well-known/agent-card.json → Agent card (a2a-go native)
func (s *HTTPServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Web UI at root (GET only)
	mux.HandleFunc("/", s.handleRoot)

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Schema endpoint for config builder UI
	mux.HandleFunc("/api/schema", s.handleGetSchema)

	// Config endpoints (studio mode)
	mux.HandleFunc("/api/config", s.handleConfigEndpoint)

	// Prometheus metrics endpoint (if enabled)
	if s.observability != nil && s.observability.MetricsEnabled() {
		metricsEndpoint := s.observability.MetricsEndpoint()
		mux.Handle(metricsEndpoint, s.observability.MetricsHandler())
		slog.Info("Metrics endpoint enabled", "path", metricsEndpoint)
	}

	// A2A spec: server-level well-known agent card (returns first/default agent)
	// This is what single-agent clients expect per spec section 5.3
	mux.HandleFunc(a2asrv.WellKnownAgentCardPath, s.handleDefaultAgentCard)

	// Agent discovery - Hector extension (returns all agent cards)
	mux.HandleFunc("/agents", s.handleDiscovery)

	// Per-agent routes using a2a-go native handlers
	mux.HandleFunc("/agents/", s.handleAgentRoutes)

	return mux
}

// handleRoot serves Web UI for GET.
func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(webUIHTML)
		return
	}

	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// handleHealth returns server health status.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleGetSchema generates and returns JSON Schema for the config builder UI.
// Schema is generated dynamically to ensure it's always current and works in
// production deployments where file paths may not be available.
func (s *HTTPServer) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true, // Inline all definitions for @rjsf/core compatibility
	}

	schema := reflector.Reflect(&config.Config{})

	// Add metadata
	schema.ID = "https://hector.dev/schemas/config.json"
	schema.Title = "Hector Configuration Schema"
	schema.Description = "Complete configuration schema for Hector v2 agent framework"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	// Set headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	// Write response
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(schema); err != nil {
		slog.Error("Failed to encode schema", "error", err)
		http.Error(w, "Failed to generate schema", http.StatusInternalServerError)
		return
	}
}

// handleDefaultAgentCard serves the default agent's card at the server-level well-known path.
// Per A2A spec 5.3: "https://{server_domain}/.well-known/agent-card.json"
// For multi-agent servers, this returns the first configured agent.
func (s *HTTPServer) handleDefaultAgentCard(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Get the first/default agent's card handler
	for _, handler := range s.agentCardHandlers {
		handler.ServeHTTP(w, r)
		return
	}
	http.Error(w, "No agents configured", http.StatusNotFound)
}

// handleDiscovery returns all agents (Hector extension).
// Filters agents based on their visibility configuration and authentication status.
func (s *HTTPServer) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Check authentication (soft check)
	isAuthenticated := false
	if s.authValidator != nil {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if _, err := s.authValidator.ValidateToken(r.Context(), token); err == nil {
				isAuthenticated = true
			}
		}
	} else {
		// No auth configured = effectively authenticated (or no auth concept)
		// But in "visibility" context, if auth is disabled, "internal" implies "hidden from public"?
		// Or "internal" assumes trusted network?
		// Common pattern: If Auth OFF, everything is public/trusted.
		isAuthenticated = true
	}

	agents := make([]*a2a.AgentCard, 0, len(s.agentCards))
	for name, card := range s.agentCards {
		cfg, ok := s.appCfg.Agents[name]
		if !ok {
			continue // Should not happen
		}

		visibility := cfg.Visibility
		if visibility == "" {
			visibility = "public"
		}

		switch visibility {
		case "public":
			// Always visible
			agents = append(agents, card)
		case "internal":
			// Visible only if authenticated
			if isAuthenticated {
				agents = append(agents, card)
			}
		case "private":
			// Never visible in discovery
			// (Hidden from list, but potentially callable internally)
		default:
			// Default to public behavior
			agents = append(agents, card)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"agents": agents,
		"total":  len(agents),
	})
}

// handleAgentRoutes routes to a2a-go native handlers.
func (s *HTTPServer) handleAgentRoutes(w http.ResponseWriter, r *http.Request) {
	// Parse: /agents/{name}[/...]
	path := strings.TrimPrefix(r.URL.Path, "/agents/")
	if path == "" {
		http.Error(w, "Agent name required", http.StatusBadRequest)
		return
	}

	// Extract agent name and subpath
	parts := strings.SplitN(path, "/", 2)
	agentName := parts[0]
	subPath := ""
	if len(parts) > 1 {
		subPath = "/" + parts[1]
	}

	s.mu.RLock()

	// Verify agent exists
	jsonRPCHandler, ok := s.agentJSONRPCHandlers[agentName]
	if !ok {
		s.mu.RUnlock()
		http.Error(w, "Agent not found: "+agentName, http.StatusNotFound)
		return
	}

	// Check Access Control based on Visibility
	cfg, ok := s.appCfg.Agents[agentName]
	if ok {
		switch cfg.Visibility {
		case "private":
			// Private agents are hidden from HTTP entirely.
			// Treat as 404 to avoid leaking existence.
			s.mu.RUnlock()
			http.NotFound(w, r)
			return
		case "internal":
			// Internal agents require authentication
			if s.authValidator != nil {
				authHeader := r.Header.Get("Authorization")
				authorized := false
				if authHeader != "" {
					token := strings.TrimPrefix(authHeader, "Bearer ")
					if _, err := s.authValidator.ValidateToken(r.Context(), token); err == nil {
						authorized = true
					}
				}
				if !authorized {
					s.mu.RUnlock()
					http.Error(w, "Unauthorized: agent is internal", http.StatusUnauthorized)
					return
				}
			}
		case "public", "":
			// Public access allowed (no check needed)
		}
	}

	cardHandler := s.agentCardHandlers[agentName]
	s.mu.RUnlock()

	switch {
	case subPath == "" || subPath == "/":
		// POST: JSON-RPC (a2a-go native handler)
		// GET: Agent card (a2a-go native handler)
		if r.Method == http.MethodPost {
			jsonRPCHandler.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet || r.Method == http.MethodOptions {
			cardHandler.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

	case subPath == a2asrv.WellKnownAgentCardPath:
		// A2A spec: /.well-known/agent-card.json (a2a-go native handler)
		cardHandler.ServeHTTP(w, r)

	default:
		http.NotFound(w, r)
	}
}

// corsMiddleware adds CORS headers.
func (s *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	cors := s.serverCfg.CORS
	if cors == nil {
		// Default permissive CORS for development
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, allowed := range cors.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if config.BoolValue(cors.AllowCredentials, false) {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs requests (ADK-Go pattern: don't wrap ResponseWriter).
func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Don't wrap ResponseWriter - it breaks http.Flusher for SSE
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// UpdateExecutors atomically updates configuration and agent executors (for hot-reload).
func (s *HTTPServer) UpdateExecutors(cfg *config.Config, executors map[string]*Executor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Update config
	s.appCfg = cfg
	s.serverCfg = &cfg.Server

	// Rebuild handlers for new executors with new config
	s.buildAgentHandlers(executors)
	slog.Debug("Executors and config updated", "count", len(executors))
}

// SetStudioMode enables studio mode with config file path.
func (s *HTTPServer) SetStudioMode(configPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.studioMode = true
	s.configPath = configPath
	slog.Info("Studio mode enabled", "config_path", configPath)
}

// handleConfigEndpoint handles GET and POST /api/config (studio mode).
func (s *HTTPServer) handleConfigEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	studioMode := s.studioMode
	configPath := s.configPath
	s.mu.RUnlock()

	if !studioMode {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "Studio mode not enabled. Start with --studio flag.",
		})
		return
	}

	switch r.Method {
	case http.MethodGet:
		// Read current config file
		data, err := os.ReadFile(configPath)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Failed to read config file: " + err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)

	case http.MethodPost:
		// Read YAML body
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Failed to read body: " + err.Error(),
			})
			return
		}

		// Parse and validate
		var testCfg config.Config
		if err := yaml.Unmarshal(body, &testCfg); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Invalid YAML: " + err.Error(),
			})
			return
		}

		// Apply defaults before validation to handle missing optional fields
		testCfg.SetDefaults()

		if err := testCfg.Validate(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Validation failed: " + err.Error(),
			})
			return
		}

		// Write to file
		if err := os.WriteFile(configPath, body, 0644); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Failed to write file: " + err.Error(),
			})
			return
		}

		// File watcher will trigger reload automatically
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "saved",
			"message": "Configuration saved. Reloading...",
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
