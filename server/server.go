package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-plaid-link/aggregator"
	"github.com/jrsteele09/go-plaid-link/credentials"
	"github.com/jrsteele09/go-plaid-link/identity"
	"github.com/jrsteele09/go-plaid-link/internal/config"
	"github.com/jrsteele09/go-plaid-link/link"
	"github.com/jrsteele09/go-plaid-link/sessions"
	"github.com/jrsteele09/go-plaid-link/sessions/cookie"
	"github.com/jrsteele09/go-plaid-link/transactions"
	"github.com/rs/zerolog"
)

// ANSI colours for the DEV route listing
const (
	colorReset = "\033[0m"
	colorGray  = "\033[90m"
)

var methodColors = map[string]string{
	"GET":     "\033[32m",
	"POST":    "\033[34m",
	"OPTIONS": "\033[31m",
}

// Dependencies are the collaborators the server does not build itself
type Dependencies struct {
	Sessions   sessions.Repo
	Identity   identity.Provider
	Aggregator aggregator.Client
}

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	logger       zerolog.Logger
	sessions     sessions.Repo
	cookies      *cookie.Codec
	identity     identity.Provider
	credentials  credentials.Store
	link         *link.Controller
	transactions *transactions.Service
	now          func() time.Time
}

func New(cfg config.Config, deps Dependencies, logger zerolog.Logger) (*Server, error) {
	if deps.Sessions == nil || deps.Identity == nil || deps.Aggregator == nil {
		return nil, fmt.Errorf("[Server New] sessions, identity and aggregator are required")
	}

	codec, err := cookie.NewCodec(cfg.GetSecretKey(), cfg.GetAppName(), cfg.GetMaxSessionAge())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create cookie codec: %w", err)
	}

	store := credentials.NewSessionStore(deps.Sessions)

	s := &Server{
		env:         cfg.GetEnv(),
		mux:         http.NewServeMux(),
		config:      cfg,
		logger:      logger,
		sessions:    deps.Sessions,
		cookies:     codec,
		identity:    deps.Identity,
		credentials: store,
		link: link.NewController(
			deps.Aggregator,
			store,
			store,
			link.SettingsFrom(cfg),
			logger.With().Str("component", "link").Logger(),
		),
		transactions: transactions.NewService(
			deps.Aggregator,
			store,
			cfg.GetTransactionWindowDays(),
			logger.With().Str("component", "transactions").Logger(),
		),
		now: time.Now,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered route patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + colorReset
	} else {
		displayMethod = colorGray + paddedMethod + colorReset
	}
	s.logger.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
