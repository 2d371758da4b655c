package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/studyhub/studyhub-auth/auth"
	"github.com/studyhub/studyhub-auth/identity"
	"github.com/studyhub/studyhub-auth/internal/config"
	"github.com/studyhub/studyhub-auth/keyexchange"
	"github.com/studyhub/studyhub-auth/members"
	"github.com/studyhub/studyhub-auth/server/keyflowrepo"
	"github.com/studyhub/studyhub-auth/token"
)

// Deps holds all collaborator dependencies for the Server
type Deps struct {
	Sessions    *auth.SessionService
	Validator   *token.Validator
	Members     members.Repo
	KeyExchange *keyexchange.Service
	KeyFlows    keyflowrepo.Repo
	Identity    *identity.OIDCVerifier // nil when no external provider is configured
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	deps   Deps
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("[Server New] session service is required")
	}
	if deps.Validator == nil {
		return nil, fmt.Errorf("[Server New] token validator is required")
	}
	if deps.Members == nil {
		return nil, fmt.Errorf("[Server New] members repo is required")
	}
	if deps.KeyExchange == nil {
		return nil, fmt.Errorf("[Server New] key exchange service is required")
	}
	if deps.KeyFlows == nil {
		deps.KeyFlows = keyflowrepo.NewInMemoryRepo()
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		deps:   deps,
		env:    cfg.GetEnv(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	for _, route := range s.routes {
		log.Info().Str("route", route).Msg("Registered route")
	}
}
