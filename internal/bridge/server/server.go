// Package server provides the HTTP front end of the agent bridge. It exposes
// session lifecycle and streaming message endpoints over a RESTful API, with
// version information and health check endpoints. The package supports CORS
// handling and middleware integration for logging and error handling.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/agentbridge/agentbridge/internal/agentforce/config"
	"github.com/agentbridge/agentbridge/internal/common/httpx"
	"github.com/agentbridge/agentbridge/internal/common/logtrace"
	"github.com/agentbridge/agentbridge/internal/common/middleware"
)

// BridgeServer provides the main HTTP server for the agent bridge.
// Manages routing, middleware, and endpoint handling for session operations.
type BridgeServer struct {
	Router *chi.Mux // HTTP router for request handling
}

// CreateNewServer creates a new BridgeServer instance.
// Returns the server instance and any error encountered during creation.
func CreateNewServer() (*BridgeServer, error) {
	s := &BridgeServer{}
	s.Router = chi.NewRouter()
	return s, nil
}

// MountHandlers sets up all HTTP routes and middleware for the server.
// Configures logging, panic handling, CORS, and resource endpoints.
func (s *BridgeServer) MountHandlers() {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(s.HandleCORS)
	}
	s.mountResourceHandlers(s.Router)
	if logtrace.IsTraceEnabled() {
		fmt.Println("Routes in bridge router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Error().Err(err).Msg("Error walking router")
		}
	}
}

// mountResourceHandlers registers all resource endpoints on the router.
// Sets up session management routes and system endpoints.
// sessionEndpointTimeout bounds the session lifecycle endpoints. It has to
// cover session creation's full retry budget, so it is deliberately generous.
// The streaming endpoint carries its own upstream deadline and is not wrapped.
const sessionEndpointTimeout = 60 * time.Second

func (s *BridgeServer) mountResourceHandlers(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Use(middleware.SetTimeout(sessionEndpointTimeout))
		sessionRouter(r)
	})
	r.Post("/messages/stream", httpx.WrapHttpRsp(sendMessage))
	r.Get("/version", s.getVersion)
	r.Get("/ready", s.getReadiness)
}

// GetVersionRsp represents the response for version information.
// Contains server and API version details.
type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"` // server version string
	ApiVersion    string `json:"apiVersion"`    // API version string
}

// getVersion handles version information requests.
// Returns server and API version information in JSON format.
func (s *BridgeServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "Agentbridge Server: " + Version,
		ApiVersion:    ApiVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

// getReadiness handles health check requests.
// Returns readiness status for load balancer and monitoring systems.
func (s *BridgeServer) getReadiness(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("Readiness check")

	// Credential resolution needs live upstream calls, so readiness only
	// confirms the server is up and configured.
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// HandleCORS provides CORS middleware for cross-origin requests.
// Configures allowed origins, methods, headers, and credentials handling.
func (s *BridgeServer) HandleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, //TODO: Change this to specific origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Accept-Encoding"},
		ExposedHeaders:   []string{"Link", "Location", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
