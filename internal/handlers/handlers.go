package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/database"
	"github.com/abhinash-ops/Mind-canvus/internal/engine"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	MongoDB        *database.MongoDB
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	mongodb *database.MongoDB,
	requestTimeout time.Duration,
) *Server {
	if requestTimeout <= 0 {
		requestTimeout = 5 * time.Second
	}
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		MongoDB:        mongodb,
		RequestTimeout: requestTimeout,
	}
}

// respondJSON writes a JSON response with the given status code.
func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("HTTP Handler: Failed to encode response: %v", err)
	}
}

// respondAppError maps an AppError to its HTTP status and writes it out.
func (s *Server) respondAppError(w http.ResponseWriter, appErr *utils.AppError) {
	s.Metrics.IncrementErrors()
	s.respondJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// handleActorResult writes out the actor's error response if there is one.
// Returns false when an error was written and the caller should stop.
func (s *Server) handleActorResult(w http.ResponseWriter, result interface{}) bool {
	if appErr, ok := result.(*utils.AppError); ok {
		s.respondAppError(w, appErr)
		return false
	}
	return true
}
