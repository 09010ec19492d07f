package handlers

import (
	"net/http"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/engine/actors"
)

// HandleHealth reports liveness along with a metrics snapshot
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		postCount := -1
		future := s.Context.RequestFuture(s.Engine.GetPostActor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		if result, err := future.Result(); err == nil {
			if count, ok := result.(int); ok {
				postCount = count
			}
		}

		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"post_count":  postCount,
			"metrics":     s.Metrics.Snapshot(),
			"server_time": time.Now(),
		})
	}
}
