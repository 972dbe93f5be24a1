package api

import "net/http"

// healthResponse is the body for GET /health.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// handleHealth reports liveness. Deeper checks (database, broker) are
// done at startup and logged; this endpoint is for load balancer probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.version,
	})
}
