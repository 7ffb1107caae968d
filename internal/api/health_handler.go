package api

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/accounts-api/internal/api/shared"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	service string
	db      Pinger
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. db may be nil when the service
// runs without a database.
func NewHealthHandler(serviceName string, db Pinger) *HealthHandler {
	return &HealthHandler{service: serviceName, db: db, now: time.Now}
}

// Health reports UP, or DOWN with 503 when the database does not answer.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "UP", http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status, code = "DOWN", http.StatusServiceUnavailable
		}
	}

	shared.RespondWithJSON(w, r, code, HealthResponse{
		Status:    status,
		Service:   h.service,
		Timestamp: h.now().UTC(),
	})
}
