package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/aidenappl/retail-core/db"
	"github.com/aidenappl/retail-core/responder"
)

// Ping checks the database for HealthHandler
var Ping = db.Ping

// HealthHandler handles GET /health
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := Ping(ctx); err != nil {
		responder.ErrorWithCause(w, r, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}

	responder.New(w, map[string]string{"status": "ok"})
}
