package http

import (
	"net/http"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/pkg/httpx"
	"github.com/lettrehq/lettre/pkg/lettresdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and a check of the database dependency
//	@Description	Includes uptime, version, and database connectivity status
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	lettresdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	lettresdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &lettresdk.HealthChecks{
			Database: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := lettresdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
