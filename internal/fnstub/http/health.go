package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/portal/pkg/httpx"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
}

func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	}
}

// ReadyzHandler additionally checks that the user store answers.
func ReadyzHandler(startTime time.Time, version string, st Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := HealthResponse{
			Status:   "ok",
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Version:  version,
			Database: "ok",
		}
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			res.Status = "degraded"
			res.Database = "error: " + err.Error()
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, res)
	}
}
