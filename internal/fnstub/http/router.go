package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/portal/pkg/funcsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

// Pinger reports whether the user store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router serves the authentication functions under /function.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Credentials CredentialService
	Store       Pinger
	Format      Format

	// TrustProxy keys rate limits on X-Forwarded-For. Set before ApplyRoutes.
	TrustProxy bool
}

func NewRouter(svc CredentialService, st Pinger, format Format, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		Credentials:  svc,
		Store:        st,
		Format:       format,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	h := &CredentialHandler{Service: r.Credentials, Format: r.Format}
	limits := httpx.ClientKeys{TrustProxy: r.TrustProxy}

	r.Mux.Handle("POST /function/"+funcsdk.EndpointGenPassword,
		httpx.Chain(http.HandlerFunc(h.HandleGeneratePassword),
			limits.ByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /function/"+funcsdk.EndpointGenerate2FA,
		httpx.Chain(http.HandlerFunc(h.HandleGenerate2FA),
			limits.ByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /function/"+funcsdk.EndpointAuthUser,
		httpx.Chain(http.HandlerFunc(h.HandleAuthenticate),
			limits.ByIPAndField(httpx.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Store))
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}
