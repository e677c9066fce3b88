package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/nav"
	"github.com/aussiebroadwan/portal/pkg/funcsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

// FunctionClient is the subset of *funcsdk.Client the portal needs.
type FunctionClient interface {
	GeneratePassword(ctx context.Context, username string) (*funcsdk.ProvisioningResult, error)
	Generate2FA(ctx context.Context, username string) (*funcsdk.ProvisioningResult, error)
	AuthenticateUser(ctx context.Context, creds funcsdk.Credentials) (*funcsdk.AuthResult, error)
}

// Router holds shared dependencies for the portal handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Client FunctionClient
	Guard  *nav.Guard

	// TrustProxy keys rate limits on X-Forwarded-For. Set before ApplyRoutes.
	TrustProxy bool
}

func NewRouter(client FunctionClient, guard *nav.Guard, buildVersion string, logger *slog.Logger) *Router {
	if guard == nil {
		guard = nav.NewGuard(nav.AllowAll)
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		Client:       client,
		Guard:        guard,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) limits() httpx.ClientKeys {
	return httpx.ClientKeys{TrustProxy: r.TrustProxy}
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerFunctions()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPages() {
	pages := &PageHandler{Guard: r.Guard}

	for _, route := range nav.Routes() {
		pattern := "GET " + route.Path
		if route.Path == "/" {
			pattern = "GET /{$}"
		}
		r.Mux.Handle(pattern,
			httpx.Chain(pages.Handle(route),
				r.limits().ByIP(httpx.LenientLimit),
			),
		)
	}
}

// registerFunctions mounts the backend calls under /function, the path the
// pages post to.
func (r *Router) registerFunctions() {
	h := &FunctionHandler{Client: r.Client}

	r.Mux.Handle("POST /function/"+funcsdk.EndpointGenPassword,
		httpx.Chain(http.HandlerFunc(h.HandleGeneratePassword),
			r.limits().ByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /function/"+funcsdk.EndpointGenerate2FA,
		httpx.Chain(http.HandlerFunc(h.HandleGenerate2FA),
			r.limits().ByIP(httpx.ModerateLimit),
		),
	)

	// Credential checks are limited per address and per account.
	r.Mux.Handle("POST /function/"+funcsdk.EndpointAuthUser,
		httpx.Chain(http.HandlerFunc(h.HandleAuthenticate),
			r.limits().ByIP(httpx.ModerateLimit),
			r.limits().ByIPAndField(httpx.StrictLimit, "username"),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limits().ByIP(httpx.LenientLimit),
		),
	)
}
