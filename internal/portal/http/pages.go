package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/portal/internal/portal/nav"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/page.html"))

type pageData struct {
	Route nav.Route
}

// PageHandler renders the portal pages.
type PageHandler struct {
	Guard *nav.Guard
}

// Handle returns the handler for one page. Navigation the guard rejects is
// redirected.
func (h *PageHandler) Handle(route nav.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := slogx.FromContext(r.Context())

		if d := h.Guard.Check(route, r); !d.Allow {
			log.Info("navigation rejected", "view", route.View, "redirect", d.Redirect)
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}

		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, pageData{Route: route}); err != nil {
			log.Error("failed to render page", "view", route.View, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
			return
		}

		httpx.NoCache(w)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}
