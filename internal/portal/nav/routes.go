// Package nav holds the portal's page table and the guard deciding whether a
// page may be shown.
package nav

import (
	"net/http"
	"slices"
)

type View string

const (
	ViewLogin     View = "login"
	ViewSignup    View = "signup"
	ViewQRSetup   View = "qr-setup"
	ViewDashboard View = "dashboard"
	ViewRenew     View = "renew"
)

type Route struct {
	Path         string
	View         View
	Title        string
	RequiresAuth bool
}

var routes = []Route{
	{Path: "/", View: ViewLogin, Title: "Sign in"},
	{Path: "/signup", View: ViewSignup, Title: "Create an account"},
	{Path: "/qr-setup", View: ViewQRSetup, Title: "Set up two-factor authentication"},
	{Path: "/dashboard", View: ViewDashboard, Title: "Dashboard", RequiresAuth: true},
	{Path: "/renew", View: ViewRenew, Title: "Renew your credentials"},
}

// Routes returns a copy of the page table.
func Routes() []Route {
	return slices.Clone(routes)
}

// Lookup finds the route registered for path.
func Lookup(path string) (Route, bool) {
	i := slices.IndexFunc(routes, func(r Route) bool { return r.Path == path })
	if i < 0 {
		return Route{}, false
	}
	return routes[i], true
}

// PathFor returns the path of view, or "/" for an unknown view.
func PathFor(view View) string {
	for _, r := range routes {
		if r.View == view {
			return r.Path
		}
	}
	return "/"
}

// SessionPredicate reports whether the request belongs to a signed-in user.
type SessionPredicate func(*http.Request) bool

// AllowAll treats every request as signed in. The portal keeps no session
// state yet, so this is the default.
func AllowAll(*http.Request) bool { return true }
