package nav

import "net/http"

// Decision is the outcome of a guard check. Redirect is set when Allow is
// false.
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard gates protected routes on a session predicate.
type Guard struct {
	SessionValid SessionPredicate
	LoginPath    string
}

// NewGuard returns a guard sending rejected navigations to the login page.
// A nil predicate means AllowAll.
func NewGuard(valid SessionPredicate) *Guard {
	if valid == nil {
		valid = AllowAll
	}
	return &Guard{SessionValid: valid, LoginPath: PathFor(ViewLogin)}
}

// Check decides whether route may be shown for r.
func (g *Guard) Check(route Route, r *http.Request) Decision {
	if !route.RequiresAuth || g.SessionValid(r) {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.LoginPath}
}
