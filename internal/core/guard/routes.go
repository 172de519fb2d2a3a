package guard

import "github.com/99minutos/marketplace-console/internal/core/domain"

// Route is one entry of the console's route table.
type Route struct {
	Path     string
	Public   bool
	Required []domain.Role
}

// Routes is the console's route table. Anything not listed, and "/",
// redirects to the dashboard.
var Routes = []Route{
	{Path: LoginPath, Public: true},
	{Path: RegisterPath, Public: true},
	{Path: DashboardPath},
	{Path: "/services"},
	{Path: "/orders"},
	{Path: "/profile"},
	{Path: "/admin", Required: []domain.Role{domain.RoleAdmin}},
}

// Lookup finds the route for path.
func Lookup(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Navigate resolves a navigation to path for session s, including the
// catch-all redirect for unknown paths.
func Navigate(path string, s domain.Session) Decision {
	r, ok := Lookup(path)
	if !ok {
		return Decision{Outcome: RedirectDefault, Location: DashboardPath}
	}
	if r.Public {
		return DecidePublic(s.Loading, s.Authenticated)
	}
	return ForSession(s, r.Required)
}
