// Package guard decides, per navigation, whether a view may render.
package guard

import "github.com/99minutos/marketplace-console/internal/core/domain"

// Outcome is what the console does with a navigation.
type Outcome int

const (
	// Render shows the requested view.
	Render Outcome = iota
	// Wait shows a neutral loading state and does not redirect.
	Wait
	// RedirectLogin sends the user to the login view.
	RedirectLogin
	// RedirectDefault sends the user to the default authenticated view.
	RedirectDefault
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDefault:
		return "redirect_default"
	default:
		return "unknown"
	}
}

const (
	LoginPath     = "/login"
	RegisterPath  = "/register"
	DashboardPath = "/dashboard"
)

// Decision is the outcome plus, for redirects, where to go.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide gates a protected view. It is a pure function of its inputs and is
// evaluated in this order:
//  1. loading → Wait, whatever the rest says;
//  2. not authenticated or no user → RedirectLogin;
//  3. required roles given and the user's role not among them → RedirectDefault;
//  4. otherwise Render.
func Decide(loading, authenticated bool, user *domain.User, required []domain.Role) Decision {
	if loading {
		return Decision{Outcome: Wait}
	}
	if !authenticated || user == nil {
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	}
	if len(required) > 0 && !roleIn(user.Role, required) {
		return Decision{Outcome: RedirectDefault, Location: DashboardPath}
	}
	return Decision{Outcome: Render}
}

// DecidePublic gates the login and register views: an authenticated user is
// sent to the dashboard instead.
func DecidePublic(loading, authenticated bool) Decision {
	if loading {
		return Decision{Outcome: Wait}
	}
	if authenticated {
		return Decision{Outcome: RedirectDefault, Location: DashboardPath}
	}
	return Decision{Outcome: Render}
}

// ForSession is Decide applied to a session snapshot.
func ForSession(s domain.Session, required []domain.Role) Decision {
	return Decide(s.Loading, s.Authenticated, s.User, required)
}

func roleIn(role domain.Role, roles []domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
