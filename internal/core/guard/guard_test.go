package guard

import (
	"testing"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

var (
	clientUser = &domain.User{ID: 1, Role: domain.RoleClient}
	adminUser  = &domain.User{ID: 2, Role: domain.RoleAdmin}
)

func TestDecide_LoadingOverridesEverything(t *testing.T) {
	users := []*domain.User{nil, clientUser, adminUser}
	roleSets := [][]domain.Role{nil, {}, {domain.RoleAdmin}, {domain.RoleClient, domain.RoleWorker}}
	for _, auth := range []bool{false, true} {
		for _, u := range users {
			for _, roles := range roleSets {
				if d := Decide(true, auth, u, roles); d.Outcome != Wait {
					t.Fatalf("loading with auth=%v user=%v roles=%v: got %v", auth, u, roles, d.Outcome)
				}
			}
		}
	}
}

func TestDecide_UnauthenticatedGoesToLogin(t *testing.T) {
	for _, roles := range [][]domain.Role{nil, {domain.RoleAdmin}, {domain.RoleClient}} {
		d := Decide(false, false, nil, roles)
		if d.Outcome != RedirectLogin || d.Location != LoginPath {
			t.Fatalf("roles=%v: got %+v", roles, d)
		}
	}
	// A stale user without the authenticated flag is still sent to login.
	if d := Decide(false, false, clientUser, nil); d.Outcome != RedirectLogin {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_AuthenticatedWithoutUserGoesToLogin(t *testing.T) {
	if d := Decide(false, true, nil, nil); d.Outcome != RedirectLogin {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_WrongRoleGoesToDefault(t *testing.T) {
	d := Decide(false, true, clientUser, []domain.Role{domain.RoleAdmin})
	if d.Outcome != RedirectDefault || d.Location != DashboardPath {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_Renders(t *testing.T) {
	cases := []struct {
		user  *domain.User
		roles []domain.Role
	}{
		{clientUser, nil},
		{clientUser, []domain.Role{}},
		{clientUser, []domain.Role{domain.RoleWorker, domain.RoleClient}},
		{adminUser, []domain.Role{domain.RoleAdmin}},
	}
	for _, c := range cases {
		if d := Decide(false, true, c.user, c.roles); d.Outcome != Render {
			t.Fatalf("user=%v roles=%v: got %+v", c.user.Role, c.roles, d)
		}
	}
}

func TestDecidePublic(t *testing.T) {
	if d := DecidePublic(true, true); d.Outcome != Wait {
		t.Fatalf("loading: got %+v", d)
	}
	if d := DecidePublic(false, true); d.Outcome != RedirectDefault || d.Location != DashboardPath {
		t.Fatalf("signed in: got %+v", d)
	}
	if d := DecidePublic(false, false); d.Outcome != Render {
		t.Fatalf("anonymous: got %+v", d)
	}
}

func TestNavigate(t *testing.T) {
	signedIn := domain.Session{User: clientUser, Token: "t", Authenticated: true}
	anonymous := domain.Session{}

	cases := []struct {
		path    string
		session domain.Session
		want    Outcome
		where   string
	}{
		{"/admin", signedIn, RedirectDefault, DashboardPath},
		{"/orders", signedIn, Render, ""},
		{"/orders", anonymous, RedirectLogin, LoginPath},
		{"/login", signedIn, RedirectDefault, DashboardPath},
		{"/register", anonymous, Render, ""},
		{"/", anonymous, RedirectDefault, DashboardPath},
		{"/does-not-exist", signedIn, RedirectDefault, DashboardPath},
	}
	for _, c := range cases {
		d := Navigate(c.path, c.session)
		if d.Outcome != c.want || d.Location != c.where {
			t.Errorf("%s: want %v %q, got %v %q", c.path, c.want, c.where, d.Outcome, d.Location)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	want := map[Outcome]string{
		Render:          "render",
		Wait:            "wait",
		RedirectLogin:   "redirect_login",
		RedirectDefault: "redirect_default",
		Outcome(42):     "unknown",
	}
	for o, s := range want {
		if o.String() != s {
			t.Errorf("%d: want %q, got %q", int(o), s, o.String())
		}
	}
}
