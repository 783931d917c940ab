// Package gate decides whether a session may enter a role-restricted area.
package gate

import (
	"context"
	"strings"

	"github.com/espanolfacil/academy/core/identity"
)

// SignInPath is where unauthorized navigations are sent.
const SignInPath = "/auth"

type State int

const (
	Pending State = iota
	Authorized
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Session is the part of a session manager the gate looks at.
type Session interface {
	Current() (identity.Identity, bool)
	Loading() bool
	Wait(ctx context.Context) error
}

// Decision is the terminal outcome of a navigation.
type Decision struct {
	State State
	// SignedIn is false when Unauthorized because there is no session at all.
	SignedIn   bool
	Identity   identity.Identity
	RedirectTo string
}

// Evaluate returns the gate state for s against the required roles.
// An empty role set admits any signed in identity.
func Evaluate(s Session, roles ...identity.Role) State {
	if s.Loading() {
		return Pending
	}
	i, ok := s.Current()
	if !ok {
		return Unauthorized
	}
	if len(roles) == 0 || i.HasAnyRole(roles...) {
		return Authorized
	}
	return Unauthorized
}

// Navigate waits out the Pending state and returns the decision. It only fails
// when ctx ends first.
func Navigate(ctx context.Context, s Session, roles ...identity.Role) (Decision, error) {
	for {
		state := Evaluate(s, roles...)
		if state != Pending {
			i, ok := s.Current()
			d := Decision{State: state, SignedIn: ok, Identity: i}
			if state == Unauthorized {
				d.RedirectTo = SignInPath
			}
			return d, nil
		}
		if err := s.Wait(ctx); err != nil {
			return Decision{State: Pending}, err
		}
	}
}

// HomePath returns the dashboard of role.
func HomePath(role identity.Role) string {
	switch role {
	case identity.RoleAdmin:
		return "/admin"
	case identity.RoleProfessor:
		return "/professor"
	case identity.RoleStudent:
		return "/student"
	}
	return "/"
}

type route struct {
	prefix string
	roles  []identity.Role
}

var routes = []route{
	{prefix: "/admin", roles: []identity.Role{identity.RoleAdmin}},
	{prefix: "/professor", roles: []identity.Role{identity.RoleProfessor}},
	{prefix: "/student", roles: []identity.Role{identity.RoleStudent}},
}

// RolesFor returns the roles allowed on path and whether path is protected at all.
func RolesFor(path string) ([]identity.Role, bool) {
	for _, r := range routes {
		if path == r.prefix || strings.HasPrefix(path, r.prefix+"/") {
			return r.roles, true
		}
	}
	return nil, false
}
