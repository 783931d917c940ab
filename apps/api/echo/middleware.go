package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core/gate"
	"github.com/espanolfacil/academy/core/session"
	"github.com/espanolfacil/academy/services/metrics"
)

const apiPrefix = "/v1"

// sessionMiddleware attaches the session manager of the token's browser
// context. Must run after the JWT middleware.
func sessionMiddleware(sessions *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil || claims.Subject == "" {
				return errUnauthorized
			}
			ctx.Set(sessionContextKey, sessions.Get(ctx.Request().Context(), claims.Subject))
			// contexts signed out elsewhere or expired are not kept around
			sessions.Release(claims.Subject)
			metrics.ActiveSessions.Set(float64(sessions.Len()))
			return next(ctx)
		}
	}
}

// gateMiddleware admits the request only when the session holds one of the
// roles gate.RolesFor allows on the matched route. Routes outside the gate's
// table admit any signed in identity.
func gateMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			m, err := getContextSession(ctx)
			if err != nil {
				return err
			}

			roles, _ := gate.RolesFor(strings.TrimPrefix(ctx.Path(), apiPrefix))
			d, err := gate.Navigate(ctx.Request().Context(), m, roles...)
			if err != nil {
				return errors.Wrap(err, "waiting for session")
			}
			metrics.ObserveGate(d.State.String())

			if d.State != gate.Authorized {
				if !d.SignedIn {
					return errUnauthorized
				}
				return errHttpForbidden
			}
			ctx.Set(identityContextKey, d.Identity)
			return next(ctx)
		}
	}
}
