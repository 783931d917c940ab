package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/session"
	emailsvc "github.com/espanolfacil/academy/services/email"
	"github.com/espanolfacil/academy/services/metrics"
)

type sessionApi struct {
	*Server
}

func registerSessionAPI(g *echo.Group, jwt, sess echo.MiddlewareFunc, s *Server) {
	api := sessionApi{s}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/signin", api.signIn)
	ag.POST("/signup", api.signUp)
	if s.Conf.Debug || s.Conf.TestMode {
		ag.GET("/demo-credentials", api.demoCredentials)
	}

	// authed endpoints
	ag.POST("/signout", api.signOut, jwt, sess)
	sg := ag.Group("", jwt, sess, gateMiddleware())
	sg.GET("/session", api.session)
	sg.POST("/token-refresh", api.refreshToken)
}

// Handlers

func (api *sessionApi) signIn(ctx echo.Context) error {
	var data SignInRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignInRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	contextID := api.jwt.contextID(ctx)
	m := api.Sessions.Get(ctx.Request().Context(), contextID)
	defer api.releaseContext(contextID)
	err := m.SignIn(ctx.Request().Context(), data.Email, data.Password)
	metrics.ObserveAuth("signin", authResult(err))
	if err != nil {
		return sessionError(err, "signing in")
	}
	return api.respondSession(ctx, http.StatusOK, contextID, m)
}

func (api *sessionApi) signUp(ctx echo.Context) error {
	var data identity.SignUpForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignUpForm")
	}
	data.Clean()
	if err := api.Validate.Struct(data); err != nil {
		return err
	}

	contextID := api.jwt.contextID(ctx)
	m := api.Sessions.Get(ctx.Request().Context(), contextID)
	defer api.releaseContext(contextID)
	err := m.SignUp(ctx.Request().Context(), data.Email, data.Password, data.Profile)
	metrics.ObserveAuth("signup", authResult(err))
	if err != nil {
		return sessionError(err, "signing up")
	}

	if i, ok := m.Current(); ok {
		api.MailSvc.SendMessages(emailsvc.NewWelcomeMessage(api.Conf, i))
	}
	return api.respondSession(ctx, http.StatusCreated, contextID, m)
}

func (api *sessionApi) respondSession(ctx echo.Context, code int, contextID string, m *session.Manager) error {
	i, ok := m.Current()
	if !ok { // signed out right after
		return errSuperseded
	}
	token, err := api.jwt.generate(api.jwt.claims(contextID, i))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, newSessionResponse(token, i))
}

// releaseContext unregisters contextID unless it ended up holding a session.
func (api *sessionApi) releaseContext(contextID string) {
	api.Sessions.Release(contextID)
	metrics.ActiveSessions.Set(float64(api.Sessions.Len()))
}

func (api *sessionApi) signOut(ctx echo.Context) error {
	m, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	m.SignOut(ctx.Request().Context())
	api.Sessions.Forget(claims.Subject)
	metrics.ObserveAuth("signout", "success")
	metrics.ActiveSessions.Set(float64(api.Sessions.Len()))
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) session(ctx echo.Context) error {
	i, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	token, err := api.jwt.generate(api.jwt.claims(claims.Subject, i, claims.OrigIssuedAt))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, newSessionResponse(token, i))
}

func (api *sessionApi) refreshToken(ctx echo.Context) error {
	token, err := api.jwt.refreshToken(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *sessionApi) demoCredentials(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.IdentitySvc.DemoCredentials())
}

// sessionError maps session failures to their HTTP shape.
func sessionError(err error, msg string) error {
	switch errors.Cause(err) {
	case session.ErrInvalidCredentials:
		return core.NewValidationError(session.ErrInvalidCredentials)
	case session.ErrInvalidSignUp:
		return core.NewValidationError(session.ErrInvalidSignUp)
	case session.ErrEmailTaken:
		return core.NewFieldError("email", session.ErrEmailTaken)
	case session.ErrSuperseded:
		return errSuperseded
	}
	return errors.Wrap(err, msg)
}

func authResult(err error) string {
	switch errors.Cause(err) {
	case nil:
		return "success"
	case session.ErrInvalidCredentials, session.ErrInvalidSignUp, session.ErrEmailTaken:
		return "rejected"
	case session.ErrSuperseded:
		return "superseded"
	}
	return "error"
}
