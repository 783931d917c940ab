package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/dashboard"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/core/payment"
	"github.com/espanolfacil/academy/core/session"
	"github.com/espanolfacil/academy/services/metrics"
)

type (
	ServerDeps struct {
		Conf         *core.Config
		Logger       core.Logger
		Sessions     *session.Registry
		IdentitySvc  *identity.Service
		PackSvc      *pack.Service
		PaymentSvc   *payment.Service
		DashboardSvc *dashboard.Service
		MailSvc      core.EmailService
		Validate     *validator.Validate
		Translator   ut.Translator
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		jwt      *jwtSigner
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		jwt:        newJWTSigner(deps.Conf),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)
	s.app.Debug = s.Conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	v1 := s.app.Group(apiPrefix)
	jwt := middleware.JWTWithConfig(s.jwt.config)
	sess := sessionMiddleware(s.Sessions)

	registerSessionAPI(v1, jwt, sess, s)
	registerPackAPI(v1, jwt, sess, s)
	registerIdentityAPI(v1, jwt, sess, s)
	registerPaymentAPI(v1, jwt, sess, s)
	registerDashboardAPI(v1, jwt, sess, s)
}

func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the error that made the listener stop.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives SIGINT, SIGTERM, or a shutdown requested by a handler.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "¡Bienvenidos a Español Fácil!")
}
