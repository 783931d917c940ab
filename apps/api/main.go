package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/espanolfacil/academy/apps/api/echo"
	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/dashboard"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/core/payment"
	"github.com/espanolfacil/academy/core/session"
	emailsvc "github.com/espanolfacil/academy/services/email"
	logsvc "github.com/espanolfacil/academy/services/logger"
	inmemdb "github.com/espanolfacil/academy/storage/database/inmem"
	"github.com/espanolfacil/academy/storage/kv"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZap(conf.LogLevel, conf.Env)
	if err != nil {
		log.Fatalf("building zap logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl, "api", conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	sessLogger := logsvc.NewRollbarLogger(zl, "session", conf)

	// set up DB
	db, err := inmemdb.OpenSeeded()
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}

	// set up session records
	backend, closeBackend := setUpSessionBackend(conf, logger)
	defer closeBackend()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)
	pack.InitValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	idSvc := identity.NewService(inmemdb.NewIdentityRepository(db), validate)
	packSvc := pack.NewService(inmemdb.NewPackRepository(db), validate, conf)
	pmtSvc := payment.NewService(inmemdb.NewPaymentRepository(db), packSvc, idSvc, mailSvc, validate, conf)
	dashSvc := dashboard.NewService(idSvc, packSvc, pmtSvc, conf)
	sessions := session.NewRegistry(idSvc, backend, sessLogger, conf.Session.Latency)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			Sessions:     sessions,
			IdentitySvc:  idSvc,
			PackSvc:      packSvc,
			PaymentSvc:   pmtSvc,
			DashboardSvc: dashSvc,
			MailSvc:      mailSvc,
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpSessionBackend returns the redis backend when a url is configured, the
// in-memory one otherwise.
func setUpSessionBackend(conf *core.Config, logger core.Logger) (session.Backend, func()) {
	if conf.Session.RedisURL == "" {
		logger.Info("session records kept in memory")
		return kv.NewMemoryBackend(conf.Session.KeyPrefix), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	client, err := kv.Open(ctx, conf.Session.RedisURL)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return kv.NewRedisBackend(client, conf.Session.KeyPrefix, conf.Session.TTL), func() {
		if err := client.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing redis: %v", err), err)
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
