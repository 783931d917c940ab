package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/session"
	logsvc "github.com/espanolfacil/academy/services/logger"
	inmemdb "github.com/espanolfacil/academy/storage/database/inmem"
	"github.com/espanolfacil/academy/storage/kv"
)

var logger *logsvc.RollbarLogger

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf.LogLevel, conf.Env)
	if err != nil {
		log.Fatalf("building zap logger: %v", err)
	}
	logger = logsvc.NewRollbarLogger(zl, "admin", conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := inmemdb.OpenSeeded()
	errAndDie(err)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)

	backend, closeBackend := openSessionBackend(conf)

	// start CLI
	cli := commandLine{
		idSvc:    identity.NewService(inmemdb.NewIdentityRepository(db), validate),
		sessions: backend,
		logger:   logger,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	closeBackend()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

// openSessionBackend connects to the session records of the API. Without a
// redis url the records only live as long as the command.
func openSessionBackend(conf *core.Config) (session.Backend, func()) {
	if conf.Session.RedisURL == "" {
		logger.Warn("no redis url set: session records are not shared with the API")
		return kv.NewMemoryBackend(conf.Session.KeyPrefix), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	client, err := kv.Open(ctx, conf.Session.RedisURL)
	errAndDie(err)
	return kv.NewRedisBackend(client, conf.Session.KeyPrefix, conf.Session.TTL), func() { _ = client.Close() }
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
