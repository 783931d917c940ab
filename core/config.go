package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	SessionConfig struct {
		// Latency is the simulated network delay applied to sign-in and sign-up.
		Latency   time.Duration
		TTL       time.Duration
		KeyPrefix string
		RedisURL  string // memory store when empty
	}

	PackConfig struct {
		MaxActive int
	}

	BankConfig struct {
		Name          string `json:"bank_name"`
		AccountHolder string `json:"account_holder"`
		RIB           string `json:"rib"`
		Swift         string `json:"swift"`
		MotifTemplate string `json:"motif_template"`
	}

	Config struct {
		Env              string
		WorkDir          string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		LogLevel         string
		defaultFromEmail string

		Server  ServerConfig
		Session SessionConfig
		Pack    PackConfig
		Bank    BankConfig
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Español Fácil")
	conf.SetDefault("secretKey", "k2$u8-vq9!e@fa7#l0p(ez+3x=m1j&bd4r*sn6)hwty5co_gi")
	conf.SetDefault("defaultFromEmail", "Español Fácil <noreply@espanolfacil.com>")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")
	conf.SetDefault("logLevel", "debug")

	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)

	conf.SetDefault("session.latency", 500*time.Millisecond)
	conf.SetDefault("session.ttl", 30*24*time.Hour)
	conf.SetDefault("session.keyPrefix", "espanolfacil")
	conf.SetDefault("session.redisURL", "")

	conf.SetDefault("pack.maxActive", 3)

	conf.SetDefault("bank.name", "Banque Populaire")
	conf.SetDefault("bank.accountHolder", "Español Fácil SARL")
	conf.SetDefault("bank.rib", "101 780 0001234567890123 45")
	conf.SetDefault("bank.swift", "BCPOMAMC")
	conf.SetDefault("bank.motifTemplate", "INSCRIPTION-{PACK_CODE}-{STUDENT_CODE}")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
		conf.SetDefault("debug", false)
		conf.SetDefault("logLevel", "error")
		conf.SetDefault("session.latency", time.Duration(0))
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:              env,
		WorkDir:          wd,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		LogLevel:         conf.GetString("logLevel"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:                   conf.GetString("server.address"),
			Host:                      conf.GetString("server.host"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Session: SessionConfig{
			Latency:   conf.GetDuration("session.latency"),
			TTL:       conf.GetDuration("session.ttl"),
			KeyPrefix: conf.GetString("session.keyPrefix"),
			RedisURL:  conf.GetString("session.redisURL"),
		},
		Pack: PackConfig{
			MaxActive: conf.GetInt("pack.maxActive"),
		},
		Bank: BankConfig{
			Name:          conf.GetString("bank.name"),
			AccountHolder: conf.GetString("bank.accountHolder"),
			RIB:           conf.GetString("bank.rib"),
			Swift:         conf.GetString("bank.swift"),
			MotifTemplate: conf.GetString("bank.motifTemplate"),
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	return *addr
}

// NewTestConfig returns the configuration used by package tests: no latency, no
// redis, test mode on.
func NewTestConfig() *Config {
	_ = os.Setenv("ENV", "TEST")
	return NewConfig()
}
