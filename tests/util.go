// Package testutil sets up the in-memory tables, validators and clock for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	inmemdb "github.com/espanolfacil/academy/storage/database/inmem"
)

// Today is the date the clock is frozen at by FreezeClock: after every seeded
// pack's start, before pack-2's registration deadline.
var Today = time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)

func init() {
	identity.PasswordHashCost = bcrypt.MinCost
}

// OpenDB returns a database seeded with the fixtures.
func OpenDB(t *testing.T) *inmemdb.DB {
	t.Helper()
	db, err := inmemdb.OpenSeeded()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)
	pack.InitValidators(validate, translator)
	return validate, translator
}

// FreezeClock sets core.NowFunc to now (Today when omitted) until the test ends.
func FreezeClock(t *testing.T, now ...time.Time) time.Time {
	t.Helper()
	at := Today
	if len(now) > 0 {
		at = now[0]
	}
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { core.NowFunc = orig })
	return at
}

func CreateIdentity(
	t *testing.T,
	repo identity.Repository,
	role identity.Role,
	first, last, email, pwd string,
	status ...identity.Status,
) identity.Identity {
	t.Helper()
	i := identity.Identity{
		ID:              email,
		Email:           email,
		Role:            role,
		FirstName:       first,
		LastName:        last,
		City:            "Rabat",
		DateInscription: core.Today(),
		Status:          identity.StatusActive,
	}
	if len(status) > 0 {
		i.Status = status[0]
	}
	if pwd != "" {
		if err := i.SetPassword(pwd); err != nil {
			t.Fatalf("CreateIdentity() failed: %v", err)
		}
	}
	i, err := repo.Append(i)
	if err != nil {
		t.Fatalf("CreateIdentity() failed: %v", err)
	}
	return i
}

func CreatePack(t *testing.T, repo pack.Repository, code, title string, start, end, deadline string, status pack.Status) pack.Pack {
	t.Helper()
	p, err := repo.Create(pack.Pack{
		ID:           code,
		Code:         code,
		Title:        title,
		DateStart:    core.MustParseDate(start),
		DateEnd:      core.MustParseDate(end),
		DateDeadline: core.MustParseDate(deadline),
		MediaType:    pack.MediaVideo,
		Status:       status,
	})
	if err != nil {
		t.Fatalf("CreatePack() failed: %v", err)
	}
	return p
}
