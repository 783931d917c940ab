// Package inmemdb holds the domain tables in process memory.
package inmemdb

import (
	"sync"

	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/core/payment"
)

type (
	DB struct {
		identity   *identityTable
		pack       *packTable
		payment    *paymentTable
		enrollment *enrollmentTable
	}

	identityTable struct {
		sync.RWMutex
		table []*identity.Identity // insertion order
		// highest code sequence ever issued, per role
		issued map[identity.Role]int
	}

	packTable struct {
		sync.RWMutex
		table []*pack.Pack
	}

	paymentTable struct {
		sync.RWMutex
		table []*payment.Payment
	}

	enrollmentTable struct {
		sync.RWMutex
		table []*payment.Enrollment
	}
)

// Open returns an empty database.
func Open() *DB {
	return &DB{
		identity:   &identityTable{issued: make(map[identity.Role]int)},
		pack:       &packTable{},
		payment:    &paymentTable{},
		enrollment: &enrollmentTable{},
	}
}
