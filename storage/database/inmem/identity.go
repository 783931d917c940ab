package inmemdb

import (
	"strings"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
)

type identityRepository struct {
	db *identityTable
}

var _ identity.Repository = (*identityRepository)(nil) // interface compliance check

func NewIdentityRepository(db *DB) identity.Repository {
	return &identityRepository{db: db.identity}
}

func (repo *identityRepository) query() []identity.Identity {
	out := make([]identity.Identity, 0, len(repo.db.table))
	for _, i := range repo.db.table {
		out = append(out, *i)
	}
	return out
}

func (repo *identityRepository) find(id string) (int, bool) {
	for idx, i := range repo.db.table {
		if i.ID == id {
			return idx, true
		}
	}
	return -1, false
}

func (repo *identityRepository) Find(pred identity.Predicate) (identity.Identity, bool) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, i := range repo.db.table {
		if pred(*i) {
			return *i, true
		}
	}
	return identity.Identity{}, false
}

func (repo *identityRepository) Append(i identity.Identity) (identity.Identity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i.Email = core.CleanString(i.Email, true /* lower */)
	var count int
	for _, existing := range repo.db.table {
		if strings.EqualFold(existing.Email, i.Email) {
			return identity.Identity{}, identity.ErrEmailExists
		}
		if existing.Role == i.Role {
			count++
		}
	}
	if i.Code == "" {
		i.Code = identity.NextCode(i.Role, count, repo.db.issued[i.Role])
	}
	if seq, ok := identity.CodeSeq(i.Role, i.Code); ok && seq > repo.db.issued[i.Role] {
		repo.db.issued[i.Role] = seq
	}

	repo.db.table = append(repo.db.table, &i)
	return i, nil
}

func (repo *identityRepository) QueryAll() []identity.Identity {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query()
}

func (repo *identityRepository) GetByID(id string) (identity.Identity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if idx, ok := repo.find(id); ok {
		return *repo.db.table[idx], nil
	}
	return identity.Identity{}, identity.ErrNotFound
}

func (repo *identityRepository) Filter(filter identity.QueryFilter) []identity.Identity {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]identity.Identity, 0)
	for _, i := range repo.db.table {
		if filter.Match(*i) {
			out = append(out, *i)
		}
	}
	return out
}

func (repo *identityRepository) Update(i identity.Identity) (identity.Identity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	idx, ok := repo.find(i.ID)
	if !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	orig := repo.db.table[idx]
	// role, code and email are fixed at creation
	i.Role = orig.Role
	i.Code = orig.Code
	i.Email = orig.Email
	if i.PasswordHash == nil {
		i.PasswordHash = orig.PasswordHash
	}
	repo.db.table[idx] = &i
	return i, nil
}

func (repo *identityRepository) DeleteByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if _, ok := repo.find(id); !ok {
			return identity.ErrNotFound
		}
	}
	del := make(map[string]bool, len(ids))
	for _, id := range ids {
		del[id] = true
	}
	kept := repo.db.table[:0]
	for _, i := range repo.db.table {
		if !del[i.ID] {
			kept = append(kept, i)
		}
	}
	repo.db.table = kept
	return nil
}
