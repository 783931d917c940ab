package inmemdb

import (
	"github.com/espanolfacil/academy/core/pack"
)

type packRepository struct {
	db *packTable
}

var _ pack.Repository = (*packRepository)(nil) // interface compliance check

func NewPackRepository(db *DB) pack.Repository {
	return &packRepository{db: db.pack}
}

func clonePack(p pack.Pack) pack.Pack {
	p.AssignedProfessors = append([]string{}, p.AssignedProfessors...)
	return p
}

func (repo *packRepository) find(id string) (int, bool) {
	for idx, p := range repo.db.table {
		if p.ID == id {
			return idx, true
		}
	}
	return -1, false
}

func (repo *packRepository) Create(p pack.Pack) (pack.Pack, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Code == p.Code {
			return pack.Pack{}, pack.ErrCodeExists
		}
	}
	p = clonePack(p)
	repo.db.table = append(repo.db.table, &p)
	return clonePack(p), nil
}

func (repo *packRepository) QueryAll() []pack.Pack {
	return repo.Filter(pack.QueryFilter{})
}

func (repo *packRepository) GetByID(id string) (pack.Pack, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if idx, ok := repo.find(id); ok {
		return clonePack(*repo.db.table[idx]), nil
	}
	return pack.Pack{}, pack.ErrNotFound
}

func (repo *packRepository) Filter(filter pack.QueryFilter) []pack.Pack {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]pack.Pack, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		if filter.Match(*p) {
			out = append(out, clonePack(*p))
		}
	}
	return out
}

func (repo *packRepository) Update(p pack.Pack) (pack.Pack, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	idx, ok := repo.find(p.ID)
	if !ok {
		return pack.Pack{}, pack.ErrNotFound
	}
	p.Code = repo.db.table[idx].Code
	p = clonePack(p)
	repo.db.table[idx] = &p
	return clonePack(p), nil
}

func (repo *packRepository) DeleteByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	del := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := repo.find(id); !ok {
			return pack.ErrNotFound
		}
		del[id] = true
	}
	kept := repo.db.table[:0]
	for _, p := range repo.db.table {
		if !del[p.ID] {
			kept = append(kept, p)
		}
	}
	repo.db.table = kept
	return nil
}
