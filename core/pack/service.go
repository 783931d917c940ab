package pack

import (
	"crypto/rand"
	"math/big"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
)

var (
	// errors
	ErrNotFound       = errors.Wrap(core.ErrNotFound, "pack")
	ErrCodeExists     = errors.New("a pack with this code already exists")
	ErrMaxActivePacks = errors.New("maximum number of active packs reached")

	codeAlphabet = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
)

type (
	Repository interface {
		Create(p Pack) (Pack, error)
		QueryAll() []Pack
		GetByID(id string) (Pack, error)
		Filter(filter QueryFilter) []Pack
		Update(p Pack) (Pack, error)
		DeleteByID(ids ...string) error
	}

	Service struct {
		repo      Repository
		validate  *validator.Validate
		maxActive int

		mu sync.Mutex // guards the active packs count across writes
	}
)

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{repo: repo, validate: validate, maxActive: conf.Pack.MaxActive}
}

// GenerateCode returns a code of the form PACK-XXX.
func GenerateCode() (string, error) {
	b := []byte("PACK-XXX")
	for i := 5; i < len(b); i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (svc *Service) checkActiveLimit(excludeID string) error {
	if svc.maxActive <= 0 {
		return nil
	}
	var n int
	for _, p := range svc.repo.Filter(QueryFilter{Status: StatusActive}) {
		if p.ID != excludeID {
			n++
		}
	}
	if n >= svc.maxActive {
		return core.NewFieldError("status", ErrMaxActivePacks)
	}
	return nil
}

func (svc *Service) validateNew(np *NewPack) error {
	np.Clean()
	if svc.validate != nil {
		return svc.validate.Struct(np)
	}
	return nil
}

func (svc *Service) Create(np NewPack) (Pack, error) {
	if err := svc.validateNew(&np); err != nil {
		return Pack{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if np.Status == StatusActive {
		if err := svc.checkActiveLimit(""); err != nil {
			return Pack{}, err
		}
	}

	p := Pack{
		ID:                 uuid.NewString(),
		Title:              np.Title,
		Description:        np.Description,
		DateStart:          np.DateStart,
		DateEnd:            np.DateEnd,
		DateDeadline:       np.DateDeadline,
		CourseLink:         np.CourseLink,
		MediaType:          np.MediaType,
		MediaLink:          np.MediaLink,
		Status:             np.Status,
		AssignedProfessors: []string{},
	}
	for attempt := 0; attempt < 5; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return Pack{}, errors.Wrap(err, "generating pack code")
		}
		p.Code = code
		created, err := svc.repo.Create(p)
		if errors.Cause(err) == ErrCodeExists {
			continue
		}
		return created, err
	}
	return Pack{}, ErrCodeExists
}

func (svc *Service) Update(id string, np NewPack) (Pack, error) {
	if err := svc.validateNew(&np); err != nil {
		return Pack{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	p, err := svc.repo.GetByID(id)
	if err != nil {
		return Pack{}, err
	}
	if np.Status == StatusActive && !p.IsActive() {
		if err := svc.checkActiveLimit(p.ID); err != nil {
			return Pack{}, err
		}
	}
	p.Title = np.Title
	p.Description = np.Description
	p.DateStart = np.DateStart
	p.DateEnd = np.DateEnd
	p.DateDeadline = np.DateDeadline
	p.CourseLink = np.CourseLink
	p.MediaType = np.MediaType
	p.MediaLink = np.MediaLink
	p.Status = np.Status
	return svc.repo.Update(p)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteByID(ids...)
}

func (svc *Service) GetByID(id string) (Pack, error) {
	return svc.repo.GetByID(id)
}

// Query returns the packs matching filter, ordered by start date.
func (svc *Service) Query(filter QueryFilter) []Pack {
	filter.Clean()
	packs := svc.repo.Filter(filter)
	sortByStart(packs)
	return packs
}

// ListPublic returns the active packs with their registration countdown.
func (svc *Service) ListPublic() []PublicPack {
	now := core.NowFunc()
	packs := svc.Query(QueryFilter{Status: StatusActive})
	out := make([]PublicPack, 0, len(packs))
	for _, p := range packs {
		out = append(out, p.Public(now))
	}
	return out
}

// ForProfessor returns the packs professorID teaches.
func (svc *Service) ForProfessor(professorID string) []Pack {
	return svc.Query(QueryFilter{ProfessorID: professorID})
}

// AssignProfessor makes professorID teach exactly the packs in packIDs.
func (svc *Service) AssignProfessor(professorID string, packIDs []string) ([]Pack, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	want := make(map[string]bool, len(packIDs))
	for _, id := range packIDs {
		if _, err := svc.repo.GetByID(id); err != nil {
			return nil, err
		}
		want[id] = true
	}

	for _, p := range svc.repo.QueryAll() {
		has := p.HasProfessor(professorID)
		switch {
		case want[p.ID] && !has:
			p.AssignedProfessors = append(p.AssignedProfessors, professorID)
		case !want[p.ID] && has:
			kept := make([]string, 0, len(p.AssignedProfessors))
			for _, pid := range p.AssignedProfessors {
				if pid != professorID {
					kept = append(kept, pid)
				}
			}
			p.AssignedProfessors = kept
		default:
			continue
		}
		if _, err := svc.repo.Update(p); err != nil {
			return nil, errors.Wrap(err, "updating pack professors")
		}
	}
	return svc.ForProfessor(professorID), nil
}

// Unassign removes professorID from every pack.
func (svc *Service) Unassign(professorID string) error {
	_, err := svc.AssignProfessor(professorID, nil)
	return err
}

func sortByStart(packs []Pack) {
	sort.SliceStable(packs, func(i, j int) bool {
		if packs[i].DateStart.Equal(packs[j].DateStart.Time) {
			return packs[i].Code < packs[j].Code
		}
		return packs[i].DateStart.Before(packs[j].DateStart.Time)
	})
}
