package identity

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
)

var (
	// errors
	ErrNotFound    = errors.Wrap(core.ErrNotFound, "identity")
	ErrEmailExists = errors.New("an account with this email already exists")
	ErrLastAdmin   = errors.New("cannot delete the last admin")
)

type (
	// Predicate selects identities in Repository.Find.
	Predicate func(Identity) bool

	Repository interface {
		// Find returns the first identity matching pred.
		Find(pred Predicate) (Identity, bool)
		// Append stores a new identity. The email uniqueness check and code
		// assignment happen atomically: ErrEmailExists is returned for a
		// duplicate email (case-insensitive), and an empty Code is filled
		// with the role's next code.
		Append(i Identity) (Identity, error)
		QueryAll() []Identity
		GetByID(id string) (Identity, error)
		Filter(filter QueryFilter) []Identity
		Update(i Identity) (Identity, error)
		DeleteByID(ids ...string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		demo     map[Role]Credentials
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate, demo: DemoCredentials()}
}

// Find and Append let the Service act as the session credential store.

func (svc *Service) Find(pred func(Identity) bool) (Identity, bool) {
	return svc.repo.Find(pred)
}

func (svc *Service) Append(i Identity) (Identity, error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return svc.repo.Append(i)
}

// Create validates ni and stores the resulting identity.
func (svc *Service) Create(ni NewIdentity) (Identity, error) {
	ni.Clean()
	if svc.validate != nil {
		if err := svc.validate.Struct(ni); err != nil {
			return Identity{}, err
		}
	}

	i := Identity{
		Email:           ni.Email,
		Role:            ni.Role,
		FirstName:       ni.FirstName,
		LastName:        ni.LastName,
		Phone:           ni.Phone,
		City:            ni.City,
		DateOfBirth:     ni.DateOfBirth,
		Profession:      ni.Profession,
		DateInscription: core.Today(),
		Status:          StatusActive,
	}
	if err := i.SetPassword(ni.Password); err != nil {
		return Identity{}, errors.Wrap(err, "hashing password")
	}
	i, err := svc.Append(i)
	if errors.Cause(err) == ErrEmailExists {
		return Identity{}, core.NewFieldError("email", ErrEmailExists)
	}
	return i, err
}

func (svc *Service) QueryAll() []Identity {
	return svc.repo.QueryAll()
}

func (svc *Service) GetByID(id string) (Identity, error) {
	return svc.repo.GetByID(id)
}

func (svc *Service) GetByEmail(email string) (Identity, error) {
	email = core.CleanString(email, true /* lower */)
	i, ok := svc.repo.Find(func(i Identity) bool { return i.Email == email })
	if !ok {
		return Identity{}, ErrNotFound
	}
	return i, nil
}

func (svc *Service) Filter(filter QueryFilter) []Identity {
	filter.Clean()
	return svc.repo.Filter(filter)
}

func (svc *Service) SetStatus(id string, status Status) (Identity, error) {
	if !status.Valid() {
		return Identity{}, core.NewFieldError("status", errors.Errorf("invalid status %q", status))
	}
	i, err := svc.repo.GetByID(id)
	if err != nil {
		return Identity{}, err
	}
	i.Status = status
	return svc.repo.Update(i)
}

func (svc *Service) SetPassword(id, pwd string) (Identity, error) {
	i, err := svc.repo.GetByID(id)
	if err != nil {
		return Identity{}, err
	}
	if svc.validate != nil {
		if err := svc.validate.Struct(NewIdentity{
			Email: i.Email, Password: pwd, Role: i.Role,
			Profile: Profile{FirstName: i.FirstName, LastName: i.LastName},
		}); err != nil {
			return Identity{}, err
		}
	}
	if err := i.SetPassword(pwd); err != nil {
		return Identity{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.Update(i)
}

// Delete removes identities of the given role. Ids of another role are
// reported as not found.
func (svc *Service) Delete(role Role, ids ...string) error {
	for _, id := range ids {
		i, err := svc.repo.GetByID(id)
		if err != nil {
			return err
		}
		if i.Role != role {
			return ErrNotFound
		}
	}
	if role == RoleAdmin {
		admins := svc.repo.Filter(QueryFilter{Role: RoleAdmin})
		if len(admins) <= len(ids) {
			return ErrLastAdmin
		}
	}
	return svc.repo.DeleteByID(ids...)
}

// DemoCredentials returns the seeded account of each role.
func (svc *Service) DemoCredentials() map[Role]Credentials {
	out := make(map[Role]Credentials, len(svc.demo))
	for r, c := range svc.demo {
		out[r] = c
	}
	return out
}
