package identity

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/espanolfacil/academy/core"
)

// Role of an Identity. It is fixed when the identity is created.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
	RoleStudent   Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleProfessor, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleStudent:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// PasswordHashCost is the bcrypt cost used when hashing passwords.
var PasswordHashCost = bcrypt.DefaultCost // mockable

type Identity struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    []byte    `json:"-"`
	Role            Role      `json:"role"`
	Code            string    `json:"code"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"phone"`
	City            string    `json:"city"`
	DateOfBirth     core.Date `json:"date_of_birth"`
	Profession      string    `json:"profession,omitempty"`
	DateInscription core.Date `json:"date_inscription"`
	Status          Status    `json:"status"`
}

func (i *Identity) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordHashCost)
	if err != nil {
		return err
	}
	i.PasswordHash = hash
	return nil
}

func (i *Identity) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(i.PasswordHash, []byte(pwd))
}

func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

func (i Identity) IsActive() bool { return i.Status == StatusActive }

// HasAnyRole reports whether the identity holds one of roles.
func (i Identity) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Profile holds the personal details captured on registration.
type Profile struct {
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	Phone       string    `json:"phone" validate:"omitempty,phone"`
	City        string    `json:"city" validate:"omitempty,city"`
	DateOfBirth core.Date `json:"date_of_birth"`
	Profession  string    `json:"profession"`
}

func (p *Profile) Clean() {
	p.FirstName = core.CleanString(p.FirstName)
	p.LastName = core.CleanString(p.LastName)
	p.Phone = core.CleanString(p.Phone)
	p.City = core.CleanString(p.City)
	p.Profession = core.CleanString(p.Profession)
}

// NewIdentity contains information needed to create an Identity from the admin
// dashboard or the admin CLI.
type NewIdentity struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,role"`
	Profile
}

func (ni *NewIdentity) Clean() {
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.Profile.Clean()
}

// SignUpForm is what a visitor submits to register as a student.
type SignUpForm struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"omitempty,eqfield=Password"`
	Profile
}

func (f *SignUpForm) Clean() {
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Profile.Clean()
}

type QueryFilter struct {
	Search string `query:"search"`
	Role   Role   `query:"role"`
	Status Status `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match applies AND on the set filter fields. Search matches first name, last
// name, email or code, case-insensitively.
func (qf QueryFilter) Match(i Identity) bool {
	if qf.Role != "" && i.Role != qf.Role {
		return false
	}
	if qf.Status != "" && i.Status != qf.Status {
		return false
	}
	if qf.Search != "" {
		return core.ContainsFold(i.FirstName, qf.Search) ||
			core.ContainsFold(i.LastName, qf.Search) ||
			core.ContainsFold(i.Email, qf.Search) ||
			core.ContainsFold(i.Code, qf.Search)
	}
	return true
}

// Credentials are shown on the sign-in page in debug mode.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
