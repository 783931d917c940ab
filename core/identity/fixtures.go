package identity

import (
	"github.com/espanolfacil/academy/core"
)

type fixture struct {
	Identity
	password string
}

var fixtures = []fixture{
	{
		Identity: Identity{
			ID: "admin-1", Email: "admin@espanolfacil.com", Role: RoleAdmin, Code: "00001",
			FirstName: "Admin", LastName: "Principal", Phone: "+212 600 000 001", City: "Casablanca",
			DateOfBirth: core.MustParseDate("1985-01-15"), DateInscription: core.MustParseDate("2024-01-01"),
			Status: StatusActive,
		},
		password: "admin123",
	},
	{
		Identity: Identity{
			ID: "prof-1", Email: "prof@espanolfacil.com", Role: RoleProfessor, Code: "10001",
			FirstName: "María", LastName: "García", Phone: "+212 600 000 002", City: "Rabat",
			DateOfBirth: core.MustParseDate("1990-05-20"), DateInscription: core.MustParseDate("2024-01-15"),
			Status: StatusActive,
		},
		password: "prof123",
	},
	{
		Identity: Identity{
			ID: "prof-2", Email: "prof2@espanolfacil.com", Role: RoleProfessor, Code: "10002",
			FirstName: "Carlos", LastName: "Martinez", Phone: "+212 600 000 003", City: "Tanger",
			DateOfBirth: core.MustParseDate("1988-08-10"), DateInscription: core.MustParseDate("2024-02-01"),
			Status: StatusActive,
		},
		password: "prof123",
	},
	{
		Identity: Identity{
			ID: "student-1", Email: "student@espanolfacil.com", Role: RoleStudent, Code: "20001",
			FirstName: "Ahmed", LastName: "Benali", Phone: "+212 600 000 004", City: "Marrakech",
			DateOfBirth: core.MustParseDate("1995-03-25"), Profession: "Ingénieur",
			DateInscription: core.MustParseDate("2024-03-01"), Status: StatusActive,
		},
		password: "student123",
	},
	{
		Identity: Identity{
			ID: "student-2", Email: "student2@espanolfacil.com", Role: RoleStudent, Code: "20002",
			FirstName: "Fatima", LastName: "Zahra", Phone: "+212 600 000 005", City: "Fès",
			DateOfBirth: core.MustParseDate("1998-07-12"), Profession: "Étudiante",
			DateInscription: core.MustParseDate("2024-03-05"), Status: StatusActive,
		},
		password: "student123",
	},
	{
		Identity: Identity{
			ID: "student-3", Email: "student3@espanolfacil.com", Role: RoleStudent, Code: "20003",
			FirstName: "Youssef", LastName: "El Amrani", Phone: "+212 600 000 006", City: "Agadir",
			DateOfBirth: core.MustParseDate("1992-11-30"), Profession: "Commercial",
			DateInscription: core.MustParseDate("2024-03-10"), Status: StatusInactive,
		},
		password: "student123",
	},
}

// Fixtures returns the identities the credential store is seeded with, with
// their passwords hashed.
func Fixtures() ([]Identity, error) {
	out := make([]Identity, 0, len(fixtures))
	for _, f := range fixtures {
		i := f.Identity
		if err := i.SetPassword(f.password); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// DemoCredentials returns the seeded account to sign in with for each role.
func DemoCredentials() map[Role]Credentials {
	return map[Role]Credentials{
		RoleAdmin:     {Email: "admin@espanolfacil.com", Password: "admin123"},
		RoleProfessor: {Email: "prof@espanolfacil.com", Password: "prof123"},
		RoleStudent:   {Email: "student@espanolfacil.com", Password: "student123"},
	}
}
