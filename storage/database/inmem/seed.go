package inmemdb

import (
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/core/payment"
)

var (
	seedPacks = []pack.Pack{
		{
			ID: "pack-1", Code: "PACK-1AZ", Title: "Español Básico A1",
			Description: "Cours d'initiation à la langue espagnole. Apprenez les bases de la grammaire, " +
				"du vocabulaire quotidien et de la prononciation.",
			DateStart: core.MustParseDate("2025-02-01"), DateEnd: core.MustParseDate("2025-04-30"),
			DateDeadline: core.MustParseDate("2025-01-25"),
			CourseLink:   "https://meet.google.com/abc-defg-hij",
			MediaType:    pack.MediaVideo, MediaLink: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			Status: pack.StatusActive, AssignedProfessors: []string{"prof-1"},
		},
		{
			ID: "pack-2", Code: "PACK-2BX", Title: "Español Intermedio B1",
			Description: "Perfectionnez votre espagnol avec des cours de niveau intermédiaire. " +
				"Conversations, grammaire avancée et culture hispanique.",
			DateStart: core.MustParseDate("2025-02-15"), DateEnd: core.MustParseDate("2025-05-15"),
			DateDeadline: core.MustParseDate("2025-02-10"),
			CourseLink:   "https://teams.microsoft.com/l/meetup-join/xyz",
			MediaType:    pack.MediaImage, MediaLink: "https://images.unsplash.com/photo-1551818255-e6e10975bc17?w=800",
			Status: pack.StatusActive, AssignedProfessors: []string{"prof-1", "prof-2"},
		},
		{
			ID: "pack-3", Code: "PACK-3CY", Title: "Español Avanzado C1",
			Description: "Niveau avancé pour maîtriser parfaitement l'espagnol. " +
				"Littérature, expressions idiomatiques et préparation DELE.",
			DateStart: core.MustParseDate("2025-03-01"), DateEnd: core.MustParseDate("2025-06-30"),
			DateDeadline: core.MustParseDate("2025-02-25"),
			CourseLink:   "https://zoom.us/j/1234567890",
			MediaType:    pack.MediaVideo, MediaLink: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			Status: pack.StatusActive, AssignedProfessors: []string{"prof-2"},
		},
	}

	seedPayments = []payment.Payment{
		{
			ID: "payment-1", StudentID: "student-1", PackID: "pack-1", Status: payment.StatusValidated,
			ProofImage:  "https://via.placeholder.com/400x300?text=Payment+Proof+1",
			DatePayment: core.MustParseDate("2024-12-20"),
		},
		{
			ID: "payment-2", StudentID: "student-2", PackID: "pack-1", Status: payment.StatusPending,
			ProofImage:  "https://via.placeholder.com/400x300?text=Payment+Proof+2",
			DatePayment: core.MustParseDate("2024-12-25"),
		},
		{
			ID: "payment-3", StudentID: "student-3", PackID: "pack-2", Status: payment.StatusRejected,
			ProofImage:  "https://via.placeholder.com/400x300?text=Payment+Proof+3",
			DatePayment: core.MustParseDate("2024-12-28"),
		},
		{
			ID: "payment-4", StudentID: "student-1", PackID: "pack-2", Status: payment.StatusValidated,
			ProofImage:  "https://via.placeholder.com/400x300?text=Payment+Proof+4",
			DatePayment: core.MustParseDate("2024-12-22"),
		},
	}

	seedEnrollments = []payment.Enrollment{
		{ID: "enroll-1", StudentID: "student-1", PackID: "pack-1", PaymentID: "payment-1"},
		{ID: "enroll-2", StudentID: "student-1", PackID: "pack-2", PaymentID: "payment-4"},
	}
)

// Seed loads the fixture identities, packs, payments and enrollments.
func Seed(db *DB) error {
	identities, err := identity.Fixtures()
	if err != nil {
		return errors.Wrap(err, "loading identity fixtures")
	}
	idRepo := NewIdentityRepository(db)
	for _, i := range identities {
		if _, err := idRepo.Append(i); err != nil {
			return errors.Wrapf(err, "seeding identity %s", i.ID)
		}
	}

	packRepo := NewPackRepository(db)
	for _, p := range seedPacks {
		if _, err := packRepo.Create(p); err != nil {
			return errors.Wrapf(err, "seeding pack %s", p.ID)
		}
	}

	pmtRepo := NewPaymentRepository(db)
	for _, p := range seedPayments {
		if _, err := pmtRepo.Create(p); err != nil {
			return errors.Wrapf(err, "seeding payment %s", p.ID)
		}
	}
	for _, e := range seedEnrollments {
		if _, err := pmtRepo.CreateEnrollment(e); err != nil {
			return errors.Wrapf(err, "seeding enrollment %s", e.ID)
		}
	}
	return nil
}

// OpenSeeded returns a database loaded with the fixtures.
func OpenSeeded() (*DB, error) {
	db := Open()
	if err := Seed(db); err != nil {
		return nil, err
	}
	return db, nil
}
