// Package dashboard assembles the per-role overviews.
package dashboard

import (
	"sort"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/core/payment"
)

type (
	AdminOverview struct {
		Students          int             `json:"students"`
		ActiveStudents    int             `json:"active_students"`
		Professors        int             `json:"professors"`
		ActivePacks       int             `json:"active_packs"`
		MaxActivePacks    int             `json:"max_active_packs"`
		PendingPayments   int             `json:"pending_payments"`
		ValidatedPayments int             `json:"validated_payments"`
		RejectedPayments  int             `json:"rejected_payments"`
		Packs             []PackEnrolment `json:"packs"`
	}

	PackEnrolment struct {
		Pack     pack.Pack `json:"pack"`
		Enrolled int       `json:"enrolled"`
	}

	ProfessorOverview struct {
		Professor identity.Identity `json:"professor"`
		Packs     []ProfessorPack   `json:"packs"`
	}

	ProfessorPack struct {
		Pack     pack.Pack           `json:"pack"`
		Started  bool                `json:"started"`
		Students []identity.Identity `json:"students"`
	}

	StudentOverview struct {
		Student           identity.Identity `json:"student"`
		EnrolledCourses   int               `json:"enrolled_courses"`
		ValidatedPayments int               `json:"validated_payments"`
		Courses           []StudentCourse   `json:"courses"`
		OpenPacks         []OpenPack        `json:"open_packs"`
		Bank              core.BankConfig   `json:"bank"`
	}

	// StudentCourse is a pack the student paid for. CourseLink is only set
	// once the payment is validated and the course has started.
	StudentCourse struct {
		Pack       pack.PublicPack `json:"pack"`
		Payment    payment.Payment `json:"payment"`
		Started    bool            `json:"started"`
		CourseLink string          `json:"course_link,omitempty"`
	}

	OpenPack struct {
		Pack  pack.PublicPack `json:"pack"`
		Motif string          `json:"motif"`
	}
)

type Service struct {
	identities *identity.Service
	packs      *pack.Service
	payments   *payment.Service
	conf       *core.Config
}

func NewService(identities *identity.Service, packs *pack.Service, payments *payment.Service, conf *core.Config) *Service {
	return &Service{identities: identities, packs: packs, payments: payments, conf: conf}
}

func (svc *Service) Admin() AdminOverview {
	students := svc.identities.Filter(identity.QueryFilter{Role: identity.RoleStudent})
	counts := svc.payments.Counts()

	ov := AdminOverview{
		Students:          len(students),
		Professors:        len(svc.identities.Filter(identity.QueryFilter{Role: identity.RoleProfessor})),
		MaxActivePacks:    svc.conf.Pack.MaxActive,
		PendingPayments:   counts[payment.StatusPending],
		ValidatedPayments: counts[payment.StatusValidated],
		RejectedPayments:  counts[payment.StatusRejected],
		Packs:             make([]PackEnrolment, 0),
	}
	for _, s := range students {
		if s.IsActive() {
			ov.ActiveStudents++
		}
	}
	for _, p := range svc.packs.Query(pack.QueryFilter{}) {
		if p.IsActive() {
			ov.ActivePacks++
		}
		ov.Packs = append(ov.Packs, PackEnrolment{Pack: p, Enrolled: len(svc.payments.Enrollments(p.ID))})
	}
	return ov
}

func (svc *Service) Professor(professor identity.Identity) ProfessorOverview {
	now := core.NowFunc()
	ov := ProfessorOverview{Professor: professor, Packs: make([]ProfessorPack, 0)}
	for _, p := range svc.packs.ForProfessor(professor.ID) {
		pp := ProfessorPack{Pack: p, Started: p.Started(now), Students: make([]identity.Identity, 0)}
		for _, e := range svc.payments.Enrollments(p.ID) {
			if s, err := svc.identities.GetByID(e.StudentID); err == nil {
				pp.Students = append(pp.Students, s)
			}
		}
		sort.SliceStable(pp.Students, func(i, j int) bool { return pp.Students[i].Code < pp.Students[j].Code })
		ov.Packs = append(ov.Packs, pp)
	}
	return ov
}

func (svc *Service) Student(student identity.Identity) StudentOverview {
	now := core.NowFunc()
	ov := StudentOverview{
		Student:   student,
		Courses:   make([]StudentCourse, 0),
		OpenPacks: make([]OpenPack, 0),
		Bank:      svc.conf.Bank,
	}

	paid := make(map[string]bool)
	for _, pmt := range svc.payments.ForStudent(student.ID) {
		p, err := svc.packs.GetByID(pmt.PackID)
		if err != nil {
			continue
		}
		paid[p.ID] = pmt.Status != payment.StatusRejected
		c := StudentCourse{Pack: p.Public(now), Payment: pmt, Started: p.Started(now)}
		if pmt.Status == payment.StatusValidated {
			ov.ValidatedPayments++
			if c.Started {
				c.CourseLink = p.CourseLink
			}
		}
		ov.Courses = append(ov.Courses, c)
	}
	ov.EnrolledCourses = len(ov.Courses)

	for _, p := range svc.packs.Query(pack.QueryFilter{Status: pack.StatusActive}) {
		if paid[p.ID] || !p.RegistrationOpen(now) {
			continue
		}
		ov.OpenPacks = append(ov.OpenPacks, OpenPack{Pack: p.Public(now), Motif: svc.payments.Motif(p.Code, student.Code)})
	}
	return ov
}
