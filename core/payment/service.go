package payment

import (
	"fmt"
	"net/mail"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
)

var (
	// errors
	ErrNotFound           = errors.Wrap(core.ErrNotFound, "payment")
	ErrRegistrationClosed = errors.New("registration for this pack is closed")
	ErrDuplicatePayment   = errors.New("a payment for this pack is already pending or validated")
	ErrNotAStudent        = errors.New("only students can submit payments")
)

type (
	Repository interface {
		Create(p Payment) (Payment, error)
		QueryAll() []Payment
		GetByID(id string) (Payment, error)
		Update(p Payment) (Payment, error)

		CreateEnrollment(e Enrollment) (Enrollment, error)
		QueryEnrollments() []Enrollment
		DeleteEnrollmentsByPayment(paymentID string) error
	}

	// PackFinder looks packs up by id.
	PackFinder interface {
		GetByID(id string) (pack.Pack, error)
	}

	// StudentFinder looks identities up by id.
	StudentFinder interface {
		GetByID(id string) (identity.Identity, error)
	}

	Service struct {
		repo     Repository
		packs    PackFinder
		students StudentFinder
		mailSvc  core.EmailService
		validate *validator.Validate
		conf     *core.Config

		mu sync.Mutex // serializes status transitions
	}
)

func NewService(
	repo Repository,
	packs PackFinder,
	students StudentFinder,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		packs:    packs,
		students: students,
		mailSvc:  mailSvc,
		validate: validate,
		conf:     conf,
	}
}

// Submit records the proof of payment of studentID for a pack. A rejected
// payment for the same pack is resubmitted in place.
func (svc *Service) Submit(studentID string, np NewPayment) (Payment, error) {
	np.Clean()
	if svc.validate != nil {
		if err := svc.validate.Struct(np); err != nil {
			return Payment{}, err
		}
	}

	student, err := svc.students.GetByID(studentID)
	if err != nil {
		return Payment{}, errors.Wrap(err, "finding student")
	}
	if student.Role != identity.RoleStudent {
		return Payment{}, ErrNotAStudent
	}
	p, err := svc.packs.GetByID(np.PackID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Payment{}, core.NewFieldError("pack_id", err)
		}
		return Payment{}, errors.Wrap(err, "finding pack")
	}
	if !p.IsActive() || !p.RegistrationOpen(core.NowFunc()) {
		return Payment{}, core.NewFieldError("pack_id", ErrRegistrationClosed)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	var rejected *Payment
	for _, existing := range svc.repo.QueryAll() {
		if existing.StudentID != studentID || existing.PackID != np.PackID {
			continue
		}
		if existing.Status != StatusRejected {
			return Payment{}, core.NewFieldError("pack_id", ErrDuplicatePayment)
		}
		existing := existing
		rejected = &existing
	}

	if rejected != nil {
		rejected.ProofImage = np.ProofImage
		rejected.Status = StatusPending
		rejected.DatePayment = core.Today()
		return svc.repo.Update(*rejected)
	}
	return svc.repo.Create(Payment{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		PackID:      np.PackID,
		ProofImage:  np.ProofImage,
		Status:      StatusPending,
		DatePayment: core.Today(),
	})
}

// Validate accepts a payment and enrolls its student. Validating an already
// validated payment is a no-op.
func (svc *Service) Validate(id string) (Payment, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	pmt, err := svc.repo.GetByID(id)
	if err != nil {
		return Payment{}, err
	}
	if pmt.Status == StatusValidated {
		return pmt, nil
	}
	pmt.Status = StatusValidated
	if pmt, err = svc.repo.Update(pmt); err != nil {
		return Payment{}, errors.Wrap(err, "updating payment")
	}
	if _, err = svc.repo.CreateEnrollment(Enrollment{
		ID:        uuid.NewString(),
		StudentID: pmt.StudentID,
		PackID:    pmt.PackID,
		PaymentID: pmt.ID,
	}); err != nil {
		return Payment{}, errors.Wrap(err, "creating enrollment")
	}
	svc.notify(pmt)
	return pmt, nil
}

// Reject refuses a payment; the student may resubmit a proof.
func (svc *Service) Reject(id string) (Payment, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	pmt, err := svc.repo.GetByID(id)
	if err != nil {
		return Payment{}, err
	}
	if pmt.Status == StatusRejected {
		return pmt, nil
	}
	pmt.Status = StatusRejected
	if pmt, err = svc.repo.Update(pmt); err != nil {
		return Payment{}, errors.Wrap(err, "updating payment")
	}
	if err = svc.repo.DeleteEnrollmentsByPayment(pmt.ID); err != nil {
		return Payment{}, errors.Wrap(err, "deleting enrollment")
	}
	svc.notify(pmt)
	return pmt, nil
}

func (svc *Service) GetByID(id string) (Payment, error) {
	return svc.repo.GetByID(id)
}

// Query applies AND on the set filter fields. Search matches the student's
// names or code, or the pack's code. Newest payments come first.
func (svc *Service) Query(filter QueryFilter) []Payment {
	filter.Clean()
	out := make([]Payment, 0)
	for _, p := range svc.repo.QueryAll() {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.PackID != "" && p.PackID != filter.PackID {
			continue
		}
		if filter.Search != "" && !svc.matchSearch(p, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DatePayment.Equal(out[j].DatePayment.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].DatePayment.After(out[j].DatePayment.Time)
	})
	return out
}

func (svc *Service) matchSearch(p Payment, search string) bool {
	if s, err := svc.students.GetByID(p.StudentID); err == nil {
		if core.ContainsFold(s.FirstName, search) || core.ContainsFold(s.LastName, search) || core.ContainsFold(s.Code, search) {
			return true
		}
	}
	if pk, err := svc.packs.GetByID(p.PackID); err == nil {
		return core.ContainsFold(pk.Code, search)
	}
	return false
}

func (svc *Service) ForStudent(studentID string) []Payment {
	return svc.Query(QueryFilter{StudentID: studentID})
}

// Enrollments returns the enrollments of packID, or all of them when packID is empty.
func (svc *Service) Enrollments(packID string) []Enrollment {
	out := make([]Enrollment, 0)
	for _, e := range svc.repo.QueryEnrollments() {
		if packID == "" || e.PackID == packID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts returns the number of payments per status.
func (svc *Service) Counts() map[Status]int {
	counts := map[Status]int{StatusPending: 0, StatusValidated: 0, StatusRejected: 0}
	for _, p := range svc.repo.QueryAll() {
		counts[p.Status]++
	}
	return counts
}

// Motif returns the bank transfer reference a student uses for a pack.
func (svc *Service) Motif(packCode, studentCode string) string {
	return Motif(svc.conf.Bank.MotifTemplate, packCode, studentCode)
}

func (svc *Service) notify(pmt Payment) {
	if svc.mailSvc == nil {
		return
	}
	student, err := svc.students.GetByID(pmt.StudentID)
	if err != nil {
		return
	}
	p, err := svc.packs.GetByID(pmt.PackID)
	if err != nil {
		return
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: student.FullName(), Address: student.Email}},
		Template:     reviewTemplate,
		TemplateData: reviewData{Student: student, Pack: p, Payment: pmt, Motif: svc.Motif(p.Code, student.Code)},
	}
	msg.Category = "payment_" + string(pmt.Status)
	if pmt.Status == StatusValidated {
		msg.Subject = fmt.Sprintf("Inscription confirmée : %s", p.Title)
	} else {
		msg.Subject = fmt.Sprintf("Preuve de paiement refusée : %s", p.Title)
	}
	svc.mailSvc.SendMessages(msg)
}
