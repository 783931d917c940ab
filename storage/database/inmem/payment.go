package inmemdb

import (
	"github.com/espanolfacil/academy/core/payment"
)

type paymentRepository struct {
	payments    *paymentTable
	enrollments *enrollmentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{payments: db.payment, enrollments: db.enrollment}
}

func (repo *paymentRepository) find(id string) (int, bool) {
	for idx, p := range repo.payments.table {
		if p.ID == id {
			return idx, true
		}
	}
	return -1, false
}

func (repo *paymentRepository) Create(p payment.Payment) (payment.Payment, error) {
	repo.payments.Lock()
	defer repo.payments.Unlock()

	repo.payments.table = append(repo.payments.table, &p)
	return p, nil
}

func (repo *paymentRepository) QueryAll() []payment.Payment {
	repo.payments.RLock()
	defer repo.payments.RUnlock()

	out := make([]payment.Payment, 0, len(repo.payments.table))
	for _, p := range repo.payments.table {
		out = append(out, *p)
	}
	return out
}

func (repo *paymentRepository) GetByID(id string) (payment.Payment, error) {
	repo.payments.RLock()
	defer repo.payments.RUnlock()

	if idx, ok := repo.find(id); ok {
		return *repo.payments.table[idx], nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) Update(p payment.Payment) (payment.Payment, error) {
	repo.payments.Lock()
	defer repo.payments.Unlock()

	idx, ok := repo.find(p.ID)
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	repo.payments.table[idx] = &p
	return p, nil
}

func (repo *paymentRepository) CreateEnrollment(e payment.Enrollment) (payment.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	repo.enrollments.table = append(repo.enrollments.table, &e)
	return e, nil
}

func (repo *paymentRepository) QueryEnrollments() []payment.Enrollment {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	out := make([]payment.Enrollment, 0, len(repo.enrollments.table))
	for _, e := range repo.enrollments.table {
		out = append(out, *e)
	}
	return out
}

func (repo *paymentRepository) DeleteEnrollmentsByPayment(paymentID string) error {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	kept := repo.enrollments.table[:0]
	for _, e := range repo.enrollments.table {
		if e.PaymentID != paymentID {
			kept = append(kept, e)
		}
	}
	repo.enrollments.table = kept
	return nil
}
