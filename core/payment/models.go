package payment

import (
	"strings"

	"github.com/espanolfacil/academy/core"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusRejected:
		return true
	}
	return false
}

// Payment is a student's proof of bank transfer for a pack.
type Payment struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	PackID      string    `json:"pack_id"`
	ProofImage  string    `json:"proof_image"`
	Status      Status    `json:"status"`
	DatePayment core.Date `json:"date_payment"`
}

// Enrollment exists for every validated payment.
type Enrollment struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	PackID    string `json:"pack_id"`
	PaymentID string `json:"payment_id"`
}

// NewPayment is what a student submits.
type NewPayment struct {
	PackID     string `json:"pack_id" validate:"required"`
	ProofImage string `json:"proof_image" validate:"required"`
}

func (np *NewPayment) Clean() {
	np.PackID = core.CleanString(np.PackID)
	np.ProofImage = core.CleanString(np.ProofImage)
}

type QueryFilter struct {
	Search    string `query:"search"`
	Status    Status `query:"status"`
	StudentID string `query:"student"`
	PackID    string `query:"pack"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Motif renders the bank transfer reference for a pack and a student.
func Motif(template, packCode, studentCode string) string {
	return strings.NewReplacer("{PACK_CODE}", packCode, "{STUDENT_CODE}", studentCode).Replace(template)
}
