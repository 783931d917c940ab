package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/gate"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/core/payment"
)

type (
	SignInRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// SessionResponse is returned by every operation opening a session.
	SessionResponse struct {
		Token    string            `json:"token"`
		Identity identity.Identity `json:"identity"`
		Redirect string            `json:"redirect"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	StatusRequest struct {
		Status identity.Status `json:"status" validate:"required,oneof=active inactive"`
	}

	AssignPacksRequest struct {
		PackIDs []string `json:"pack_ids"`
	}

	PaymentDetail struct {
		payment.Payment
		Student identity.Identity `json:"student"`
		Pack    pack.Pack         `json:"pack"`
	}
)

func (r *SignInRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email)
	return validate.Struct(r)
}

func (r StatusRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func newSessionResponse(token string, i identity.Identity) SessionResponse {
	return SessionResponse{Token: token, Identity: i, Redirect: gate.HomePath(i.Role)}
}
