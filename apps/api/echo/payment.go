package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core/payment"
	"github.com/espanolfacil/academy/services/metrics"
)

type paymentApi struct {
	*Server
}

func registerPaymentAPI(g *echo.Group, jwt, sess echo.MiddlewareFunc, s *Server) {
	api := paymentApi{s}

	ag := g.Group("/admin/payments", jwt, sess, gateMiddleware())
	ag.GET("", api.query)
	ag.POST("/:id/validate", api.validate)
	ag.POST("/:id/reject", api.reject)

	sg := g.Group("/student/payments", jwt, sess, gateMiddleware())
	sg.GET("", api.queryOwn)
	sg.POST("", api.submit)
}

// Handlers

func (api *paymentApi) query(ctx echo.Context) error {
	var filter payment.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to payment.QueryFilter")
	}
	return ctx.JSON(http.StatusOK, api.details(api.PaymentSvc.Query(filter)))
}

func (api *paymentApi) validate(ctx echo.Context) error {
	pmt, err := api.PaymentSvc.Validate(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "validating payment")
	}
	metrics.ObservePaymentReview(string(pmt.Status))
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) reject(ctx echo.Context) error {
	pmt, err := api.PaymentSvc.Reject(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rejecting payment")
	}
	metrics.ObservePaymentReview(string(pmt.Status))
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) queryOwn(ctx echo.Context) error {
	student, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.PaymentSvc.ForStudent(student.ID))
}

func (api *paymentApi) submit(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	student, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	pmt, err := api.PaymentSvc.Submit(student.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

// details joins each payment with its student and pack. Payments whose
// student or pack is gone are listed bare.
func (api *paymentApi) details(pmts []payment.Payment) []PaymentDetail {
	out := make([]PaymentDetail, 0, len(pmts))
	for _, p := range pmts {
		d := PaymentDetail{Payment: p}
		if s, err := api.IdentitySvc.GetByID(p.StudentID); err == nil {
			d.Student = s
		}
		if pk, err := api.PackSvc.GetByID(p.PackID); err == nil {
			d.Pack = pk
		}
		out = append(out, d)
	}
	return out
}
