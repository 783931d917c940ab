package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/espanolfacil/academy/apps/api/echo"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/payment"
	testutil "github.com/espanolfacil/academy/tests"
)

func getPayment(t *testing.T, app testApp, id string) payment.Payment {
	t.Helper()
	p, err := app.pmtRepo.GetByID(id)
	require.NoError(t, err)
	return p
}

func enrolled(app testApp, packID string) []string {
	out := make([]string, 0)
	for _, e := range app.pmtRepo.QueryEnrollments() {
		if e.PackID == packID {
			out = append(out, e.StudentID)
		}
	}
	return out
}

func Test_paymentApi_admin(t *testing.T) {
	testutil.FreezeClock(t)
	app := setup(t)
	adminToken := getToken(t, app, identity.RoleAdmin)
	studentToken := getToken(t, app, identity.RoleStudent)

	detail := func(id string) PaymentDetail {
		p := getPayment(t, app, id)
		return PaymentDetail{Payment: p, Student: getIdentity(t, app, p.StudentID), Pack: getPack(t, app, p.PackID)}
	}

	tests := []httpTest{
		{name: "Admin required", path: "/v1/admin/payments", token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "Get all (newest first)", path: "/v1/admin/payments", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, detail("payment-3"), detail("payment-2"), detail("payment-4"), detail("payment-1")),
		},
		{name: "status=pending", path: "/v1/admin/payments?status=pending", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, detail("payment-2"))},
		{name: "search=amrani", path: "/v1/admin/payments?search=amrani", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, detail("payment-3"))},
		{
			name: "search=PACK-2", path: "/v1/admin/payments?search=PACK-2", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, detail("payment-3"), detail("payment-4")),
		},
		{
			name: "Validate unknown", method: http.MethodPost, path: "/v1/admin/payments/lol/validate", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "validating payment: payment: not found"}),
		},
	}
	runHttpTests(t, app, tests)

	t.Run("Validate", func(t *testing.T) {
		assert.Equal(t, []string{"student-1"}, enrolled(app, "pack-1"))

		for i := 0; i < 2; i++ { // idempotent
			req, rec := newAuthRequest(http.MethodPost, "/v1/admin/payments/payment-2/validate", adminToken)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}
		assert.Equal(t, payment.StatusValidated, getPayment(t, app, "payment-2").Status)
		assert.ElementsMatch(t, []string{"student-1", "student-2"}, enrolled(app, "pack-1"))

		sent := app.mail.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "student2@espanolfacil.com", sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "PACK-1AZ")
	})

	t.Run("Reject", func(t *testing.T) {
		app.mail.Reset()

		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/payments/payment-1/reject", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var p payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, payment.StatusRejected, p.Status)
		assert.Equal(t, []string{"student-2"}, enrolled(app, "pack-1"))
		assert.Len(t, app.mail.Sent(), 1)
	})
}

func Test_paymentApi_submit(t *testing.T) {
	testutil.FreezeClock(t)
	app := setup(t)
	s1Token := getToken(t, app, identity.RoleStudent)
	s2Token := signIn(t, app, "student2@espanolfacil.com", "student123").Token
	s3Token := signIn(t, app, "student3@espanolfacil.com", "student123").Token
	adminToken := getToken(t, app, identity.RoleAdmin)

	submit := func(packID string) []byte {
		return marchallObj(t, payment.NewPayment{PackID: packID, ProofImage: "https://img.test/proof.png"})
	}

	tests := []httpTest{
		{
			name: "Student required", method: http.MethodPost, path: "/v1/student/payments", token: adminToken, body: submit("pack-3"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "proof required", method: http.MethodPost, path: "/v1/student/payments", token: s2Token,
			body:     marchallObj(t, payment.NewPayment{PackID: "pack-3"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"proof_image": "this field is required"}),
		},
		{
			name: "registration closed", method: http.MethodPost, path: "/v1/student/payments", token: s2Token, body: submit("pack-1"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"pack_id": payment.ErrRegistrationClosed.Error()}),
		},
		{
			name: "already validated", method: http.MethodPost, path: "/v1/student/payments", token: s1Token, body: submit("pack-2"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"pack_id": payment.ErrDuplicatePayment.Error()}),
		},
		{
			name: "unknown pack", method: http.MethodPost, path: "/v1/student/payments", token: s1Token, body: submit("lol"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"pack_id": "pack: not found"}),
		},
	}
	runHttpTests(t, app, tests)

	t.Run("new payment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/student/payments", s2Token, submit("pack-3"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var p payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, "student-2", p.StudentID)
		assert.Equal(t, payment.StatusPending, p.Status)
		assert.Equal(t, "2025-02-05", p.DatePayment.String())

		// a second one is refused while pending
		req, rec = newAuthRequest(http.MethodPost, "/v1/student/payments", s2Token, submit("pack-3"))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("resubmitting a rejected payment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/student/payments", s3Token, submit("pack-2"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var p payment.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, "payment-3", p.ID)
		assert.Equal(t, payment.StatusPending, p.Status)
		assert.Equal(t, "https://img.test/proof.png", p.ProofImage)
	})

	t.Run("own payments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/payments", s1Token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallList(t, getPayment(t, app, "payment-4"), getPayment(t, app, "payment-1")),
		}, rec)
	})
}
