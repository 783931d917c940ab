package tests

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	testutil "github.com/espanolfacil/academy/tests"
)

func getPack(t *testing.T, app testApp, id string) pack.Pack {
	t.Helper()
	p, err := app.packRepo.GetByID(id)
	require.NoError(t, err)
	return p
}

func Test_packApi_listPublic(t *testing.T) {
	now := testutil.FreezeClock(t)
	app := setup(t)

	p1, p2, p3 := getPack(t, app, "pack-1"), getPack(t, app, "pack-2"), getPack(t, app, "pack-3")
	runHttpTests(t, app, []httpTest{
		{
			name: "active packs by start date", path: "/v1/packs",
			wantCode: http.StatusOK, wantData: marchallList(t, p1.Public(now), p2.Public(now), p3.Public(now)),
		},
	})

	t.Run("countdown", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/packs")
		app.ServeHTTP(rec, req)
		var packs []pack.PublicPack
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &packs))
		require.Len(t, packs, 3)

		assert.False(t, packs[0].RegistrationOpen)
		assert.True(t, packs[0].Countdown.Expired)
		// 2025-02-05 10:00 -> 2025-02-10 00:00
		assert.True(t, packs[1].RegistrationOpen)
		assert.Equal(t, pack.Countdown{Days: 4, Hours: 14}, packs[1].Countdown)
	})
}

func Test_packApi_admin(t *testing.T) {
	testutil.FreezeClock(t)
	app := setup(t)
	adminToken := getToken(t, app, identity.RoleAdmin)
	profToken := getToken(t, app, identity.RoleProfessor)

	newPack := func(title, start, end, deadline string, status pack.Status) []byte {
		np := pack.NewPack{Title: title, Status: status, CourseLink: "https://meet.google.com/xyz"}
		if start != "" {
			np.DateStart = core.MustParseDate(start)
			np.DateEnd = core.MustParseDate(end)
			np.DateDeadline = core.MustParseDate(deadline)
		}
		return marchallObj(t, np)
	}
	p1, p2, p3 := getPack(t, app, "pack-1"), getPack(t, app, "pack-2"), getPack(t, app, "pack-3")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/admin/packs", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", path: "/v1/admin/packs", token: profToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", path: "/v1/admin/packs", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, p1, p2, p3)},
		{name: "search=b1", path: "/v1/admin/packs?search=b1", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, p2)},
		{name: "search=pack-3", path: "/v1/admin/packs?search=pack-3", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, p3)},
		{name: "status=inactive", path: "/v1/admin/packs?status=inactive", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "Get one", path: "/v1/admin/packs/pack-2", token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, p2)},
		{
			name: "Get unknown", path: "/v1/admin/packs/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "getting pack: pack: not found"}),
		},
		{
			name: "Create: max active reached", method: http.MethodPost, path: "/v1/admin/packs", token: adminToken,
			body:     newPack("Español A2", "2025-04-01", "2025-06-30", "2025-03-25", pack.StatusActive),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": pack.ErrMaxActivePacks.Error()}),
		},
		{
			name: "Create: dates required", method: http.MethodPost, path: "/v1/admin/packs", token: adminToken,
			body:     newPack("Español A2", "", "", "", pack.StatusInactive),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"date_start": "this field is required", "date_end": "this field is required", "date_deadline": "this field is required",
			}),
		},
		{
			name: "Create: deadline after start", method: http.MethodPost, path: "/v1/admin/packs", token: adminToken,
			body:     newPack("Español A2", "2025-04-01", "2025-06-30", "2025-04-02", pack.StatusInactive),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date_deadline": "date_deadline is out of order: deadline <= start <= end"}),
		},
		{
			name: "Delete unknown", method: http.MethodDelete, path: "/v1/admin/packs/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "getting pack: pack: not found"}),
		},
	}
	runHttpTests(t, app, tests)

	t.Run("Create inactive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/packs", adminToken,
			newPack("  Español A2 ", "2025-04-01", "2025-06-30", "2025-03-25", pack.StatusInactive))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var p pack.Pack
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Regexp(t, regexp.MustCompile(`^PACK-[A-Z0-9]{3}$`), p.Code)
		assert.Equal(t, "Español A2", p.Title)
		assert.Equal(t, pack.MediaVideo, p.MediaType)
		assert.Empty(t, p.AssignedProfessors)

		// activating it would exceed the limit
		req, rec = newAuthRequest(http.MethodPut, "/v1/admin/packs/"+p.ID, adminToken,
			newPack("Español A2", "2025-04-01", "2025-06-30", "2025-03-25", pack.StatusActive))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/admin/packs/pack-3", adminToken,
			newPack("Español Avanzado C1+", "2025-03-01", "2025-07-31", "2025-02-25", pack.StatusActive))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		p := getPack(t, app, "pack-3")
		assert.Equal(t, "Español Avanzado C1+", p.Title)
		assert.Equal(t, "PACK-3CY", p.Code)
		assert.Equal(t, "2025-07-31", p.DateEnd.String())
		assert.Equal(t, []string{"prof-2"}, p.AssignedProfessors)
	})

	t.Run("Delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/admin/packs/pack-3", adminToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		_, err := app.packRepo.GetByID("pack-3")
		assert.Error(t, err)
	})
}
