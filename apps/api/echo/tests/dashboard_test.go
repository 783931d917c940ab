package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espanolfacil/academy/core/dashboard"
	"github.com/espanolfacil/academy/core/gate"
	"github.com/espanolfacil/academy/core/identity"
	testutil "github.com/espanolfacil/academy/tests"
)

func Test_dashboardApi_gates(t *testing.T) {
	testutil.FreezeClock(t)
	app := setup(t)
	tokens := map[identity.Role]string{
		identity.RoleAdmin:     getToken(t, app, identity.RoleAdmin),
		identity.RoleProfessor: getToken(t, app, identity.RoleProfessor),
		identity.RoleStudent:   getToken(t, app, identity.RoleStudent),
	}
	paths := map[identity.Role]string{
		identity.RoleAdmin:     "/v1/admin/dashboard",
		identity.RoleProfessor: "/v1/professor/dashboard",
		identity.RoleStudent:   "/v1/student/dashboard",
	}

	for _, area := range identity.AllRoles {
		for _, role := range identity.AllRoles {
			req, rec := newAuthRequest(http.MethodGet, paths[area], tokens[role])
			app.ServeHTTP(rec, req)

			if area == role {
				assert.Equal(t, http.StatusOK, rec.Code, "%s on %s", role, area)
				assert.Empty(t, rec.Header().Get("Location"))
				continue
			}
			checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
			assert.Equal(t, gate.SignInPath, rec.Header().Get("Location"), "%s on %s", role, area)
		}

		req, rec := newRequest(http.MethodGet, paths[area])
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, gate.SignInPath, rec.Header().Get("Location"))
	}
}

func Test_dashboardApi_admin(t *testing.T) {
	testutil.FreezeClock(t)
	app := setup(t)
	token := getToken(t, app, identity.RoleAdmin)

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/dashboard", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var ov dashboard.AdminOverview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Equal(t, 3, ov.Students)
	assert.Equal(t, 2, ov.ActiveStudents)
	assert.Equal(t, 2, ov.Professors)
	assert.Equal(t, 3, ov.ActivePacks)
	assert.Equal(t, 3, ov.MaxActivePacks)
	assert.Equal(t, 1, ov.PendingPayments)
	assert.Equal(t, 2, ov.ValidatedPayments)
	assert.Equal(t, 1, ov.RejectedPayments)
	require.Len(t, ov.Packs, 3)
	assert.Equal(t, 1, ov.Packs[0].Enrolled)
	assert.Equal(t, 1, ov.Packs[1].Enrolled)
	assert.Equal(t, 0, ov.Packs[2].Enrolled)
}

func Test_dashboardApi_professor(t *testing.T) {
	testutil.FreezeClock(t)
	app := setup(t)
	token := signIn(t, app, "prof2@espanolfacil.com", "prof123").Token

	req, rec := newAuthRequest(http.MethodGet, "/v1/professor/dashboard", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, app.DashboardSvc.Professor(getIdentity(t, app, "prof-2"))),
	}, rec)

	var ov dashboard.ProfessorOverview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	require.Len(t, ov.Packs, 2)
	assert.Equal(t, "pack-2", ov.Packs[0].Pack.ID)
	assert.False(t, ov.Packs[0].Started)
	require.Len(t, ov.Packs[0].Students, 1)
	assert.Equal(t, "student-1", ov.Packs[0].Students[0].ID)
	assert.Empty(t, ov.Packs[1].Students)
}

func Test_dashboardApi_student(t *testing.T) {
	testutil.FreezeClock(t)
	app := setup(t)

	t.Run("enrolled student", func(t *testing.T) {
		token := getToken(t, app, identity.RoleStudent)
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/dashboard", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var ov dashboard.StudentOverview
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
		assert.Equal(t, 2, ov.EnrolledCourses)
		assert.Equal(t, 2, ov.ValidatedPayments)
		require.Len(t, ov.Courses, 2)

		links := map[string]string{}
		for _, c := range ov.Courses {
			links[c.Pack.ID] = c.CourseLink
		}
		// pack-1 has started, pack-2 has not
		assert.Equal(t, "https://meet.google.com/abc-defg-hij", links["pack-1"])
		assert.Empty(t, links["pack-2"])

		require.Len(t, ov.OpenPacks, 1)
		assert.Equal(t, "pack-3", ov.OpenPacks[0].Pack.ID)
		assert.Equal(t, "INSCRIPTION-PACK-3CY-20001", ov.OpenPacks[0].Motif)
		assert.Equal(t, app.conf.Bank.RIB, ov.Bank.RIB)
	})

	t.Run("rejected payment", func(t *testing.T) {
		token := signIn(t, app, "student3@espanolfacil.com", "student123").Token
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/dashboard", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var ov dashboard.StudentOverview
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
		assert.Equal(t, 0, ov.ValidatedPayments)
		require.Len(t, ov.Courses, 1)
		assert.Empty(t, ov.Courses[0].CourseLink)
		// a rejected pack can be paid again
		require.Len(t, ov.OpenPacks, 2)
		assert.Equal(t, "pack-2", ov.OpenPacks[0].Pack.ID)
	})
}
