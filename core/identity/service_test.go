package identity_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	inmemdb "github.com/espanolfacil/academy/storage/database/inmem"
	testutil "github.com/espanolfacil/academy/tests"
)

func newService(t *testing.T) *identity.Service {
	t.Helper()
	validate, _ := testutil.NewValidator()
	return identity.NewService(inmemdb.NewIdentityRepository(testutil.OpenDB(t)), validate)
}

// failedTags maps every failing field to its validation tag.
func failedTags(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func TestService_Create(t *testing.T) {
	testutil.FreezeClock(t)
	newProf := func(email, pwd string, role identity.Role) identity.NewIdentity {
		return identity.NewIdentity{
			Email: email, Password: pwd, Role: role,
			Profile: identity.Profile{FirstName: "Lucía", LastName: "Fernández", City: "Tétouan", Phone: "+212 611 223 344"},
		}
	}

	tests := []struct {
		name     string
		ni       identity.NewIdentity
		wantTags map[string]string
	}{
		{
			name:     "required",
			ni:       identity.NewIdentity{},
			wantTags: map[string]string{"email": "required", "password": "required", "role": "required", "first_name": "required", "last_name": "required"},
		},
		{name: "bad email", ni: newProf("lucia", "Valencia2025", identity.RoleProfessor), wantTags: map[string]string{"email": "email"}},
		{name: "bad role", ni: newProf("lucia@test.ma", "Valencia2025", "janitor"), wantTags: map[string]string{"role": "role"}},
		{name: "short password", ni: newProf("lucia@test.ma", "Va25", identity.RoleProfessor), wantTags: map[string]string{"password": "pwdminlen"}},
		{name: "password with whitespace", ni: newProf("lucia@test.ma", "Valencia 2025", identity.RoleProfessor), wantTags: map[string]string{"password": "pwdnospace"}},
		{name: "password like email", ni: newProf("lucia@test.ma", "lucia@test", identity.RoleProfessor), wantTags: map[string]string{"password": "pwdtoosim"}},
		{
			name: "bad phone and city",
			ni: identity.NewIdentity{
				Email: "lucia@test.ma", Password: "Valencia2025", Role: identity.RoleProfessor,
				Profile: identity.Profile{FirstName: "Lucía", LastName: "Fernández", City: "Madrid", Phone: "abc"},
			},
			wantTags: map[string]string{"city": "city", "phone": "phone"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			_, err := svc.Create(tt.ni)
			assert.Equal(t, tt.wantTags, failedTags(err))
			assert.Len(t, svc.QueryAll(), 6)
		})
	}

	t.Run("email taken", func(t *testing.T) {
		svc := newService(t)
		_, err := svc.Create(newProf("  PROF@EspanolFacil.com", "Valencia2025", identity.RoleProfessor))
		var verr *core.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []core.FieldError{{Field: "email", Error: identity.ErrEmailExists.Error()}}, verr.Fields)
	})

	t.Run("ok", func(t *testing.T) {
		svc := newService(t)
		i, err := svc.Create(newProf(" Lucia@Test.ma ", "Valencia2025", identity.RoleProfessor))
		require.NoError(t, err)
		assert.NotEmpty(t, i.ID)
		assert.Equal(t, "lucia@test.ma", i.Email)
		assert.Equal(t, "10003", i.Code)
		assert.Equal(t, identity.StatusActive, i.Status)
		assert.Equal(t, "2025-02-05", i.DateInscription.String())
		assert.NoError(t, i.CheckPassword("Valencia2025"))

		got, err := svc.GetByEmail("LUCIA@test.ma")
		require.NoError(t, err)
		assert.Equal(t, i.ID, got.ID)
	})
}

func TestService_Filter(t *testing.T) {
	svc := newService(t)
	ids := func(idents []identity.Identity) []string {
		out := make([]string, 0, len(idents))
		for _, i := range idents {
			out = append(out, i.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter identity.QueryFilter
		want   []string
	}{
		{name: "all", want: []string{"admin-1", "prof-1", "prof-2", "student-1", "student-2", "student-3"}},
		{name: "role", filter: identity.QueryFilter{Role: identity.RoleProfessor}, want: []string{"prof-1", "prof-2"}},
		{name: "status", filter: identity.QueryFilter{Status: identity.StatusInactive}, want: []string{"student-3"}},
		{name: "search first name", filter: identity.QueryFilter{Search: " maría "}, want: []string{"prof-1"}},
		{name: "search code", filter: identity.QueryFilter{Search: "2000", Role: identity.RoleStudent}, want: []string{"student-1", "student-2", "student-3"}},
		{name: "search email and role", filter: identity.QueryFilter{Search: "student2@", Role: identity.RoleStudent}, want: []string{"student-2"}},
		{name: "no match", filter: identity.QueryFilter{Search: "amrani", Status: identity.StatusActive}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(svc.Filter(tt.filter)))
		})
	}
}

func TestService_SetStatus(t *testing.T) {
	svc := newService(t)

	_, err := svc.SetStatus("student-1", "banned")
	assert.Error(t, err)

	_, err = svc.SetStatus("lol", identity.StatusInactive)
	assert.True(t, errors.Is(err, identity.ErrNotFound))

	i, err := svc.SetStatus("student-1", identity.StatusInactive)
	require.NoError(t, err)
	assert.False(t, i.IsActive())
	got, _ := svc.GetByID("student-1")
	assert.Equal(t, identity.StatusInactive, got.Status)
}

func TestService_SetPassword(t *testing.T) {
	svc := newService(t)

	_, err := svc.SetPassword("prof-1", "abc")
	assert.Equal(t, map[string]string{"password": "pwdminlen"}, failedTags(err))

	_, err = svc.SetPassword("prof-1", "Granada2025")
	require.NoError(t, err)
	got, _ := svc.GetByID("prof-1")
	assert.NoError(t, got.CheckPassword("Granada2025"))
	assert.Error(t, got.CheckPassword("prof123"))
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		role    identity.Role
		ids     []string
		wantErr error
	}{
		{name: "unknown", role: identity.RoleStudent, ids: []string{"lol"}, wantErr: identity.ErrNotFound},
		{name: "role mismatch", role: identity.RoleStudent, ids: []string{"prof-1"}, wantErr: identity.ErrNotFound},
		{name: "last admin", role: identity.RoleAdmin, ids: []string{"admin-1"}, wantErr: identity.ErrLastAdmin},
		{name: "students", role: identity.RoleStudent, ids: []string{"student-1", "student-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			err := svc.Delete(tt.role, tt.ids...)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "Delete() error = %v, wantErr %v", err, tt.wantErr)
				assert.Len(t, svc.QueryAll(), 6)
				return
			}
			require.NoError(t, err)
			assert.Len(t, svc.QueryAll(), 6-len(tt.ids))
		})
	}
}

func TestService_DemoCredentials(t *testing.T) {
	svc := newService(t)
	creds := svc.DemoCredentials()
	require.Len(t, creds, len(identity.AllRoles))

	for role, c := range creds {
		i, err := svc.GetByEmail(c.Email)
		require.NoError(t, err)
		assert.Equal(t, role, i.Role)
		assert.NoError(t, i.CheckPassword(c.Password))
	}
}
