package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/espanolfacil/academy/apps/api/echo"
	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/dashboard"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/core/payment"
	"github.com/espanolfacil/academy/core/session"
	emailsvc "github.com/espanolfacil/academy/services/email"
	logsvc "github.com/espanolfacil/academy/services/logger"
	inmemdb "github.com/espanolfacil/academy/storage/database/inmem"
	"github.com/espanolfacil/academy/storage/kv"
	testutil "github.com/espanolfacil/academy/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotSignedIn  = httpErr{Error: "not signed in"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type testApp struct {
	*Server
	conf     *core.Config
	db       *inmemdb.DB
	mail     *emailsvc.ConsoleServiceMock
	records  *kv.MemoryBackend
	idRepo   identity.Repository
	packRepo pack.Repository
	pmtRepo  payment.Repository
}

func setup(t *testing.T) testApp {
	conf := core.NewTestConfig()
	logger := logsvc.NewNopLogger()
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := testutil.OpenDB(t)
	idRepo := inmemdb.NewIdentityRepository(db)
	packRepo := inmemdb.NewPackRepository(db)
	pmtRepo := inmemdb.NewPaymentRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	idSvc := identity.NewService(idRepo, validate)
	packSvc := pack.NewService(packRepo, validate, conf)
	pmtSvc := payment.NewService(pmtRepo, packSvc, idSvc, mailSvc, validate, conf)
	records := kv.NewMemoryBackend(conf.Session.KeyPrefix)

	// set up server
	srv := NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Sessions:     session.NewRegistry(idSvc, records, logger, 0),
		IdentitySvc:  idSvc,
		PackSvc:      packSvc,
		PaymentSvc:   pmtSvc,
		DashboardSvc: dashboard.NewService(idSvc, packSvc, pmtSvc, conf),
		MailSvc:      mailSvc,
		Validate:     validate,
		Translator:   translator,
	})
	return testApp{
		Server:   srv,
		conf:     conf,
		db:       db,
		mail:     mailSvc,
		records:  records,
		idRepo:   idRepo,
		packRepo: packRepo,
		pmtRepo:  pmtRepo,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// signIn opens a session through the API and returns its response.
func signIn(t *testing.T, app testApp, email, pwd string) SessionResponse {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/auth/signin", marchallObj(t, SignInRequest{Email: email, Password: pwd}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("signIn(%s) failed: code = %v; body %s", email, rec.Code, rec.Body.String())
	}
	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("signIn(%s) failed: %v", email, err)
	}
	return resp
}

func getToken(t *testing.T, app testApp, role identity.Role) string {
	t.Helper()
	creds := identity.DemoCredentials()[role]
	return signIn(t, app, creds.Email, creds.Password).Token
}

func getIdentity(t *testing.T, app testApp, id string) identity.Identity {
	t.Helper()
	i, err := app.idRepo.GetByID(id)
	if err != nil {
		t.Fatalf("getIdentity(%s) failed: %v", id, err)
	}
	return i
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHttpTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
