package emailsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	logsvc "github.com/espanolfacil/academy/services/logger"
)

func TestConsoleServiceMock(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, logsvc.NewNopLogger())

	student := identity.Identity{ID: "s1", Email: "ana@test.ma", FirstName: "Ana", LastName: "Lopez", Code: "20042"}
	svc.SendMessages(
		NewWelcomeMessage(conf, student),
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@test.ma"}}, Subject: "empty"},
	)

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Bienvenue !", sent[0].Subject)
	assert.True(t, strings.Contains(sent[0].TextContent, "20042"))
	assert.True(t, strings.Contains(sent[0].TextContent, conf.FrontendBaseURL+"/auth"))

	svc.Reset()
	assert.Empty(t, svc.Sent())
}

func Test_consoleService_format(t *testing.T) {
	conf := core.NewTestConfig()
	svc := consoleService{defaultFromEmail: conf.DefaultFromEmail(), subjPrefix: "[App] "}

	out := svc.format(core.EmailMessage{
		To:          []mail.Address{{Name: "Ana", Address: "ana@test.ma"}},
		Subject:     "Hi",
		TextContent: "hello",
	})
	assert.Contains(t, out, "Subject: [App] Hi\r\n")
	assert.Contains(t, out, "To: \"Ana\" <ana@test.ma>\r\n")
	assert.NotContains(t, out, "CC:")
	assert.True(t, strings.HasSuffix(out, "hello\r\n"))
}

func Test_sendgridService_build(t *testing.T) {
	svc := NewSendgridService(core.NewTestConfig(), logsvc.NewNopLogger()).(*sendgridService)
	svc.subjPrefix = "[App] "

	m := svc.build(core.EmailMessage{
		To:          []mail.Address{{Name: "Ana", Address: "ana@test.ma"}},
		Cc:          []mail.Address{{Address: "ANA@test.ma"}, {Address: "admin@test.ma"}},
		Bcc:         []mail.Address{{Address: "admin@test.ma"}},
		Subject:     "Hi",
		Category:    "welcome",
		TextContent: "hello",
	})
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[App] Hi", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "ana@test.ma", p.To[0].Address)
	require.Len(t, p.CC, 1)
	assert.Equal(t, "admin@test.ma", p.CC[0].Address)
	assert.Empty(t, p.BCC)
	assert.Equal(t, []string{"welcome"}, m.Categories)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "hello", m.Content[0].Value)
}

func Test_sendgridService_deliver(t *testing.T) {
	tests := []struct {
		name      string
		codes     []int
		wantCalls int
		wantErrs  int
	}{
		{name: "accepted", codes: []int{http.StatusAccepted}, wantCalls: 1},
		{name: "throttled then accepted", codes: []int{http.StatusTooManyRequests, http.StatusAccepted}, wantCalls: 2},
		{name: "bad request", codes: []int{http.StatusBadRequest}, wantCalls: 1, wantErrs: 1},
		{name: "server down", codes: []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway}, wantCalls: 3, wantErrs: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu     sync.Mutex
				calls  int
				bodies []map[string]interface{}
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				defer mu.Unlock()
				assert.Equal(t, sendgridEndpoint, r.URL.Path)
				assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
				data, _ := io.ReadAll(r.Body)
				var body map[string]interface{}
				assert.NoError(t, json.Unmarshal(data, &body))
				bodies = append(bodies, body)
				w.WriteHeader(tt.codes[calls])
				calls++
			}))
			defer srv.Close()

			logger := &countingLogger{Logger: logsvc.NewNopLogger()}
			svc := NewSendgridService(core.NewTestConfig(), logger).(*sendgridService)
			svc.key, svc.baseURL, svc.backoff = "sg-key", srv.URL, 0

			svc.deliver(core.EmailMessage{
				To: []mail.Address{{Address: "ana@test.ma"}}, Subject: "Hi", Category: "payment_validated", TextContent: "hello",
			})
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantErrs, logger.errors)
			assert.Equal(t, []interface{}{"payment_validated"}, bodies[0]["categories"])
		})
	}
}

type countingLogger struct {
	core.Logger
	errors int
}

func (l *countingLogger) Error(string, ...interface{}) { l.errors++ }
