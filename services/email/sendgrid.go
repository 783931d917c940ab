package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/espanolfacil/academy/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// sendgridService delivers through the SendGrid v3 API. Throttled (429) and
// server-side (5xx) answers are retried up to attempts times.
type sendgridService struct {
	key        string
	baseURL    string
	from       *sgmail.Email
	subjPrefix string
	attempts   int
	backoff    time.Duration
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	from := conf.DefaultFromEmail()
	return &sendgridService{
		key:        conf.SendgridApiKey,
		baseURL:    sendgridHost,
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		attempts:   3,
		backoff:    time.Second,
		logger:     logger,
	}
}

func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := msg.Render(); err != nil {
				svc.logger.Error(fmt.Sprintf("rendering email %q: %v", msg.Subject, err), err)
				return
			}
			if msg.HasRecipients() && msg.HasContent() {
				svc.deliver(*msg)
			}
		}()
	}
}

// build turns msg into a v3 payload. An address is kept only on the first
// of To, Cc, Bcc it appears on, since the API refuses duplicates.
func (svc *sendgridService) build(msg core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject

	seen := make(map[string]bool)
	recipients := func(addrs []mail.Address) []*sgmail.Email {
		var out []*sgmail.Email
		for _, a := range addrs {
			key := strings.ToLower(a.Address)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, sgmail.NewEmail(a.Name, a.Address))
		}
		return out
	}
	p.AddTos(recipients(msg.To)...)
	p.AddCCs(recipients(msg.Cc)...)
	p.AddBCCs(recipients(msg.Bcc)...)

	m := sgmail.NewV3Mail().
		SetFrom(svc.from).
		AddPersonalizations(p).
		AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	return m
}

func (svc *sendgridService) deliver(msg core.EmailMessage) {
	body := sgmail.GetRequestBody(svc.build(msg))

	var (
		res *rest.Response
		err error
	)
	for attempt := 1; attempt <= svc.attempts; attempt++ {
		req := sendgrid.GetRequest(svc.key, sendgridEndpoint, svc.baseURL)
		req.Method = http.MethodPost
		req.Body = body

		res, err = sendgrid.API(req)
		if err == nil && !retryable(res.StatusCode) {
			break
		}
		if attempt < svc.attempts {
			time.Sleep(time.Duration(attempt) * svc.backoff)
		}
	}

	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("sending email %q: %v", msg.Subject, err), err)
	case res.StatusCode >= http.StatusBadRequest:
		svc.logger.Error(fmt.Sprintf("sending email %q - status: %d - body: %s", msg.Subject, res.StatusCode, res.Body))
	}
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
