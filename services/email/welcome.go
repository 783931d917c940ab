package emailsvc

import (
	"net/mail"
	"text/template"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(
	`Bonjour {{.Identity.FirstName}},

Bienvenue chez Español Fácil ! Votre compte étudiant a été créé.
Votre code étudiant est {{.Identity.Code}}. Indiquez-le dans le motif de vos virements.

Connectez-vous sur {{.FrontendBaseURL}}/auth pour choisir votre pack.

L'équipe Español Fácil
`))

// NewWelcomeMessage builds the email sent after a student registers.
func NewWelcomeMessage(conf *core.Config, i identity.Identity) *core.EmailMessage {
	return &core.EmailMessage{
		To:       []mail.Address{{Name: i.FullName(), Address: i.Email}},
		Subject:  "Bienvenue !",
		Category: "welcome",
		Template: welcomeTemplate,
		TemplateData: struct {
			Identity        identity.Identity
			FrontendBaseURL string
		}{i, conf.FrontendBaseURL},
	}
}
