package payment

import (
	"text/template"

	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
)

type reviewData struct {
	Student identity.Identity
	Pack    pack.Pack
	Payment Payment
	Motif   string
}

var reviewTemplate = template.Must(template.New("payment_review").Parse(
	`Bonjour {{.Student.FirstName}},
{{if eq .Payment.Status "validated"}}
Votre paiement pour le pack {{.Pack.Title}} ({{.Pack.Code}}) a été validé.
Le cours commence le {{.Pack.DateStart}}. Le lien d'accès sera disponible sur votre espace étudiant.
{{else}}
Votre preuve de paiement pour le pack {{.Pack.Title}} ({{.Pack.Code}}) a été refusée.
Merci de déposer une nouvelle capture depuis votre espace étudiant, en indiquant le motif {{.Motif}}.
{{end}}
L'équipe Español Fácil
`))
