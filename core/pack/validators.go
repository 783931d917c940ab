package pack

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/espanolfacil/academy/core"
)

var (
	dateOrderTag  = "dateorder"
	dateOrderText = "{0} is out of order: deadline <= start <= end"

	dateRequiredTag = "daterequired"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(packStructValidation, NewPack{})
	core.RegisterCustomTranslation(validate, translator, dateOrderTag, dateOrderText)
	core.RegisterCustomTranslation(validate, translator, dateRequiredTag, "this field is required")
}

// packStructValidation checks the calendar of a NewPack: every date is set,
// the deadline is not after the start, and the start is not after the end.
func packStructValidation(sl validator.StructLevel) {
	np, ok := sl.Current().Interface().(NewPack)
	if !ok {
		return
	}
	missing := false
	for _, d := range []struct {
		date  core.Date
		field string
		name  string
	}{
		{np.DateStart, "date_start", "DateStart"},
		{np.DateEnd, "date_end", "DateEnd"},
		{np.DateDeadline, "date_deadline", "DateDeadline"},
	} {
		if d.date.IsZero() {
			sl.ReportError(d.date, d.field, d.name, dateRequiredTag, "")
			missing = true
		}
	}
	if missing {
		return
	}
	if np.DateEnd.Before(np.DateStart.Time) {
		sl.ReportError(np.DateEnd, "date_end", "DateEnd", dateOrderTag, "")
	}
	if np.DateDeadline.After(np.DateStart.Time) {
		sl.ReportError(np.DateDeadline, "date_deadline", "DateDeadline", dateOrderTag, "")
	}
}
