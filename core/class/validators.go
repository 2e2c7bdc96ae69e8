package class

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

var (
	hhmmTag   = "hhmm"
	hhmmText  = "{0} must be a time formatted as HH:MM"
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	errEndBeforeStart = "end_time must be after start_time"
)

// InitValidators registers the hhmm tag and the schedule struct validation on `validate`.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(hhmmTag, hhmmValidation)
	core.RegisterCustomTranslation(validate, translator, hhmmTag, hhmmText)

	validate.RegisterStructValidation(scheduleStructValidation, NewSchedule{})
	core.RegisterCustomTranslation(validate, translator, "endafterstart", errEndBeforeStart)
}

func hhmmValidation(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

// scheduleStructValidation checks that a schedule ends after it starts. HH:MM strings
// order the same way as the times they represent.
func scheduleStructValidation(sl validator.StructLevel) {
	ns := sl.Current().Interface().(NewSchedule)
	if !hhmmRegex.MatchString(ns.StartTime) || !hhmmRegex.MatchString(ns.EndTime) {
		return
	}
	if ns.EndTime <= ns.StartTime {
		sl.ReportError(ns.EndTime, "end_time", "EndTime", "endafterstart", "")
	}
}
