package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

var (
	beltTag  = "belt"
	beltText = "{0} must be one of White, Blue, Purple, Brown, Black"
)

// InitValidators registers the belt tag on `validate`.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(beltTag, beltValidation)
	core.RegisterCustomTranslation(validate, translator, beltTag, beltText)
}

func beltValidation(fl validator.FieldLevel) bool {
	return BeltRank(fl.Field().String()) < len(Belts)
}
