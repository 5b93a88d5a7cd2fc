package mark

import (
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
)

var (
	seeTag  = "see"
	seeText = "{0} must be between 0 and 100 or A"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	// validate SEE marks by their textual form, unset marks are nil
	validate.RegisterCustomTypeFunc(seeMarkValue, grading.SEEMark{})

	_ = validate.RegisterValidation(seeTag, seeValidation)
	core.RegisterCustomTranslation(validate, translator, seeTag, seeText)
}

// seeMarkValue keeps absent and scored marks apart: a scored -1 is "-1", not "A".
func seeMarkValue(field reflect.Value) interface{} {
	if m, ok := field.Interface().(grading.SEEMark); ok && m.IsSet() {
		return m.String()
	}
	return nil
}

// seeValidation accepts 0-100 and the absent token.
func seeValidation(fl validator.FieldLevel) bool {
	return grading.ParseSEE(fl.Field().String()).Valid()
}
