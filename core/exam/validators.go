package exam

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

var (
	subjectsTag  = "subjects"
	subjectsText = "subject names must be unique"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectsTag, subjectsValidation)
	core.RegisterCustomTranslation(validate, translator, subjectsTag, subjectsText)
}

// subjectsValidation checks that subject names are unique (case-insensitive).
func subjectsValidation(fl validator.FieldLevel) bool {
	subjects, ok := fl.Field().Interface().([]SubjectInput)
	if !ok {
		return false
	}
	seen := make(map[string]bool, len(subjects))
	for _, sub := range subjects {
		key := strings.ToLower(strings.TrimSpace(sub.Name))
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}
