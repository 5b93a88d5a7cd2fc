package mark_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/mark"
)

func TestInput_SEEValidation(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	mark.InitValidators(validate, translator)

	tests := []struct {
		name  string
		see   grading.SEEMark
		valid bool
	}{
		{name: "unset", see: grading.Unset(), valid: true},
		{name: "absent", see: grading.Absent(), valid: true},
		{name: "zero", see: grading.Scored(0), valid: true},
		{name: "max", see: grading.Scored(grading.MaxSEE), valid: true},
		{name: "above max", see: grading.Scored(grading.MaxSEE + 1)},
		{name: "scored sentinel", see: grading.Scored(grading.AbsentSentinel)},
		{name: "parsed -1", see: grading.ParseSEE("-1")},
		{name: "parsed A", see: grading.ParseSEE("a"), valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(mark.Input{Username: "bob", Subject: "Mathematics", SEE: tt.see})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "got %v", err)
			msgs := core.TranslateValidationErrors(vErrs, translator)
			require.Len(t, msgs, 1)
			assert.Equal(t, "see must be between 0 and 100 or A", msgs["see"])
		})
	}
}
