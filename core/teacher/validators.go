package teacher

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shulehub/backend/core/account"
)

// InitValidators registers struct-level validation for this package's
// input types.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newTeacherStructValidation, NewTeacher{})
}

func newTeacherStructValidation(sl validator.StructLevel) {
	nt := sl.Current().Interface().(NewTeacher)
	if nt.Password != "" {
		account.ValidatePassword(nt.Password, nt.Username, nt.Email, sl)
	}
}
