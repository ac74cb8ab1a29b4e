package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shulehub/backend/core/account"
)

// InitValidators registers struct-level validation for this package's
// input types.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(registrationStructValidation, NewRegistration{})
	validate.RegisterStructValidation(resetStructValidation, ResetStudentPassword{})
}

func registrationStructValidation(sl validator.StructLevel) {
	nr := sl.Current().Interface().(NewRegistration)
	if nr.Password != "" {
		account.ValidatePassword(nr.Password, nr.Username, nr.Email, sl)
	}
}

func resetStructValidation(sl validator.StructLevel) {
	rp := sl.Current().Interface().(ResetStudentPassword)
	if rp.NewPassword != "" {
		account.ValidatePassword(rp.NewPassword, "", rp.Email, sl)
	}
}
