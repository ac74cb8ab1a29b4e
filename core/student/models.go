package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/account"
)

// StudentRequest is a pending self-registration awaiting approval. It is
// not an account: approval promotes it to a Student, rejection discards it.
type StudentRequest struct {
	ID string `json:"id"`
	account.Account
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Student struct {
	ID string `json:"id"`
	account.Account
	Subjects         []core.Subject `json:"subjects"`
	ResetToken       string         `json:"-"`
	ResetTokenExpiry time.Time      `json:"-"`
	CreatedAt        time.Time      `json:"created_at"` // UTC
	UpdatedAt        time.Time      `json:"updated_at"` // UTC
}

// NewRegistration contains information needed to request a student account.
type NewRegistration struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (nr *NewRegistration) Validate(validate *validator.Validate) error {
	nr.Username = core.CleanString(nr.Username, true /* lower */)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	return validate.Struct(nr)
}

// ResetStudentPassword carries a password-reset confirmation.
type ResetStudentPassword struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (rp *ResetStudentPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	rp.Token = core.CleanString(rp.Token)
	return validate.Struct(rp)
}
