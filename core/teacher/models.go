package teacher

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/account"
)

type Teacher struct {
	ID string `json:"id"`
	account.Account
	Subjects  []core.Subject `json:"subjects"`
	CreatedAt time.Time      `json:"created_at"` // UTC
}

// Teaches reports whether the teacher is authorized for the subject.
func (t Teacher) Teaches(s core.Subject) bool {
	return core.SubjectsContain(t.Subjects, s)
}

// NewTeacher contains information needed to register a teacher. There is
// no approval step: the account goes live immediately.
type NewTeacher struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}
