package teacher

import (
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/shulehub/backend/core"
)

func nowUTC() time.Time { return time.Now().UTC() }

var (
	// errors
	ErrNotFound       = errors.New("teacher not found")
	ErrEmailExists    = errors.New("a teacher with this email already exists")
	ErrUsernameExists = errors.New("a teacher with this username already exists")
)

type (
	Repository interface {
		// CreateTeacher stores a new teacher. Email and username
		// uniqueness are enforced atomically at the store; clashes fail
		// with ErrEmailExists or ErrUsernameExists.
		CreateTeacher(t Teacher) (Teacher, error)
		GetTeacherByUsername(username string) (Teacher, error)
		GetTeacherByEmail(email string) (Teacher, error)
	}

	Service interface {
		Register(nt NewTeacher) (Teacher, error)
		Authenticate(username, password string) (Teacher, error)
		GetByUsername(username string) (Teacher, error)
		Subjects(username string) ([]core.Subject, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register creates a live teacher account with the default subject set.
func (svc *service) Register(nt NewTeacher) (Teacher, error) {
	t := Teacher{
		Subjects:  core.DefaultSubjects,
		CreatedAt: nowUTC(),
	}
	t.Username = nt.Username
	t.Email = nt.Email
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateTeacher(t)
}

func (svc *service) Authenticate(username, password string) (Teacher, error) {
	t, err := svc.repo.GetTeacherByUsername(core.CleanString(username, true /* lower */))
	if err != nil {
		return Teacher{}, err
	}
	if err = t.CheckPassword(password); err != nil {
		return Teacher{}, ErrNotFound
	}
	return t, nil
}

func (svc *service) GetByUsername(username string) (Teacher, error) {
	return svc.repo.GetTeacherByUsername(core.CleanString(username, true /* lower */))
}

func (svc *service) Subjects(username string) ([]core.Subject, error) {
	t, err := svc.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return t.Subjects, nil
}
