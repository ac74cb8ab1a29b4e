package student

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/shulehub/backend/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrRequestNotFound = errors.New("registration request not found")
	ErrRequestPending  = errors.New("a registration request for this email is already pending")
	ErrEmailExists     = errors.New("a student with this email already exists")
	ErrUsernameExists  = errors.New("a student with this username already exists")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

type (
	Repository interface {
		// CreateRequest stores a pending registration. It fails with
		// ErrRequestPending when a request for the same email already
		// exists; the check and the insert are a single atomic step.
		CreateRequest(req StudentRequest) (StudentRequest, error)
		// QueryRequests returns pending requests in insertion order.
		QueryRequests() ([]StudentRequest, error)
		// ApproveRequest promotes a pending request to a Student with the
		// given subjects and deletes the request, atomically: a second
		// approval of the same id fails with ErrRequestNotFound, and a
		// clashing live account fails with ErrEmailExists or
		// ErrUsernameExists before anything is written.
		ApproveRequest(id string, subjects []core.Subject) (Student, error)
		// DeleteRequest removes a pending request; deleting an absent id
		// is a no-op.
		DeleteRequest(id string) error
		GetStudentByUsername(username string) (Student, error)
		GetStudentByEmail(email string) (Student, error)
		SetResetToken(id, token string, expiry time.Time) error
		// UpdatePassword replaces the stored hash and clears any reset
		// token and expiry.
		UpdatePassword(id string, hash []byte) error
	}

	Service interface {
		Register(nr NewRegistration) (StudentRequest, error)
		PendingRequests() ([]StudentRequest, error)
		Approve(requestID string) (Student, error)
		Reject(requestID string) error
		Authenticate(username, password string) (Student, error)
		GetByUsername(username string) (Student, error)
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetStudentPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{repo: repo, mailSvc: mailSvc, conf: conf}
}

// Register stores a pending StudentRequest; no account is created and no
// session is started until a teacher approves it.
func (svc *service) Register(nr NewRegistration) (StudentRequest, error) {
	req := StudentRequest{CreatedAt: NowFunc().UTC()}
	req.Username = nr.Username
	req.Email = nr.Email
	if err := req.SetPassword(nr.Password); err != nil {
		return StudentRequest{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateRequest(req)
}

func (svc *service) PendingRequests() ([]StudentRequest, error) {
	return svc.repo.QueryRequests()
}

func (svc *service) Approve(requestID string) (Student, error) {
	return svc.repo.ApproveRequest(requestID, core.DefaultSubjects)
}

// Reject is idempotent: rejecting an unknown or already handled request
// succeeds.
func (svc *service) Reject(requestID string) error {
	return svc.repo.DeleteRequest(requestID)
}

func (svc *service) Authenticate(username, password string) (Student, error) {
	usr, err := svc.repo.GetStudentByUsername(core.CleanString(username, true /* lower */))
	if err != nil {
		return Student{}, err
	}
	if err = usr.CheckPassword(password); err != nil {
		return Student{}, ErrNotFound
	}
	return usr, nil
}

func (svc *service) GetByUsername(username string) (Student, error) {
	return svc.repo.GetStudentByUsername(core.CleanString(username, true /* lower */))
}

// RequestPasswordReset issues a fresh reset token and mails a reset link.
// The token is persisted before the mail is sent: a delivery failure is
// returned but leaves the token usable, so the flow stays retryable.
func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.repo.GetStudentByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}

	token, err := makeResetToken()
	if err != nil {
		return err
	}
	expiry := NowFunc().UTC().Add(svc.conf.PasswordResetTimeout)
	if err = svc.repo.SetResetToken(usr.ID, token, expiry); err != nil {
		return pkgerrors.Wrap(err, "persisting reset token")
	}

	return svc.sendPasswordResetMail(usr, token)
}

// ResetPassword consumes a reset token: exact match, unexpired, single use.
func (svc *service) ResetPassword(rp ResetStudentPassword) error {
	usr, err := svc.repo.GetStudentByEmail(rp.Email)
	if err != nil {
		if err == ErrNotFound {
			return ErrInvalidToken // do not reveal whether the account exists
		}
		return err
	}
	if usr.ResetToken == "" ||
		subtle.ConstantTimeCompare([]byte(usr.ResetToken), []byte(rp.Token)) == 0 ||
		NowFunc().After(usr.ResetTokenExpiry) {
		return ErrInvalidToken
	}
	if err = usr.SetPassword(rp.NewPassword); err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdatePassword(usr.ID, usr.PasswordHash)
}

func (svc *service) sendPasswordResetMail(usr Student, token string) error {
	link := fmt.Sprintf(
		"%s/reset-password?token=%s&email=%s",
		svc.conf.FrontendBaseURL, token, url.QueryEscape(usr.Email),
	)
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Username, Address: usr.Email}},
		Subject:      "Password Reset Request",
		TemplateName: "password-reset",
		TemplateData: struct {
			ResetLink string
			Timeout   time.Duration
		}{link, svc.conf.PasswordResetTimeout},
	}
	return svc.mailSvc.SendMessage(msg)
}
