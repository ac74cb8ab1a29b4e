package student_test

import (
	"io/ioutil"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/student"
	emailsvc "github.com/shulehub/backend/services/email"
	dummydb "github.com/shulehub/backend/storage/database/dummy"
	testutil "github.com/shulehub/backend/tests"
)

func setup(t *testing.T) (student.Service, student.Repository, *core.Config) {
	t.Helper()
	mediaRoot, err := ioutil.TempDir("", "student-tests")
	require.NoError(t, err)

	conf := core.NewTestConfig(mediaRoot)
	repo := dummydb.NewStudentRepository(dummydb.NewDB())
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ClearSentMessages()
	return student.NewService(repo, mailSvc, conf), repo, conf
}

func TestService_Register_duplicateEmailPending(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Register(student.NewRegistration{Username: "jane", Email: "jane@test.cd", Password: "s3cret+W0rd"})
	require.NoError(t, err)

	_, err = svc.Register(student.NewRegistration{Username: "jane2", Email: "jane@test.cd", Password: "s3cret+W0rd"})
	assert.Equal(t, student.ErrRequestPending, err)
}

func TestService_Approve(t *testing.T) {
	svc, repo, _ := setup(t)

	req, err := svc.Register(student.NewRegistration{Username: "jane", Email: "jane@test.cd", Password: "s3cret+W0rd"})
	require.NoError(t, err)

	std, err := svc.Approve(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", std.Username)
	assert.Equal(t, core.DefaultSubjects, std.Subjects)
	// the request's hash is carried over untouched
	assert.NoError(t, std.CheckPassword("s3cret+W0rd"))

	// the request is consumed
	_, err = svc.Approve(req.ID)
	assert.Equal(t, student.ErrRequestNotFound, err)

	reqs, err := svc.PendingRequests()
	require.NoError(t, err)
	assert.Empty(t, reqs)

	// approving a request clashing with a live account fails
	clash := testutil.CreateRequest(t, repo, "jane", "other@test.cd", "s3cret+W0rd")
	_, err = svc.Approve(clash.ID)
	assert.Equal(t, student.ErrUsernameExists, err)
}

func TestService_Reject_isIdempotent(t *testing.T) {
	svc, _, _ := setup(t)

	req, err := svc.Register(student.NewRegistration{Username: "jane", Email: "jane@test.cd", Password: "s3cret+W0rd"})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(req.ID))
	require.NoError(t, svc.Reject(req.ID))
	require.NoError(t, svc.Reject("no-such-id"))
}

func TestService_Authenticate(t *testing.T) {
	svc, repo, _ := setup(t)
	testutil.CreateStudent(t, repo, "amani", "amani@test.cd", "stud3nt+Pwd")

	std, err := svc.Authenticate("Amani", "stud3nt+Pwd") // username is case-insensitive
	require.NoError(t, err)
	assert.Equal(t, "amani", std.Username)

	_, err = svc.Authenticate("amani", "wrong")
	assert.Equal(t, student.ErrNotFound, err)

	_, err = svc.Authenticate("ghost", "stud3nt+Pwd")
	assert.Equal(t, student.ErrNotFound, err)
}

var tokenRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestService_passwordResetFlow(t *testing.T) {
	svc, repo, _ := setup(t)
	testutil.CreateStudent(t, repo, "amani", "amani@test.cd", "stud3nt+Pwd")

	now := time.Now().UTC()
	student.NowFunc = func() time.Time { return now }
	defer func() { student.NowFunc = time.Now }()

	assert.Equal(t, student.ErrNotFound, svc.RequestPasswordReset("ghost@test.cd"))

	require.NoError(t, svc.RequestPasswordReset("amani@test.cd"))

	std, err := repo.GetStudentByEmail("amani@test.cd")
	require.NoError(t, err)
	assert.Regexp(t, tokenRegex, std.ResetToken)
	assert.Equal(t, now.Add(time.Hour), std.ResetTokenExpiry)

	sent := emailsvc.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "token="+std.ResetToken)

	t.Run("wrong token", func(t *testing.T) {
		err := svc.ResetPassword(student.ResetStudentPassword{
			Email: "amani@test.cd", Token: "deadbeef", NewPassword: "n3w+Secr3t!",
		})
		assert.Equal(t, student.ErrInvalidToken, err)
	})

	t.Run("unknown email is indistinguishable", func(t *testing.T) {
		err := svc.ResetPassword(student.ResetStudentPassword{
			Email: "ghost@test.cd", Token: std.ResetToken, NewPassword: "n3w+Secr3t!",
		})
		assert.Equal(t, student.ErrInvalidToken, err)
	})

	t.Run("expired token", func(t *testing.T) {
		student.NowFunc = func() time.Time { return now.Add(time.Hour + time.Second) }
		err := svc.ResetPassword(student.ResetStudentPassword{
			Email: "amani@test.cd", Token: std.ResetToken, NewPassword: "n3w+Secr3t!",
		})
		assert.Equal(t, student.ErrInvalidToken, err)
	})

	t.Run("at expiry still valid, then single use", func(t *testing.T) {
		student.NowFunc = func() time.Time { return now.Add(time.Hour) }
		err := svc.ResetPassword(student.ResetStudentPassword{
			Email: "amani@test.cd", Token: std.ResetToken, NewPassword: "n3w+Secr3t!",
		})
		require.NoError(t, err)

		refreshed, err := repo.GetStudentByEmail("amani@test.cd")
		require.NoError(t, err)
		assert.NoError(t, refreshed.CheckPassword("n3w+Secr3t!"))
		assert.Empty(t, refreshed.ResetToken)

		err = svc.ResetPassword(student.ResetStudentPassword{
			Email: "amani@test.cd", Token: std.ResetToken, NewPassword: "An0ther+Pwd!",
		})
		assert.Equal(t, student.ErrInvalidToken, err)
	})
}
