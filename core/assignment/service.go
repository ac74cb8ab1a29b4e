package assignment

import (
	"errors"
	"fmt"
	"io"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/student"
	"github.com/shulehub/backend/core/teacher"
)

// NowFunc returns the current time; mockable in tests.
var NowFunc = time.Now

var (
	// errors
	ErrNotFound             = errors.New("assignment not found")
	ErrInvalidDeadline      = errors.New("invalid deadline format")
	ErrTeacherNotAuthorized = errors.New("teacher not assigned to this subject")
	ErrSubjectMismatch      = errors.New("subject mismatch")
	ErrDeadlinePassed       = errors.New("submission failed: deadline has passed")
	ErrAlreadySubmitted     = errors.New("you have already submitted this assignment")
)

type (
	Repository interface {
		CreateAssignment(a Assignment) (Assignment, error)
		GetAssignmentByID(id string) (Assignment, error)
		QueryAssignmentsBySubject(sub core.Subject) ([]Assignment, error)
		QueryAssignmentsBySubjects(subs []core.Subject) ([]Assignment, error)
		// AddSubmission appends a submission iff the assignment's deadline
		// has not passed relative to `now` and the student has none yet.
		// Both conditions are checked atomically with the insert; losers
		// of a race get ErrAlreadySubmitted or ErrDeadlinePassed, never a
		// duplicate row.
		AddSubmission(assignmentID string, sub Submission, now time.Time) error
	}

	// TeacherDirectory resolves a teacher for subject authorization.
	TeacherDirectory interface {
		GetByUsername(username string) (teacher.Teacher, error)
	}

	// StudentDirectory resolves a student's subject set.
	StudentDirectory interface {
		GetByUsername(username string) (student.Student, error)
	}

	Service interface {
		Post(subjectName string, na NewAssignment) (Assignment, error)
		BySubject(subjectName string) ([]Assignment, error)
		ForStudent(username string) ([]Assignment, error)
		Submit(subjectName, assignmentID, studentUsername, originalFileName string, file io.Reader) (fileURL string, err error)
	}

	service struct {
		repo     Repository
		teachers TeacherDirectory
		students StudentDirectory
		files    core.FileStore
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, teachers TeacherDirectory, students StudentDirectory, files core.FileStore) Service {
	return &service{repo: repo, teachers: teachers, students: students, files: files}
}

// Post validates the teacher's authorization for the subject, provisions
// the submission folder and persists the assignment.
func (svc *service) Post(subjectName string, na NewAssignment) (Assignment, error) {
	sub, err := core.ParseSubject(subjectName)
	if err != nil {
		return Assignment{}, err
	}

	tchr, err := svc.teachers.GetByUsername(na.TeacherUsername)
	if err != nil {
		if err == teacher.ErrNotFound {
			return Assignment{}, ErrTeacherNotAuthorized
		}
		return Assignment{}, pkgerrors.Wrap(err, "finding teacher")
	}
	if !tchr.Teaches(sub) {
		return Assignment{}, ErrTeacherNotAuthorized
	}

	deadline, err := parseDeadline(na.Deadline)
	if err != nil {
		return Assignment{}, err
	}

	a := Assignment{
		TeacherUsername: tchr.Username,
		Subject:         sub,
		Title:           na.Title,
		Description:     na.Description,
		Deadline:        deadline,
		CreatedAt:       NowFunc().UTC(),
	}
	folder := a.Folder()
	if err = svc.files.EnsureFolder(folder); err != nil {
		return Assignment{}, pkgerrors.Wrap(err, "provisioning assignment folder")
	}
	a.FolderPath = folder

	return svc.repo.CreateAssignment(a)
}

func (svc *service) BySubject(subjectName string) ([]Assignment, error) {
	sub, err := core.ParseSubject(subjectName)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignmentsBySubject(sub)
}

// ForStudent resolves the student's subject set, then queries assignments
// whose subject is a member.
func (svc *service) ForStudent(username string) ([]Assignment, error) {
	std, err := svc.students.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignmentsBySubjects(std.Subjects)
}

// Submit runs the submission pipeline. Guards, in order: assignment
// exists; subject matches the route; deadline not passed (inclusive); no
// prior submission by the student. The file is fully written before the
// submission record is committed; an orphaned file on a late failure is
// tolerated, a record without its file is not.
func (svc *service) Submit(subjectName, assignmentID, studentUsername, originalFileName string, file io.Reader) (string, error) {
	sub, err := core.ParseSubject(subjectName)
	if err != nil {
		return "", err
	}

	a, err := svc.repo.GetAssignmentByID(assignmentID)
	if err != nil {
		return "", err
	}
	if a.Subject != sub {
		return "", ErrSubjectMismatch
	}

	now := NowFunc().UTC()
	if now.After(a.Deadline) {
		return "", ErrDeadlinePassed
	}
	if a.HasSubmissionBy(studentUsername) {
		return "", ErrAlreadySubmitted
	}

	folder := a.Folder()
	filename := fmt.Sprintf("%s-%d-%s", studentUsername, now.UnixNano()/int64(time.Millisecond), originalFileName)
	storedPath, err := svc.files.Save(folder, filename, file)
	if err != nil {
		return "", pkgerrors.Wrap(err, "storing submission file")
	}

	record := Submission{
		StudentUsername:  studentUsername,
		FilePath:         storedPath,
		OriginalFileName: originalFileName,
		SubmittedAt:      now,
	}
	if err = svc.repo.AddSubmission(a.ID, record, now); err != nil {
		return "", err
	}

	return svc.files.URLPath(folder, filename), nil
}
