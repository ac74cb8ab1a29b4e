package assignment

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/backend/core"
)

// Submission is one student's uploaded artifact against one assignment.
// The at-most-one-per-(assignment, student) invariant is enforced by the
// store, not by callers.
type Submission struct {
	ID               string    `json:"id"`
	StudentUsername  string    `json:"studentUsername"`
	FilePath         string    `json:"filePath"`
	OriginalFileName string    `json:"originalFileName"`
	SubmittedAt      time.Time `json:"submittedAt"` // UTC
}

type Assignment struct {
	ID              string       `json:"id"`
	TeacherUsername string       `json:"teacher_username"`
	Subject         core.Subject `json:"subject"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Deadline        time.Time    `json:"deadline"` // UTC, inclusive
	FolderPath      string       `json:"folderPath"`
	Submissions     []Submission `json:"submissions"`
	CreatedAt       time.Time    `json:"created_at"` // UTC
}

// Folder returns the submission folder name derived from the description.
func (a Assignment) Folder() string {
	return SanitizeFolderName(a.Description)
}

// HasSubmissionBy reports whether the student already submitted.
func (a Assignment) HasSubmissionBy(studentUsername string) bool {
	for _, sub := range a.Submissions {
		if sub.StudentUsername == studentUsername {
			return true
		}
	}
	return false
}

// NewAssignment contains information needed to post an assignment. The
// deadline is accepted as a string and parsed by the service so clients
// may send either a date or a full timestamp.
type NewAssignment struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Deadline        string `json:"deadline" validate:"required"`
	TeacherUsername string `json:"teacher_username" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Deadline = core.CleanString(na.Deadline)
	na.TeacherUsername = core.CleanString(na.TeacherUsername, true /* lower */)
	return validate.Struct(na)
}

var (
	folderStripRegex = regexp.MustCompile(`[^A-Za-z0-9-_ ]`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// SanitizeFolderName derives a filesystem-safe folder name: strip to
// [A-Za-z0-9-_ ], trim, collapse whitespace runs to underscores.
func SanitizeFolderName(name string) string {
	name = folderStripRegex.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	return whitespaceRegex.ReplaceAllString(name, "_")
}

// deadline formats accepted from clients, most specific first.
var deadlineFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDeadline(s string) (time.Time, error) {
	for _, layout := range deadlineFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDeadline
}
