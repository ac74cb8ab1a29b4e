package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

type assignmentRow struct {
	ID              string    `db:"id"`
	TeacherUsername string    `db:"teacher_username"`
	Subject         string    `db:"subject"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Deadline        time.Time `db:"deadline"`
	FolderPath      string    `db:"folder_path"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:              r.ID,
		TeacherUsername: r.TeacherUsername,
		Subject:         core.Subject(r.Subject),
		Title:           r.Title,
		Description:     r.Description,
		Deadline:        r.Deadline,
		FolderPath:      r.FolderPath,
		Submissions:     []assignment.Submission{},
		CreatedAt:       r.CreatedAt,
	}
}

type submissionRow struct {
	ID               string    `db:"id"`
	AssignmentID     string    `db:"assignment_id"`
	StudentUsername  string    `db:"student_username"`
	FilePath         string    `db:"file_path"`
	OriginalFileName string    `db:"original_file_name"`
	SubmittedAt      time.Time `db:"submitted_at"`
}

func (r submissionRow) toSubmission() assignment.Submission {
	return assignment.Submission{
		ID:               r.ID,
		StudentUsername:  r.StudentUsername,
		FilePath:         r.FilePath,
		OriginalFileName: r.OriginalFileName,
		SubmittedAt:      r.SubmittedAt,
	}
}

func (repo *assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	const q = `
		INSERT INTO assignment (teacher_username, subject, title, description, deadline, folder_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := repo.db.QueryRowx(q, a.TeacherUsername, string(a.Subject), a.Title, a.Description, a.Deadline, a.FolderPath).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	if a.Submissions == nil {
		a.Submissions = []assignment.Submission{}
	}
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByID(id string) (assignment.Assignment, error) {
	const q = `
		SELECT id, teacher_username, subject, title, description, deadline, folder_path, created_at
		FROM assignment
		WHERE id = $1`

	var row assignmentRow
	if err := repo.db.Get(&row, q, id); err != nil {
		if err == sql.ErrNoRows || isInvalidID(err) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "querying assignment")
	}

	a := row.toAssignment()
	subs, err := repo.querySubmissions([]string{a.ID})
	if err != nil {
		return assignment.Assignment{}, err
	}
	a.Submissions = append(a.Submissions, subs[a.ID]...)
	return a, nil
}

func (repo *assignmentRepository) QueryAssignmentsBySubject(sub core.Subject) ([]assignment.Assignment, error) {
	return repo.QueryAssignmentsBySubjects([]core.Subject{sub})
}

func (repo *assignmentRepository) QueryAssignmentsBySubjects(subs []core.Subject) ([]assignment.Assignment, error) {
	if len(subs) == 0 {
		return []assignment.Assignment{}, nil
	}

	q, args, err := sqlx.In(`
		SELECT id, teacher_username, subject, title, description, deadline, folder_path, created_at
		FROM assignment
		WHERE subject IN (?)
		ORDER BY created_at`, core.SubjectStrings(subs))
	if err != nil {
		return nil, errors.Wrap(err, "building assignments query")
	}

	var rows []assignmentRow
	if err = repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	matches := make([]assignment.Assignment, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, r.toAssignment())
		ids = append(ids, r.ID)
	}

	subsByID, err := repo.querySubmissions(ids)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		matches[i].Submissions = append(matches[i].Submissions, subsByID[matches[i].ID]...)
	}
	return matches, nil
}

func (repo *assignmentRepository) querySubmissions(assignmentIDs []string) (map[string][]assignment.Submission, error) {
	byID := make(map[string][]assignment.Submission, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return byID, nil
	}

	q, args, err := sqlx.In(`
		SELECT id, assignment_id, student_username, file_path, original_file_name, submitted_at
		FROM submission
		WHERE assignment_id IN (?)
		ORDER BY submitted_at`, assignmentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building submissions query")
	}

	var rows []submissionRow
	if err = repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	for _, r := range rows {
		byID[r.AssignmentID] = append(byID[r.AssignmentID], r.toSubmission())
	}
	return byID, nil
}

// AddSubmission inserts conditionally in one statement: the row only
// materializes when the assignment exists and its deadline has not
// passed, and the unique (assignment_id, student_username) index drops
// duplicates via ON CONFLICT. On no-row results the failure cause is
// read back to pick the right sentinel.
func (repo *assignmentRepository) AddSubmission(assignmentID string, sub assignment.Submission, now time.Time) error {
	const q = `
		INSERT INTO submission (assignment_id, student_username, file_path, original_file_name, submitted_at)
		SELECT a.id, $2, $3, $4, $5
		FROM assignment a
		WHERE a.id = $1 AND a.deadline >= $5
		ON CONFLICT (assignment_id, student_username) DO NOTHING
		RETURNING id`

	var id string
	err := repo.db.QueryRowx(q, assignmentID, sub.StudentUsername, sub.FilePath, sub.OriginalFileName, now).Scan(&id)
	if err == nil {
		return nil
	}
	if isInvalidID(err) {
		return assignment.ErrNotFound
	}
	if err != sql.ErrNoRows {
		return errors.Wrap(err, "inserting submission")
	}
	return repo.explainRejectedSubmission(assignmentID, sub.StudentUsername)
}

func (repo *assignmentRepository) explainRejectedSubmission(assignmentID, studentUsername string) error {
	var deadline time.Time
	err := repo.db.Get(&deadline, `SELECT deadline FROM assignment WHERE id = $1`, assignmentID)
	if err == sql.ErrNoRows {
		return assignment.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "checking assignment")
	}

	var exists bool
	err = repo.db.Get(&exists,
		`SELECT true FROM submission WHERE assignment_id = $1 AND student_username = $2`,
		assignmentID, studentUsername)
	if err == nil && exists {
		return assignment.ErrAlreadySubmitted
	}
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "checking submission")
	}
	return assignment.ErrDeadlinePassed
}
