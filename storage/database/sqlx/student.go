package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

type requestRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r requestRow) toRequest() student.StudentRequest {
	req := student.StudentRequest{ID: r.ID, CreatedAt: r.CreatedAt}
	req.Username = r.Username
	req.Email = r.Email
	req.PasswordHash = r.PasswordHash
	return req
}

type studentRow struct {
	ID               string         `db:"id"`
	Username         string         `db:"username"`
	Email            string         `db:"email"`
	PasswordHash     []byte         `db:"password_hash"`
	Subjects         pq.StringArray `db:"subjects"`
	ResetToken       string         `db:"reset_token"`
	ResetTokenExpiry sql.NullTime   `db:"reset_token_expiry"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	std := student.Student{
		ID:         r.ID,
		Subjects:   core.SubjectsFromStrings(r.Subjects),
		ResetToken: r.ResetToken,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.ResetTokenExpiry.Valid {
		std.ResetTokenExpiry = r.ResetTokenExpiry.Time
	}
	std.Username = r.Username
	std.Email = r.Email
	std.PasswordHash = r.PasswordHash
	return std
}

// CreateRequest relies on the unique index on email: the duplicate check
// and the insert are one statement, so two concurrent registrations for
// the same email cannot both succeed.
func (repo *studentRepository) CreateRequest(req student.StudentRequest) (student.StudentRequest, error) {
	const q = `
		INSERT INTO student_request (username, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at`

	err := repo.db.QueryRowx(q, req.Username, req.Email, req.PasswordHash).
		Scan(&req.ID, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return student.StudentRequest{}, student.ErrRequestPending
	}
	if err != nil {
		return student.StudentRequest{}, errors.Wrap(err, "inserting student request")
	}
	return req, nil
}

func (repo *studentRepository) QueryRequests() ([]student.StudentRequest, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM student_request
		ORDER BY created_at`

	var rows []requestRow
	if err := repo.db.Select(&rows, q); err != nil {
		return nil, errors.Wrap(err, "querying student requests")
	}
	reqs := make([]student.StudentRequest, 0, len(rows))
	for _, r := range rows {
		reqs = append(reqs, r.toRequest())
	}
	return reqs, nil
}

// ApproveRequest promotes the request inside one transaction. The insert
// copies the request row directly, so a reused or unknown id yields no
// row and a clashing live account trips a unique index; either way
// nothing is written.
func (repo *studentRepository) ApproveRequest(id string, subjects []core.Subject) (student.Student, error) {
	const insertQ = `
		INSERT INTO student (username, email, password_hash, subjects)
		SELECT r.username, r.email, r.password_hash, $2
		FROM student_request r
		WHERE r.id = $1
		RETURNING id, username, email, password_hash, subjects, reset_token, reset_token_expiry, created_at, updated_at`
	const deleteQ = `DELETE FROM student_request WHERE id = $1`

	tx, err := repo.db.Beginx()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	var row studentRow
	err = tx.QueryRowx(insertQ, id, pq.Array(core.SubjectStrings(subjects))).StructScan(&row)
	switch {
	case err == sql.ErrNoRows || isInvalidID(err):
		return student.Student{}, student.ErrRequestNotFound
	case uniqueViolation(err) == "student_email_key":
		return student.Student{}, student.ErrEmailExists
	case uniqueViolation(err) == "student_username_key":
		return student.Student{}, student.ErrUsernameExists
	case err != nil:
		return student.Student{}, errors.Wrap(err, "promoting student request")
	}

	if _, err = tx.Exec(deleteQ, id); err != nil {
		return student.Student{}, errors.Wrap(err, "deleting student request")
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing approval")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) DeleteRequest(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM student_request WHERE id = $1`, id); err != nil {
		if isInvalidID(err) {
			return nil // treated as already absent
		}
		return errors.Wrap(err, "deleting student request")
	}
	return nil
}

func (repo *studentRepository) GetStudentByUsername(username string) (student.Student, error) {
	return repo.getStudent(`username = $1`, username)
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	return repo.getStudent(`email = $1`, email)
}

func (repo *studentRepository) getStudent(where string, arg interface{}) (student.Student, error) {
	q := `
		SELECT id, username, email, password_hash, subjects, reset_token, reset_token_expiry, created_at, updated_at
		FROM student
		WHERE ` + where

	var row studentRow
	if err := repo.db.Get(&row, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "querying student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) SetResetToken(id, token string, expiry time.Time) error {
	const q = `
		UPDATE student
		SET reset_token = $2, reset_token_expiry = $3, updated_at = now()
		WHERE id = $1`

	res, err := repo.db.Exec(q, id, token, expiry)
	if err != nil {
		return errors.Wrap(err, "setting reset token")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) UpdatePassword(id string, hash []byte) error {
	const q = `
		UPDATE student
		SET password_hash = $2, reset_token = '', reset_token_expiry = NULL, updated_at = now()
		WHERE id = $1`

	res, err := repo.db.Exec(q, id, hash)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}
