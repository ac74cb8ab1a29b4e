package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/teacher"
)

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

type teacherRow struct {
	ID           string         `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash []byte         `db:"password_hash"`
	Subjects     pq.StringArray `db:"subjects"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	t := teacher.Teacher{
		ID:        r.ID,
		Subjects:  core.SubjectsFromStrings(r.Subjects),
		CreatedAt: r.CreatedAt,
	}
	t.Username = r.Username
	t.Email = r.Email
	t.PasswordHash = r.PasswordHash
	return t
}

func (repo *teacherRepository) CreateTeacher(t teacher.Teacher) (teacher.Teacher, error) {
	const q = `
		INSERT INTO teacher (username, email, password_hash, subjects)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := repo.db.QueryRowx(q, t.Username, t.Email, t.PasswordHash, pq.Array(core.SubjectStrings(t.Subjects))).
		Scan(&t.ID, &t.CreatedAt)
	switch {
	case uniqueViolation(err) == "teacher_email_key":
		return teacher.Teacher{}, teacher.ErrEmailExists
	case uniqueViolation(err) == "teacher_username_key":
		return teacher.Teacher{}, teacher.ErrUsernameExists
	case err != nil:
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) GetTeacherByUsername(username string) (teacher.Teacher, error) {
	return repo.getTeacher(`username = $1`, username)
}

func (repo *teacherRepository) GetTeacherByEmail(email string) (teacher.Teacher, error) {
	return repo.getTeacher(`email = $1`, email)
}

func (repo *teacherRepository) getTeacher(where string, arg interface{}) (teacher.Teacher, error) {
	q := `
		SELECT id, username, email, password_hash, subjects, created_at
		FROM teacher
		WHERE ` + where

	var row teacherRow
	if err := repo.db.Get(&row, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "querying teacher")
	}
	return row.toTeacher(), nil
}
