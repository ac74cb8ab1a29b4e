package dummydb

import (
	"time"

	"github.com/google/uuid"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateRequest(req student.StudentRequest) (student.StudentRequest, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range repo.db.requests {
		if r.Email == req.Email {
			return student.StudentRequest{}, student.ErrRequestPending
		}
	}

	req.ID = uuid.New().String()
	repo.db.requests[req.ID] = &req
	repo.db.requestOrder = append(repo.db.requestOrder, req.ID)
	return req, nil
}

func (repo *studentRepository) QueryRequests() ([]student.StudentRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reqs := make([]student.StudentRequest, 0, len(repo.db.requests))
	for _, id := range repo.db.requestOrder {
		if r, ok := repo.db.requests[id]; ok {
			reqs = append(reqs, *r)
		}
	}
	return reqs, nil
}

func (repo *studentRepository) ApproveRequest(id string, subjects []core.Subject) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	req, ok := repo.db.requests[id]
	if !ok {
		return student.Student{}, student.ErrRequestNotFound
	}
	for _, s := range repo.db.students {
		if s.Email == req.Email {
			return student.Student{}, student.ErrEmailExists
		}
		if s.Username == req.Username {
			return student.Student{}, student.ErrUsernameExists
		}
	}

	now := time.Now().UTC()
	std := student.Student{
		ID:        uuid.New().String(),
		Subjects:  append([]core.Subject(nil), subjects...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	std.Username = req.Username
	std.Email = req.Email
	std.PasswordHash = req.PasswordHash // carried over pre-hashed

	repo.db.students[std.ID] = &std
	repo.deleteRequest(id)
	return std, nil
}

func (repo *studentRepository) DeleteRequest(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.deleteRequest(id)
	return nil
}

// deleteRequest removes id from the table and insertion order; callers
// hold the write lock. Absent ids are a no-op.
func (repo *studentRepository) deleteRequest(id string) {
	if _, ok := repo.db.requests[id]; !ok {
		return
	}
	delete(repo.db.requests, id)
	for i, rid := range repo.db.requestOrder {
		if rid == id {
			repo.db.requestOrder = append(repo.db.requestOrder[:i], repo.db.requestOrder[i+1:]...)
			break
		}
	}
}

func (repo *studentRepository) GetStudentByUsername(username string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.students {
		if s.Username == username {
			return *s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.students {
		if s.Email == email {
			return *s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) SetResetToken(id, token string, expiry time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.students[id]
	if !ok {
		return student.ErrNotFound
	}
	s.ResetToken = token
	s.ResetTokenExpiry = expiry
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *studentRepository) UpdatePassword(id string, hash []byte) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.students[id]
	if !ok {
		return student.ErrNotFound
	}
	s.PasswordHash = hash
	s.ResetToken = ""
	s.ResetTokenExpiry = time.Time{}
	s.UpdatedAt = time.Now().UTC()
	return nil
}
