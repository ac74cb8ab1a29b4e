package dummydb

import (
	"time"

	"github.com/google/uuid"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	if a.Submissions == nil {
		a.Submissions = []assignment.Submission{}
	}
	repo.db.assignments[a.ID] = &a
	repo.db.assignmentOrder = append(repo.db.assignmentOrder, a.ID)
	return copyAssignment(&a), nil
}

func (repo *assignmentRepository) GetAssignmentByID(id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return copyAssignment(a), nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignmentsBySubject(sub core.Subject) ([]assignment.Assignment, error) {
	return repo.QueryAssignmentsBySubjects([]core.Subject{sub})
}

func (repo *assignmentRepository) QueryAssignmentsBySubjects(subs []core.Subject) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matches := []assignment.Assignment{}
	for _, id := range repo.db.assignmentOrder {
		a, ok := repo.db.assignments[id]
		if !ok {
			continue
		}
		if core.SubjectsContain(subs, a.Subject) {
			matches = append(matches, copyAssignment(a))
		}
	}
	return matches, nil
}

func (repo *assignmentRepository) AddSubmission(assignmentID string, sub assignment.Submission, now time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.assignments[assignmentID]
	if !ok {
		return assignment.ErrNotFound
	}
	if now.After(a.Deadline) {
		return assignment.ErrDeadlinePassed
	}
	if a.HasSubmissionBy(sub.StudentUsername) {
		return assignment.ErrAlreadySubmitted
	}

	sub.ID = uuid.New().String()
	a.Submissions = append(a.Submissions, sub)
	return nil
}

// copyAssignment returns a value detached from the stored pointer so
// callers cannot mutate the table.
func copyAssignment(a *assignment.Assignment) assignment.Assignment {
	cp := *a
	cp.Submissions = append([]assignment.Submission{}, a.Submissions...)
	return cp
}
