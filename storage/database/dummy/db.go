// Package dummydb provides in-memory repositories with the same
// uniqueness and conditional-write semantics as the SQL store. It backs
// unit and API tests.
package dummydb

import (
	"sync"

	"github.com/shulehub/backend/core/assignment"
	"github.com/shulehub/backend/core/student"
	"github.com/shulehub/backend/core/teacher"
)

type DB struct {
	// one lock for the whole store: multi-table steps (approval) must be
	// atomic, matching the SQL store's transactions.
	sync.RWMutex

	requests     map[string]*student.StudentRequest
	requestOrder []string

	students map[string]*student.Student
	teachers map[string]*teacher.Teacher

	assignments     map[string]*assignment.Assignment
	assignmentOrder []string
}

func NewDB() *DB {
	db := &DB{}
	db.reset()
	return db
}

// Reset drops all data; for tests.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.reset()
}

func (db *DB) reset() {
	db.requests = make(map[string]*student.StudentRequest)
	db.requestOrder = nil
	db.students = make(map[string]*student.Student)
	db.teachers = make(map[string]*teacher.Teacher)
	db.assignments = make(map[string]*assignment.Assignment)
	db.assignmentOrder = nil
}
