package testutil

import (
	"testing"
	"time"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/assignment"
	"github.com/shulehub/backend/core/student"
	"github.com/shulehub/backend/core/teacher"
)

func CreateTeacher(
	t *testing.T,
	repo teacher.Repository,
	uname, email, pwd string,
	subjects ...core.Subject,
) teacher.Teacher {
	if subjects == nil {
		subjects = core.DefaultSubjects
	}
	tchr := teacher.Teacher{
		Subjects:  subjects,
		CreatedAt: time.Now().UTC(),
	}
	tchr.Username = uname
	tchr.Email = email
	if pwd != "" {
		if err := tchr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateTeacher() failed: %v", err)
		}
	}
	tchr, err := repo.CreateTeacher(tchr)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

func CreateRequest(
	t *testing.T,
	repo student.Repository,
	uname, email, pwd string,
) student.StudentRequest {
	req := student.StudentRequest{CreatedAt: time.Now().UTC()}
	req.Username = uname
	req.Email = email
	if pwd != "" {
		if err := req.SetPassword(pwd); err != nil {
			t.Fatalf("CreateRequest() failed: %v", err)
		}
	}
	req, err := repo.CreateRequest(req)
	if err != nil {
		t.Fatalf("CreateRequest() failed: %v", err)
	}
	return req
}

// CreateStudent registers and immediately approves a student with the
// given subjects (default set when none given).
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	uname, email, pwd string,
	subjects ...core.Subject,
) student.Student {
	if subjects == nil {
		subjects = core.DefaultSubjects
	}
	req := CreateRequest(t, repo, uname, email, pwd)
	std, err := repo.ApproveRequest(req.ID, subjects)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	teacherUsername string,
	subject core.Subject,
	title, description string,
	deadline time.Time,
) assignment.Assignment {
	a := assignment.Assignment{
		TeacherUsername: teacherUsername,
		Subject:         subject,
		Title:           title,
		Description:     description,
		Deadline:        deadline.UTC(),
		CreatedAt:       time.Now().UTC(),
	}
	a.FolderPath = a.Folder()
	a, err := repo.CreateAssignment(a)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}
