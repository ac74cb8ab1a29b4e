package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/assignment"
	testutil "github.com/shulehub/backend/tests"
)

func Test_assignmentApi_post(t *testing.T) {
	resetDB(t)

	testutil.CreateTeacher(t, tchrRepo, "mrkim", "kim@test.cd", "t3acher+Pwd")
	testutil.CreateTeacher(t, tchrRepo, "mrphy", "phy@test.cd", "t3acher+Pwd", core.SubjectPhysics)

	deadline := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	newBody := func(title, desc, dl, tchr string) []byte {
		return marchallObj(t, assignment.NewAssignment{
			Title: title, Description: desc, Deadline: dl, TeacherUsername: tchr,
		})
	}

	tests := []httpTest{
		{
			name: "unknown subject", method: http.MethodPost, path: "/api/assignments/alchemy",
			body:     newBody("HW 1", "Solve the exercises", deadline, "mrkim"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, apiErr{Message: "Unknown subject"}),
		},
		{
			name: "unknown teacher", method: http.MethodPost, path: "/api/assignments/maths",
			body:     newBody("HW 1", "Solve the exercises", deadline, "ghost"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, apiErr{Message: "Teacher not assigned to this subject"}),
		},
		{
			name: "teacher not assigned to subject", method: http.MethodPost, path: "/api/assignments/chemistry",
			body:     newBody("HW 1", "Solve the exercises", deadline, "mrphy"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, apiErr{Message: "Teacher not assigned to this subject"}),
		},
		{
			name: "invalid deadline", method: http.MethodPost, path: "/api/assignments/maths",
			body:     newBody("HW 1", "Solve the exercises", "next tuesday", "mrkim"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, apiErr{Message: "Invalid deadline format"}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/api/assignments/maths",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, apiErr{Message: map[string]string{
				"title":            "this field is required",
				"description":      "this field is required",
				"deadline":         "this field is required",
				"teacher_username": "this field is required",
			}}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("maths normalizes to Mathematics and folder is sanitized", func(t *testing.T) {
		body := newBody("HW 1", "Solve: exercises 1 & 2!", deadline, "mrkim")
		req, rec := newRequest(http.MethodPost, "/api/assignments/maths", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			Success    bool                  `json:"success"`
			Message    string                `json:"message"`
			Assignment assignment.Assignment `json:"assignment"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Message != "Assignment posted successfully!" {
			t.Errorf("message = %q", resp.Message)
		}
		if resp.Assignment.Subject != core.SubjectMathematics {
			t.Errorf("subject = %q; want Mathematics", resp.Assignment.Subject)
		}
		if resp.Assignment.FolderPath != "Solve_exercises_1_2" {
			t.Errorf("folderPath = %q; want Solve_exercises_1_2", resp.Assignment.FolderPath)
		}
	})

	t.Run("posted assignment is listed under its subject", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/assignments/Mathematics")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var listed []assignment.Assignment
		if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(listed) != 1 || listed[0].Title != "HW 1" {
			t.Errorf("unexpected listing: %+v", listed)
		}
	})
}

func Test_assignmentApi_forStudent(t *testing.T) {
	resetDB(t)

	testutil.CreateTeacher(t, tchrRepo, "mrkim", "kim@test.cd", "t3acher+Pwd")
	testutil.CreateStudent(t, stdRepo, "amani", "amani@test.cd", "stud3nt+Pwd", core.SubjectPhysics)

	deadline := time.Now().Add(24 * time.Hour).UTC()
	testutil.CreateAssignment(t, asgRepo, "mrkim", core.SubjectMathematics, "HW 1", "Solve the exercises", deadline)
	phys := testutil.CreateAssignment(t, asgRepo, "mrkim", core.SubjectPhysics, "Lab 1", "Pendulum report", deadline)

	tests := []httpTest{
		{
			name: "missing username", method: http.MethodGet, path: "/api/students/assignments",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, apiErr{Message: "Missing username"}),
		},
		{
			name: "unknown student", method: http.MethodGet, path: "/api/students/assignments?username=ghost",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, apiErr{Message: "Student not found"}),
		},
		{
			name: "only the student's subjects", method: http.MethodGet, path: "/api/students/assignments?username=amani",
			wantCode: http.StatusOK, wantData: marchallList(t, phys),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_submit(t *testing.T) {
	resetDB(t)

	testutil.CreateTeacher(t, tchrRepo, "mrkim", "kim@test.cd", "t3acher+Pwd")
	testutil.CreateStudent(t, stdRepo, "amani", "amani@test.cd", "stud3nt+Pwd")

	future := time.Now().Add(24 * time.Hour).UTC()
	past := time.Now().Add(-time.Minute).UTC()
	open := testutil.CreateAssignment(t, asgRepo, "mrkim", core.SubjectMathematics, "HW 1", "Solve the exercises", future)
	closed := testutil.CreateAssignment(t, asgRepo, "mrkim", core.SubjectMathematics, "HW 0", "Old homework", past)

	submitPath := func(subject, id string) string {
		return "/api/assignments/" + subject + "/submit/" + id
	}
	fields := map[string]string{"studentUsername": "amani"}

	t.Run("missing studentUsername", func(t *testing.T) {
		req, rec := newUploadRequest(t, submitPath("maths", open.ID), nil, "hw.pdf", []byte("%PDF-1.4"))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, apiErr{Message: "Missing studentUsername"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("missing file", func(t *testing.T) {
		req, rec := newUploadRequest(t, submitPath("maths", open.ID), fields, "", nil)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, apiErr{Message: "Missing file"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		req, rec := newUploadRequest(t, submitPath("maths", "0f4e3b12-bc60-4b1f-9a54-1e4cbb1f74e5"), fields, "hw.pdf", []byte("%PDF-1.4"))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, apiErr{Message: "Assignment not found"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		req, rec := newUploadRequest(t, submitPath("physics", open.ID), fields, "hw.pdf", []byte("%PDF-1.4"))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, apiErr{Message: "Subject mismatch"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("deadline passed", func(t *testing.T) {
		req, rec := newUploadRequest(t, submitPath("maths", closed.ID), fields, "hw.pdf", []byte("%PDF-1.4"))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, apiErr{Message: "Submission failed: Deadline has passed"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newUploadRequest(t, submitPath("maths", open.ID), fields, "hw.pdf", []byte("%PDF-1.4"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			FileURL string `json:"fileUrl"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Message != "Assignment submitted successfully!" {
			t.Errorf("message = %q", resp.Message)
		}
		wantPrefix := "/assignments/Solve_the_exercises/amani-"
		if !strings.HasPrefix(resp.FileURL, wantPrefix) || !strings.HasSuffix(resp.FileURL, "-hw.pdf") {
			t.Errorf("fileUrl = %q; want %s<millis>-hw.pdf", resp.FileURL, wantPrefix)
		}
	})

	t.Run("second submission rejected", func(t *testing.T) {
		req, rec := newUploadRequest(t, submitPath("maths", open.ID), fields, "hw2.pdf", []byte("%PDF-1.4"))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusConflict, wantData: marchallObj(t, apiErr{Message: "You have already submitted this assignment"})}
		checkCodeAndData(t, tt, rec)
	})
}
