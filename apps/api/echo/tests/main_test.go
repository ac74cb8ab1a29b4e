package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/shulehub/backend/apps/api/echo"
	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/account"
	"github.com/shulehub/backend/core/assignment"
	"github.com/shulehub/backend/core/student"
	"github.com/shulehub/backend/core/teacher"
	emailsvc "github.com/shulehub/backend/services/email"
	logsvc "github.com/shulehub/backend/services/logger"
	dummydb "github.com/shulehub/backend/storage/database/dummy"
	filestore "github.com/shulehub/backend/storage/files"
)

var (
	conf *core.Config
	db   *dummydb.DB
	app  Server

	stdRepo  student.Repository
	tchrRepo teacher.Repository
	asgRepo  assignment.Repository

	errMissingToken = apiErr{Message: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	mediaRoot, err := ioutil.TempDir("", "api-tests")
	if err != nil {
		fmt.Printf("ioutil.TempDir(): %v", err)
		os.Exit(1)
	}

	conf = core.NewTestConfig(mediaRoot)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db = dummydb.NewDB()
	stdRepo = dummydb.NewStudentRepository(db)
	tchrRepo = dummydb.NewTeacherRepository(db)
	asgRepo = dummydb.NewAssignmentRepository(db)

	// set up services
	files, err := filestore.NewLocalStore(mediaRoot)
	if err != nil {
		fmt.Printf("filestore.NewLocalStore(): %v", err)
		os.Exit(1)
	}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	stdSvc := student.NewService(stdRepo, mailSvc, conf)
	tchrSvc := teacher.NewService(tchrRepo)
	asgSvc := assignment.NewService(asgRepo, tchrSvc, stdSvc, files)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        logger,
			StudentSvc:    stdSvc,
			TeacherSvc:    tchrSvc,
			AssignmentSvc: asgSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	// run tests
	code := m.Run()

	// clean up
	_ = os.RemoveAll(mediaRoot)
	os.Exit(code)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
	emailsvc.ClearSentMessages()
}

type apiErr struct {
	Success bool        `json:"success"`
	Message interface{} `json:"message"`
}

type apiMsg struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest builds a multipart/form-data request with one file
// part and any extra form fields.
func newUploadRequest(t *testing.T, path string, fields map[string]string, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
		if _, err = io.Copy(fw, bytes.NewReader(content)); err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

func getStudentToken(t *testing.T, std student.Student) string {
	token, err := GenerateToken(GetStudentClaims(std, conf), conf)
	if err != nil {
		t.Fatalf("getStudentToken(): %v", err)
	}
	return token
}

func getTeacherToken(t *testing.T, tchr teacher.Teacher) string {
	token, err := GenerateToken(GetTeacherClaims(tchr, conf), conf)
	if err != nil {
		t.Fatalf("getTeacherToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
