package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/assignment"
	"github.com/shulehub/backend/core/student"
	"github.com/shulehub/backend/core/teacher"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// domainError maps a domain sentinel to a status code and the message
// clients know; code 0 means "not a domain sentinel".
func domainError(err error) (int, string) {
	switch err {
	case student.ErrRequestPending:
		return http.StatusConflict, "Request already pending!"
	case student.ErrRequestNotFound:
		return http.StatusNotFound, "Request not found"
	case student.ErrEmailExists, student.ErrUsernameExists:
		return http.StatusConflict, "A student with this email or username already exists"
	case student.ErrNotFound:
		return http.StatusNotFound, "Student not found"
	case student.ErrInvalidToken:
		return http.StatusBadRequest, "Invalid or expired token"
	case teacher.ErrEmailExists, teacher.ErrUsernameExists:
		return http.StatusConflict, "Teacher already registered!"
	case teacher.ErrNotFound:
		return http.StatusNotFound, "Teacher not found"
	case assignment.ErrNotFound:
		return http.StatusNotFound, "Assignment not found"
	case assignment.ErrAlreadySubmitted:
		return http.StatusConflict, "You have already submitted this assignment"
	case assignment.ErrDeadlinePassed:
		return http.StatusBadRequest, "Submission failed: Deadline has passed"
	case assignment.ErrSubjectMismatch:
		return http.StatusBadRequest, "Subject mismatch"
	case assignment.ErrTeacherNotAuthorized:
		return http.StatusBadRequest, "Teacher not assigned to this subject"
	case assignment.ErrInvalidDeadline:
		return http.StatusBadRequest, "Invalid deadline format"
	case core.ErrUnknownSubject:
		return http.StatusBadRequest, "Unknown subject"
	}
	return 0, ""
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.ConflictError:
			code = http.StatusConflict
			message = origErr.Error()
		default:
			if dCode, dMsg := domainError(origErr); dCode != 0 {
				code = dCode
				message = dMsg
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := "Server error"
			message = msg
			logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"success": false, "message": message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
