package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/student"
)

type studentApi struct {
	svc      student.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	sg := g.Group("/students")

	// un-authed endpoints
	// TODO: rate limit `/forgot-password` & `/reset-password`
	sg.POST("/register", api.register)
	sg.POST("/login", api.login)
	sg.POST("/forgot-password", api.forgotPassword)
	sg.POST("/reset-password", api.resetPassword)

	// approval surface; teachers only
	ag := sg.Group("", jwt, teacherRequiredMiddleware())
	ag.GET("/requests", api.requests)
	ag.POST("/approve", api.approve)
	ag.POST("/reject", api.reject)
}

// Handlers

func (api *studentApi) register(ctx echo.Context) error {
	var data student.NewRegistration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Register(data); err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Student request sent for approval",
	})
}

func (api *studentApi) requests(ctx echo.Context) error {
	reqs, err := api.svc.PendingRequests()
	if err != nil {
		return errors.Wrap(err, "querying registration requests")
	}
	if reqs == nil {
		reqs = []student.StudentRequest{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *studentApi) approve(ctx echo.Context) error {
	var data RequestIDRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequestIDRequest")
	}
	if data.ID == "" {
		return core.NewValidationError(errors.New("Invalid request ID"))
	}

	if _, err := api.svc.Approve(data.ID); err != nil {
		return errors.Wrap(err, "approving registration request")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Student approved!",
	})
}

func (api *studentApi) reject(ctx echo.Context) error {
	var data RequestIDRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RequestIDRequest")
	}
	if data.ID == "" {
		return core.NewValidationError(errors.New("Invalid request ID"))
	}

	if err := api.svc.Reject(data.ID); err != nil {
		return errors.Wrap(err, "rejecting registration request")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Student request rejected!",
	})
}

func (api *studentApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Authenticate(data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating student")
	}
	token, err := GenerateToken(GetStudentClaims(std, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Success:  true,
		Username: std.Username,
		Email:    std.Email,
		Token:    token,
	})
}

func (api *studentApi) forgotPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return core.NewValidationError(errors.New("Invalid email format"))
	}

	if err := api.svc.RequestPasswordReset(data.Email); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return errors.Wrap(err, "requesting password reset")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Password reset link sent!",
	})
}

func (api *studentApi) resetPassword(ctx echo.Context) error {
	var data student.ResetStudentPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetStudentPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Password changed successfully!",
	})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Success  bool   `json:"success"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Token    string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	RequestIDRequest struct {
		ID string `json:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
