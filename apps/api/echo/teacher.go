package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/teacher"
)

type teacherApi struct {
	svc      teacher.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerTeacherAPI(g *echo.Group, deps ServerDeps) {
	api := teacherApi{
		svc:      deps.TeacherSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	tg := g.Group("/teachers")
	tg.POST("/register", api.register)
	tg.POST("/login", api.login)

	// kept singular for frontend compatibility
	g.GET("/teacher/subjects", api.subjects)
}

// Handlers

func (api *teacherApi) register(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Register(data); err != nil {
		return errors.Wrap(err, "registering teacher")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Teacher registered successfully!",
	})
}

func (api *teacherApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tchr, err := api.svc.Authenticate(data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating teacher")
	}
	token, err := GenerateToken(GetTeacherClaims(tchr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Success:  true,
		Username: tchr.Username,
		Email:    tchr.Email,
		Token:    token,
	})
}

func (api *teacherApi) subjects(ctx echo.Context) error {
	username := ctx.QueryParam("username")
	if username == "" {
		return core.NewValidationError(errors.New("Missing username"))
	}

	subjects, err := api.svc.Subjects(username)
	if err != nil {
		return errors.Wrap(err, "querying teacher subjects")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"subjects": subjects,
	})
}
