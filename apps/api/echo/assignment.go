package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/assignment"
	"github.com/shulehub/backend/core/student"
)

type assignmentApi struct {
	svc      assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, deps ServerDeps) {
	api := assignmentApi{
		svc:      deps.AssignmentSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/assignments")
	ag.POST("/:subject", api.post)
	ag.GET("/:subject", api.bySubject)
	ag.GET("/:subject/submissions", api.submissions)
	ag.POST("/:subject/submit/:assignmentId", api.submit)

	// a student's feed across their subject set
	g.GET("/students/assignments", api.forStudent)
}

// Handlers

func (api *assignmentApi) post(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Post(ctx.Param("subject"), data)
	if err != nil {
		return errors.Wrap(err, "posting assignment")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "Assignment posted successfully!",
		"assignment": a,
	})
}

func (api *assignmentApi) bySubject(ctx echo.Context) error {
	assignments, err := api.svc.BySubject(ctx.Param("subject"))
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) submissions(ctx echo.Context) error {
	assignments, err := api.svc.BySubject(ctx.Param("subject"))
	if err != nil {
		return errors.Wrap(err, "querying assignment submissions")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) forStudent(ctx echo.Context) error {
	username := ctx.QueryParam("username")
	if username == "" {
		return core.NewValidationError(errors.New("Missing username"))
	}

	assignments, err := api.svc.ForStudent(username)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		}
		return errors.Wrap(err, "querying student assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	studentUsername := core.CleanString(ctx.FormValue("studentUsername"), true /* lower */)
	if studentUsername == "" {
		return core.NewValidationError(errors.New("Missing studentUsername"))
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("Missing file"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = file.Close() }()

	fileURL, err := api.svc.Submit(
		ctx.Param("subject"),
		ctx.Param("assignmentId"),
		studentUsername,
		fileHeader.Filename,
		file,
	)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Assignment submitted successfully!",
		"fileUrl": fileURL,
	})
}
