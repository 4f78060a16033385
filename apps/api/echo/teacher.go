package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/assignment"
)

type teacherApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

func registerTeacherAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := teacherApi{svc: deps.AssignmentSvc, validate: deps.Validate}

	g := v1.Group("/teachers", authed)
	g.GET("/subjects", api.subjects, teacherOnly)
	g.GET("/assignments", api.assignments, adminOnly)
	g.POST("/assign", api.assign, adminOnly)
	g.DELETE("/assign/:grade_id/:subject_id", api.unassign, adminOnly)
}

func (api *teacherApi) assign(ctx echo.Context) error {
	in, err := bindInput[assignment.Input](ctx, api.validate)
	if err != nil {
		return err
	}
	asgmt, err := api.svc.Assign(ctx.Request().Context(), in)
	if err != nil {
		return errors.Wrap(err, "assigning teacher")
	}
	return ctx.JSON(http.StatusCreated, asgmt)
}

// subjects lists the subjects a teacher, the caller by default, teaches in a grade.
func (api *teacherApi) subjects(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	b := newIntBinder(ctx)
	gradeID := b.RequiredQuery("grade_id")
	teacherID := b.Query("teacher_id")
	if err = b.Err(); err != nil {
		return err
	}
	if teacherID == 0 {
		teacherID = usr.ID
	}

	subjects, err := api.svc.TeacherSubjects(ctx.Request().Context(), teacherID, gradeID)
	if err != nil {
		return errors.Wrap(err, "listing teacher subjects")
	}
	if subjects == nil {
		subjects = []assignment.TeacherSubject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *teacherApi) assignments(ctx echo.Context) error {
	b := newIntBinder(ctx)
	f := assignment.Filter{GradeID: b.Query("grade_id"), TeacherID: b.Query("teacher_id")}
	if err := b.Err(); err != nil {
		return err
	}
	items, err := api.svc.List(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	if items == nil {
		items = []assignment.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *teacherApi) unassign(ctx echo.Context) error {
	b := newIntBinder(ctx)
	gradeID := b.Param("grade_id")
	subjectID := b.Param("subject_id")
	if err := b.Err(); err != nil {
		return err
	}
	if err := api.svc.Unassign(ctx.Request().Context(), gradeID, subjectID); err != nil {
		return errors.Wrap(err, "unassigning teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}
