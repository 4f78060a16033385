package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/grade"
)

type subjectGradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
}

func registerSubjectGradeAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := subjectGradeApi{svc: deps.GradeSvc, validate: deps.Validate}

	g := v1.Group("/subject-grade", authed, adminOnly)
	g.GET("", api.query)
	g.POST("", api.assign)
	g.GET("/:grade_id", api.retrieve)
	g.GET("/:grade_id/subjects", api.subjects)
	g.DELETE("/:grade_id/:subject_id", api.unassign)
}

func (api *subjectGradeApi) query(ctx echo.Context) error {
	grades, err := api.svc.ListWithSubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing grades with subjects")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *subjectGradeApi) retrieve(ctx echo.Context) error {
	b := newIntBinder(ctx)
	gradeID := b.Param("grade_id")
	if err := b.Err(); err != nil {
		return err
	}
	grd, err := api.svc.GetWithSubjects(ctx.Request().Context(), gradeID, true)
	if err != nil {
		return errors.Wrap(err, "getting grade with subjects")
	}
	return ctx.JSON(http.StatusOK, grd)
}

// subjects lists the subjects assigned to the grade, or those not assigned to it when `assigned=false`.
func (api *subjectGradeApi) subjects(ctx echo.Context) error {
	b := newIntBinder(ctx)
	gradeID := b.Param("grade_id")
	if err := b.Err(); err != nil {
		return err
	}
	assigned, err := queryBool(ctx, "assigned", true)
	if err != nil {
		return err
	}
	grd, err := api.svc.GetWithSubjects(ctx.Request().Context(), gradeID, assigned)
	if err != nil {
		return errors.Wrap(err, "listing grade subjects")
	}
	return ctx.JSON(http.StatusOK, grd.Subjects)
}

func (api *subjectGradeApi) assign(ctx echo.Context) error {
	link, err := bindInput[grade.SubjectLink](ctx, api.validate)
	if err != nil {
		return err
	}
	grd, err := api.svc.AssignSubject(ctx.Request().Context(), link)
	if err != nil {
		return errors.Wrap(err, "assigning subject")
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *subjectGradeApi) unassign(ctx echo.Context) error {
	b := newIntBinder(ctx)
	link := grade.SubjectLink{GradeID: b.Param("grade_id"), SubjectID: b.Param("subject_id")}
	if err := b.Err(); err != nil {
		return err
	}
	if err := api.svc.UnassignSubject(ctx.Request().Context(), link); err != nil {
		return errors.Wrap(err, "unassigning subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
