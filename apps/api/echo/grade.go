package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/assignment"
	"github.com/trezcool/madrasa/core/grade"
)

type gradeApi struct {
	*resourceApi[grade.Grade, grade.Input, *grade.Input]
	asgSvc *assignment.Service
}

func registerGradeAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := gradeApi{
		resourceApi: newResourceApi[grade.Grade, grade.Input]("grade", deps.GradeSvc, deps.Validate),
		asgSvc:      deps.AssignmentSvc,
	}

	g := v1.Group("/grades", authed)
	g.GET("/teacher", api.teacherGrades, teacherOrAdmin)
	api.register(g, nil, mw(adminOnly))
}

// teacherGrades lists the grades a teacher teaches in during the current school year.
func (api *gradeApi) teacherGrades(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	b := newIntBinder(ctx)
	teacherID := b.Query("teacher_id")
	if err = b.Err(); err != nil {
		return err
	}
	grades, err := api.asgSvc.TeacherGrades(ctx.Request().Context(), usr, teacherID)
	if err != nil {
		return errors.Wrap(err, "listing teacher grades")
	}
	if grades == nil {
		grades = []assignment.GradeRef{}
	}
	return ctx.JSON(http.StatusOK, grades)
}
