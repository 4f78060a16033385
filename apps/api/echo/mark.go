package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/mark"
)

const (
	markKeyPath      = "/:student_id/:month/:semester/:subject_id/:grade_id"
	finalMarkKeyPath = "/final/:student_id/:semester/:subject_id/:grade_id"
)

type markApi struct {
	svc      *mark.Service
	validate *validator.Validate
}

func registerMarkAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := markApi{svc: deps.MarkSvc, validate: deps.Validate}

	g := v1.Group("/marks", authed, teacherOnly)
	g.GET("", api.query)
	g.POST("", api.create)
	g.GET(markKeyPath, api.retrieve)
	g.PUT(markKeyPath, api.update)
	g.DELETE(markKeyPath, api.destroy)

	g.GET("/final", api.queryFinal)
	g.POST("/final", api.createFinal)
	g.GET(finalMarkKeyPath, api.retrieveFinal)
	g.PUT(finalMarkKeyPath, api.updateFinal)
	g.DELETE(finalMarkKeyPath, api.destroyFinal)
}

func (api *markApi) bindKey(ctx echo.Context) (mark.Key, error) {
	b := newIntBinder(ctx)
	key := mark.Key{
		StudentID: b.Param("student_id"),
		GradeID:   b.Param("grade_id"),
		SubjectID: b.Param("subject_id"),
		Semester:  b.Param("semester"),
		Month:     b.Param("month"),
	}
	if err := b.Err(); err != nil {
		return mark.Key{}, err
	}
	return key, key.Validate(api.validate)
}

// bindFinalKey also returns the grade the student is registered in.
func (api *markApi) bindFinalKey(ctx echo.Context) (mark.FinalKey, int, error) {
	b := newIntBinder(ctx)
	key := mark.FinalKey{
		StudentID: b.Param("student_id"),
		SubjectID: b.Param("subject_id"),
		Semester:  b.Param("semester"),
	}
	gradeID := b.Param("grade_id")
	if err := b.Err(); err != nil {
		return mark.FinalKey{}, 0, err
	}
	return key, gradeID, key.Validate(api.validate)
}

// Monthly marks

func (api *markApi) query(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	b := newIntBinder(ctx)
	f := mark.ReportFilter{
		GradeID:   b.RequiredQuery("grade_id"),
		SubjectID: b.RequiredQuery("subject_id"),
		Month:     b.Query("month"),
		Semester:  b.Query("semester"),
		StudentID: b.Query("student_id"),
	}
	if err = b.Err(); err != nil {
		return err
	}
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}

	reports, total, err := api.svc.List(ctx.Request().Context(), tchr, f, q)
	if err != nil {
		return errors.Wrap(err, "listing marks")
	}
	return list(ctx, reports, q, total)
}

func (api *markApi) retrieve(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}
	report, err := api.svc.Get(ctx.Request().Context(), tchr, key)
	if err != nil {
		return errors.Wrap(err, "getting marks")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *markApi) create(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	in, err := bindInput[mark.Input](ctx, api.validate)
	if err != nil {
		return err
	}
	report, err := api.svc.Create(ctx.Request().Context(), tchr, in)
	if err != nil {
		return errors.Wrap(err, "creating marks")
	}
	return ctx.JSON(http.StatusCreated, report)
}

func (api *markApi) update(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}
	scores, err := bindInput[mark.Scores](ctx, api.validate)
	if err != nil {
		return err
	}
	report, err := api.svc.Update(ctx.Request().Context(), tchr, key, scores)
	if err != nil {
		return errors.Wrap(err, "updating marks")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *markApi) destroy(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	key, err := api.bindKey(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), tchr, key); err != nil {
		return errors.Wrap(err, "deleting marks")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Final marks

func (api *markApi) queryFinal(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	b := newIntBinder(ctx)
	f := mark.FinalReportFilter{
		GradeID:   b.RequiredQuery("grade_id"),
		SubjectID: b.RequiredQuery("subject_id"),
		Semester:  b.Query("semester"),
		StudentID: b.Query("student_id"),
	}
	if err = b.Err(); err != nil {
		return err
	}
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}

	reports, total, err := api.svc.ListFinal(ctx.Request().Context(), tchr, f, q)
	if err != nil {
		return errors.Wrap(err, "listing final marks")
	}
	return list(ctx, reports, q, total)
}

func (api *markApi) retrieveFinal(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	key, gradeID, err := api.bindFinalKey(ctx)
	if err != nil {
		return err
	}
	report, err := api.svc.GetFinal(ctx.Request().Context(), tchr, key, gradeID)
	if err != nil {
		return errors.Wrap(err, "getting final marks")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *markApi) createFinal(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	in, err := bindInput[mark.FinalInput](ctx, api.validate)
	if err != nil {
		return err
	}
	report, err := api.svc.CreateFinal(ctx.Request().Context(), tchr, in)
	if err != nil {
		return errors.Wrap(err, "creating final marks")
	}
	return ctx.JSON(http.StatusCreated, report)
}

func (api *markApi) updateFinal(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	key, gradeID, err := api.bindFinalKey(ctx)
	if err != nil {
		return err
	}
	scores, err := bindInput[mark.FinalScores](ctx, api.validate)
	if err != nil {
		return err
	}
	report, err := api.svc.UpdateFinal(ctx.Request().Context(), tchr, key, gradeID, scores)
	if err != nil {
		return errors.Wrap(err, "updating final marks")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *markApi) destroyFinal(ctx echo.Context) error {
	tchr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	key, gradeID, err := api.bindFinalKey(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteFinal(ctx.Request().Context(), tchr, key, gradeID); err != nil {
		return errors.Wrap(err, "deleting final marks")
	}
	return ctx.NoContent(http.StatusNoContent)
}
