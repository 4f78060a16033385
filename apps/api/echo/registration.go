package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/registration"
)

type registrationApi struct {
	svc      *registration.Service
	validate *validator.Validate
}

func registerRegistrationAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := registrationApi{svc: deps.RegistrationSvc, validate: deps.Validate}

	g := v1.Group("/registrations", authed)
	g.GET("", api.query, teacherOrAdmin)
	g.GET("/students/unregistered", api.unregistered, teacherOrAdmin)
	g.POST("", api.create, adminOnly)
	g.DELETE("/:student_id/:school_year_id", api.destroy, adminOnly)
}

func (api *registrationApi) query(ctx echo.Context) error {
	b := newIntBinder(ctx)
	f := registration.Filter{SchoolYearID: b.Query("school_year_id"), GradeID: b.Query("grade_id")}
	if err := b.Err(); err != nil {
		return err
	}
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}

	items, total, found, err := api.svc.List(ctx.Request().Context(), f, q)
	if err != nil {
		return errors.Wrap(err, "listing registrations")
	}
	if !found {
		return list(ctx, []registration.Item{}, q, 0)
	}
	return list(ctx, items, q, total)
}

func (api *registrationApi) unregistered(ctx echo.Context) error {
	refs, err := api.svc.Unregistered(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing unregistered students")
	}
	return list(ctx, refs, core.PageQuery{}, len(refs))
}

func (api *registrationApi) create(ctx echo.Context) error {
	in, err := bindInput[registration.Input](ctx, api.validate)
	if err != nil {
		return err
	}
	item, err := api.svc.Create(ctx.Request().Context(), in)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *registrationApi) destroy(ctx echo.Context) error {
	b := newIntBinder(ctx)
	studentID := b.Param("student_id")
	schoolYearID := b.Param("school_year_id")
	if err := b.Err(); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), studentID, schoolYearID); err != nil {
		return errors.Wrap(err, "deleting registration")
	}
	return ctx.NoContent(http.StatusNoContent)
}
