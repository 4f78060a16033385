package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/schoolyear"
)

type schoolYearApi struct {
	*resourceApi[schoolyear.SchoolYear, schoolyear.Input, *schoolyear.Input]
	svc *schoolyear.Service
}

func registerSchoolYearAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := schoolYearApi{
		resourceApi: newResourceApi[schoolyear.SchoolYear, schoolyear.Input]("school year", deps.SchoolYearSvc, deps.Validate),
		svc:         deps.SchoolYearSvc,
	}

	g := v1.Group("/school-years", authed)
	g.GET("/current", api.current)
	g.PUT("/:id/activate", api.activate, adminOnly)
	api.register(g, nil, mw(adminOnly))
}

func (api *schoolYearApi) current(ctx echo.Context) error {
	sy, err := api.svc.Current(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting current school year")
	}
	return ctx.JSON(http.StatusOK, sy)
}

func (api *schoolYearApi) activate(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	sy, err := api.svc.Activate(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "activating school year")
	}
	return ctx.JSON(http.StatusOK, sy)
}
