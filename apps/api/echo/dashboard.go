package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/dashboard"
)

func registerDashboardAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	v1.GET("/dashboard", dashboardHandler(deps.DashboardSvc), authed)
}

func dashboardHandler(svc *dashboard.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		stats, err := svc.Stats(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "computing dashboard stats")
		}
		return ctx.JSON(http.StatusOK, stats)
	}
}
