package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/madrasa/core/gradingscale"
)

func registerGradingScaleAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := newResourceApi[gradingscale.GradingScale, gradingscale.Input]("grading scale", deps.GradingScaleSvc, deps.Validate)
	api.register(v1.Group("/grading-scales", authed, adminOnly), nil, nil)
}
