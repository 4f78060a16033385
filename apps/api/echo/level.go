package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/madrasa/core/level"
)

func registerLevelAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := newResourceApi[level.Level, level.Input]("level", deps.LevelSvc, deps.Validate)
	api.register(v1.Group("/levels", authed), nil, mw(adminOnly))
}
