package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/madrasa/core/nationality"
)

func registerNationalityAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := newResourceApi[nationality.Nationality, nationality.Input]("nationality", deps.NationalitySvc, deps.Validate)
	// reads are public: the sign up forms need them
	api.register(v1.Group("/nationalities"), nil, mw(authed, adminOnly))
}
