package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/madrasa/core/subject"
)

func registerSubjectAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := newResourceApi[subject.Subject, subject.Input]("subject", deps.SubjectSvc, deps.Validate)
	api.register(v1.Group("/subjects", authed), nil, mw(adminOnly))
}
