package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/mark"
	"github.com/trezcool/madrasa/core/registration"
	"github.com/trezcool/madrasa/core/user"
)

type studentApi struct {
	svc      *user.Service
	regSvc   *registration.Service
	markSvc  *mark.Service
	validate *validator.Validate
}

func registerStudentAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:      deps.UserSvc,
		regSvc:   deps.RegistrationSvc,
		markSvc:  deps.MarkSvc,
		validate: deps.Validate,
	}

	g := v1.Group("/students", authed)

	// the student's own data
	g.GET("/marks/:subject_id/:school_year_id", api.marks, studentOnly)
	g.GET("/registrations", api.registrations, studentOnly)
	g.GET("/subjects", api.subjects, studentOnly)

	ag := g.Group("", adminOnly)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	users, total, err := api.svc.List(ctx.Request().Context(), user.RoleStudent, q)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return list(ctx, users, q, total)
}

func (api *studentApi) create(ctx echo.Context) error {
	data, err := bindInput[user.NewUser](ctx, api.validate)
	if err != nil {
		return err
	}
	usr, err := api.svc.Create(ctx.Request().Context(), user.RoleStudent, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	data, err := bindInput[user.UpdateUser](ctx, api.validate)
	if err != nil {
		return err
	}
	usr, err := api.svc.Update(ctx.Request().Context(), id, user.RoleStudent, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) marks(ctx echo.Context) error {
	std, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	b := newIntBinder(ctx)
	subjectID := b.Param("subject_id")
	schoolYearID := b.Param("school_year_id")
	month := b.Query("month")
	semester := b.Query("semester")
	if err = b.Err(); err != nil {
		return err
	}

	marks, err := api.markSvc.StudentMarks(ctx.Request().Context(), std.ID, subjectID, schoolYearID, month, semester)
	if err != nil {
		return errors.Wrap(err, "getting student marks")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *studentApi) registrations(ctx echo.Context) error {
	std, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	items, err := api.regSvc.ListByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "listing student registrations")
	}
	if items == nil {
		items = []registration.StudentItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *studentApi) subjects(ctx echo.Context) error {
	std, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	b := newIntBinder(ctx)
	schoolYearID := b.Query("school_year_id")
	if err = b.Err(); err != nil {
		return err
	}
	subjects, err := api.regSvc.StudentSubjects(ctx.Request().Context(), std.ID, schoolYearID)
	if err != nil {
		return errors.Wrap(err, "listing student subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}
