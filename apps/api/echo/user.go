package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(v1 *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{svc: deps.UserSvc, validate: deps.Validate}

	g := v1.Group("/users", authed)
	g.GET("/me", api.me)
	g.PUT("/me", api.changePassword)

	ag := g.Group("", adminOnly)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

// query lists the teachers.
func (api *userApi) query(ctx echo.Context) error {
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	users, total, err := api.svc.List(ctx.Request().Context(), user.RoleTeacher, q)
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	return list(ctx, users, q, total)
}

// create creates a teacher.
func (api *userApi) create(ctx echo.Context) error {
	data, err := bindInput[user.NewUser](ctx, api.validate)
	if err != nil {
		return err
	}
	usr, err := api.svc.Create(ctx.Request().Context(), user.RoleTeacher, data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data user.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = data.Validate(api.validate, usr); err != nil {
		return err
	}
	if usr, err = api.svc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	data, err := bindInput[user.UpdateUser](ctx, api.validate)
	if err != nil {
		return err
	}
	usr, err := api.svc.Update(ctx.Request().Context(), id, "" /* any role */, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// destroy deletes a teacher.
func (api *userApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteTeacher(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}
