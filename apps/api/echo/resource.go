package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

// validatable is satisfied by pointers to request inputs.
type validatable[In any] interface {
	*In
	Validate(validate *validator.Validate) error
}

// bindInput binds the request body to an In then validates it.
func bindInput[In any, PIn validatable[In]](ctx echo.Context, validate *validator.Validate) (In, error) {
	var in In
	if err := ctx.Bind(&in); err != nil {
		return in, errors.Wrapf(err, "binding to %T", in)
	}
	if err := PIn(&in).Validate(validate); err != nil {
		return in, err
	}
	return in, nil
}

type resourceService[T, In any] interface {
	Get(ctx context.Context, id int) (T, error)
	List(ctx context.Context, q core.PageQuery) ([]T, int, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int, in In) (T, error)
	Delete(ctx context.Context, id int) error
}

// resourceApi serves the CRUD endpoints of the resources identified by an integer `id`.
type resourceApi[T, In any, PIn validatable[In]] struct {
	name     string
	svc      resourceService[T, In]
	validate *validator.Validate
}

func newResourceApi[T, In any, PIn validatable[In]](
	name string,
	svc resourceService[T, In],
	validate *validator.Validate,
) *resourceApi[T, In, PIn] {
	return &resourceApi[T, In, PIn]{name: name, svc: svc, validate: validate}
}

// register routes the resource endpoints, reads going through readMw and writes through writeMw.
func (api *resourceApi[T, In, PIn]) register(g *echo.Group, readMw, writeMw []echo.MiddlewareFunc) {
	g.GET("", api.query, readMw...)
	g.GET("/:id", api.retrieve, readMw...)
	g.POST("", api.create, writeMw...)
	g.PUT("/:id", api.update, writeMw...)
	g.DELETE("/:id", api.destroy, writeMw...)
}

func (api *resourceApi[T, In, PIn]) query(ctx echo.Context) error {
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	items, total, err := api.svc.List(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrapf(err, "listing %ss", api.name)
	}
	return list(ctx, items, q, total)
}

func (api *resourceApi[T, In, PIn]) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	obj, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrapf(err, "getting %s", api.name)
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *resourceApi[T, In, PIn]) create(ctx echo.Context) error {
	in, err := bindInput[In, PIn](ctx, api.validate)
	if err != nil {
		return err
	}
	obj, err := api.svc.Create(ctx.Request().Context(), in)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.name)
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (api *resourceApi[T, In, PIn]) update(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	in, err := bindInput[In, PIn](ctx, api.validate)
	if err != nil {
		return err
	}
	obj, err := api.svc.Update(ctx.Request().Context(), id, in)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.name)
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *resourceApi[T, In, PIn]) destroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrapf(err, "deleting %s", api.name)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func mw(m ...echo.MiddlewareFunc) []echo.MiddlewareFunc { return m }
