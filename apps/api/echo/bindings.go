package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/madrasa/core"
)

const (
	mustBeInt  = "must be an integer"
	mustBeBool = "must be a boolean"
)

// bindPageQuery reads the `page`, `limit` & `search` query params.
// Leaving out page or limit lists everything.
func bindPageQuery(ctx echo.Context) (core.PageQuery, error) {
	q := core.PageQuery{Search: ctx.QueryParam("search")}

	var flds []core.FieldError
	if v := ctx.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		switch {
		case err != nil:
			flds = append(flds, core.FieldError{Field: "page", Error: mustBeInt})
		case page < 1:
			flds = append(flds, core.FieldError{Field: "page", Error: "page must be 1 or greater"})
		}
		q.Page = page
	}
	if v := ctx.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		switch {
		case err != nil:
			flds = append(flds, core.FieldError{Field: "limit", Error: mustBeInt})
		case limit < 1 || limit > core.MaxPageLimit:
			flds = append(flds, core.FieldError{
				Field: "limit",
				Error: "limit must be between 1 and " + strconv.Itoa(core.MaxPageLimit),
			})
		}
		q.Limit = limit
	}
	if len(flds) > 0 {
		return core.PageQuery{}, core.NewValidationError(nil, flds...)
	}
	if !q.IsPaginated() {
		q.Page, q.Limit = 0, 0
	}
	return q, nil
}

// intBinder collects the integer params of a request along with their errors.
type intBinder struct {
	ctx  echo.Context
	flds []core.FieldError
}

func newIntBinder(ctx echo.Context) *intBinder {
	return &intBinder{ctx: ctx}
}

func (b *intBinder) parse(name, v string, required bool) int {
	if v == "" {
		if required {
			b.flds = append(b.flds, core.FieldError{Field: name, Error: "this field is required"})
		}
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		b.flds = append(b.flds, core.FieldError{Field: name, Error: mustBeInt})
	}
	return n
}

// Param reads a path param.
func (b *intBinder) Param(name string) int {
	return b.parse(name, b.ctx.Param(name), true)
}

// Query reads an optional query param, 0 when absent.
func (b *intBinder) Query(name string) int {
	return b.parse(name, b.ctx.QueryParam(name), false)
}

func (b *intBinder) RequiredQuery(name string) int {
	return b.parse(name, b.ctx.QueryParam(name), true)
}

func (b *intBinder) Err() error {
	if len(b.flds) > 0 {
		return core.NewValidationError(nil, b.flds...)
	}
	return nil
}

// paramID reads the `id` path param.
func paramID(ctx echo.Context) (int, error) {
	b := newIntBinder(ctx)
	id := b.Param("id")
	return id, b.Err()
}

// queryBool reads an optional boolean query param.
func queryBool(ctx echo.Context, name string, def bool) (bool, error) {
	v := ctx.QueryParam(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, core.NewValidationError(nil, core.FieldError{Field: name, Error: mustBeBool})
	}
	return b, nil
}

// list responds with a Page of items when q is paginated, with the items themselves otherwise.
func list[T any](ctx echo.Context, items []T, q core.PageQuery, total int) error {
	if q.IsPaginated() {
		return ctx.JSON(http.StatusOK, core.NewPage(items, q, total))
	}
	if items == nil {
		items = []T{}
	}
	return ctx.JSON(http.StatusOK, items)
}

type SuccessResponse struct {
	Success string `json:"success"`
}
