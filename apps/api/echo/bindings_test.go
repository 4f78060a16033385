package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/core"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "error = %v", err)
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func Test_bindPageQuery(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    core.PageQuery
		wantErr map[string]string
	}{
		{name: "none", target: "/", want: core.PageQuery{}},
		{name: "paginated", target: "/?page=2&limit=10&search=ab", want: core.PageQuery{Page: 2, Limit: 10, Search: "ab"}},
		{name: "page alone lists everything", target: "/?page=2", want: core.PageQuery{}},
		{name: "zero page", target: "/?page=0&limit=10", wantErr: map[string]string{"page": "page must be 1 or greater"}},
		{name: "limit too high", target: "/?page=1&limit=51", wantErr: map[string]string{"limit": "limit must be between 1 and 50"}},
		{
			name:    "not integers",
			target:  "/?page=x&limit=y",
			wantErr: map[string]string{"page": mustBeInt, "limit": mustBeInt},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newContext(tt.target)
			got, err := bindPageQuery(ctx)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, fieldErrors(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_intBinder(t *testing.T) {
	e := echo.New()
	var (
		b      *intBinder
		values []int
	)
	e.GET("/students/:student_id", func(ctx echo.Context) error {
		b = newIntBinder(ctx)
		values = []int{
			b.Param("student_id"),
			b.Param("subject_id"),
			b.RequiredQuery("grade_id"),
			b.Query("semester"),
			b.Query("month"),
			b.RequiredQuery("school_year_id"),
		}
		return nil
	})
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/7?grade_id=3&month=x", nil))

	require.NotNil(t, b)
	assert.Equal(t, []int{7, 0, 3, 0, 0, 0}, values)
	assert.Equal(t, map[string]string{
		"subject_id":     "this field is required",
		"month":          mustBeInt,
		"school_year_id": "this field is required",
	}, fieldErrors(t, b.Err()))

	ctx, _ := newContext("/")
	assert.NoError(t, newIntBinder(ctx).Err())
}

func Test_queryBool(t *testing.T) {
	ctx, _ := newContext("/?assigned=false&bad=maybe")

	got, err := queryBool(ctx, "assigned", true)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = queryBool(ctx, "missing", true)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = queryBool(ctx, "bad", true)
	assert.Equal(t, map[string]string{"bad": mustBeBool}, fieldErrors(t, err))
}

func Test_list(t *testing.T) {
	ctx, rec := newContext("/")
	require.NoError(t, list[int](ctx, nil, core.PageQuery{}, 0))
	assert.JSONEq(t, `[]`, rec.Body.String())

	ctx, rec = newContext("/")
	require.NoError(t, list(ctx, []int{3}, core.PageQuery{Page: 2, Limit: 1}, 3))
	assert.JSONEq(t, `{"data":[3],"pagination":{"current_page":2,"per_page":1,"total_records":3,"total_pages":3}}`, rec.Body.String())
}
