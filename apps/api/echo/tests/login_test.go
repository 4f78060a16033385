package tests

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/madrasa/apps/api/echo"
	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/tests"
)

func loginBody(uname, pwd string) []byte {
	return []byte(`{"username":"` + uname + `","password":"` + pwd + `"}`)
}

func TestLogin_accessToken(t *testing.T) {
	e := setup(t)
	testutil.CreateUser(t, e.svcs, user.RoleTeacher, "sleepy", e.nat.ID, testutil.Inactive())

	e.run(t, []httpTest{
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/v1/login/access-token",
			body:     loginBody("admin", "wrong-pass"),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "incorrect username or password"}),
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     "/v1/login/access-token",
			body:     loginBody("nobody", testutil.Password),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "incorrect username or password"}),
		},
		{
			name:     "inactive user",
			method:   http.MethodPost,
			path:     "/v1/login/access-token",
			body:     loginBody("sleepy", testutil.Password),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "inactive user"}),
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/v1/login/access-token",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username":"this field is required","password":"this field is required"}`),
		},
	})

	t.Run("json", func(t *testing.T) {
		rec := e.do(t, httpTest{
			method: http.MethodPost,
			path:   "/v1/login/access-token",
			body:   loginBody("  ADMIN ", testutil.Password),
		})
		var resp TokenResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, "bearer", resp.TokenType)
		require.NotEmpty(t, resp.AccessToken)

		e.do(t, httpTest{method: http.MethodPost, path: "/v1/login/test-token", token: resp.AccessToken})
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{"username": {"teacher"}, "password": {testutil.Password}}
		req := httptest.NewRequest(http.MethodPost, "/v1/login/access-token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp TokenResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.AccessToken)
	})
}

func TestLogin_testToken(t *testing.T) {
	e := setup(t)
	e.run(t, []httpTest{
		{
			name:     "missing token",
			method:   http.MethodPost,
			path:     "/v1/login/test-token",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "invalid token",
			method:   http.MethodPost,
			path:     "/v1/login/test-token",
			token:    "not.a.token",
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errInvalidToken),
		},
	})

	t.Run("valid token", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodPost, path: "/v1/login/test-token", token: e.token(t, e.student)})
		var got map[string]interface{}
		unmarshal(t, rec, &got)
		assert.Equal(t, "student", got["username"])
		assert.Equal(t, "s", got["role"])
		assert.NotContains(t, got, "password")
	})

	t.Run("inactive user", func(t *testing.T) {
		usr := testutil.CreateUser(t, e.svcs, user.RoleStudent, "gone", e.nat.ID, testutil.Inactive())
		e.do(t, httpTest{
			method:   http.MethodPost,
			path:     "/v1/login/test-token",
			token:    e.token(t, usr),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "inactive user"}),
		})
	})
}

func TestLogin_refreshAndLogout(t *testing.T) {
	e := setup(t)
	token := e.token(t, e.teacher)

	rec := e.do(t, httpTest{method: http.MethodPost, path: "/v1/login/refresh-token", token: token})
	var refreshed TokenResponse
	unmarshal(t, rec, &refreshed)
	require.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, token, refreshed.AccessToken)

	e.do(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/login/logout",
		token:    token,
		wantData: marshalObj(t, SuccessResponse{Success: "logged out"}),
	})
	e.do(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/login/test-token",
		token:    token,
		wantCode: http.StatusForbidden,
		wantData: marshalObj(t, errInvalidToken),
	})
	// the refreshed token is a distinct session token
	e.do(t, httpTest{method: http.MethodPost, path: "/v1/login/test-token", token: refreshed.AccessToken})
}
