package tests

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/tests"
)

func newUserBody(uname string, natID int) []byte {
	return []byte(fmt.Sprintf(`{
		"first_name": " Grace ",
		"father_name": "Hopper",
		"gfather_name": "Murray",
		"last_name": "Brewster",
		"gender": false,
		"date_of_birth": "1990-12-09",
		"nationality_id": %d,
		"username": %q,
		"password": "Cobol-1959!"
	}`, natID, uname))
}

func TestUserApi_query(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)

	e.run(t, []httpTest{
		{
			name:     "teacher forbidden",
			path:     "/v1/users",
			token:    e.token(t, e.teacher),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errPermissionDenied),
		},
		{
			name:     "invalid page",
			path:     "/v1/users?page=one&limit=0",
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"page":"must be an integer","limit":"limit must be between 1 and 50"}`),
		},
	})

	t.Run("lists teachers", func(t *testing.T) {
		rec := e.do(t, httpTest{path: "/v1/users", token: adminToken})
		var got []user.User
		unmarshal(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, e.teacher.ID, got[0].ID)
	})

	t.Run("paginated", func(t *testing.T) {
		rec := e.do(t, httpTest{path: "/v1/users?page=2&limit=1", token: adminToken})
		var got struct {
			Data       []user.User            `json:"data"`
			Pagination map[string]interface{} `json:"pagination"`
		}
		unmarshal(t, rec, &got)
		assert.Empty(t, got.Data)
		assert.Equal(t, map[string]interface{}{
			"current_page":  float64(2),
			"per_page":      float64(1),
			"total_records": float64(1),
			"total_pages":   float64(1),
		}, got.Pagination)
	})
}

func TestUserApi_createTeacher(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)

	rec := e.do(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/users",
		token:    adminToken,
		body:     newUserBody("Grace", e.nat.ID),
		wantCode: http.StatusCreated,
	})
	var got map[string]interface{}
	unmarshal(t, rec, &got)
	assert.Equal(t, "grace", got["username"])
	assert.Equal(t, "t", got["role"])
	assert.Equal(t, "Grace Hopper Murray Brewster", got["full_name"])
	assert.Equal(t, "1990-12-09", got["date_of_birth"])

	e.run(t, []httpTest{
		{
			name:     "duplicate username",
			method:   http.MethodPost,
			path:     "/v1/users",
			token:    adminToken,
			body:     newUserBody("grace", e.nat.ID),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a user with this username already exists"}),
		},
		{
			name:     "unknown nationality",
			method:   http.MethodPost,
			path:     "/v1/users",
			token:    adminToken,
			body:     newUserBody("alan", 999),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "nationality not found"}),
		},
		{
			name:     "password too similar",
			method:   http.MethodPost,
			path:     "/v1/users",
			token:    adminToken,
			body:     []byte(`{"first_name":"A","father_name":"B","gfather_name":"C","last_name":"D","gender":true,"date_of_birth":"2001-02-03","nationality_id":` + strconv.Itoa(e.nat.ID) + `,"username":"kenthompson","password":"kenthompson1"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password":"password cannot be similar to user attributes"}`),
		},
		{
			name:     "missing date of birth",
			method:   http.MethodPost,
			path:     "/v1/users",
			token:    adminToken,
			body:     []byte(`{"first_name":"A","father_name":"B","gfather_name":"C","last_name":"D","gender":true,"nationality_id":` + strconv.Itoa(e.nat.ID) + `,"username":"dmr","password":"Unix-1969!"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date_of_birth":"this field is required"}`),
		},
	})
}

func TestUserApi_retrieveUpdateDestroy(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)
	stdPath := "/v1/users/" + strconv.Itoa(e.student.ID)
	tchrPath := "/v1/users/" + strconv.Itoa(e.teacher.ID)

	e.run(t, []httpTest{
		{
			name:     "unknown user",
			path:     "/v1/users/999",
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "user not found"}),
		},
		{
			name:     "invalid id",
			path:     "/v1/users/abc",
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"id":"must be an integer"}`),
		},
		{
			name:     "student is not a teacher",
			method:   http.MethodDelete,
			path:     stdPath,
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "teacher not found"}),
		},
	})

	t.Run("update student", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodPut, path: stdPath, token: adminToken, body: newUserBody("samuel", e.nat.ID)})
		var got user.User
		unmarshal(t, rec, &got)
		assert.Equal(t, "samuel", got.Username)
		assert.Equal(t, user.RoleStudent, got.Role)
		assert.False(t, got.Gender)
	})

	t.Run("delete teacher", func(t *testing.T) {
		e.do(t, httpTest{method: http.MethodDelete, path: tchrPath, token: adminToken, wantCode: http.StatusNoContent})
		e.do(t, httpTest{path: tchrPath, token: adminToken, wantCode: http.StatusNotFound})
	})
}

func TestUserApi_me(t *testing.T) {
	e := setup(t)
	token := e.token(t, e.teacher)

	rec := e.do(t, httpTest{path: "/v1/users/me", token: token})
	var got user.User
	unmarshal(t, rec, &got)
	assert.Equal(t, e.teacher.ID, got.ID)
	require.NotNil(t, got.Nationality)
	assert.Equal(t, e.nat.ID, got.Nationality.ID)

	e.run(t, []httpTest{
		{
			name:     "wrong old password",
			method:   http.MethodPut,
			path:     "/v1/users/me",
			token:    token,
			body:     []byte(`{"old_password":"nope","new_password":"Brand-new-42"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "old password does not match the current password"}),
		},
		{
			name:     "new password like the username",
			method:   http.MethodPut,
			path:     "/v1/users/me",
			token:    token,
			body:     []byte(`{"old_password":"` + testutil.Password + `","new_password":"teacher1"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"new_password":"password cannot be similar to user attributes"}`),
		},
		{
			name:   "change password",
			method: http.MethodPut,
			path:   "/v1/users/me",
			token:  token,
			body:   []byte(`{"old_password":"` + testutil.Password + `","new_password":"Brand-new-42"}`),
		},
	})

	e.do(t, httpTest{method: http.MethodPost, path: "/v1/login/access-token", body: loginBody("teacher", "Brand-new-42")})
}
