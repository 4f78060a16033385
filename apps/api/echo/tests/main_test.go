package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/madrasa/apps/api/echo"
	"github.com/trezcool/madrasa/apps/shared"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/user"
	logsvc "github.com/trezcool/madrasa/services/logger"
	"github.com/trezcool/madrasa/services/tokenstore"
	inmemdb "github.com/trezcool/madrasa/storage/database/inmem"
	"github.com/trezcool/madrasa/tests"
)

var (
	errMissingToken     = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken     = httpErr{Error: "could not validate credentials"}
	errPermissionDenied = httpErr{Error: "permission denied"}
)

// env is a server wired to fresh in-memory repositories, with one user of each role.
type env struct {
	app     *Server
	svcs    shared.Services
	nat     nationality.Nationality
	admin   user.User
	teacher user.User
	student user.User
}

func setup(t *testing.T) *env {
	t.Helper()
	conf := testutil.Config()
	logger := logsvc.NewRollbarLogger(io.Discard, "API", conf)
	logger.Enable(false)
	validate, translator := shared.NewValidator()

	svcs := shared.NewServices(shared.InMemRepositories(inmemdb.Open()))
	app := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		Tokens:          tokenstore.NewMemoryStore(),
		UserSvc:         svcs.User,
		NationalitySvc:  svcs.Nationality,
		LevelSvc:        svcs.Level,
		GradeSvc:        svcs.Grade,
		SubjectSvc:      svcs.Subject,
		GradingScaleSvc: svcs.GradingScale,
		SchoolYearSvc:   svcs.SchoolYear,
		RegistrationSvc: svcs.Registration,
		AssignmentSvc:   svcs.Assignment,
		MarkSvc:         svcs.Mark,
		DashboardSvc:    svcs.Dashboard,
	})

	e := &env{app: app, svcs: svcs}
	e.nat = testutil.CreateNationality(t, svcs, "Congolais", "Congolaise")
	e.admin = testutil.CreateUser(t, svcs, user.RoleAdmin, "admin", e.nat.ID, testutil.Names("Ada", "Admin"))
	e.teacher = testutil.CreateUser(t, svcs, user.RoleTeacher, "teacher", e.nat.ID, testutil.Names("Tom", "Teacher"))
	e.student = testutil.CreateUser(t, svcs, user.RoleStudent, "student", e.nat.ID, testutil.Names("Sam", "Student"))
	return e
}

func (e *env) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := e.app.IssueToken(usr)
	require.NoError(t, err)
	return token
}

// do serves tt and checks its response code, and body when tt.wantData is set.
func (e *env) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

func (e *env) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e.do(t, tt)
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err, "marshalObj()")
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	if objs == nil {
		objs = []interface{}{}
	}
	return marshalObj(t, objs)
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if assert.NoError(t, err, "jsonBytesEqual() failed to compare") {
		assert.True(t, ok, "data = %s; wantData %s", rec.Body.String(), string(tt.wantData))
	}
}
