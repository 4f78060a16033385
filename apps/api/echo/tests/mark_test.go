package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/core/assignment"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/mark"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/subject"
	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/tests"
)

// school holds an active school year where e.student is registered in grd and e.teacher teaches sub in it.
type school struct {
	sy  schoolyear.SchoolYear
	grd grade.Grade
	sub subject.Subject
}

func setupSchool(t *testing.T, e *env) school {
	t.Helper()
	lvl := testutil.CreateLevel(t, e.svcs, "Primary")
	grd := testutil.CreateGrade(t, e.svcs, "Grade 3", 3, lvl.ID)
	sub := testutil.CreateSubject(t, e.svcs, "Mathematics")
	testutil.AssignSubject(t, e.svcs, grd.ID, sub.ID)
	sy := testutil.CreateSchoolYear(t, e.svcs, 2024, true)
	testutil.Register(t, e.svcs, e.student.ID, grd.ID)
	_, err := e.svcs.Assignment.Assign(context.Background(), assignment.Input{
		TeacherID: e.teacher.ID,
		GradeID:   grd.ID,
		SubjectID: sub.ID,
	})
	require.NoError(t, err)
	return school{sy: sy, grd: grd, sub: sub}
}

func markBody(s school, studentID, month, written, oral, homeworks, attendance int) []byte {
	return []byte(fmt.Sprintf(
		`{"student_id":%d,"grade_id":%d,"subject_id":%d,"semester":1,"month":%d,`+
			`"written_test":%d,"oral_test":%d,"homeworks":%d,"attendance":%d}`,
		studentID, s.grd.ID, s.sub.ID, month, written, oral, homeworks, attendance))
}

func TestMarkApi_permissions(t *testing.T) {
	e := setup(t)
	s := setupSchool(t, e)
	other := testutil.CreateUser(t, e.svcs, user.RoleTeacher, "other", e.nat.ID)
	listPath := fmt.Sprintf("/v1/marks?grade_id=%d&subject_id=%d&page=1&limit=10", s.grd.ID, s.sub.ID)

	e.run(t, []httpTest{
		{
			name:     "admin forbidden",
			path:     listPath,
			token:    e.token(t, e.admin),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errPermissionDenied),
		},
		{
			name:     "teacher not assigned",
			path:     listPath,
			token:    e.token(t, other),
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "teacher is not authorized to access these marks"}),
		},
		{
			name:     "teacher not assigned cannot submit",
			method:   http.MethodPost,
			path:     "/v1/marks",
			token:    e.token(t, other),
			body:     markBody(s, e.student.ID, 9, 1, 1, 1, 1),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "pagination required",
			path:     fmt.Sprintf("/v1/marks?grade_id=%d&subject_id=%d", s.grd.ID, s.sub.ID),
			token:    e.token(t, e.teacher),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "page and limit are required"}),
		},
		{
			name:     "filters required",
			path:     "/v1/marks?page=1&limit=10",
			token:    e.token(t, e.teacher),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"grade_id":"this field is required","subject_id":"this field is required"}`),
		},
		{
			name:     "invalid key",
			path:     fmt.Sprintf("/v1/marks/%d/13/3/%d/%d", e.student.ID, s.sub.ID, s.grd.ID),
			token:    e.token(t, e.teacher),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"month":"month must be a month number between 1 and 12","semester":"semester must be 1 or 2"}`),
		},
	})
}

func TestMarkApi_monthlyAndFinal(t *testing.T) {
	e := setup(t)
	s := setupSchool(t, e)
	testutil.CreateGradingScale(t, e.svcs, "Good", 70, 100)
	testutil.CreateGradingScale(t, e.svcs, "Poor", 0, 69.99)
	token := e.token(t, e.teacher)

	rec := e.do(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/marks",
		token:    token,
		body:     markBody(s, e.student.ID, 9, 8, 5, 4, 3),
		wantCode: http.StatusCreated,
	})
	var report mark.Report
	unmarshal(t, rec, &report)
	assert.Equal(t, e.student.FullName(), report.StudentName)
	assert.Equal(t, "Grade 3 Primary", report.GradeName)
	assert.Equal(t, "Mathematics", report.SubjectName)
	assert.Equal(t, float64(20), report.Total)
	assert.Equal(t, float64(4), report.MonthlyOutcome)
	assert.Equal(t, "Poor", report.Grading.String)

	e.run(t, []httpTest{
		{
			name:     "already submitted",
			method:   http.MethodPost,
			path:     "/v1/marks",
			token:    token,
			body:     markBody(s, e.student.ID, 9, 8, 5, 4, 3),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "these marks have already been submitted"}),
		},
		{
			name:     "student not registered in grade",
			method:   http.MethodPost,
			path:     "/v1/marks",
			token:    token,
			body:     markBody(s, e.admin.ID, 9, 8, 5, 4, 3),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "student is not registered in this grade"}),
		},
		{
			name:     "next month",
			method:   http.MethodPost,
			path:     "/v1/marks",
			token:    token,
			body:     markBody(s, e.student.ID, 10, 10, 5, 5, 4),
			wantCode: http.StatusCreated,
		},
	})

	monthPath := fmt.Sprintf("/v1/marks/%d/10/1/%d/%d", e.student.ID, s.sub.ID, s.grd.ID)
	rec = e.do(t, httpTest{
		method: http.MethodPut,
		path:   monthPath,
		token:  token,
		body:   []byte(`{"written_test":10,"oral_test":5,"homeworks":5,"attendance":5}`),
	})
	unmarshal(t, rec, &report)
	assert.Equal(t, float64(25), report.Total)
	assert.Equal(t, float64(5), report.MonthlyOutcome)

	rec = e.do(t, httpTest{
		path:  fmt.Sprintf("/v1/marks?grade_id=%d&subject_id=%d&semester=1&page=1&limit=10", s.grd.ID, s.sub.ID),
		token: token,
	})
	var page struct {
		Data []mark.Report `json:"data"`
	}
	unmarshal(t, rec, &page)
	require.Len(t, page.Data, 2)
	assert.Equal(t, 9, page.Data[0].Month)
	assert.Equal(t, 10, page.Data[1].Month)

	finalBody := []byte(fmt.Sprintf(`{"student_id":%d,"subject_id":%d,"grade_id":%d,"semester":1,"exam":40}`,
		e.student.ID, s.sub.ID, s.grd.ID))
	rec = e.do(t, httpTest{method: http.MethodPost, path: "/v1/marks/final", token: token, body: finalBody, wantCode: http.StatusCreated})
	var final mark.FinalReport
	unmarshal(t, rec, &final)
	assert.Equal(t, 44.5, final.FinalOutcome)
	assert.Equal(t, s.grd.ID, final.GradeID)
	assert.Equal(t, "Poor", final.Grading.String)

	finalPath := fmt.Sprintf("/v1/marks/final/%d/1/%d/%d", e.student.ID, s.sub.ID, s.grd.ID)
	rec = e.do(t, httpTest{method: http.MethodPut, path: finalPath, token: token, body: []byte(`{"exam":70}`)})
	unmarshal(t, rec, &final)
	assert.Equal(t, 74.5, final.FinalOutcome)
	assert.Equal(t, "Good", final.Grading.String)

	e.run(t, []httpTest{
		{
			name:     "final mark depends on monthly marks",
			method:   http.MethodDelete,
			path:     monthPath,
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there is a final mark depending on these marks"}),
		},
		{name: "delete final", method: http.MethodDelete, path: finalPath, token: token, wantCode: http.StatusNoContent},
		{name: "final gone", path: finalPath, token: token, wantCode: http.StatusNotFound},
		{name: "delete monthly", method: http.MethodDelete, path: monthPath, token: token, wantCode: http.StatusNoContent},
	})
}

func TestStudentApi_marks(t *testing.T) {
	e := setup(t)
	s := setupSchool(t, e)
	e.do(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/marks",
		token:    e.token(t, e.teacher),
		body:     markBody(s, e.student.ID, 9, 8, 5, 4, 3),
		wantCode: http.StatusCreated,
	})

	path := fmt.Sprintf("/v1/students/marks/%d/%d", s.sub.ID, s.sy.ID)
	e.do(t, httpTest{path: path, token: e.token(t, e.teacher), wantCode: http.StatusForbidden})

	rec := e.do(t, httpTest{path: path, token: e.token(t, e.student)})
	var got mark.StudentMarks
	unmarshal(t, rec, &got)
	require.Len(t, got.MonthlyMarks, 1)
	assert.Equal(t, 9, got.MonthlyMarks[0].Month)
	assert.Empty(t, got.FinalMarks)

	rec = e.do(t, httpTest{path: path + "?month=10", token: e.token(t, e.student)})
	unmarshal(t, rec, &got)
	assert.Empty(t, got.MonthlyMarks)
}

func TestMarkApi_finalMarkDependents(t *testing.T) {
	e := setup(t)
	s := setupSchool(t, e)
	adminToken := e.token(t, e.admin)
	token := e.token(t, e.teacher)

	e.do(t, httpTest{
		method: http.MethodPost,
		path:   "/v1/marks/final",
		token:  token,
		body: []byte(fmt.Sprintf(`{"student_id":%d,"subject_id":%d,"grade_id":%d,"semester":1,"exam":40}`,
			e.student.ID, s.sub.ID, s.grd.ID)),
		wantCode: http.StatusCreated,
	})

	e.run(t, []httpTest{
		{
			name:     "registration has a final mark",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/registrations/%d/%d", e.student.ID, s.sy.ID),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there is data depending on this registration"}),
		},
		{
			name:     "assignment has a final mark",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/teachers/assign/%d/%d", s.grd.ID, s.sub.ID),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there are marks depending on this assignment"}),
		},
		{
			name:     "student is registered",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/students/%d", e.student.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there is data depending on this student"}),
		},
	})

	rec := e.do(t, httpTest{
		path:  fmt.Sprintf("/v1/marks/final?grade_id=%d&subject_id=%d&page=1&limit=10", s.grd.ID, s.sub.ID),
		token: token,
	})
	var page struct {
		Data       []mark.FinalReport `json:"data"`
		Pagination struct {
			TotalRecords int `json:"total_records"`
		} `json:"pagination"`
	}
	unmarshal(t, rec, &page)
	assert.Equal(t, 1, page.Pagination.TotalRecords)
	require.Len(t, page.Data, 1)
	assert.Equal(t, e.student.ID, page.Data[0].StudentID)
}

func TestMarkApi_monthlyGrading(t *testing.T) {
	e := setup(t)
	s := setupSchool(t, e)
	testutil.CreateGradingScale(t, e.svcs, "Good", 70, 100)
	testutil.CreateGradingScale(t, e.svcs, "Poor", 0, 69.99)

	rec := e.do(t, httpTest{
		method:   http.MethodPost,
		path:     "/v1/marks",
		token:    e.token(t, e.teacher),
		body:     markBody(s, e.student.ID, 9, 25, 25, 15, 15),
		wantCode: http.StatusCreated,
	})
	var report mark.Report
	unmarshal(t, rec, &report)
	assert.Equal(t, float64(80), report.Total)
	assert.Equal(t, float64(16), report.MonthlyOutcome)
	assert.Equal(t, "Good", report.Grading.String) // from the total, the outcome is out of 20
}
