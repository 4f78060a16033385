package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/core/assignment"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/subject"
	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/tests"
)

func TestNationalityApi(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)
	body := []byte(`{"masculine_form":"Rwandais","feminine_form":"Rwandaise"}`)

	e.run(t, []httpTest{
		{
			name:     "public list",
			path:     "/v1/nationalities",
			wantData: marshalList(t, e.nat),
		},
		{
			name:     "public retrieve",
			path:     fmt.Sprintf("/v1/nationalities/%d", e.nat.ID),
			wantData: marshalObj(t, e.nat),
		},
		{
			name:     "create requires auth",
			method:   http.MethodPost,
			path:     "/v1/nationalities",
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "create requires admin",
			method:   http.MethodPost,
			path:     "/v1/nationalities",
			body:     body,
			token:    e.token(t, e.teacher),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errPermissionDenied),
		},
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/v1/nationalities",
			body:     body,
			token:    adminToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate",
			method:   http.MethodPost,
			path:     "/v1/nationalities",
			body:     body,
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a nationality with these forms already exists"}),
		},
		{
			name:     "referenced by users",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/nationalities/%d", e.nat.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there is data depending on this nationality"}),
		},
		{
			name:     "unknown",
			method:   http.MethodPut,
			path:     "/v1/nationalities/999",
			body:     body,
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "nationality not found"}),
		},
	})

	t.Run("search", func(t *testing.T) {
		rec := e.do(t, httpTest{path: "/v1/nationalities?search=rwand"})
		var got []nationality.Nationality
		unmarshal(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, "Rwandaise", got[0].FeminineForm)
	})
}

func TestLevelApi(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)
	lvl := testutil.CreateLevel(t, e.svcs, "Primary")
	testutil.CreateGrade(t, e.svcs, "Grade 1", 1, lvl.ID)

	e.run(t, []httpTest{
		{name: "requires auth", path: "/v1/levels", wantCode: http.StatusUnauthorized},
		{name: "student reads", path: "/v1/levels", token: e.token(t, e.student), wantData: marshalList(t, lvl)},
		{
			name:     "student cannot write",
			method:   http.MethodPost,
			path:     "/v1/levels",
			token:    e.token(t, e.student),
			body:     []byte(`{"name":"Secondary"}`),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "name required",
			method:   http.MethodPost,
			path:     "/v1/levels",
			token:    adminToken,
			body:     []byte(`{"name":""}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"this field is required"}`),
		},
		{
			name:     "duplicate",
			method:   http.MethodPost,
			path:     "/v1/levels",
			token:    adminToken,
			body:     []byte(`{"name":"Primary"}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a level with this name already exists"}),
		},
		{
			name:     "has grades",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/levels/%d", lvl.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there are grades in this level"}),
		},
	})
}

func TestGradingScaleApi(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)

	e.run(t, []httpTest{
		{name: "teacher forbidden", path: "/v1/grading-scales", token: e.token(t, e.teacher), wantCode: http.StatusForbidden},
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/v1/grading-scales",
			token:    adminToken,
			body:     []byte(`{"name":"Excellent","lowest_percentage":90,"highest_percentage":100}`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "out of range",
			method:   http.MethodPost,
			path:     "/v1/grading-scales",
			token:    adminToken,
			body:     []byte(`{"name":"Bogus","lowest_percentage":-1,"highest_percentage":101}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "same name",
			method:   http.MethodPost,
			path:     "/v1/grading-scales",
			token:    adminToken,
			body:     []byte(`{"name":"Excellent","lowest_percentage":80,"highest_percentage":89}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a grading scale with this name already exists"}),
		},
	})
}

func TestSubjectGradeApi(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)
	lvl := testutil.CreateLevel(t, e.svcs, "Primary")
	grd := testutil.CreateGrade(t, e.svcs, "Grade 1", 1, lvl.ID)
	math := testutil.CreateSubject(t, e.svcs, "Mathematics")
	art := testutil.CreateSubject(t, e.svcs, "Art")
	link := []byte(fmt.Sprintf(`{"grade_id":%d,"subject_id":%d}`, grd.ID, math.ID))

	rec := e.do(t, httpTest{method: http.MethodPost, path: "/v1/subject-grade", token: adminToken, body: link, wantCode: http.StatusCreated})
	var got grade.WithSubjects
	unmarshal(t, rec, &got)
	assert.Equal(t, grd.ID, got.ID)
	assert.Equal(t, []subject.Subject{math}, got.Subjects)

	e.run(t, []httpTest{
		{name: "teacher forbidden", path: "/v1/subject-grade", token: e.token(t, e.teacher), wantCode: http.StatusForbidden},
		{
			name:     "already assigned",
			method:   http.MethodPost,
			path:     "/v1/subject-grade",
			token:    adminToken,
			body:     link,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "this subject is already assigned to this grade"}),
		},
		{
			name:     "assigned subjects",
			path:     fmt.Sprintf("/v1/subject-grade/%d/subjects", grd.ID),
			token:    adminToken,
			wantData: marshalList(t, math),
		},
		{
			name:     "unassigned subjects",
			path:     fmt.Sprintf("/v1/subject-grade/%d/subjects?assigned=false", grd.ID),
			token:    adminToken,
			wantData: marshalList(t, art),
		},
		{
			name:     "invalid assigned flag",
			path:     fmt.Sprintf("/v1/subject-grade/%d/subjects?assigned=maybe", grd.ID),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"assigned":"must be a boolean"}`),
		},
		{
			name:     "subject in use",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/subjects/%d", math.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: this subject is assigned to grades"}),
		},
		{
			name:     "unassign",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/subject-grade/%d/%d", grd.ID, math.ID),
			token:    adminToken,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "unassign again",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/subject-grade/%d/%d", grd.ID, math.ID),
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "this subject is not assigned to this grade"}),
		},
	})
}

func TestTeacherApi(t *testing.T) {
	e := setup(t)
	s := setupSchool(t, e)
	adminToken := e.token(t, e.admin)
	tchrToken := e.token(t, e.teacher)

	e.run(t, []httpTest{
		{
			name:  "own subjects",
			path:  fmt.Sprintf("/v1/teachers/subjects?grade_id=%d", s.grd.ID),
			token: tchrToken,
			wantData: marshalList(t, assignment.TeacherSubject{
				ID:      e.teacher.ID,
				Name:    e.teacher.FirstName,
				Subject: assignment.Ref{ID: s.sub.ID, Name: s.sub.Name},
			}),
		},
		{
			name:     "grade required",
			path:     "/v1/teachers/subjects",
			token:    tchrToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"grade_id":"this field is required"}`),
		},
		{
			name:     "own grades",
			path:     "/v1/grades/teacher",
			token:    tchrToken,
			wantData: marshalList(t, assignment.GradeRef{ID: s.grd.ID, CompositeName: s.grd.CompositeName}),
		},
		{
			name:     "admin must name the teacher",
			path:     "/v1/grades/teacher",
			token:    adminToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: marshalObj(t, httpErr{Error: "teacher_id is required to list the grades of a teacher"}),
		},
		{
			name:     "admin names the teacher",
			path:     fmt.Sprintf("/v1/grades/teacher?teacher_id=%d", e.teacher.ID),
			token:    adminToken,
			wantData: marshalList(t, assignment.GradeRef{ID: s.grd.ID, CompositeName: s.grd.CompositeName}),
		},
		{
			name:     "already assigned",
			method:   http.MethodPost,
			path:     "/v1/teachers/assign",
			token:    adminToken,
			body:     []byte(fmt.Sprintf(`{"teacher_id":%d,"grade_id":%d,"subject_id":%d}`, e.teacher.ID, s.grd.ID, s.sub.ID)),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a teacher is already assigned to this subject in this grade"}),
		},
		{
			name:     "teacher is referenced",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/users/%d", e.teacher.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there is data depending on this teacher"}),
		},
		{
			name:     "unassign",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/teachers/assign/%d/%d", s.grd.ID, s.sub.ID),
			token:    adminToken,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "no assignments left",
			path:     "/v1/teachers/assignments",
			token:    adminToken,
			wantData: marshalList(t),
		},
	})
}

func TestStudentApi(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)
	lvl := testutil.CreateLevel(t, e.svcs, "Primary")
	grd := testutil.CreateGrade(t, e.svcs, "Grade 1", 1, lvl.ID)
	testutil.CreateSchoolYear(t, e.svcs, 2024, true)
	testutil.Register(t, e.svcs, e.student.ID, grd.ID)
	teacherPath := fmt.Sprintf("/v1/students/%d", e.teacher.ID)
	errStudentNotFound := httpErr{Error: "student not found"}

	rec := e.do(t, httpTest{method: http.MethodPost, path: "/v1/students", token: adminToken, body: newUserBody("grace", e.nat.ID), wantCode: http.StatusCreated})
	var created user.User
	unmarshal(t, rec, &created)
	assert.Equal(t, user.RoleStudent, created.Role)
	assert.Equal(t, "Grace Hopper Murray Brewster", created.FullName())
	createdPath := fmt.Sprintf("/v1/students/%d", created.ID)

	t.Run("list", func(t *testing.T) {
		rec := e.do(t, httpTest{path: "/v1/students", token: adminToken})
		var got []user.User
		unmarshal(t, rec, &got)
		require.Len(t, got, 2)
		for _, usr := range got {
			assert.Equal(t, user.RoleStudent, usr.Role)
		}
	})

	e.run(t, []httpTest{
		{name: "teacher forbidden", path: "/v1/students", token: e.token(t, e.teacher), wantCode: http.StatusForbidden},
		{
			name:     "duplicate username",
			method:   http.MethodPost,
			path:     "/v1/students",
			token:    adminToken,
			body:     newUserBody("grace", e.nat.ID),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a user with this username already exists"}),
		},
		{name: "retrieve a teacher", path: teacherPath, token: adminToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, errStudentNotFound)},
		{
			name:     "update a teacher",
			method:   http.MethodPut,
			path:     teacherPath,
			token:    adminToken,
			body:     newUserBody("hopper", e.nat.ID),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, errStudentNotFound),
		},
		{name: "delete a teacher", method: http.MethodDelete, path: teacherPath, token: adminToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, errStudentNotFound)},
		{
			name:     "registered student",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/students/%d", e.student.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "cannot delete: there is data depending on this student"}),
		},
		{name: "delete", method: http.MethodDelete, path: createdPath, token: adminToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: createdPath, token: adminToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, errStudentNotFound)},
	})
}

func TestGradeApi(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)
	primary := testutil.CreateLevel(t, e.svcs, "Primary")
	secondary := testutil.CreateLevel(t, e.svcs, "Secondary")
	withSubject := testutil.CreateGrade(t, e.svcs, "Grade 1", 1, primary.ID)
	testutil.AssignSubject(t, e.svcs, withSubject.ID, testutil.CreateSubject(t, e.svcs, "Mathematics").ID)
	withStudent := testutil.CreateGrade(t, e.svcs, "Grade 3", 3, primary.ID)
	testutil.CreateSchoolYear(t, e.svcs, 2024, true)
	testutil.Register(t, e.svcs, e.student.ID, withStudent.ID)
	gradeBody := func(name string, numeric, levelID int) []byte {
		return []byte(fmt.Sprintf(`{"name":%q,"numeric_value":%d,"level_id":%d}`, name, numeric, levelID))
	}
	errReferenced := httpErr{Error: "cannot delete: there is data depending on this grade"}

	rec := e.do(t, httpTest{method: http.MethodPost, path: "/v1/grades", token: adminToken, body: gradeBody(" Grade 2 ", 2, primary.ID), wantCode: http.StatusCreated})
	var created grade.Grade
	unmarshal(t, rec, &created)
	assert.Equal(t, "Grade 2", created.Name)
	assert.Equal(t, "Grade 2 Primary", created.CompositeName)
	createdPath := fmt.Sprintf("/v1/grades/%d", created.ID)

	e.run(t, []httpTest{
		{name: "student reads", path: createdPath, token: e.token(t, e.student)},
		{
			name:     "teacher cannot write",
			method:   http.MethodPost,
			path:     "/v1/grades",
			token:    e.token(t, e.teacher),
			body:     gradeBody("Grade 4", 4, primary.ID),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "numeric value required",
			method:   http.MethodPost,
			path:     "/v1/grades",
			token:    adminToken,
			body:     []byte(fmt.Sprintf(`{"name":"Grade 4","level_id":%d}`, primary.ID)),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"numeric_value":"this field is required"}`),
		},
		{
			name:     "unknown level",
			method:   http.MethodPost,
			path:     "/v1/grades",
			token:    adminToken,
			body:     gradeBody("Grade 4", 4, 999),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "level not found"}),
		},
		{
			name:     "duplicate in level",
			method:   http.MethodPost,
			path:     "/v1/grades",
			token:    adminToken,
			body:     gradeBody("Grade 2", 2, primary.ID),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a grade with this name already exists in this level"}),
		},
		{
			name:     "same name in another level",
			method:   http.MethodPost,
			path:     "/v1/grades",
			token:    adminToken,
			body:     gradeBody("Grade 2", 2, secondary.ID),
			wantCode: http.StatusCreated,
		},
		{
			name:     "rename to an existing grade",
			method:   http.MethodPut,
			path:     createdPath,
			token:    adminToken,
			body:     gradeBody("Grade 3", 3, primary.ID),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "a grade with this name already exists in this level"}),
		},
		{
			name:     "has subjects",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/grades/%d", withSubject.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, errReferenced),
		},
		{
			name:     "has registrations",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/grades/%d", withStudent.ID),
			token:    adminToken,
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, errReferenced),
		},
		{name: "delete", method: http.MethodDelete, path: createdPath, token: adminToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: createdPath, token: adminToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "grade not found"})},
	})
}

func TestSubjectApi(t *testing.T) {
	e := setup(t)
	adminToken := e.token(t, e.admin)

	rec := e.do(t, httpTest{method: http.MethodPost, path: "/v1/subjects", token: adminToken, body: []byte(`{"name":"Biology"}`), wantCode: http.StatusCreated})
	var created subject.Subject
	unmarshal(t, rec, &created)
	assert.True(t, created.AddToTotal)
	assert.Equal(t, subject.DefaultHigherScore, created.HigherScore)
	assert.Equal(t, subject.DefaultLowerScore, created.LowerScore)
	chemistry := testutil.CreateSubject(t, e.svcs, "Chemistry")
	errExists := httpErr{Error: "a subject with this name already exists"}
	errScores := []byte(`{"lower_score":"lower score must be less than higher score"}`)

	e.run(t, []httpTest{
		{
			name:     "student cannot write",
			method:   http.MethodPost,
			path:     "/v1/subjects",
			token:    e.token(t, e.student),
			body:     []byte(`{"name":"Physics"}`),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "duplicate",
			method:   http.MethodPost,
			path:     "/v1/subjects",
			token:    adminToken,
			body:     []byte(`{"name":" Biology "}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, errExists),
		},
		{
			name:     "rename to an existing subject",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/v1/subjects/%d", chemistry.ID),
			token:    adminToken,
			body:     []byte(`{"name":"Biology"}`),
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, errExists),
		},
		{
			name:     "equal scores",
			method:   http.MethodPost,
			path:     "/v1/subjects",
			token:    adminToken,
			body:     []byte(`{"name":"Physics","lower_score":60,"higher_score":60}`),
			wantCode: http.StatusBadRequest,
			wantData: errScores,
		},
		{
			name:     "lower score above the default higher score",
			method:   http.MethodPost,
			path:     "/v1/subjects",
			token:    adminToken,
			body:     []byte(`{"name":"Physics","lower_score":120}`),
			wantCode: http.StatusBadRequest,
			wantData: errScores,
		},
		{
			name:     "custom scores",
			method:   http.MethodPost,
			path:     "/v1/subjects",
			token:    adminToken,
			body:     []byte(`{"name":"Physics","add_to_total":false,"lower_score":10,"higher_score":20}`),
			wantCode: http.StatusCreated,
		},
		{name: "delete", method: http.MethodDelete, path: fmt.Sprintf("/v1/subjects/%d", chemistry.ID), token: adminToken, wantCode: http.StatusNoContent},
	})
}
