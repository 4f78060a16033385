package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func assignmentWhere(gradeID, subjectID, schoolYearID int) *where {
	return new(where).
		add("grade_id = ?", gradeID).
		add("subject_id = ?", subjectID).
		add("school_year_id = ?", schoolYearID)
}

func (repo *assignmentRepository) Get(ctx context.Context, gradeID, subjectID, schoolYearID int) (assignment.Assignment, error) {
	var asgmt assignment.Assignment
	w := assignmentWhere(gradeID, subjectID, schoolYearID)
	err := sqlx.GetContext(ctx, repo.db, &asgmt, "SELECT * FROM assigned_teachers"+w.String(), w.params()...)
	return asgmt, trapNoRowsErr(err, assignment.ErrNotFound)
}

func (repo *assignmentRepository) Exists(ctx context.Context, asgmt assignment.Assignment) (bool, error) {
	w := assignmentWhere(asgmt.GradeID, asgmt.SubjectID, asgmt.SchoolYearID).add("teacher_id = ?", asgmt.TeacherID)
	return exists(ctx, repo.db, "assigned_teachers", w)
}

func (repo *assignmentRepository) Create(ctx context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.db, `
		INSERT INTO assigned_teachers (teacher_id, grade_id, subject_id, school_year_id)
		VALUES (:teacher_id, :grade_id, :subject_id, :school_year_id)`, asgmt)
	if err != nil {
		return assignment.Assignment{}, trapUniqueErr(errors.Wrap(err, "inserting assignment"), assignment.ErrExists)
	}
	return asgmt, nil
}

func (repo *assignmentRepository) Delete(ctx context.Context, asgmt assignment.Assignment) error {
	w := assignmentWhere(asgmt.GradeID, asgmt.SubjectID, asgmt.SchoolYearID)
	res, err := repo.db.ExecContext(ctx, "DELETE FROM assigned_teachers"+w.String(), w.params()...)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo *assignmentRepository) HasMarks(ctx context.Context, asgmt assignment.Assignment) (bool, error) {
	found, err := exists(ctx, repo.db, "marks", assignmentWhere(asgmt.GradeID, asgmt.SubjectID, asgmt.SchoolYearID))
	if err != nil || found {
		return found, err
	}
	return exists(ctx, repo.db,
		"final_marks f JOIN registrations r ON r.student_id = f.student_id AND r.school_year_id = f.school_year_id",
		new(where).
			add("r.grade_id = ?", asgmt.GradeID).
			add("f.subject_id = ?", asgmt.SubjectID).
			add("f.school_year_id = ?", asgmt.SchoolYearID))
}

func (repo *assignmentRepository) List(ctx context.Context, f assignment.Filter) ([]assignment.Item, error) {
	w := new(where).
		add("a.school_year_id = ?", f.SchoolYearID).
		addIf("a.grade_id = ?", f.GradeID).
		addIf("a.teacher_id = ?", f.TeacherID)
	var items []assignment.Item
	err := sqlx.SelectContext(ctx, repo.db, &items, `
		SELECT u.id AS "teacher.id",
		       CONCAT_WS(' ', u.first_name, u.father_name, u.gfather_name, u.last_name) AS "teacher.full_name",
		       g.id AS "grade.id",
		       CONCAT_WS(' ', g.name, l.name) AS "grade.composite_name",
		       s.id AS "subject.id",
		       s.name AS "subject.name",
		       a.school_year_id
		FROM assigned_teachers a
		         JOIN users u ON u.id = a.teacher_id
		         JOIN grades g ON g.id = a.grade_id
		         JOIN levels l ON l.id = g.level_id
		         JOIN subjects s ON s.id = a.subject_id`+w.String()+`
		ORDER BY g.id, s.id`, w.params()...)
	if err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	return items, nil
}

func (repo *assignmentRepository) TeacherGrades(ctx context.Context, teacherID, schoolYearID int) ([]assignment.GradeRef, error) {
	var refs []assignment.GradeRef
	err := sqlx.SelectContext(ctx, repo.db, &refs, `
		SELECT DISTINCT g.id, CONCAT_WS(' ', g.name, l.name) AS composite_name
		FROM assigned_teachers a
		         JOIN grades g ON g.id = a.grade_id
		         JOIN levels l ON l.id = g.level_id
		WHERE a.teacher_id = $1 AND a.school_year_id = $2
		ORDER BY g.id`, teacherID, schoolYearID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting teacher grades")
	}
	return refs, nil
}

func (repo *assignmentRepository) TeacherSubjects(ctx context.Context, teacherID, gradeID, schoolYearID int) ([]assignment.TeacherSubject, error) {
	var subs []assignment.TeacherSubject
	err := sqlx.SelectContext(ctx, repo.db, &subs, `
		SELECT u.id, u.first_name AS name, s.id AS "subject.id", s.name AS "subject.name"
		FROM assigned_teachers a
		         JOIN users u ON u.id = a.teacher_id
		         JOIN subjects s ON s.id = a.subject_id
		WHERE a.teacher_id = $1 AND a.grade_id = $2 AND a.school_year_id = $3
		ORDER BY s.id`, teacherID, gradeID, schoolYearID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting teacher subjects")
	}
	return subs, nil
}
