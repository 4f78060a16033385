package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/mark"
)

type markRepository struct {
	db *sqlx.DB
}

var _ mark.Repository = (*markRepository)(nil)

func NewMarkRepository(db *sqlx.DB) *markRepository {
	return &markRepository{db: db}
}

func markWhere(key mark.Key) *where {
	return new(where).
		add("student_id = ?", key.StudentID).
		add("grade_id = ?", key.GradeID).
		add("subject_id = ?", key.SubjectID).
		add("school_year_id = ?", key.SchoolYearID).
		add("semester = ?", key.Semester).
		add("month = ?", key.Month)
}

func finalMarkWhere(key mark.FinalKey) *where {
	return new(where).
		add("student_id = ?", key.StudentID).
		add("subject_id = ?", key.SubjectID).
		add("school_year_id = ?", key.SchoolYearID).
		add("semester = ?", key.Semester)
}

func (repo *markRepository) Get(ctx context.Context, key mark.Key) (mark.Mark, error) {
	var m mark.Mark
	w := markWhere(key)
	err := sqlx.GetContext(ctx, repo.db, &m, "SELECT * FROM marks"+w.String(), w.params()...)
	return m, trapNoRowsErr(err, mark.ErrNotFound)
}

func (repo *markRepository) Create(ctx context.Context, m mark.Mark) (mark.Mark, error) {
	query, args, err := sqlx.Named(`
		INSERT INTO marks (student_id, grade_id, subject_id, school_year_id, semester, month,
		                   written_test, oral_test, homeworks, attendance, notes)
		VALUES (:student_id, :grade_id, :subject_id, :school_year_id, :semester, :month,
		        :written_test, :oral_test, :homeworks, :attendance, :notes)
		RETURNING *`, m)
	if err != nil {
		return mark.Mark{}, errors.Wrap(err, "binding marks")
	}
	var created mark.Mark
	if err = sqlx.GetContext(ctx, repo.db, &created, repo.db.Rebind(query), args...); err != nil {
		return mark.Mark{}, trapUniqueErr(errors.Wrap(err, "inserting marks"), mark.ErrExists)
	}
	return created, nil
}

const markKeyCond = `student_id = :student_id AND grade_id = :grade_id AND subject_id = :subject_id
	AND school_year_id = :school_year_id AND semester = :semester AND month = :month`

func (repo *markRepository) Update(ctx context.Context, m mark.Mark) (mark.Mark, error) {
	query, args, err := sqlx.Named(`
		UPDATE marks
		SET written_test = :written_test, oral_test = :oral_test, homeworks = :homeworks,
		    attendance = :attendance, notes = :notes, updated_at = NOW()
		WHERE `+markKeyCond+`
		RETURNING *`, m)
	if err != nil {
		return mark.Mark{}, errors.Wrap(err, "binding marks")
	}
	var updated mark.Mark
	err = sqlx.GetContext(ctx, repo.db, &updated, repo.db.Rebind(query), args...)
	return updated, trapNoRowsErr(err, mark.ErrNotFound)
}

func (repo *markRepository) Delete(ctx context.Context, key mark.Key) error {
	w := markWhere(key)
	res, err := repo.db.ExecContext(ctx, "DELETE FROM marks"+w.String(), w.params()...)
	if err != nil {
		return errors.Wrap(err, "deleting marks")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mark.ErrNotFound
	}
	return nil
}

func (repo *markRepository) Report(ctx context.Context, f mark.ReportFilter, q core.PageQuery) ([]mark.Report, int, error) {
	w := new(where).
		add("school_year_id = ?", f.SchoolYearID).
		add("subject_id = ?", f.SubjectID).
		addIf("grade_id = ?", f.GradeID).
		addIf("month = ?", f.Month).
		addIf("semester = ?", f.Semester).
		addIf("student_id = ?", f.StudentID)
	return paginate[mark.Report](ctx, repo.db, "monthly_mark_report", w, q, "student_name DESC, semester, month",
		"student_id", "student_name", "grade_id", "grade_name", "subject_id", "subject_name",
		"school_year_id", "school_year_title", "month", "semester",
		"attendance", "oral_test", "homeworks", "written_test", "total", "monthly_outcome")
}

func (repo *markRepository) GetFinal(ctx context.Context, key mark.FinalKey) (mark.FinalMark, error) {
	var fm mark.FinalMark
	w := finalMarkWhere(key)
	err := sqlx.GetContext(ctx, repo.db, &fm, "SELECT * FROM final_marks"+w.String(), w.params()...)
	return fm, trapNoRowsErr(err, mark.ErrNotFound)
}

func (repo *markRepository) CreateFinal(ctx context.Context, fm mark.FinalMark) (mark.FinalMark, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.db, `
		INSERT INTO final_marks (student_id, subject_id, semester, school_year_id, exam)
		VALUES (:student_id, :subject_id, :semester, :school_year_id, :exam)`, fm)
	if err != nil {
		return mark.FinalMark{}, trapUniqueErr(errors.Wrap(err, "inserting final mark"), mark.ErrExists)
	}
	return fm, nil
}

func (repo *markRepository) UpdateFinal(ctx context.Context, fm mark.FinalMark) (mark.FinalMark, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.db, `
		UPDATE final_marks SET exam = :exam
		WHERE student_id = :student_id AND subject_id = :subject_id
		  AND school_year_id = :school_year_id AND semester = :semester`, fm)
	if err != nil {
		return mark.FinalMark{}, errors.Wrap(err, "updating final mark")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mark.FinalMark{}, mark.ErrNotFound
	}
	return fm, nil
}

func (repo *markRepository) DeleteFinal(ctx context.Context, key mark.FinalKey) error {
	w := finalMarkWhere(key)
	res, err := repo.db.ExecContext(ctx, "DELETE FROM final_marks"+w.String(), w.params()...)
	if err != nil {
		return errors.Wrap(err, "deleting final mark")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mark.ErrNotFound
	}
	return nil
}

func (repo *markRepository) FinalReport(ctx context.Context, f mark.FinalReportFilter, q core.PageQuery) ([]mark.FinalReport, int, error) {
	w := new(where).
		add("school_year_id = ?", f.SchoolYearID).
		add("subject_id = ?", f.SubjectID).
		addIf("grade_id = ?", f.GradeID).
		addIf("semester = ?", f.Semester).
		addIf("student_id = ?", f.StudentID)
	return paginate[mark.FinalReport](ctx, repo.db, "final_mark_report", w, q, "student_name, semester",
		"student_id", "student_name", "grade_id", "subject_id", "school_year_id", "semester", "exam", "final_outcome")
}
