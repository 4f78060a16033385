package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/subject"
)

type gradeRepository struct {
	db  *sqlx.DB
	tbl table[grade.Grade]
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{
		db: db,
		tbl: table[grade.Grade]{
			name:     "grades",
			columns:  []string{"name", "numeric_value", "level_id"},
			search:   []string{"name"},
			order:    "level_id, numeric_value, id",
			notFound: grade.ErrNotFound,
			conflict: grade.ErrExists,
			inUse:    grade.ErrReferenced,
		},
	}
}

func (repo *gradeRepository) Get(ctx context.Context, id int) (grade.Grade, error) {
	return repo.tbl.get(ctx, repo.db, id)
}

func (repo *gradeRepository) GetByName(ctx context.Context, levelID int, name string) (grade.Grade, error) {
	return repo.tbl.getBy(ctx, repo.db, new(where).add("level_id = ?", levelID).add("name = ?", name))
}

func (repo *gradeRepository) List(ctx context.Context, q core.PageQuery) ([]grade.Grade, int, error) {
	return repo.tbl.list(ctx, repo.db, q, nil)
}

func (repo *gradeRepository) Create(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	return repo.tbl.create(ctx, repo.db, grd)
}

func (repo *gradeRepository) Update(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	return repo.tbl.update(ctx, repo.db, grd)
}

func (repo *gradeRepository) Delete(ctx context.Context, id int) error {
	return repo.tbl.delete(ctx, repo.db, id)
}

func (repo *gradeRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, repo.db, "grades", nil)
}

func (repo *gradeRepository) HasSubjects(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "grade_subjects", new(where).add("grade_id = ?", id))
}

func (repo *gradeRepository) HasRegistrations(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "registrations", new(where).add("grade_id = ?", id))
}

func (repo *gradeRepository) Subjects(ctx context.Context, id int, assigned bool) ([]subject.Subject, error) {
	op := "IN"
	if !assigned {
		op = "NOT IN"
	}
	query := "SELECT * FROM subjects WHERE id " + op + " (SELECT subject_id FROM grade_subjects WHERE grade_id = $1) ORDER BY id"
	var subs []subject.Subject
	if err := sqlx.SelectContext(ctx, repo.db, &subs, query, id); err != nil {
		return nil, errors.Wrap(err, "selecting grade subjects")
	}
	return subs, nil
}

func linkWhere(link grade.SubjectLink) *where {
	return new(where).add("grade_id = ?", link.GradeID).add("subject_id = ?", link.SubjectID)
}

func (repo *gradeRepository) IsSubjectAssigned(ctx context.Context, link grade.SubjectLink) (bool, error) {
	return exists(ctx, repo.db, "grade_subjects", linkWhere(link))
}

func (repo *gradeRepository) AssignSubject(ctx context.Context, link grade.SubjectLink) error {
	_, err := sqlx.NamedExecContext(ctx, repo.db,
		"INSERT INTO grade_subjects (grade_id, subject_id) VALUES (:grade_id, :subject_id)", link)
	return trapUniqueErr(err, grade.ErrSubjectAssigned)
}

func (repo *gradeRepository) UnassignSubject(ctx context.Context, link grade.SubjectLink) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM grade_subjects"+linkWhere(link).String(), link.GradeID, link.SubjectID)
	if err != nil {
		return errors.Wrap(err, "deleting grade subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.ErrSubjectNotAssigned
	}
	return nil
}

func (repo *gradeRepository) SubjectHasTeachers(ctx context.Context, link grade.SubjectLink) (bool, error) {
	return exists(ctx, repo.db, "assigned_teachers", linkWhere(link))
}
