package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/registration"
)

const (
	registrationItems = `registrations r
		JOIN users u ON u.id = r.student_id
		JOIN grades g ON g.id = r.grade_id
		JOIN levels l ON l.id = g.level_id
		JOIN school_years sy ON sy.id = r.school_year_id`

	regiNoConstraint = "registrations_school_year_id_grade_id_regi_no_key"
)

var registrationItemColumns = []string{
	`u.id AS "student.id"`,
	`CONCAT_WS(' ', u.first_name, u.father_name, u.gfather_name, u.last_name) AS "student.full_name"`,
	`g.id AS "grade.id"`,
	`CONCAT_WS(' ', g.name, l.name) AS "grade.composite_name"`,
	`sy.id AS "school_year.id"`,
	`sy.title AS "school_year.title"`,
	"r.regi_no",
	"r.created_at",
}

type registrationRepository struct {
	db  *sqlx.DB
	tbl table[registration.Registration]
}

var _ registration.Repository = (*registrationRepository)(nil)

func NewRegistrationRepository(db *sqlx.DB) *registrationRepository {
	return &registrationRepository{
		db: db,
		tbl: table[registration.Registration]{
			name:     "registrations",
			columns:  []string{"regi_no", "student_id", "grade_id", "school_year_id", "old_registration_id"},
			order:    "created_at DESC",
			notFound: registration.ErrNotFound,
			conflict: registration.ErrAlreadyRegistered,
			inUse:    registration.ErrHasMarks,
			constraints: map[string]error{
				regiNoConstraint: registration.ErrRegiNoTaken,
			},
		},
	}
}

func keyWhere(studentID, schoolYearID int) *where {
	return new(where).add("student_id = ?", studentID).add("school_year_id = ?", schoolYearID)
}

func (repo *registrationRepository) Get(ctx context.Context, studentID, schoolYearID int) (registration.Registration, error) {
	return repo.tbl.getBy(ctx, repo.db, keyWhere(studentID, schoolYearID))
}

func (repo *registrationRepository) Latest(ctx context.Context, studentID, beforeSchoolYearID int) (registration.Registration, error) {
	var reg registration.Registration
	err := sqlx.GetContext(ctx, repo.db, &reg, `
		SELECT * FROM registrations
		WHERE student_id = $1 AND school_year_id < $2
		ORDER BY school_year_id DESC
		LIMIT 1`, studentID, beforeSchoolYearID)
	return reg, trapNoRowsErr(err, registration.ErrNotFound)
}

func itemsWhere(f registration.Filter) *where {
	return new(where).add("r.school_year_id = ?", f.SchoolYearID).addIf("r.grade_id = ?", f.GradeID)
}

func (repo *registrationRepository) List(ctx context.Context, f registration.Filter, q core.PageQuery) ([]registration.Item, int, error) {
	return paginate[registration.Item](ctx, repo.db, registrationItems, itemsWhere(f), q,
		"r.created_at DESC, r.id DESC", registrationItemColumns...)
}

func (repo *registrationRepository) ListByStudent(ctx context.Context, studentID int) ([]registration.StudentItem, error) {
	var items []registration.StudentItem
	err := sqlx.SelectContext(ctx, repo.db, &items, `
		SELECT r.grade_id, CONCAT_WS(' ', g.name, l.name) AS grade_name, r.school_year_id, sy.title AS school_year_title
		FROM `+registrationItems+`
		WHERE r.student_id = $1
		ORDER BY r.school_year_id DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting student registrations")
	}
	return items, nil
}

func (repo *registrationRepository) Unregistered(ctx context.Context, schoolYearID int) ([]registration.StudentRef, error) {
	var refs []registration.StudentRef
	err := sqlx.SelectContext(ctx, repo.db, &refs, `
		SELECT u.id, CONCAT_WS(' ', u.first_name, u.father_name, u.gfather_name, u.last_name) AS full_name
		FROM users u
		WHERE u.role = 's' AND NOT EXISTS (
			SELECT 1 FROM registrations r WHERE r.student_id = u.id AND r.school_year_id = $1
		)
		ORDER BY full_name`, schoolYearID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting unregistered students")
	}
	return refs, nil
}

func (repo *registrationRepository) Create(ctx context.Context, reg registration.Registration, seq registration.RegiNoSeq) (registration.Registration, error) {
	var created registration.Registration
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var last int
		err := sqlx.GetContext(ctx, tx, &last, `
			SELECT COALESCE(MAX(CAST(SUBSTRING(regi_no FROM $1) AS INTEGER)), 0) FROM registrations
			WHERE school_year_id = $2 AND grade_id = $3 AND regi_no LIKE $4`,
			len(seq.Prefix)+1, reg.SchoolYearID, reg.GradeID, seq.Prefix+"%")
		if err != nil {
			return errors.Wrap(err, "selecting last registration sequence")
		}
		reg.RegiNo = seq.Next(last)
		created, err = repo.tbl.create(ctx, tx, reg)
		return err
	})
	if err != nil {
		return registration.Registration{}, err
	}
	return created, nil
}

func (repo *registrationRepository) Delete(ctx context.Context, studentID, schoolYearID int) error {
	return repo.tbl.deleteBy(ctx, repo.db, keyWhere(studentID, schoolYearID))
}

func (repo *registrationRepository) Count(ctx context.Context, f registration.Filter) (int, error) {
	return count(ctx, repo.db, registrationItems, itemsWhere(f))
}

func (repo *registrationRepository) CountMales(ctx context.Context, f registration.Filter) (int, error) {
	w := itemsWhere(f)
	w.conds = append(w.conds, "u.gender")
	return count(ctx, repo.db, registrationItems, w)
}

func (repo *registrationRepository) HasMarks(ctx context.Context, reg registration.Registration) (bool, error) {
	found, err := exists(ctx, repo.db, "marks", keyWhere(reg.StudentID, reg.SchoolYearID).add("grade_id = ?", reg.GradeID))
	if err != nil || found {
		return found, err
	}
	return exists(ctx, repo.db, "final_marks", keyWhere(reg.StudentID, reg.SchoolYearID))
}
