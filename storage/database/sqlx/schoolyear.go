package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schoolyear"
)

type schoolYearRepository struct {
	db  *sqlx.DB
	tbl table[schoolyear.SchoolYear]
}

var _ schoolyear.Repository = (*schoolYearRepository)(nil)

func NewSchoolYearRepository(db *sqlx.DB) *schoolYearRepository {
	return &schoolYearRepository{
		db: db,
		tbl: table[schoolyear.SchoolYear]{
			name:     "school_years",
			columns:  []string{"title", "start_date", "end_date", "is_active"},
			search:   []string{"title"},
			order:    "id DESC",
			notFound: schoolyear.ErrNotFound,
			conflict: schoolyear.ErrExists,
			inUse:    schoolyear.ErrReferenced,
		},
	}
}

func (repo *schoolYearRepository) Get(ctx context.Context, id int) (schoolyear.SchoolYear, error) {
	return repo.tbl.get(ctx, repo.db, id)
}

func (repo *schoolYearRepository) GetByTitle(ctx context.Context, title string) (schoolyear.SchoolYear, error) {
	return repo.tbl.getBy(ctx, repo.db, new(where).add("title = ?", title))
}

func (repo *schoolYearRepository) GetActive(ctx context.Context) (schoolyear.SchoolYear, error) {
	return repo.tbl.getBy(ctx, repo.db, &where{conds: []string{"is_active"}})
}

func (repo *schoolYearRepository) List(ctx context.Context, q core.PageQuery) ([]schoolyear.SchoolYear, int, error) {
	return repo.tbl.list(ctx, repo.db, q, nil)
}

func (repo *schoolYearRepository) Create(ctx context.Context, sy schoolyear.SchoolYear) (schoolyear.SchoolYear, error) {
	return repo.tbl.create(ctx, repo.db, sy)
}

func (repo *schoolYearRepository) Update(ctx context.Context, sy schoolyear.SchoolYear) (schoolyear.SchoolYear, error) {
	return repo.tbl.update(ctx, repo.db, sy)
}

func (repo *schoolYearRepository) Activate(ctx context.Context, id int) (schoolyear.SchoolYear, error) {
	var sy schoolyear.SchoolYear
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE school_years SET is_active = FALSE WHERE is_active"); err != nil {
			return errors.Wrap(err, "deactivating school years")
		}
		err := sqlx.GetContext(ctx, tx, &sy, "UPDATE school_years SET is_active = TRUE WHERE id = $1 RETURNING *", id)
		return trapNoRowsErr(err, schoolyear.ErrNotFound)
	})
	return sy, err
}

func (repo *schoolYearRepository) Delete(ctx context.Context, id int) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var wasActive bool
		err := sqlx.GetContext(ctx, tx, &wasActive, "DELETE FROM school_years WHERE id = $1 RETURNING is_active", id)
		if err != nil {
			return trapForeignKeyErr(trapNoRowsErr(err, schoolyear.ErrNotFound), schoolyear.ErrReferenced)
		}
		if !wasActive {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE school_years SET is_active = TRUE
			WHERE id = (SELECT MAX(id) FROM school_years WHERE id < $1)`, id)
		return errors.Wrap(err, "activating previous school year")
	})
}

func (repo *schoolYearRepository) HasRegistrations(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "registrations", new(where).add("school_year_id = ?", id))
}
