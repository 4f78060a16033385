package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/gradingscale"
)

type gradingScaleRepository struct {
	db  *sqlx.DB
	tbl table[gradingscale.GradingScale]
}

var _ gradingscale.Repository = (*gradingScaleRepository)(nil)

func NewGradingScaleRepository(db *sqlx.DB) *gradingScaleRepository {
	return &gradingScaleRepository{
		db: db,
		tbl: table[gradingscale.GradingScale]{
			name:     "grading_scales",
			columns:  []string{"name", "lowest_percentage", "highest_percentage", "notes"},
			search:   []string{"name"},
			order:    "lowest_percentage",
			notFound: gradingscale.ErrNotFound,
			conflict: gradingscale.ErrNameExists,
		},
	}
}

func (repo *gradingScaleRepository) Get(ctx context.Context, id int) (gradingscale.GradingScale, error) {
	return repo.tbl.get(ctx, repo.db, id)
}

func (repo *gradingScaleRepository) GetByName(ctx context.Context, name string) (gradingscale.GradingScale, error) {
	return repo.tbl.getBy(ctx, repo.db, new(where).add("name = ?", name))
}

func (repo *gradingScaleRepository) GetByPercentage(ctx context.Context, lowest, highest float64) (gradingscale.GradingScale, error) {
	w := &where{
		conds: []string{"(lowest_percentage = $1 OR highest_percentage = $2)"},
		args:  []interface{}{lowest, highest},
	}
	return repo.tbl.getBy(ctx, repo.db, w)
}

func (repo *gradingScaleRepository) List(ctx context.Context, q core.PageQuery) ([]gradingscale.GradingScale, int, error) {
	return repo.tbl.list(ctx, repo.db, q, nil)
}

func (repo *gradingScaleRepository) Create(ctx context.Context, gs gradingscale.GradingScale) (gradingscale.GradingScale, error) {
	return repo.tbl.create(ctx, repo.db, gs)
}

func (repo *gradingScaleRepository) Update(ctx context.Context, gs gradingscale.GradingScale) (gradingscale.GradingScale, error) {
	return repo.tbl.update(ctx, repo.db, gs)
}

func (repo *gradingScaleRepository) Delete(ctx context.Context, id int) error {
	return repo.tbl.delete(ctx, repo.db, id)
}
