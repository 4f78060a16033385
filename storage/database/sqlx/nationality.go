package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/nationality"
)

type nationalityRepository struct {
	db  *sqlx.DB
	tbl table[nationality.Nationality]
}

var _ nationality.Repository = (*nationalityRepository)(nil)

func NewNationalityRepository(db *sqlx.DB) *nationalityRepository {
	return &nationalityRepository{
		db: db,
		tbl: table[nationality.Nationality]{
			name:     "nationalities",
			columns:  []string{"masculine_form", "feminine_form", "notes"},
			search:   []string{"masculine_form", "feminine_form"},
			order:    "id",
			notFound: nationality.ErrNotFound,
			conflict: nationality.ErrExists,
			inUse:    nationality.ErrReferenced,
		},
	}
}

func (repo *nationalityRepository) Get(ctx context.Context, id int) (nationality.Nationality, error) {
	return repo.tbl.get(ctx, repo.db, id)
}

func (repo *nationalityRepository) GetByName(ctx context.Context, names ...string) (nationality.Nationality, error) {
	return repo.tbl.getBy(ctx, repo.db, new(where).
		add("(masculine_form = ANY(?) OR feminine_form = ANY(?))", pq.Array(names)))
}

func (repo *nationalityRepository) List(ctx context.Context, q core.PageQuery) ([]nationality.Nationality, int, error) {
	return repo.tbl.list(ctx, repo.db, q, nil)
}

func (repo *nationalityRepository) Create(ctx context.Context, nat nationality.Nationality) (nationality.Nationality, error) {
	return repo.tbl.create(ctx, repo.db, nat)
}

func (repo *nationalityRepository) Update(ctx context.Context, nat nationality.Nationality) (nationality.Nationality, error) {
	return repo.tbl.update(ctx, repo.db, nat)
}

func (repo *nationalityRepository) Delete(ctx context.Context, id int) error {
	return repo.tbl.delete(ctx, repo.db, id)
}

func (repo *nationalityRepository) IsReferenced(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "users", new(where).add("nationality_id = ?", id))
}
