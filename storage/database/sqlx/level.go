package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/level"
)

type levelRepository struct {
	db  *sqlx.DB
	tbl table[level.Level]
}

var _ level.Repository = (*levelRepository)(nil)

func NewLevelRepository(db *sqlx.DB) *levelRepository {
	return &levelRepository{
		db: db,
		tbl: table[level.Level]{
			name:     "levels",
			columns:  []string{"name", "notes"},
			search:   []string{"name"},
			order:    "id",
			notFound: level.ErrNotFound,
			conflict: level.ErrExists,
			inUse:    level.ErrHasGrades,
		},
	}
}

func (repo *levelRepository) Get(ctx context.Context, id int) (level.Level, error) {
	return repo.tbl.get(ctx, repo.db, id)
}

func (repo *levelRepository) GetByName(ctx context.Context, name string) (level.Level, error) {
	return repo.tbl.getBy(ctx, repo.db, new(where).add("name = ?", name))
}

func (repo *levelRepository) List(ctx context.Context, q core.PageQuery) ([]level.Level, int, error) {
	return repo.tbl.list(ctx, repo.db, q, nil)
}

func (repo *levelRepository) Create(ctx context.Context, lvl level.Level) (level.Level, error) {
	return repo.tbl.create(ctx, repo.db, lvl)
}

func (repo *levelRepository) Update(ctx context.Context, lvl level.Level) (level.Level, error) {
	return repo.tbl.update(ctx, repo.db, lvl)
}

func (repo *levelRepository) Delete(ctx context.Context, id int) error {
	return repo.tbl.delete(ctx, repo.db, id)
}

func (repo *levelRepository) HasGrades(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "grades", new(where).add("level_id = ?", id))
}
