package inmemdb

import (
	"context"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/level"
)

type levelRepository struct {
	db *DB
}

var _ level.Repository = (*levelRepository)(nil)

func NewLevelRepository(db *DB) *levelRepository {
	return &levelRepository{db: db}
}

func (repo *levelRepository) Get(_ context.Context, id int) (level.Level, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if lvl, ok := repo.db.levels[id]; ok {
		return lvl, nil
	}
	return level.Level{}, level.ErrNotFound
}

func (repo *levelRepository) GetByName(_ context.Context, name string) (level.Level, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, lvl := range repo.db.levels {
		if lvl.Name == name {
			return lvl, nil
		}
	}
	return level.Level{}, level.ErrNotFound
}

func (repo *levelRepository) List(_ context.Context, q core.PageQuery) ([]level.Level, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lvls := filter(byID(repo.db.levels), func(lvl level.Level) bool { return matches(q.Search, lvl.Name) })
	lvls, total := page(lvls, q)
	return lvls, total, nil
}

func (repo *levelRepository) Create(_ context.Context, lvl level.Level) (level.Level, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lvl.ID = repo.db.nextID("levels")
	repo.db.levels[lvl.ID] = lvl
	return lvl, nil
}

func (repo *levelRepository) Update(_ context.Context, lvl level.Level) (level.Level, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.levels[lvl.ID]; !ok {
		return level.Level{}, level.ErrNotFound
	}
	repo.db.levels[lvl.ID] = lvl
	return lvl, nil
}

func (repo *levelRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.levels[id]; !ok {
		return level.ErrNotFound
	}
	delete(repo.db.levels, id)
	return nil
}

func (repo *levelRepository) HasGrades(_ context.Context, id int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, grd := range repo.db.grades {
		if grd.LevelID == id {
			return true, nil
		}
	}
	return false, nil
}
