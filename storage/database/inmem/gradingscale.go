package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/gradingscale"
)

type gradingScaleRepository struct {
	db *DB
}

var _ gradingscale.Repository = (*gradingScaleRepository)(nil)

func NewGradingScaleRepository(db *DB) *gradingScaleRepository {
	return &gradingScaleRepository{db: db}
}

func (repo *gradingScaleRepository) Get(_ context.Context, id int) (gradingscale.GradingScale, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if gs, ok := repo.db.gradingScales[id]; ok {
		return gs, nil
	}
	return gradingscale.GradingScale{}, gradingscale.ErrNotFound
}

func (repo *gradingScaleRepository) GetByName(_ context.Context, name string) (gradingscale.GradingScale, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, gs := range repo.db.gradingScales {
		if gs.Name == name {
			return gs, nil
		}
	}
	return gradingscale.GradingScale{}, gradingscale.ErrNotFound
}

func (repo *gradingScaleRepository) GetByPercentage(_ context.Context, lowest, highest float64) (gradingscale.GradingScale, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, gs := range byID(repo.db.gradingScales) {
		if gs.LowestPercentage == lowest || gs.HighestPercentage == highest {
			return gs, nil
		}
	}
	return gradingscale.GradingScale{}, gradingscale.ErrNotFound
}

func (repo *gradingScaleRepository) List(_ context.Context, q core.PageQuery) ([]gradingscale.GradingScale, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	scales := filter(byID(repo.db.gradingScales), func(gs gradingscale.GradingScale) bool {
		return matches(q.Search, gs.Name)
	})
	sort.SliceStable(scales, func(i, j int) bool {
		return scales[i].LowestPercentage < scales[j].LowestPercentage
	})
	scales, total := page(scales, q)
	return scales, total, nil
}

func (repo *gradingScaleRepository) Create(_ context.Context, gs gradingscale.GradingScale) (gradingscale.GradingScale, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	gs.ID = repo.db.nextID("grading_scales")
	repo.db.gradingScales[gs.ID] = gs
	return gs, nil
}

func (repo *gradingScaleRepository) Update(_ context.Context, gs gradingscale.GradingScale) (gradingscale.GradingScale, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.gradingScales[gs.ID]; !ok {
		return gradingscale.GradingScale{}, gradingscale.ErrNotFound
	}
	repo.db.gradingScales[gs.ID] = gs
	return gs, nil
}

func (repo *gradingScaleRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.gradingScales[id]; !ok {
		return gradingscale.ErrNotFound
	}
	delete(repo.db.gradingScales, id)
	return nil
}
