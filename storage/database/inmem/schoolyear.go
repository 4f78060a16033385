package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/schoolyear"
)

type schoolYearRepository struct {
	db *DB
}

var _ schoolyear.Repository = (*schoolYearRepository)(nil)

func NewSchoolYearRepository(db *DB) *schoolYearRepository {
	return &schoolYearRepository{db: db}
}

func (repo *schoolYearRepository) Get(_ context.Context, id int) (schoolyear.SchoolYear, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sy, ok := repo.db.schoolYears[id]; ok {
		return sy, nil
	}
	return schoolyear.SchoolYear{}, schoolyear.ErrNotFound
}

func (repo *schoolYearRepository) GetByTitle(_ context.Context, title string) (schoolyear.SchoolYear, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sy := range repo.db.schoolYears {
		if sy.Title == title {
			return sy, nil
		}
	}
	return schoolyear.SchoolYear{}, schoolyear.ErrNotFound
}

func (repo *schoolYearRepository) GetActive(_ context.Context) (schoolyear.SchoolYear, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sy := range repo.db.schoolYears {
		if sy.IsActive {
			return sy, nil
		}
	}
	return schoolyear.SchoolYear{}, schoolyear.ErrNotFound
}

func (repo *schoolYearRepository) List(_ context.Context, q core.PageQuery) ([]schoolyear.SchoolYear, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	years := filter(byID(repo.db.schoolYears), func(sy schoolyear.SchoolYear) bool {
		return matches(q.Search, sy.Title)
	})
	sort.SliceStable(years, func(i, j int) bool { return years[i].ID > years[j].ID })
	years, total := page(years, q)
	return years, total, nil
}

func (repo *schoolYearRepository) Create(_ context.Context, sy schoolyear.SchoolYear) (schoolyear.SchoolYear, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sy.ID = repo.db.nextID("school_years")
	repo.db.schoolYears[sy.ID] = sy
	return sy, nil
}

func (repo *schoolYearRepository) Update(_ context.Context, sy schoolyear.SchoolYear) (schoolyear.SchoolYear, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schoolYears[sy.ID]; !ok {
		return schoolyear.SchoolYear{}, schoolyear.ErrNotFound
	}
	repo.db.schoolYears[sy.ID] = sy
	return sy, nil
}

func (repo *schoolYearRepository) Activate(_ context.Context, id int) (schoolyear.SchoolYear, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sy, ok := repo.db.schoolYears[id]
	if !ok {
		return schoolyear.SchoolYear{}, schoolyear.ErrNotFound
	}
	for yid, y := range repo.db.schoolYears {
		if y.IsActive {
			y.IsActive = false
			repo.db.schoolYears[yid] = y
		}
	}
	sy.IsActive = true
	repo.db.schoolYears[id] = sy
	return sy, nil
}

func (repo *schoolYearRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sy, ok := repo.db.schoolYears[id]
	if !ok {
		return schoolyear.ErrNotFound
	}
	for _, reg := range repo.db.registrations {
		if reg.SchoolYearID == id {
			return schoolyear.ErrHasRegistrations
		}
	}
	delete(repo.db.schoolYears, id)
	if !sy.IsActive {
		return nil
	}

	prev := 0
	for yid := range repo.db.schoolYears {
		if yid < id && yid > prev {
			prev = yid
		}
	}
	if prev > 0 {
		y := repo.db.schoolYears[prev]
		y.IsActive = true
		repo.db.schoolYears[prev] = y
	}
	return nil
}

func (repo *schoolYearRepository) HasRegistrations(_ context.Context, id int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, reg := range repo.db.registrations {
		if reg.SchoolYearID == id {
			return true, nil
		}
	}
	return false, nil
}
