package inmemdb

import (
	"context"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/nationality"
)

type nationalityRepository struct {
	db *DB
}

var _ nationality.Repository = (*nationalityRepository)(nil)

func NewNationalityRepository(db *DB) *nationalityRepository {
	return &nationalityRepository{db: db}
}

func (repo *nationalityRepository) Get(_ context.Context, id int) (nationality.Nationality, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if nat, ok := repo.db.nationalities[id]; ok {
		return nat, nil
	}
	return nationality.Nationality{}, nationality.ErrNotFound
}

func (repo *nationalityRepository) GetByName(_ context.Context, names ...string) (nationality.Nationality, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, nat := range byID(repo.db.nationalities) {
		for _, name := range names {
			if nat.MasculineForm == name || nat.FeminineForm == name {
				return nat, nil
			}
		}
	}
	return nationality.Nationality{}, nationality.ErrNotFound
}

func (repo *nationalityRepository) List(_ context.Context, q core.PageQuery) ([]nationality.Nationality, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	nats := filter(byID(repo.db.nationalities), func(nat nationality.Nationality) bool {
		return matches(q.Search, nat.MasculineForm, nat.FeminineForm)
	})
	nats, total := page(nats, q)
	return nats, total, nil
}

func (repo *nationalityRepository) Create(_ context.Context, nat nationality.Nationality) (nationality.Nationality, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	nat.ID = repo.db.nextID("nationalities")
	repo.db.nationalities[nat.ID] = nat
	return nat, nil
}

func (repo *nationalityRepository) Update(_ context.Context, nat nationality.Nationality) (nationality.Nationality, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.nationalities[nat.ID]; !ok {
		return nationality.Nationality{}, nationality.ErrNotFound
	}
	repo.db.nationalities[nat.ID] = nat
	return nat, nil
}

func (repo *nationalityRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.nationalities[id]; !ok {
		return nationality.ErrNotFound
	}
	delete(repo.db.nationalities, id)
	return nil
}

func (repo *nationalityRepository) IsReferenced(_ context.Context, id int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.NationalityID == id {
			return true, nil
		}
	}
	return false, nil
}
