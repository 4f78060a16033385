package inmemdb

import (
	"context"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) Get(_ context.Context, id int) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) GetByName(_ context.Context, name string) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.subjects {
		if sub.Name == name {
			return sub, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) List(_ context.Context, q core.PageQuery) ([]subject.Subject, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := filter(byID(repo.db.subjects), func(sub subject.Subject) bool { return matches(q.Search, sub.Name) })
	subs, total := page(subs, q)
	return subs, total, nil
}

func (repo *subjectRepository) Create(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = repo.db.nextID("subjects")
	repo.db.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *subjectRepository) Update(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	repo.db.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *subjectRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrNotFound
	}
	delete(repo.db.subjects, id)
	return nil
}

func (repo *subjectRepository) IsAssigned(_ context.Context, id int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for link := range repo.db.gradeSubjects {
		if link.SubjectID == id {
			return true, nil
		}
	}
	return false, nil
}
