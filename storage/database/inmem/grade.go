package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/subject"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) Get(_ context.Context, id int) (grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grd, ok := repo.db.grades[id]; ok {
		return grd, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) GetByName(_ context.Context, levelID int, name string) (grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, grd := range repo.db.grades {
		if grd.LevelID == levelID && grd.Name == name {
			return grd, nil
		}
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) List(_ context.Context, q core.PageQuery) ([]grade.Grade, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grds := filter(byID(repo.db.grades), func(grd grade.Grade) bool { return matches(q.Search, grd.Name) })
	sort.SliceStable(grds, func(i, j int) bool {
		if grds[i].LevelID != grds[j].LevelID {
			return grds[i].LevelID < grds[j].LevelID
		}
		return grds[i].NumericValue < grds[j].NumericValue
	})
	grds, total := page(grds, q)
	return grds, total, nil
}

func (repo *gradeRepository) Create(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	grd.ID = repo.db.nextID("grades")
	grd.Level, grd.CompositeName = nil, ""
	repo.db.grades[grd.ID] = grd
	return grd, nil
}

func (repo *gradeRepository) Update(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.grades[grd.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	grd.Level, grd.CompositeName = nil, ""
	repo.db.grades[grd.ID] = grd
	return grd, nil
}

func (repo *gradeRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.grades[id]; !ok {
		return grade.ErrNotFound
	}
	delete(repo.db.grades, id)
	for link := range repo.db.gradeSubjects {
		if link.GradeID == id {
			delete(repo.db.gradeSubjects, link)
		}
	}
	return nil
}

func (repo *gradeRepository) Count(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return len(repo.db.grades), nil
}

func (repo *gradeRepository) HasSubjects(_ context.Context, id int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for link := range repo.db.gradeSubjects {
		if link.GradeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (repo *gradeRepository) HasRegistrations(_ context.Context, id int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, reg := range repo.db.registrations {
		if reg.GradeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (repo *gradeRepository) Subjects(_ context.Context, id int, assigned bool) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return filter(byID(repo.db.subjects), func(sub subject.Subject) bool {
		_, ok := repo.db.gradeSubjects[grade.SubjectLink{GradeID: id, SubjectID: sub.ID}]
		return ok == assigned
	}), nil
}

func (repo *gradeRepository) IsSubjectAssigned(_ context.Context, link grade.SubjectLink) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.gradeSubjects[link]
	return ok, nil
}

func (repo *gradeRepository) AssignSubject(_ context.Context, link grade.SubjectLink) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.gradeSubjects[link]; ok {
		return grade.ErrSubjectAssigned
	}
	repo.db.gradeSubjects[link] = struct{}{}
	return nil
}

func (repo *gradeRepository) UnassignSubject(_ context.Context, link grade.SubjectLink) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.gradeSubjects[link]; !ok {
		return grade.ErrSubjectNotAssigned
	}
	delete(repo.db.gradeSubjects, link)
	return nil
}

func (repo *gradeRepository) SubjectHasTeachers(_ context.Context, link grade.SubjectLink) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for key := range repo.db.assignments {
		if key.gradeID == link.GradeID && key.subjectID == link.SubjectID {
			return true, nil
		}
	}
	return false, nil
}
