package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/registration"
)

type registrationRepository struct {
	db *DB
}

var _ registration.Repository = (*registrationRepository)(nil)

func NewRegistrationRepository(db *DB) *registrationRepository {
	return &registrationRepository{db: db}
}

func (repo *registrationRepository) get(studentID, schoolYearID int) (registration.Registration, bool) {
	for _, reg := range repo.db.registrations {
		if reg.StudentID == studentID && reg.SchoolYearID == schoolYearID {
			return reg, true
		}
	}
	return registration.Registration{}, false
}

func (repo *registrationRepository) Get(_ context.Context, studentID, schoolYearID int) (registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if reg, ok := repo.get(studentID, schoolYearID); ok {
		return reg, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) Latest(_ context.Context, studentID, beforeSchoolYearID int) (registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var (
		latest registration.Registration
		found  bool
	)
	for _, reg := range repo.db.registrations {
		if reg.StudentID == studentID && reg.SchoolYearID < beforeSchoolYearID &&
			(!found || reg.SchoolYearID > latest.SchoolYearID) {
			latest, found = reg, true
		}
	}
	if !found {
		return registration.Registration{}, registration.ErrNotFound
	}
	return latest, nil
}

func (repo *registrationRepository) filtered(f registration.Filter) []registration.Registration {
	return filter(byID(repo.db.registrations), func(reg registration.Registration) bool {
		return reg.SchoolYearID == f.SchoolYearID && (f.GradeID == 0 || reg.GradeID == f.GradeID)
	})
}

func (repo *registrationRepository) item(reg registration.Registration) registration.Item {
	grd := repo.db.grades[reg.GradeID]
	return registration.Item{
		Student:    registration.StudentRef{ID: reg.StudentID, FullName: repo.db.users[reg.StudentID].FullName()},
		Grade:      registration.GradeRef{ID: grd.ID, CompositeName: repo.db.gradeName(grd)},
		SchoolYear: registration.SchoolYearRef{ID: reg.SchoolYearID, Title: repo.db.schoolYears[reg.SchoolYearID].Title},
		RegiNo:     reg.RegiNo,
		CreatedAt:  reg.CreatedAt,
	}
}

func (repo *registrationRepository) List(_ context.Context, f registration.Filter, q core.PageQuery) ([]registration.Item, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	regs := repo.filtered(f)
	items := make([]registration.Item, 0, len(regs))
	for i := len(regs) - 1; i >= 0; i-- { // newest first
		item := repo.item(regs[i])
		if matches(q.Search, item.Student.FullName, item.RegiNo) {
			items = append(items, item)
		}
	}
	items, total := page(items, q)
	return items, total, nil
}

func (repo *registrationRepository) ListByStudent(_ context.Context, studentID int) ([]registration.StudentItem, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	regs := filter(byID(repo.db.registrations), func(reg registration.Registration) bool {
		return reg.StudentID == studentID
	})
	sort.SliceStable(regs, func(i, j int) bool { return regs[i].SchoolYearID > regs[j].SchoolYearID })

	items := make([]registration.StudentItem, 0, len(regs))
	for _, reg := range regs {
		items = append(items, registration.StudentItem{
			GradeID:         reg.GradeID,
			GradeName:       repo.db.gradeName(repo.db.grades[reg.GradeID]),
			SchoolYearID:    reg.SchoolYearID,
			SchoolYearTitle: repo.db.schoolYears[reg.SchoolYearID].Title,
		})
	}
	return items, nil
}

func (repo *registrationRepository) Unregistered(_ context.Context, schoolYearID int) ([]registration.StudentRef, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var refs []registration.StudentRef
	for _, usr := range byID(repo.db.users) {
		if !usr.IsStudent() {
			continue
		}
		if _, ok := repo.get(usr.ID, schoolYearID); !ok {
			refs = append(refs, registration.StudentRef{ID: usr.ID, FullName: usr.FullName()})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].FullName < refs[j].FullName })
	return refs, nil
}

func (repo *registrationRepository) Create(_ context.Context, reg registration.Registration, seq registration.RegiNoSeq) (registration.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.get(reg.StudentID, reg.SchoolYearID); ok {
		return registration.Registration{}, registration.ErrAlreadyRegistered
	}
	siblings := repo.filtered(registration.Filter{SchoolYearID: reg.SchoolYearID, GradeID: reg.GradeID})
	var last int
	for _, r := range siblings {
		if n := seq.Of(r.RegiNo); n > last {
			last = n
		}
	}
	reg.RegiNo = seq.Next(last)
	for _, r := range siblings {
		if r.RegiNo == reg.RegiNo {
			return registration.Registration{}, registration.ErrRegiNoTaken
		}
	}

	reg.ID = repo.db.nextID("registrations")
	reg.CreatedAt = time.Now().UTC()
	repo.db.registrations[reg.ID] = reg
	return reg, nil
}

func (repo *registrationRepository) Delete(_ context.Context, studentID, schoolYearID int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	reg, ok := repo.get(studentID, schoolYearID)
	if !ok {
		return registration.ErrNotFound
	}
	delete(repo.db.registrations, reg.ID)
	return nil
}

func (repo *registrationRepository) Count(_ context.Context, f registration.Filter) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return len(repo.filtered(f)), nil
}

func (repo *registrationRepository) CountMales(_ context.Context, f registration.Filter) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, reg := range repo.filtered(f) {
		if repo.db.users[reg.StudentID].Gender {
			n++
		}
	}
	return n, nil
}

func (repo *registrationRepository) HasMarks(_ context.Context, reg registration.Registration) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for key := range repo.db.marks {
		if key.StudentID == reg.StudentID && key.GradeID == reg.GradeID && key.SchoolYearID == reg.SchoolYearID {
			return true, nil
		}
	}
	for key := range repo.db.finalMarks {
		if key.StudentID == reg.StudentID && key.SchoolYearID == reg.SchoolYearID {
			return true, nil
		}
	}
	return false, nil
}
