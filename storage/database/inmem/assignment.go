package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/madrasa/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func keyOf(asgmt assignment.Assignment) assignmentKey {
	return assignmentKey{gradeID: asgmt.GradeID, subjectID: asgmt.SubjectID, schoolYearID: asgmt.SchoolYearID}
}

// sorted returns the assignments kept by keep, ordered by grade then subject.
func (repo *assignmentRepository) sorted(keep func(assignment.Assignment) bool) []assignment.Assignment {
	var asgmts []assignment.Assignment
	for _, asgmt := range repo.db.assignments {
		if keep(asgmt) {
			asgmts = append(asgmts, asgmt)
		}
	}
	sort.Slice(asgmts, func(i, j int) bool {
		if asgmts[i].GradeID != asgmts[j].GradeID {
			return asgmts[i].GradeID < asgmts[j].GradeID
		}
		return asgmts[i].SubjectID < asgmts[j].SubjectID
	})
	return asgmts
}

func (repo *assignmentRepository) Get(_ context.Context, gradeID, subjectID, schoolYearID int) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if asgmt, ok := repo.db.assignments[assignmentKey{gradeID, subjectID, schoolYearID}]; ok {
		return asgmt, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) Exists(_ context.Context, asgmt assignment.Assignment) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	found, ok := repo.db.assignments[keyOf(asgmt)]
	return ok && found.TeacherID == asgmt.TeacherID, nil
}

func (repo *assignmentRepository) Create(_ context.Context, asgmt assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[keyOf(asgmt)]; ok {
		return assignment.Assignment{}, assignment.ErrExists
	}
	repo.db.assignments[keyOf(asgmt)] = asgmt
	return asgmt, nil
}

func (repo *assignmentRepository) Delete(_ context.Context, asgmt assignment.Assignment) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[keyOf(asgmt)]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.assignments, keyOf(asgmt))
	return nil
}

func (repo *assignmentRepository) HasMarks(_ context.Context, asgmt assignment.Assignment) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for key := range repo.db.marks {
		if key.GradeID == asgmt.GradeID && key.SubjectID == asgmt.SubjectID && key.SchoolYearID == asgmt.SchoolYearID {
			return true, nil
		}
	}
	for key := range repo.db.finalMarks {
		if key.SubjectID != asgmt.SubjectID || key.SchoolYearID != asgmt.SchoolYearID {
			continue
		}
		for _, reg := range repo.db.registrations {
			if reg.StudentID == key.StudentID && reg.SchoolYearID == key.SchoolYearID && reg.GradeID == asgmt.GradeID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (repo *assignmentRepository) List(_ context.Context, f assignment.Filter) ([]assignment.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	asgmts := repo.sorted(func(asgmt assignment.Assignment) bool {
		return asgmt.SchoolYearID == f.SchoolYearID &&
			(f.GradeID == 0 || asgmt.GradeID == f.GradeID) &&
			(f.TeacherID == 0 || asgmt.TeacherID == f.TeacherID)
	})
	items := make([]assignment.Item, 0, len(asgmts))
	for _, asgmt := range asgmts {
		grd := repo.db.grades[asgmt.GradeID]
		items = append(items, assignment.Item{
			Teacher:      assignment.TeacherRef{ID: asgmt.TeacherID, FullName: repo.db.users[asgmt.TeacherID].FullName()},
			Grade:        assignment.GradeRef{ID: grd.ID, CompositeName: repo.db.gradeName(grd)},
			Subject:      assignment.Ref{ID: asgmt.SubjectID, Name: repo.db.subjects[asgmt.SubjectID].Name},
			SchoolYearID: asgmt.SchoolYearID,
		})
	}
	return items, nil
}

func (repo *assignmentRepository) TeacherGrades(_ context.Context, teacherID, schoolYearID int) ([]assignment.GradeRef, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var refs []assignment.GradeRef
	seen := make(map[int]bool)
	for _, asgmt := range repo.sorted(func(asgmt assignment.Assignment) bool {
		return asgmt.TeacherID == teacherID && asgmt.SchoolYearID == schoolYearID
	}) {
		if seen[asgmt.GradeID] {
			continue
		}
		seen[asgmt.GradeID] = true
		grd := repo.db.grades[asgmt.GradeID]
		refs = append(refs, assignment.GradeRef{ID: grd.ID, CompositeName: repo.db.gradeName(grd)})
	}
	return refs, nil
}

func (repo *assignmentRepository) TeacherSubjects(_ context.Context, teacherID, gradeID, schoolYearID int) ([]assignment.TeacherSubject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var subs []assignment.TeacherSubject
	for _, asgmt := range repo.sorted(func(asgmt assignment.Assignment) bool {
		return asgmt.TeacherID == teacherID && asgmt.GradeID == gradeID && asgmt.SchoolYearID == schoolYearID
	}) {
		subs = append(subs, assignment.TeacherSubject{
			ID:      teacherID,
			Name:    repo.db.users[teacherID].FirstName,
			Subject: assignment.Ref{ID: asgmt.SubjectID, Name: repo.db.subjects[asgmt.SubjectID].Name},
		})
	}
	return subs, nil
}
