package assignment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/user"
)

var (
	ErrNotFound          = core.NewNotFoundError("assignment not found")
	ErrExists            = core.NewConflictError("a teacher is already assigned to this subject in this grade")
	ErrSubjectNotInGrade = core.NewInvalidError("this subject is not assigned to this grade")
	ErrTeacherIDRequired = core.NewUnprocessableError("teacher_id is required to list the grades of a teacher")
	ErrHasMarks          = core.NewInvalidError("cannot delete: there are marks depending on this assignment")
)

type Repository interface {
	Get(ctx context.Context, gradeID, subjectID, schoolYearID int) (Assignment, error)
	// Exists reports whether asgmt exists, teacher included.
	Exists(ctx context.Context, asgmt Assignment) (bool, error)
	Create(ctx context.Context, asgmt Assignment) (Assignment, error)
	Delete(ctx context.Context, asgmt Assignment) error
	// HasMarks reports whether monthly or final marks of the grade subject depend on asgmt.
	HasMarks(ctx context.Context, asgmt Assignment) (bool, error)
	List(ctx context.Context, f Filter) ([]Item, error)
	// TeacherGrades returns the distinct grades the teacher teaches in during the school year.
	TeacherGrades(ctx context.Context, teacherID, schoolYearID int) ([]GradeRef, error)
	TeacherSubjects(ctx context.Context, teacherID, gradeID, schoolYearID int) ([]TeacherSubject, error)
}

type Service struct {
	repo    Repository
	usrRepo user.Repository
	grdRepo grade.Repository
	sySvc   *schoolyear.Service
}

func NewService(repo Repository, usrRepo user.Repository, grdRepo grade.Repository, sySvc *schoolyear.Service) *Service {
	return &Service{repo: repo, usrRepo: usrRepo, grdRepo: grdRepo, sySvc: sySvc}
}

func (svc *Service) getTeacher(ctx context.Context, id int) (user.User, error) {
	tchr, err := svc.usrRepo.Get(ctx, id)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return user.User{}, errors.Wrap(err, "getting teacher")
	}
	if err != nil || !tchr.IsTeacher() {
		return user.User{}, user.ErrTeacherNotFound
	}
	return tchr, nil
}

// Assign assigns a teacher to a subject of a grade for the current school year.
func (svc *Service) Assign(ctx context.Context, in Input) (Assignment, error) {
	sy, err := svc.sySvc.RequireCurrent(ctx)
	if err != nil {
		return Assignment{}, err
	}
	if _, err = svc.getTeacher(ctx, in.TeacherID); err != nil {
		return Assignment{}, err
	}
	if _, err = svc.grdRepo.Get(ctx, in.GradeID); err != nil {
		return Assignment{}, err
	}
	inGrade, err := svc.grdRepo.IsSubjectAssigned(ctx, grade.SubjectLink{GradeID: in.GradeID, SubjectID: in.SubjectID})
	if err != nil {
		return Assignment{}, errors.Wrap(err, "checking grade subject")
	}
	if !inGrade {
		return Assignment{}, ErrSubjectNotInGrade
	}

	switch _, err = svc.repo.Get(ctx, in.GradeID, in.SubjectID, sy.ID); {
	case err == nil:
		return Assignment{}, ErrExists
	case errors.Cause(err) != ErrNotFound:
		return Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return svc.repo.Create(ctx, Assignment{
		TeacherID:    in.TeacherID,
		GradeID:      in.GradeID,
		SubjectID:    in.SubjectID,
		SchoolYearID: sy.ID,
	})
}

// Unassign removes the current school year assignment of a subject of a grade.
func (svc *Service) Unassign(ctx context.Context, gradeID, subjectID int) error {
	sy, err := svc.sySvc.RequireCurrent(ctx)
	if err != nil {
		return err
	}
	asgmt, err := svc.repo.Get(ctx, gradeID, subjectID, sy.ID)
	if err != nil {
		return err
	}
	hasMarks, err := svc.repo.HasMarks(ctx, asgmt)
	if err != nil {
		return errors.Wrap(err, "checking assignment marks")
	}
	if hasMarks {
		return ErrHasMarks
	}
	return svc.repo.Delete(ctx, asgmt)
}

// List lists the current school year assignments. It is empty without a current school year.
func (svc *Service) List(ctx context.Context, f Filter) ([]Item, error) {
	sy, found, err := svc.sySvc.CurrentOrGet(ctx, 0)
	if err != nil || !found {
		return []Item{}, err
	}
	f.SchoolYearID = sy.ID
	return svc.repo.List(ctx, f)
}

// TeacherGrades returns the grades a teacher teaches in during the current school year.
// Teachers get their own grades; admins must name the teacher.
func (svc *Service) TeacherGrades(ctx context.Context, caller user.User, teacherID int) ([]GradeRef, error) {
	sy, err := svc.sySvc.RequireCurrent(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case caller.IsTeacher():
		teacherID = caller.ID
	case teacherID == 0:
		return nil, ErrTeacherIDRequired
	default:
		if _, err = svc.getTeacher(ctx, teacherID); err != nil {
			return nil, err
		}
	}
	return svc.repo.TeacherGrades(ctx, teacherID, sy.ID)
}

// TeacherSubjects returns the subjects a teacher teaches in a grade during the current school year.
func (svc *Service) TeacherSubjects(ctx context.Context, teacherID, gradeID int) ([]TeacherSubject, error) {
	sy, err := svc.sySvc.RequireCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if _, err = svc.grdRepo.Get(ctx, gradeID); err != nil {
		return nil, err
	}
	if _, err = svc.getTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	return svc.repo.TeacherSubjects(ctx, teacherID, gradeID, sy.ID)
}

// IsAssigned reports whether the teacher teaches the subject in the grade during the school year.
func (svc *Service) IsAssigned(ctx context.Context, asgmt Assignment) (bool, error) {
	return svc.repo.Exists(ctx, asgmt)
}
