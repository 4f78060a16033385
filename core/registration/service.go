package registration

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/subject"
	"github.com/trezcool/madrasa/core/user"
)

var (
	ErrNotFound          = core.NewNotFoundError("registration not found")
	ErrNoActiveYear      = core.NewConflictError("the school year has not been set yet: activate one in the settings")
	ErrAlreadyRegistered = core.NewConflictError("a student cannot be registered in two grades during the same school year")
	ErrRegiNoTaken       = core.NewConflictError("this registration number was just taken: try again")
	ErrReadOnly          = core.NewInvalidError("read-only data: registrations of past school years cannot be deleted")
	ErrHasMarks          = core.NewInvalidError("cannot delete: there is data depending on this registration")
)

type Repository interface {
	Get(ctx context.Context, studentID, schoolYearID int) (Registration, error)
	// Latest returns the most recent registration of the student before the given school year.
	Latest(ctx context.Context, studentID, beforeSchoolYearID int) (Registration, error)
	// List orders items by creation date, newest first.
	List(ctx context.Context, f Filter, q core.PageQuery) ([]Item, int, error)
	ListByStudent(ctx context.Context, studentID int) ([]StudentItem, error)
	// Unregistered returns the students not registered during the school year, ordered by full name.
	Unregistered(ctx context.Context, schoolYearID int) ([]StudentRef, error)
	// Create inserts reg numbered after the highest sequence of seq used in the
	// same grade and school year, atomically.
	Create(ctx context.Context, reg Registration, seq RegiNoSeq) (Registration, error)
	Delete(ctx context.Context, studentID, schoolYearID int) error
	Count(ctx context.Context, f Filter) (int, error)
	CountMales(ctx context.Context, f Filter) (int, error)
	// HasMarks reports whether monthly or final marks depend on reg.
	HasMarks(ctx context.Context, reg Registration) (bool, error)
}

type Service struct {
	repo    Repository
	usrRepo user.Repository
	grdSvc  *grade.Service
	sySvc   *schoolyear.Service
}

func NewService(repo Repository, usrRepo user.Repository, grdSvc *grade.Service, sySvc *schoolyear.Service) *Service {
	return &Service{repo: repo, usrRepo: usrRepo, grdSvc: grdSvc, sySvc: sySvc}
}

// List lists the registrations of f.SchoolYearID, or of the current school year when 0.
// found is false when there is no such school year.
func (svc *Service) List(ctx context.Context, f Filter, q core.PageQuery) (items []Item, total int, found bool, err error) {
	sy, found, err := svc.sySvc.CurrentOrGet(ctx, f.SchoolYearID)
	if err != nil || !found {
		return nil, 0, found, err
	}
	f.SchoolYearID = sy.ID
	items, total, err = svc.repo.List(ctx, f, q)
	if err != nil {
		return nil, 0, true, errors.Wrap(err, "listing registrations")
	}
	return items, total, true, nil
}

func (svc *Service) ListByStudent(ctx context.Context, studentID int) ([]StudentItem, error) {
	return svc.repo.ListByStudent(ctx, studentID)
}

// Unregistered returns the students not yet registered during the current school year.
func (svc *Service) Unregistered(ctx context.Context) ([]StudentRef, error) {
	sy, found, err := svc.sySvc.CurrentOrGet(ctx, 0)
	if err != nil || !found {
		return nil, err
	}
	return svc.repo.Unregistered(ctx, sy.ID)
}

// Get returns the registration of the student during the school year.
func (svc *Service) Get(ctx context.Context, studentID, schoolYearID int) (Registration, error) {
	return svc.repo.Get(ctx, studentID, schoolYearID)
}

// Create registers a student in a grade for the current school year.
func (svc *Service) Create(ctx context.Context, in Input) (Item, error) {
	sy, err := svc.sySvc.Current(ctx)
	if err != nil {
		if errors.Cause(err) == schoolyear.ErrNoCurrent {
			return Item{}, ErrNoActiveYear
		}
		return Item{}, err
	}
	std, err := svc.usrRepo.Get(ctx, in.StudentID)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return Item{}, errors.Wrap(err, "getting student")
	}
	if err != nil || !std.IsStudent() {
		return Item{}, user.ErrStudentNotFound
	}
	grd, err := svc.grdSvc.Get(ctx, in.GradeID)
	if err != nil {
		return Item{}, err
	}

	switch _, err = svc.repo.Get(ctx, std.ID, sy.ID); {
	case err == nil:
		return Item{}, ErrAlreadyRegistered
	case errors.Cause(err) != ErrNotFound:
		return Item{}, errors.Wrap(err, "getting registration")
	}

	reg := Registration{StudentID: std.ID, GradeID: grd.ID, SchoolYearID: sy.ID}
	switch old, err := svc.repo.Latest(ctx, std.ID, sy.ID); {
	case err == nil:
		reg.OldRegistrationID.SetValid(old.ID)
	case errors.Cause(err) != ErrNotFound:
		return Item{}, errors.Wrap(err, "getting previous registration")
	}

	reg, err = svc.repo.Create(ctx, reg, NewRegiNoSeq(sy, grd))
	if err != nil {
		return Item{}, errors.Wrap(err, "inserting registration")
	}

	return Item{
		Student:    StudentRef{ID: std.ID, FullName: std.FullName()},
		Grade:      GradeRef{ID: grd.ID, CompositeName: grd.CompositeName},
		SchoolYear: SchoolYearRef{ID: sy.ID, Title: sy.Title},
		RegiNo:     reg.RegiNo,
		CreatedAt:  reg.CreatedAt,
	}, nil
}

// Delete removes the registration of the student during the school year,
// which must be the current one.
func (svc *Service) Delete(ctx context.Context, studentID, schoolYearID int) error {
	std, err := svc.usrRepo.Get(ctx, studentID)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return errors.Wrap(err, "getting student")
	}
	if err != nil || !std.IsStudent() {
		return user.ErrStudentNotFound
	}
	sy, err := svc.sySvc.Get(ctx, schoolYearID)
	if err != nil {
		return err
	}
	reg, err := svc.repo.Get(ctx, studentID, schoolYearID)
	if err != nil {
		return err
	}
	if !sy.IsActive {
		return ErrReadOnly
	}
	hasMarks, err := svc.repo.HasMarks(ctx, reg)
	if err != nil {
		return errors.Wrap(err, "checking registration marks")
	}
	if hasMarks {
		return ErrHasMarks
	}
	return svc.repo.Delete(ctx, studentID, schoolYearID)
}

// StudentSubjects returns the subjects of the grade the student is registered in during
// the given school year (the current one when 0). It is empty when there is no such registration.
func (svc *Service) StudentSubjects(ctx context.Context, studentID, schoolYearID int) ([]subject.Subject, error) {
	sy, found, err := svc.sySvc.CurrentOrGet(ctx, schoolYearID)
	if err != nil || !found {
		return []subject.Subject{}, err
	}
	reg, err := svc.repo.Get(ctx, studentID, sy.ID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return []subject.Subject{}, nil
		}
		return nil, errors.Wrap(err, "getting student registration")
	}
	grd, err := svc.grdSvc.GetWithSubjects(ctx, reg.GradeID, true)
	if err != nil {
		return nil, err
	}
	return grd.Subjects, nil
}

// CountCurrent counts the students registered during the current school year, and the males among them.
func (svc *Service) CountCurrent(ctx context.Context) (students, males int, err error) {
	sy, found, err := svc.sySvc.CurrentOrGet(ctx, 0)
	if err != nil || !found {
		return 0, 0, err
	}
	f := Filter{SchoolYearID: sy.ID}
	if students, err = svc.repo.Count(ctx, f); err != nil {
		return 0, 0, errors.Wrap(err, "counting registrations")
	}
	if males, err = svc.repo.CountMales(ctx, f); err != nil {
		return 0, 0, errors.Wrap(err, "counting male registrations")
	}
	return students, males, nil
}
