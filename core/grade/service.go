package grade

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/level"
	"github.com/trezcool/madrasa/core/subject"
)

var (
	ErrNotFound           = core.NewNotFoundError("grade not found")
	ErrExists             = core.NewConflictError("a grade with this name already exists in this level")
	ErrReferenced         = core.NewConflictError("cannot delete: there is data depending on this grade")
	ErrSubjectAssigned    = core.NewConflictError("this subject is already assigned to this grade")
	ErrSubjectNotAssigned = core.NewNotFoundError("this subject is not assigned to this grade")
	ErrSubjectHasTeachers = core.NewInvalidError("cannot delete: there are teachers assigned to this subject in this grade")
)

type Repository interface {
	Get(ctx context.Context, id int) (Grade, error)
	GetByName(ctx context.Context, levelID int, name string) (Grade, error)
	List(ctx context.Context, q core.PageQuery) ([]Grade, int, error)
	Create(ctx context.Context, grd Grade) (Grade, error)
	Update(ctx context.Context, grd Grade) (Grade, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
	HasSubjects(ctx context.Context, id int) (bool, error)
	HasRegistrations(ctx context.Context, id int) (bool, error)

	// Subjects returns the subjects assigned to the grade, or the ones not assigned to it.
	Subjects(ctx context.Context, id int, assigned bool) ([]subject.Subject, error)
	IsSubjectAssigned(ctx context.Context, link SubjectLink) (bool, error)
	AssignSubject(ctx context.Context, link SubjectLink) error
	UnassignSubject(ctx context.Context, link SubjectLink) error
	SubjectHasTeachers(ctx context.Context, link SubjectLink) (bool, error)
}

type Service struct {
	repo    Repository
	lvlRepo level.Repository
	subRepo subject.Repository
}

func NewService(repo Repository, lvlRepo level.Repository, subRepo subject.Repository) *Service {
	return &Service{repo: repo, lvlRepo: lvlRepo, subRepo: subRepo}
}

// expand loads the Level of each grade.
func (svc *Service) expand(ctx context.Context, grades ...*Grade) error {
	cache := make(map[int]level.Level)
	for _, grd := range grades {
		lvl, ok := cache[grd.LevelID]
		if !ok {
			var err error
			if lvl, err = svc.lvlRepo.Get(ctx, grd.LevelID); err != nil {
				return errors.Wrap(err, "getting grade level")
			}
			cache[grd.LevelID] = lvl
		}
		grd.setLevel(lvl)
	}
	return nil
}

func (svc *Service) Get(ctx context.Context, id int) (Grade, error) {
	grd, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	return grd, svc.expand(ctx, &grd)
}

func (svc *Service) List(ctx context.Context, q core.PageQuery) ([]Grade, int, error) {
	q.Search = core.CleanString(q.Search)
	grades, total, err := svc.repo.List(ctx, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing grades")
	}
	ptrs := make([]*Grade, 0, len(grades))
	for i := range grades {
		ptrs = append(ptrs, &grades[i])
	}
	return grades, total, svc.expand(ctx, ptrs...)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.Count(ctx)
}

func (svc *Service) check(ctx context.Context, in Input, exclID int) error {
	if _, err := svc.lvlRepo.Get(ctx, in.LevelID); err != nil {
		return err
	}
	grd, err := svc.repo.GetByName(ctx, in.LevelID, in.Name)
	switch {
	case errors.Cause(err) == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting grade by name")
	case grd.ID != exclID:
		return ErrExists
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, in Input) (Grade, error) {
	if err := svc.check(ctx, in, 0); err != nil {
		return Grade{}, err
	}
	grd, err := svc.repo.Create(ctx, Grade{Name: in.Name, NumericValue: *in.NumericValue, LevelID: in.LevelID})
	if err != nil {
		return Grade{}, errors.Wrap(err, "inserting grade")
	}
	return grd, svc.expand(ctx, &grd)
}

func (svc *Service) Update(ctx context.Context, id int, in Input) (Grade, error) {
	grd, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	if err = svc.check(ctx, in, id); err != nil {
		return Grade{}, err
	}
	grd.Name = in.Name
	grd.NumericValue = *in.NumericValue
	grd.LevelID = in.LevelID
	if grd, err = svc.repo.Update(ctx, grd); err != nil {
		return Grade{}, errors.Wrap(err, "updating grade")
	}
	return grd, svc.expand(ctx, &grd)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return err
	}
	hasSubjects, err := svc.repo.HasSubjects(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking grade subjects")
	}
	hasRegistrations, err := svc.repo.HasRegistrations(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking grade registrations")
	}
	if hasSubjects || hasRegistrations {
		return ErrReferenced
	}
	return svc.repo.Delete(ctx, id)
}

func (svc *Service) withSubjects(ctx context.Context, grd Grade, assigned bool) (WithSubjects, error) {
	subjects, err := svc.repo.Subjects(ctx, grd.ID, assigned)
	if err != nil {
		return WithSubjects{}, errors.Wrap(err, "listing grade subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return WithSubjects{Grade: grd, Subjects: subjects}, nil
}

// ListWithSubjects returns every grade along with its subjects.
func (svc *Service) ListWithSubjects(ctx context.Context) ([]WithSubjects, error) {
	grades, _, err := svc.List(ctx, core.PageQuery{})
	if err != nil {
		return nil, err
	}
	res := make([]WithSubjects, 0, len(grades))
	for _, grd := range grades {
		ws, err := svc.withSubjects(ctx, grd, true)
		if err != nil {
			return nil, err
		}
		res = append(res, ws)
	}
	return res, nil
}

// GetWithSubjects returns the grade with its assigned subjects, or the subjects it is not assigned.
func (svc *Service) GetWithSubjects(ctx context.Context, id int, assigned bool) (WithSubjects, error) {
	grd, err := svc.Get(ctx, id)
	if err != nil {
		return WithSubjects{}, err
	}
	return svc.withSubjects(ctx, grd, assigned)
}

func (svc *Service) AssignSubject(ctx context.Context, link SubjectLink) (WithSubjects, error) {
	grd, err := svc.Get(ctx, link.GradeID)
	if err != nil {
		return WithSubjects{}, err
	}
	if _, err = svc.subRepo.Get(ctx, link.SubjectID); err != nil {
		return WithSubjects{}, err
	}
	assigned, err := svc.repo.IsSubjectAssigned(ctx, link)
	if err != nil {
		return WithSubjects{}, errors.Wrap(err, "checking grade subject")
	}
	if assigned {
		return WithSubjects{}, ErrSubjectAssigned
	}
	if err = svc.repo.AssignSubject(ctx, link); err != nil {
		return WithSubjects{}, errors.Wrap(err, "assigning subject")
	}
	return svc.withSubjects(ctx, grd, true)
}

func (svc *Service) UnassignSubject(ctx context.Context, link SubjectLink) error {
	if _, err := svc.repo.Get(ctx, link.GradeID); err != nil {
		return err
	}
	if _, err := svc.subRepo.Get(ctx, link.SubjectID); err != nil {
		return err
	}
	assigned, err := svc.repo.IsSubjectAssigned(ctx, link)
	if err != nil {
		return errors.Wrap(err, "checking grade subject")
	}
	if !assigned {
		return ErrSubjectNotAssigned
	}
	hasTeachers, err := svc.repo.SubjectHasTeachers(ctx, link)
	if err != nil {
		return errors.Wrap(err, "checking subject teachers")
	}
	if hasTeachers {
		return ErrSubjectHasTeachers
	}
	return svc.repo.UnassignSubject(ctx, link)
}
