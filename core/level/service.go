package level

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

var (
	ErrNotFound  = core.NewNotFoundError("level not found")
	ErrExists    = core.NewConflictError("a level with this name already exists")
	ErrHasGrades = core.NewConflictError("cannot delete: there are grades in this level")
)

type Repository interface {
	Get(ctx context.Context, id int) (Level, error)
	GetByName(ctx context.Context, name string) (Level, error)
	List(ctx context.Context, q core.PageQuery) ([]Level, int, error)
	Create(ctx context.Context, lvl Level) (Level, error)
	Update(ctx context.Context, lvl Level) (Level, error)
	Delete(ctx context.Context, id int) error
	HasGrades(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id int) (Level, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) List(ctx context.Context, q core.PageQuery) ([]Level, int, error) {
	q.Search = core.CleanString(q.Search)
	return svc.repo.List(ctx, q)
}

func (svc *Service) checkName(ctx context.Context, name string, exclID int) error {
	lvl, err := svc.repo.GetByName(ctx, name)
	switch {
	case errors.Cause(err) == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting level by name")
	case lvl.ID != exclID:
		return ErrExists
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, in Input) (Level, error) {
	if err := svc.checkName(ctx, in.Name, 0); err != nil {
		return Level{}, err
	}
	return svc.repo.Create(ctx, Level{Name: in.Name, Notes: in.Notes})
}

func (svc *Service) Update(ctx context.Context, id int, in Input) (Level, error) {
	lvl, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Level{}, err
	}
	if err = svc.checkName(ctx, in.Name, id); err != nil {
		return Level{}, err
	}
	lvl.Name = in.Name
	lvl.Notes = in.Notes
	return svc.repo.Update(ctx, lvl)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return err
	}
	hasGrades, err := svc.repo.HasGrades(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking level grades")
	}
	if hasGrades {
		return ErrHasGrades
	}
	return svc.repo.Delete(ctx, id)
}
