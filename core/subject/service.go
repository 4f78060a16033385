package subject

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

var (
	ErrNotFound   = core.NewNotFoundError("subject not found")
	ErrExists     = core.NewConflictError("a subject with this name already exists")
	ErrAssigned   = core.NewConflictError("cannot delete: this subject is assigned to grades")
	ErrReferenced = core.NewConflictError("cannot delete: there is data depending on this subject")
)

type Repository interface {
	Get(ctx context.Context, id int) (Subject, error)
	GetByName(ctx context.Context, name string) (Subject, error)
	List(ctx context.Context, q core.PageQuery) ([]Subject, int, error)
	Create(ctx context.Context, sub Subject) (Subject, error)
	Update(ctx context.Context, sub Subject) (Subject, error)
	Delete(ctx context.Context, id int) error
	IsAssigned(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id int) (Subject, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) List(ctx context.Context, q core.PageQuery) ([]Subject, int, error) {
	q.Search = core.CleanString(q.Search)
	return svc.repo.List(ctx, q)
}

func (svc *Service) checkName(ctx context.Context, name string, exclID int) error {
	sub, err := svc.repo.GetByName(ctx, name)
	switch {
	case errors.Cause(err) == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting subject by name")
	case sub.ID != exclID:
		return ErrExists
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, in Input) (Subject, error) {
	if err := svc.checkName(ctx, in.Name, 0); err != nil {
		return Subject{}, err
	}
	var sub Subject
	in.apply(&sub)
	return svc.repo.Create(ctx, sub)
}

func (svc *Service) Update(ctx context.Context, id int, in Input) (Subject, error) {
	sub, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if err = svc.checkName(ctx, in.Name, id); err != nil {
		return Subject{}, err
	}
	in.apply(&sub)
	return svc.repo.Update(ctx, sub)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return err
	}
	assigned, err := svc.repo.IsAssigned(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking subject grades")
	}
	if assigned {
		return ErrAssigned
	}
	return svc.repo.Delete(ctx, id)
}
