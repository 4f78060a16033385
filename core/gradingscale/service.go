package gradingscale

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

var (
	ErrNotFound         = core.NewNotFoundError("grading scale not found")
	ErrNameExists       = core.NewConflictError("a grading scale with this name already exists")
	ErrPercentageExists = core.NewConflictError("a grading scale with these percentages already exists")
)

type Repository interface {
	Get(ctx context.Context, id int) (GradingScale, error)
	GetByName(ctx context.Context, name string) (GradingScale, error)
	// GetByPercentage returns a scale having either the same lowest or the same highest percentage.
	GetByPercentage(ctx context.Context, lowest, highest float64) (GradingScale, error)
	List(ctx context.Context, q core.PageQuery) ([]GradingScale, int, error)
	Create(ctx context.Context, gs GradingScale) (GradingScale, error)
	Update(ctx context.Context, gs GradingScale) (GradingScale, error)
	Delete(ctx context.Context, id int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id int) (GradingScale, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) List(ctx context.Context, q core.PageQuery) ([]GradingScale, int, error) {
	q.Search = core.CleanString(q.Search)
	return svc.repo.List(ctx, q)
}

func (svc *Service) checkUniqueness(ctx context.Context, in Input, exclID int) error {
	gs, err := svc.repo.GetByName(ctx, in.Name)
	switch {
	case errors.Cause(err) == ErrNotFound:
	case err != nil:
		return errors.Wrap(err, "getting grading scale by name")
	case gs.ID != exclID:
		return ErrNameExists
	}

	gs, err = svc.repo.GetByPercentage(ctx, *in.LowestPercentage, *in.HighestPercentage)
	switch {
	case errors.Cause(err) == ErrNotFound:
	case err != nil:
		return errors.Wrap(err, "getting grading scale by percentage")
	case gs.ID != exclID:
		return ErrPercentageExists
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, in Input) (GradingScale, error) {
	if err := svc.checkUniqueness(ctx, in, 0); err != nil {
		return GradingScale{}, err
	}
	return svc.repo.Create(ctx, GradingScale{
		Name:              in.Name,
		LowestPercentage:  *in.LowestPercentage,
		HighestPercentage: *in.HighestPercentage,
		Notes:             in.Notes,
	})
}

func (svc *Service) Update(ctx context.Context, id int, in Input) (GradingScale, error) {
	gs, err := svc.repo.Get(ctx, id)
	if err != nil {
		return GradingScale{}, err
	}
	if err = svc.checkUniqueness(ctx, in, id); err != nil {
		return GradingScale{}, err
	}
	gs.Name = in.Name
	gs.LowestPercentage = *in.LowestPercentage
	gs.HighestPercentage = *in.HighestPercentage
	gs.Notes = in.Notes
	return svc.repo.Update(ctx, gs)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return err
	}
	return svc.repo.Delete(ctx, id)
}
