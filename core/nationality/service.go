package nationality

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

var (
	ErrNotFound   = core.NewNotFoundError("nationality not found")
	ErrExists     = core.NewConflictError("a nationality with these forms already exists")
	ErrReferenced = core.NewConflictError("cannot delete: there is data depending on this nationality")
)

type Repository interface {
	Get(ctx context.Context, id int) (Nationality, error)
	// GetByName returns the Nationality whose masculine or feminine form equals any of names.
	GetByName(ctx context.Context, names ...string) (Nationality, error)
	List(ctx context.Context, q core.PageQuery) ([]Nationality, int, error)
	Create(ctx context.Context, nat Nationality) (Nationality, error)
	Update(ctx context.Context, nat Nationality) (Nationality, error)
	Delete(ctx context.Context, id int) error
	IsReferenced(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id int) (Nationality, error) {
	return svc.repo.Get(ctx, id)
}

// List returns all nationalities, or a single page of them when q is paginated.
// Search matches either form.
func (svc *Service) List(ctx context.Context, q core.PageQuery) ([]Nationality, int, error) {
	q.Search = core.CleanString(q.Search)
	return svc.repo.List(ctx, q)
}

func (svc *Service) checkUniqueness(ctx context.Context, in Input, exclID int) error {
	nat, err := svc.repo.GetByName(ctx, in.MasculineForm, in.FeminineForm)
	switch {
	case errors.Cause(err) == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting nationality by name")
	case nat.ID != exclID:
		return ErrExists
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, in Input) (Nationality, error) {
	if err := svc.checkUniqueness(ctx, in, 0); err != nil {
		return Nationality{}, err
	}
	return svc.repo.Create(ctx, Nationality{
		MasculineForm: in.MasculineForm,
		FeminineForm:  in.FeminineForm,
		Notes:         in.Notes,
	})
}

func (svc *Service) Update(ctx context.Context, id int, in Input) (Nationality, error) {
	nat, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Nationality{}, err
	}
	if err = svc.checkUniqueness(ctx, in, id); err != nil {
		return Nationality{}, err
	}
	nat.MasculineForm = in.MasculineForm
	nat.FeminineForm = in.FeminineForm
	nat.Notes = in.Notes
	return svc.repo.Update(ctx, nat)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return err
	}
	referenced, err := svc.repo.IsReferenced(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking nationality references")
	}
	if referenced {
		return ErrReferenced
	}
	return svc.repo.Delete(ctx, id)
}
