package schoolyear

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

var (
	ErrNotFound         = core.NewNotFoundError("school year not found")
	ErrExists           = core.NewConflictError("a school year with this title already exists")
	ErrNoCurrent        = core.NewNotFoundError("there is no active school year")
	ErrNoActiveYear     = core.NewInvalidError("there is no active school year")
	ErrHasRegistrations = core.NewConflictError("cannot delete: there are students registered in this school year")
	ErrReferenced       = core.NewConflictError("cannot delete: there is data depending on this school year")
)

type Repository interface {
	Get(ctx context.Context, id int) (SchoolYear, error)
	GetByTitle(ctx context.Context, title string) (SchoolYear, error)
	// GetActive returns ErrNotFound when no school year is active.
	GetActive(ctx context.Context) (SchoolYear, error)
	// List orders school years by id, newest first.
	List(ctx context.Context, q core.PageQuery) ([]SchoolYear, int, error)
	Create(ctx context.Context, sy SchoolYear) (SchoolYear, error)
	Update(ctx context.Context, sy SchoolYear) (SchoolYear, error)
	// Activate deactivates every school year then activates the one identified by id, atomically.
	Activate(ctx context.Context, id int) (SchoolYear, error)
	// Delete removes the school year. When it was the active one, the school year
	// created right before it (highest lower id) becomes active, atomically.
	Delete(ctx context.Context, id int) error
	HasRegistrations(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id int) (SchoolYear, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) List(ctx context.Context, q core.PageQuery) ([]SchoolYear, int, error) {
	q.Search = core.CleanString(q.Search)
	return svc.repo.List(ctx, q)
}

// Current returns the active school year, or ErrNoCurrent.
func (svc *Service) Current(ctx context.Context) (SchoolYear, error) {
	sy, err := svc.repo.GetActive(ctx)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return SchoolYear{}, ErrNoCurrent
		}
		return SchoolYear{}, errors.Wrap(err, "getting active school year")
	}
	return sy, nil
}

// RequireCurrent is like Current but fails with ErrNoActiveYear,
// for operations which are meaningless outside of an active school year.
func (svc *Service) RequireCurrent(ctx context.Context) (SchoolYear, error) {
	sy, err := svc.Current(ctx)
	if errors.Cause(err) == ErrNoCurrent {
		return SchoolYear{}, ErrNoActiveYear
	}
	return sy, err
}

// CurrentOrGet returns the school year identified by id, or the active one when id is 0.
// found is false when a school year could not be resolved.
func (svc *Service) CurrentOrGet(ctx context.Context, id int) (sy SchoolYear, found bool, err error) {
	if id == 0 {
		sy, err = svc.Current(ctx)
	} else {
		sy, err = svc.repo.Get(ctx, id)
	}
	switch errors.Cause(err) {
	case nil:
		return sy, true, nil
	case ErrNoCurrent, ErrNotFound:
		return SchoolYear{}, false, nil
	}
	return SchoolYear{}, false, err
}

func (svc *Service) checkTitle(ctx context.Context, title string, exclID int) error {
	sy, err := svc.repo.GetByTitle(ctx, title)
	switch {
	case errors.Cause(err) == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting school year by title")
	case sy.ID != exclID:
		return ErrExists
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, in Input) (SchoolYear, error) {
	if err := svc.checkTitle(ctx, in.Title, 0); err != nil {
		return SchoolYear{}, err
	}
	return svc.repo.Create(ctx, SchoolYear{Title: in.Title, StartDate: in.StartDate, EndDate: in.EndDate})
}

func (svc *Service) Update(ctx context.Context, id int, in Input) (SchoolYear, error) {
	sy, err := svc.repo.Get(ctx, id)
	if err != nil {
		return SchoolYear{}, err
	}
	if err = svc.checkTitle(ctx, in.Title, id); err != nil {
		return SchoolYear{}, err
	}
	sy.Title = in.Title
	sy.StartDate = in.StartDate
	sy.EndDate = in.EndDate
	return svc.repo.Update(ctx, sy)
}

func (svc *Service) Activate(ctx context.Context, id int) (SchoolYear, error) {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return SchoolYear{}, err
	}
	return svc.repo.Activate(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return err
	}
	hasRegistrations, err := svc.repo.HasRegistrations(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking school year registrations")
	}
	if hasRegistrations {
		return ErrHasRegistrations
	}
	return svc.repo.Delete(ctx, id)
}
