package schoolyear

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
)

type SchoolYear struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartDate core.Date `json:"start_date" db:"start_date"`
	EndDate   core.Date `json:"end_date" db:"end_date"`
	IsActive  bool      `json:"is_active" db:"is_active"`
}

// Prefix is the 4-digit prefix of registration numbers issued during the year:
// the last two digits of the start and end years.
func (sy SchoolYear) Prefix() string {
	return sy.StartDate.Format("06") + sy.EndDate.Format("06")
}

type Input struct {
	Title     string    `json:"title" validate:"required"`
	StartDate core.Date `json:"start_date"`
	EndDate   core.Date `json:"end_date"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	if err := validate.Struct(in); err != nil {
		return err
	}

	var flds []core.FieldError
	if in.StartDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "start_date", Error: "this field is required"})
	}
	if in.EndDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "end_date", Error: "this field is required"})
	}
	if len(flds) == 0 && !in.StartDate.Before(in.EndDate) {
		flds = append(flds, core.FieldError{Field: "end_date", Error: "end date must be after start date"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
