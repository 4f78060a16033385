package gradingscale

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
)

// GradingScale is a named percentage band (e.g. "Excellent": 90-100).
type GradingScale struct {
	ID                int         `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	LowestPercentage  float64     `json:"lowest_percentage" db:"lowest_percentage"`
	HighestPercentage float64     `json:"highest_percentage" db:"highest_percentage"`
	Notes             null.String `json:"notes" db:"notes"`
}

func (gs GradingScale) Contains(pct float64) bool {
	return gs.LowestPercentage <= pct && pct <= gs.HighestPercentage
}

// Label returns the name of the scale whose band contains pct.
// When bands share a bound, the higher band wins.
func Label(scales []GradingScale, pct float64) null.String {
	var (
		best  GradingScale
		found bool
	)
	for _, gs := range scales {
		if gs.Contains(pct) && (!found || gs.LowestPercentage > best.LowestPercentage) {
			best, found = gs, true
		}
	}
	if !found {
		return null.String{}
	}
	return null.StringFrom(best.Name)
}

type Input struct {
	Name              string      `json:"name" validate:"required"`
	LowestPercentage  *float64    `json:"lowest_percentage" validate:"required,min=0,max=100"`
	HighestPercentage *float64    `json:"highest_percentage" validate:"required,min=0,max=100"`
	Notes             null.String `json:"notes"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	if err := validate.Struct(in); err != nil {
		return err
	}
	lowest, highest := *in.LowestPercentage, *in.HighestPercentage
	switch {
	case lowest == highest:
		return core.NewValidationError(nil, core.FieldError{Field: "lowest_percentage", Error: "percentages must be different"})
	case lowest > highest:
		return core.NewValidationError(nil, core.FieldError{Field: "lowest_percentage", Error: "lowest percentage is greater than highest percentage"})
	}
	return nil
}
