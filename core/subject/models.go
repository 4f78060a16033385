package subject

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
)

const (
	DefaultHigherScore = 100
	DefaultLowerScore  = 50
)

type Subject struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	AddToTotal  bool   `json:"add_to_total" db:"add_to_total"`
	HigherScore int    `json:"higher_score" db:"higher_score"`
	LowerScore  int    `json:"lower_score" db:"lower_score"`
}

// Input is used to create or update a Subject. Omitted optional fields take their defaults.
type Input struct {
	Name        string `json:"name" validate:"required"`
	AddToTotal  *bool  `json:"add_to_total"`
	HigherScore *int   `json:"higher_score" validate:"omitempty,min=1"`
	LowerScore  *int   `json:"lower_score" validate:"omitempty,min=0"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.lowerScore() >= in.higherScore() {
		return core.NewValidationError(nil, core.FieldError{
			Field: "lower_score",
			Error: "lower score must be less than higher score",
		})
	}
	return nil
}

func (in Input) addToTotal() bool {
	if in.AddToTotal == nil {
		return true
	}
	return *in.AddToTotal
}

func (in Input) higherScore() int {
	if in.HigherScore == nil {
		return DefaultHigherScore
	}
	return *in.HigherScore
}

func (in Input) lowerScore() int {
	if in.LowerScore == nil {
		return DefaultLowerScore
	}
	return *in.LowerScore
}

func (in Input) apply(sub *Subject) {
	sub.Name = in.Name
	sub.AddToTotal = in.addToTotal()
	sub.HigherScore = in.higherScore()
	sub.LowerScore = in.lowerScore()
}
