package nationality

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
)

type Nationality struct {
	ID            int         `json:"id" db:"id"`
	MasculineForm string      `json:"masculine_form" db:"masculine_form"`
	FeminineForm  string      `json:"feminine_form" db:"feminine_form"`
	Notes         null.String `json:"notes" db:"notes"`
}

// Input is used to create or fully update a Nationality.
type Input struct {
	MasculineForm string      `json:"masculine_form" validate:"required"`
	FeminineForm  string      `json:"feminine_form" validate:"required"`
	Notes         null.String `json:"notes"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.MasculineForm = core.CleanString(in.MasculineForm)
	in.FeminineForm = core.CleanString(in.FeminineForm)
	return validate.Struct(in)
}
