package level

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
)

// Level is an educational stage grouping several grades (e.g. "Primary").
type Level struct {
	ID    int         `json:"id" db:"id"`
	Name  string      `json:"name" db:"name"`
	Notes null.String `json:"notes" db:"notes"`
}

type Input struct {
	Name  string      `json:"name" validate:"required"`
	Notes null.String `json:"notes"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	return validate.Struct(in)
}
