package grade

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/level"
	"github.com/trezcool/madrasa/core/subject"
)

// Grade is a class within a Level (e.g. "Grade 3" of "Primary").
type Grade struct {
	ID            int          `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	NumericValue  int          `json:"numeric_value" db:"numeric_value"`
	LevelID       int          `json:"level_id" db:"level_id"`
	CompositeName string       `json:"composite_name" db:"-"`
	Level         *level.Level `json:"level,omitempty" db:"-"`
}

func (g *Grade) setLevel(lvl level.Level) {
	g.Level = &lvl
	g.CompositeName = CompositeName(g.Name, lvl.Name)
}

// CompositeName is how a grade is displayed: its name followed by its level's.
func CompositeName(gradeName, levelName string) string {
	return gradeName + " " + levelName
}

type Input struct {
	Name         string `json:"name" validate:"required"`
	NumericValue *int   `json:"numeric_value" validate:"required,min=0,max=32767"`
	LevelID      int    `json:"level_id" validate:"required"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	return validate.Struct(in)
}

// WithSubjects is a Grade along with the subjects taught in it.
type WithSubjects struct {
	Grade
	Subjects []subject.Subject `json:"subjects"`
}

// SubjectLink assigns a Subject to a Grade.
type SubjectLink struct {
	GradeID   int `json:"grade_id" db:"grade_id" validate:"required"`
	SubjectID int `json:"subject_id" db:"subject_id" validate:"required"`
}

func (sl *SubjectLink) Validate(validate *validator.Validate) error {
	return validate.Struct(sl)
}
