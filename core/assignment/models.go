package assignment

import (
	"github.com/go-playground/validator/v10"
)

// Assignment grants a teacher the teaching of a subject in a grade during a school year.
// There is at most one teacher per (grade, subject, school year).
type Assignment struct {
	TeacherID    int `json:"teacher_id" db:"teacher_id"`
	GradeID      int `json:"grade_id" db:"grade_id"`
	SubjectID    int `json:"subject_id" db:"subject_id"`
	SchoolYearID int `json:"school_year_id" db:"school_year_id"`
}

type Input struct {
	TeacherID int `json:"teacher_id" validate:"required"`
	GradeID   int `json:"grade_id" validate:"required"`
	SubjectID int `json:"subject_id" validate:"required"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

type Ref struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type GradeRef struct {
	ID            int    `json:"id" db:"id"`
	CompositeName string `json:"composite_name" db:"composite_name"`
}

// TeacherSubject is a subject a teacher teaches in a grade.
type TeacherSubject struct {
	ID      int    `json:"id" db:"id"` // teacher
	Name    string `json:"name" db:"name"`
	Subject Ref    `json:"subject" db:"subject"`
}

type TeacherRef struct {
	ID       int    `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
}

// Item is how assignments are listed.
type Item struct {
	Teacher      TeacherRef `json:"teacher" db:"teacher"`
	Grade        GradeRef   `json:"grade" db:"grade"`
	Subject      Ref        `json:"subject" db:"subject"`
	SchoolYearID int        `json:"school_year_id" db:"school_year_id"`
}

type Filter struct {
	SchoolYearID int
	GradeID      int // optional
	TeacherID    int // optional
}
