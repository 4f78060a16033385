package registration

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/schoolyear"
)

// Registration enrolls a student in a grade for a school year.
type Registration struct {
	ID                int       `json:"id" db:"id"`
	RegiNo            string    `json:"regi_no" db:"regi_no"`
	StudentID         int       `json:"student_id" db:"student_id"`
	GradeID           int       `json:"grade_id" db:"grade_id"`
	SchoolYearID      int       `json:"school_year_id" db:"school_year_id"`
	OldRegistrationID null.Int  `json:"old_registration_id" db:"old_registration_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// RegiNo builds the registration number of the nth (1-based) student registered in grd during sy.
func RegiNo(sy schoolyear.SchoolYear, grd grade.Grade, nth int) string {
	return NewRegiNoSeq(sy, grd).Format(nth)
}

// RegiNoSeq numbers the registrations of a grade during a school year:
// a prefix made of the school year and grade, followed by a zero-padded sequence.
type RegiNoSeq struct {
	Prefix string
}

func NewRegiNoSeq(sy schoolyear.SchoolYear, grd grade.Grade) RegiNoSeq {
	return RegiNoSeq{Prefix: fmt.Sprintf("%s%d", sy.Prefix(), grd.NumericValue)}
}

func (s RegiNoSeq) Format(nth int) string {
	return fmt.Sprintf("%s%03d", s.Prefix, nth)
}

// Next returns the registration number following the highest sequence used so far.
func (s RegiNoSeq) Next(last int) string {
	return s.Format(last + 1)
}

// Of returns the sequence of regiNo, 0 when regiNo is not numbered by s.
func (s RegiNoSeq) Of(regiNo string) int {
	if !strings.HasPrefix(regiNo, s.Prefix) {
		return 0
	}
	seq, err := strconv.Atoi(regiNo[len(s.Prefix):])
	if err != nil {
		return 0
	}
	return seq
}

type StudentRef struct {
	ID       int    `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
}

type GradeRef struct {
	ID            int    `json:"id" db:"id"`
	CompositeName string `json:"composite_name" db:"composite_name"`
}

type SchoolYearRef struct {
	ID    int    `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// Item is how registrations are listed.
type Item struct {
	Student    StudentRef    `json:"student" db:"student"`
	Grade      GradeRef      `json:"grade" db:"grade"`
	SchoolYear SchoolYearRef `json:"school_year" db:"school_year"`
	RegiNo     string        `json:"regi_no" db:"regi_no"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// StudentItem is how a student sees their own registrations.
type StudentItem struct {
	GradeID         int    `json:"grade_id" db:"grade_id"`
	GradeName       string `json:"grade_name" db:"grade_name"`
	SchoolYearID    int    `json:"school_year_id" db:"school_year_id"`
	SchoolYearTitle string `json:"school_year_title" db:"school_year_title"`
}

type Filter struct {
	SchoolYearID int
	GradeID      int // optional
}

type Input struct {
	StudentID int `json:"student_id" validate:"required"`
	GradeID   int `json:"grade_id" validate:"required"`
}

func (in *Input) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}
