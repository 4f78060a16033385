package mark

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Key identifies a monthly Mark.
type Key struct {
	StudentID    int `json:"student_id" db:"student_id" validate:"required"`
	GradeID      int `json:"grade_id" db:"grade_id" validate:"required"`
	SubjectID    int `json:"subject_id" db:"subject_id" validate:"required"`
	SchoolYearID int `json:"-" db:"school_year_id"`
	Semester     int `json:"semester" db:"semester" validate:"required,semester"`
	Month        int `json:"month" db:"month" validate:"required,month"`
}

func (k *Key) Validate(validate *validator.Validate) error {
	return validate.Struct(k)
}

// Mark holds the monthly scores of a student in a subject.
type Mark struct {
	Key
	WrittenTest int         `json:"written_test" db:"written_test"`
	OralTest    int         `json:"oral_test" db:"oral_test"`
	Homeworks   int         `json:"homeworks" db:"homeworks"`
	Attendance  int         `json:"attendance" db:"attendance"`
	Notes       null.String `json:"notes" db:"notes"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

func (m Mark) Total() int {
	return m.WrittenTest + m.OralTest + m.Homeworks + m.Attendance
}

// MonthlyOutcome scales the monthly total down to the share it takes in the semester outcome.
func MonthlyOutcome(total float64) float64 {
	return math.Round(total) / 5
}

// FinalOutcome adds the exam score to the average of the semester's monthly outcomes,
// rounded to 2 decimals.
func FinalOutcome(monthlyOutcomes []float64, exam int) float64 {
	var avg float64
	if len(monthlyOutcomes) > 0 {
		var sum float64
		for _, o := range monthlyOutcomes {
			sum += o
		}
		avg = sum / float64(len(monthlyOutcomes))
	}
	return math.Round((avg+float64(exam))*100) / 100
}

// Scores are the monthly scores a teacher submits.
type Scores struct {
	WrittenTest *int        `json:"written_test" validate:"required,min=0"`
	OralTest    *int        `json:"oral_test" validate:"required,min=0"`
	Homeworks   *int        `json:"homeworks" validate:"required,min=0"`
	Attendance  *int        `json:"attendance" validate:"required,min=0"`
	Notes       null.String `json:"notes"`
}

func (s *Scores) Validate(validate *validator.Validate) error {
	return validate.Struct(s)
}

func (s Scores) apply(m *Mark) {
	m.WrittenTest = *s.WrittenTest
	m.OralTest = *s.OralTest
	m.Homeworks = *s.Homeworks
	m.Attendance = *s.Attendance
	m.Notes = s.Notes
}

type Input struct {
	Key
	Scores
}

func (in *Input) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

// Report is a monthly mark as teachers and students read it.
type Report struct {
	StudentID       int         `json:"student_id" db:"student_id"`
	StudentName     string      `json:"student_name" db:"student_name"`
	GradeID         int         `json:"grade_id" db:"grade_id"`
	GradeName       string      `json:"grade_name" db:"grade_name"`
	SubjectID       int         `json:"subject_id" db:"subject_id"`
	SubjectName     string      `json:"subject_name" db:"subject_name"`
	SchoolYearID    int         `json:"school_year_id" db:"school_year_id"`
	SchoolYearTitle string      `json:"school_year_title" db:"school_year_title"`
	Month           int         `json:"month" db:"month"`
	Semester        int         `json:"semester" db:"semester"`
	Attendance      int         `json:"attendance" db:"attendance"`
	OralTest        int         `json:"oral_test" db:"oral_test"`
	Homeworks       int         `json:"homeworks" db:"homeworks"`
	WrittenTest     int         `json:"written_test" db:"written_test"`
	Total           float64     `json:"total" db:"total"`
	MonthlyOutcome  float64     `json:"monthly_outcome" db:"monthly_outcome"`
	Grading         null.String `json:"grading" db:"-"`
}

type ReportFilter struct {
	SchoolYearID int
	GradeID      int
	SubjectID    int
	// optional
	Month     int
	Semester  int
	StudentID int
}

// FinalKey identifies a FinalMark.
type FinalKey struct {
	StudentID    int `json:"student_id" db:"student_id" validate:"required"`
	SubjectID    int `json:"subject_id" db:"subject_id" validate:"required"`
	SchoolYearID int `json:"-" db:"school_year_id"`
	Semester     int `json:"semester" db:"semester" validate:"required,semester"`
}

func (k *FinalKey) Validate(validate *validator.Validate) error {
	return validate.Struct(k)
}

// FinalMark holds the semester exam score of a student in a subject.
type FinalMark struct {
	FinalKey
	Exam int `json:"exam" db:"exam"`
}

type FinalScores struct {
	Exam *int `json:"exam" validate:"required,min=0"`
}

func (s *FinalScores) Validate(validate *validator.Validate) error {
	return validate.Struct(s)
}

type FinalInput struct {
	FinalKey
	FinalScores
	GradeID int `json:"grade_id" validate:"required"`
}

func (in *FinalInput) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

// FinalReport is a final mark as teachers and students read it.
type FinalReport struct {
	StudentID    int         `json:"student_id" db:"student_id"`
	StudentName  string      `json:"student_name" db:"student_name"`
	GradeID      int         `json:"grade_id" db:"grade_id"`
	SubjectID    int         `json:"subject_id" db:"subject_id"`
	SchoolYearID int         `json:"school_year_id" db:"school_year_id"`
	Semester     int         `json:"semester" db:"semester"`
	Exam         int         `json:"exam" db:"exam"`
	FinalOutcome float64     `json:"final_outcome" db:"final_outcome"`
	Grading      null.String `json:"grading" db:"-"`
}

type FinalReportFilter struct {
	SchoolYearID int
	SubjectID    int
	// optional
	GradeID   int
	Semester  int
	StudentID int
}

// StudentMarks are the marks of a student in a subject during a school year.
type StudentMarks struct {
	MonthlyMarks []Report      `json:"monthly_marks"`
	FinalMarks   []FinalReport `json:"final_marks"`
}
