package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/mark"
)

type markRepository struct {
	db *DB
}

var _ mark.Repository = (*markRepository)(nil)

func NewMarkRepository(db *DB) *markRepository {
	return &markRepository{db: db}
}

func (repo *markRepository) Get(_ context.Context, key mark.Key) (mark.Mark, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.marks[key]; ok {
		return m, nil
	}
	return mark.Mark{}, mark.ErrNotFound
}

func (repo *markRepository) Create(_ context.Context, m mark.Mark) (mark.Mark, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.marks[m.Key]; ok {
		return mark.Mark{}, mark.ErrExists
	}
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt
	repo.db.marks[m.Key] = m
	return m, nil
}

func (repo *markRepository) Update(_ context.Context, m mark.Mark) (mark.Mark, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	old, ok := repo.db.marks[m.Key]
	if !ok {
		return mark.Mark{}, mark.ErrNotFound
	}
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	repo.db.marks[m.Key] = m
	return m, nil
}

func (repo *markRepository) Delete(_ context.Context, key mark.Key) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.marks[key]; !ok {
		return mark.ErrNotFound
	}
	delete(repo.db.marks, key)
	return nil
}

func (repo *markRepository) report(m mark.Mark) mark.Report {
	total := float64(m.Total())
	return mark.Report{
		StudentID:       m.StudentID,
		StudentName:     repo.db.users[m.StudentID].FullName(),
		GradeID:         m.GradeID,
		GradeName:       repo.db.gradeName(repo.db.grades[m.GradeID]),
		SubjectID:       m.SubjectID,
		SubjectName:     repo.db.subjects[m.SubjectID].Name,
		SchoolYearID:    m.SchoolYearID,
		SchoolYearTitle: repo.db.schoolYears[m.SchoolYearID].Title,
		Month:           m.Month,
		Semester:        m.Semester,
		Attendance:      m.Attendance,
		OralTest:        m.OralTest,
		Homeworks:       m.Homeworks,
		WrittenTest:     m.WrittenTest,
		Total:           total,
		MonthlyOutcome:  mark.MonthlyOutcome(total),
	}
}

func (repo *markRepository) Report(_ context.Context, f mark.ReportFilter, q core.PageQuery) ([]mark.Report, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rows []mark.Report
	for key, m := range repo.db.marks {
		if key.SchoolYearID != f.SchoolYearID || key.SubjectID != f.SubjectID ||
			(f.GradeID != 0 && key.GradeID != f.GradeID) ||
			(f.Month != 0 && key.Month != f.Month) ||
			(f.Semester != 0 && key.Semester != f.Semester) ||
			(f.StudentID != 0 && key.StudentID != f.StudentID) {
			continue
		}
		rows = append(rows, repo.report(m))
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.StudentName != b.StudentName:
			return a.StudentName > b.StudentName
		case a.Semester != b.Semester:
			return a.Semester < b.Semester
		case a.Month != b.Month:
			return a.Month < b.Month
		}
		return a.StudentID < b.StudentID
	})
	rows, total := page(rows, q)
	return rows, total, nil
}

func (repo *markRepository) GetFinal(_ context.Context, key mark.FinalKey) (mark.FinalMark, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if fm, ok := repo.db.finalMarks[key]; ok {
		return fm, nil
	}
	return mark.FinalMark{}, mark.ErrNotFound
}

func (repo *markRepository) CreateFinal(_ context.Context, fm mark.FinalMark) (mark.FinalMark, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.finalMarks[fm.FinalKey]; ok {
		return mark.FinalMark{}, mark.ErrExists
	}
	repo.db.finalMarks[fm.FinalKey] = fm
	return fm, nil
}

func (repo *markRepository) UpdateFinal(_ context.Context, fm mark.FinalMark) (mark.FinalMark, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.finalMarks[fm.FinalKey]; !ok {
		return mark.FinalMark{}, mark.ErrNotFound
	}
	repo.db.finalMarks[fm.FinalKey] = fm
	return fm, nil
}

func (repo *markRepository) DeleteFinal(_ context.Context, key mark.FinalKey) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.finalMarks[key]; !ok {
		return mark.ErrNotFound
	}
	delete(repo.db.finalMarks, key)
	return nil
}

func (repo *markRepository) finalReport(fm mark.FinalMark) mark.FinalReport {
	var outcomes []float64
	for key, m := range repo.db.marks {
		if key.StudentID == fm.StudentID && key.SubjectID == fm.SubjectID &&
			key.SchoolYearID == fm.SchoolYearID && key.Semester == fm.Semester {
			outcomes = append(outcomes, mark.MonthlyOutcome(float64(m.Total())))
		}
	}
	var gradeID int
	for _, reg := range repo.db.registrations {
		if reg.StudentID == fm.StudentID && reg.SchoolYearID == fm.SchoolYearID {
			gradeID = reg.GradeID
			break
		}
	}
	return mark.FinalReport{
		StudentID:    fm.StudentID,
		StudentName:  repo.db.users[fm.StudentID].FullName(),
		GradeID:      gradeID,
		SubjectID:    fm.SubjectID,
		SchoolYearID: fm.SchoolYearID,
		Semester:     fm.Semester,
		Exam:         fm.Exam,
		FinalOutcome: mark.FinalOutcome(outcomes, fm.Exam),
	}
}

func (repo *markRepository) FinalReport(_ context.Context, f mark.FinalReportFilter, q core.PageQuery) ([]mark.FinalReport, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var rows []mark.FinalReport
	for key, fm := range repo.db.finalMarks {
		if key.SchoolYearID != f.SchoolYearID || key.SubjectID != f.SubjectID ||
			(f.Semester != 0 && key.Semester != f.Semester) ||
			(f.StudentID != 0 && key.StudentID != f.StudentID) {
			continue
		}
		row := repo.finalReport(fm)
		if f.GradeID != 0 && row.GradeID != f.GradeID {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.StudentName != b.StudentName:
			return a.StudentName < b.StudentName
		case a.Semester != b.Semester:
			return a.Semester < b.Semester
		}
		return a.StudentID < b.StudentID
	})
	rows, total := page(rows, q)
	return rows, total, nil
}
