package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/assignment"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/gradingscale"
	"github.com/trezcool/madrasa/core/level"
	"github.com/trezcool/madrasa/core/mark"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/registration"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/subject"
	"github.com/trezcool/madrasa/core/user"
)

type assignmentKey struct {
	gradeID, subjectID, schoolYearID int
}

// DB keeps every table in memory behind a single lock, so that repositories can join them.
type DB struct {
	mutex sync.RWMutex
	seq   map[string]int

	nationalities map[int]nationality.Nationality
	users         map[int]user.User
	levels        map[int]level.Level
	grades        map[int]grade.Grade
	subjects      map[int]subject.Subject
	gradeSubjects map[grade.SubjectLink]struct{}
	gradingScales map[int]gradingscale.GradingScale
	schoolYears   map[int]schoolyear.SchoolYear
	registrations map[int]registration.Registration
	assignments   map[assignmentKey]assignment.Assignment
	marks         map[mark.Key]mark.Mark
	finalMarks    map[mark.FinalKey]mark.FinalMark
}

func Open() *DB {
	db := &DB{}
	db.Reset()
	return db
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.seq = make(map[string]int)
	db.nationalities = make(map[int]nationality.Nationality)
	db.users = make(map[int]user.User)
	db.levels = make(map[int]level.Level)
	db.grades = make(map[int]grade.Grade)
	db.subjects = make(map[int]subject.Subject)
	db.gradeSubjects = make(map[grade.SubjectLink]struct{})
	db.gradingScales = make(map[int]gradingscale.GradingScale)
	db.schoolYears = make(map[int]schoolyear.SchoolYear)
	db.registrations = make(map[int]registration.Registration)
	db.assignments = make(map[assignmentKey]assignment.Assignment)
	db.marks = make(map[mark.Key]mark.Mark)
	db.finalMarks = make(map[mark.FinalKey]mark.FinalMark)
}

func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}

// byID returns the rows of a table ordered by id.
func byID[T any](table map[int]T) []T {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, table[id])
	}
	return rows
}

func filter[T any](rows []T, keep func(T) bool) []T {
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

// page returns the rows of the page q asks for (all of them when q is not paginated) and their total.
func page[T any](rows []T, q core.PageQuery) ([]T, int) {
	total := len(rows)
	if !q.IsPaginated() {
		return rows, total
	}
	start := q.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return rows[start:end], total
}

// matches reports whether any of values contains search, ignoring case.
func matches(search string, values ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

func (db *DB) gradeName(grd grade.Grade) string {
	return grade.CompositeName(grd.Name, db.levels[grd.LevelID].Name)
}
