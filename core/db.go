package core

import "strings"

const MaxPageLimit = 50

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderBy renders orderings as the body of an ORDER BY clause.
func OrderBy(ords ...DBOrdering) string {
	parts := make([]string, 0, len(ords))
	for _, ord := range ords {
		parts = append(parts, ord.String())
	}
	return strings.Join(parts, ", ")
}

// PageQuery holds the common list parameters. A zero Page or Limit means "not paginated".
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

func (q PageQuery) IsPaginated() bool {
	return q.Page > 0 && q.Limit > 0
}

func (q PageQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	CurrentPage  int `json:"current_page"`
	PerPage      int `json:"per_page"`
	TotalRecords int `json:"total_records"`
	TotalPages   int `json:"total_pages"`
}

func NewPagination(q PageQuery, total int) Pagination {
	var pages int
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Pagination{
		CurrentPage:  q.Page,
		PerPage:      q.Limit,
		TotalRecords: total,
		TotalPages:   pages,
	}
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func NewPage[T any](data []T, q PageQuery, total int) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Pagination: NewPagination(q, total)}
}
