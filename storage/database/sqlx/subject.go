package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/subject"
)

type subjectRepository struct {
	db  *sqlx.DB
	tbl table[subject.Subject]
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{
		db: db,
		tbl: table[subject.Subject]{
			name:     "subjects",
			columns:  []string{"name", "add_to_total", "higher_score", "lower_score"},
			search:   []string{"name"},
			order:    "id",
			notFound: subject.ErrNotFound,
			conflict: subject.ErrExists,
			inUse:    subject.ErrReferenced,
		},
	}
}

func (repo *subjectRepository) Get(ctx context.Context, id int) (subject.Subject, error) {
	return repo.tbl.get(ctx, repo.db, id)
}

func (repo *subjectRepository) GetByName(ctx context.Context, name string) (subject.Subject, error) {
	return repo.tbl.getBy(ctx, repo.db, new(where).add("name = ?", name))
}

func (repo *subjectRepository) List(ctx context.Context, q core.PageQuery) ([]subject.Subject, int, error) {
	return repo.tbl.list(ctx, repo.db, q, nil)
}

func (repo *subjectRepository) Create(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	return repo.tbl.create(ctx, repo.db, sub)
}

func (repo *subjectRepository) Update(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	return repo.tbl.update(ctx, repo.db, sub)
}

func (repo *subjectRepository) Delete(ctx context.Context, id int) error {
	return repo.tbl.delete(ctx, repo.db, id)
}

func (repo *subjectRepository) IsAssigned(ctx context.Context, id int) (bool, error) {
	return exists(ctx, repo.db, "grade_subjects", new(where).add("subject_id = ?", id))
}
