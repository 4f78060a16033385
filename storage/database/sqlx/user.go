package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

const userFullName = "CONCAT_WS(' ', first_name, father_name, gfather_name, last_name)"

type userRepository struct {
	db  *sqlx.DB
	tbl table[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
		tbl: table[user.User]{
			name: "users",
			columns: []string{
				"first_name", "father_name", "gfather_name", "last_name", "gender", "date_of_birth",
				"nationality_id", "username", "password", "is_active", "role",
			},
			search:   []string{userFullName},
			order:    "id",
			notFound: user.ErrNotFound,
			conflict: user.ErrUsernameExists,
			inUse:    user.ErrReferenced,
		},
	}
}

func (repo *userRepository) Get(ctx context.Context, id int) (user.User, error) {
	return repo.tbl.get(ctx, repo.db, id)
}

func (repo *userRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.tbl.getBy(ctx, repo.db, new(where).add("username = ?", username))
}

func (repo *userRepository) List(ctx context.Context, role user.Role, q core.PageQuery) ([]user.User, int, error) {
	return repo.tbl.list(ctx, repo.db, q, new(where).add("role = ?", string(role)))
}

func (repo *userRepository) Create(ctx context.Context, usr user.User) (user.User, error) {
	return repo.tbl.create(ctx, repo.db, usr)
}

func (repo *userRepository) Update(ctx context.Context, usr user.User) (user.User, error) {
	return repo.tbl.update(ctx, repo.db, usr)
}

func (repo *userRepository) SetPassword(ctx context.Context, id int, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE users SET password = $1 WHERE id = $2", hash, id)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) Delete(ctx context.Context, id int) error {
	return repo.tbl.delete(ctx, repo.db, id)
}

func (repo *userRepository) Count(ctx context.Context, role user.Role) (int, error) {
	return count(ctx, repo.db, "users", new(where).add("role = ?", string(role)))
}

func (repo *userRepository) HasAssignments(ctx context.Context, teacherID int) (bool, error) {
	return exists(ctx, repo.db, "assigned_teachers", new(where).add("teacher_id = ?", teacherID))
}

func (repo *userRepository) HasRegistrations(ctx context.Context, studentID int) (bool, error) {
	return exists(ctx, repo.db, "registrations", new(where).add("student_id = ?", studentID))
}
