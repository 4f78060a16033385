package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// trapNoRowsErr turns sql.ErrNoRows into notFound.
func trapNoRowsErr(err, notFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return err
}

func trapPqErr(err error, code pq.ErrorCode, to error) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == code {
		return to
	}
	return err
}

// trapUniqueErr turns unique violations into conflict.
func trapUniqueErr(err, conflict error) error {
	return trapPqErr(err, pqUniqueViolation, conflict)
}

// trapForeignKeyErr turns foreign key violations, raised when deleting a referenced row, into inUse.
func trapForeignKeyErr(err, inUse error) error {
	return trapPqErr(err, pqForeignKeyViolation, inUse)
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// where accumulates the conditions of a WHERE clause and their positional args.
type where struct {
	conds []string
	args  []interface{}
}

// add appends cond, in which every `?` stands for arg.
func (w *where) add(cond string, arg interface{}) *where {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
	return w
}

// addIf calls add when arg is not its zero value.
func (w *where) addIf(cond string, arg int) *where {
	if arg != 0 {
		w.add(cond, arg)
	}
	return w
}

func (w *where) search(s string, columns ...string) *where {
	if s == "" || len(columns) == 0 {
		return w
	}
	w.args = append(w.args, s)
	ph := fmt.Sprintf("$%d", len(w.args))
	ors := make([]string, 0, len(columns))
	for _, col := range columns {
		ors = append(ors, fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", col, ph))
	}
	w.conds = append(w.conds, "("+strings.Join(ors, " OR ")+")")
	return w
}

func (w *where) String() string {
	if w == nil || len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *where) params() []interface{} {
	if w == nil {
		return nil
	}
	return w.args
}

// paginate queries one page of rows (all of them when q is not paginated) along with the total count.
func paginate[T any](ctx context.Context, db sqlx.QueryerContext, from string, w *where, q core.PageQuery, orderBy string, columns ...string) ([]T, int, error) {
	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}
	query := "SELECT " + cols + " FROM " + from + w.String()
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	if q.IsPaginated() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset())
	}

	var rows []T
	if err := sqlx.SelectContext(ctx, db, &rows, query, w.params()...); err != nil {
		return nil, 0, errors.Wrapf(err, "selecting from %s", from)
	}
	if !q.IsPaginated() {
		return rows, len(rows), nil
	}
	total, err := count(ctx, db, from, w)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func count(ctx context.Context, db sqlx.QueryerContext, from string, w *where) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, db, &total, "SELECT COUNT(*) FROM "+from+w.String(), w.params()...); err != nil {
		return 0, errors.Wrapf(err, "counting %s", from)
	}
	return total, nil
}

func exists(ctx context.Context, db sqlx.QueryerContext, from string, w *where) (bool, error) {
	var found bool
	query := "SELECT EXISTS (SELECT 1 FROM " + from + w.String() + ")"
	if err := sqlx.GetContext(ctx, db, &found, query, w.params()...); err != nil {
		return false, errors.Wrapf(err, "checking %s", from)
	}
	return found, nil
}

// table is a generic CRUD over a table with a serial `id` primary key.
type table[T any] struct {
	name     string
	columns  []string // written on insert and update
	search   []string // matched by PageQuery.Search
	order    string
	notFound error
	conflict error // unique violations on write
	inUse    error // foreign key violations on delete
	// constraints overrides conflict for specific constraint names
	constraints map[string]error
}

func (t table[T]) trapWrite(err error) error {
	err = trapNoRowsErr(err, t.notFound)
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		if cErr, ok := t.constraints[pqErr.Constraint]; ok {
			return cErr
		}
	}
	return trapUniqueErr(err, t.conflict)
}

func (t table[T]) trapDelete(err error) error {
	if t.inUse == nil {
		return err
	}
	return trapForeignKeyErr(err, t.inUse)
}

func (t table[T]) get(ctx context.Context, db sqlx.QueryerContext, id int) (T, error) {
	return t.getBy(ctx, db, new(where).add("id = ?", id))
}

func (t table[T]) getBy(ctx context.Context, db sqlx.QueryerContext, w *where) (T, error) {
	var obj T
	query := "SELECT * FROM " + t.name + w.String() + " LIMIT 1"
	if err := sqlx.GetContext(ctx, db, &obj, query, w.params()...); err != nil {
		return obj, trapNoRowsErr(err, t.notFound)
	}
	return obj, nil
}

func (t table[T]) list(ctx context.Context, db sqlx.QueryerContext, q core.PageQuery, w *where) ([]T, int, error) {
	if w == nil {
		w = new(where)
	}
	w.search(q.Search, t.search...)
	return paginate[T](ctx, db, t.name, w, q, t.order)
}

// namedReturning runs a named query returning the written row.
func (t table[T]) namedReturning(ctx context.Context, db sqlx.ExtContext, query string, obj T) (T, error) {
	var res T
	q, args, err := sqlx.Named(query, obj)
	if err != nil {
		return res, errors.Wrap(err, "binding named query")
	}
	if err = sqlx.GetContext(ctx, db, &res, db.Rebind(q), args...); err != nil {
		return res, t.trapWrite(err)
	}
	return res, nil
}

func (t table[T]) create(ctx context.Context, db sqlx.ExtContext, obj T) (T, error) {
	names := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		names = append(names, ":"+col)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		t.name, strings.Join(t.columns, ", "), strings.Join(names, ", "),
	)
	return t.namedReturning(ctx, db, query, obj)
}

func (t table[T]) update(ctx context.Context, db sqlx.ExtContext, obj T) (T, error) {
	sets := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		sets = append(sets, col+" = :"+col)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id RETURNING *", t.name, strings.Join(sets, ", "))
	return t.namedReturning(ctx, db, query, obj)
}

func (t table[T]) delete(ctx context.Context, db sqlx.ExecerContext, id int) error {
	return t.deleteBy(ctx, db, new(where).add("id = ?", id))
}

func (t table[T]) deleteBy(ctx context.Context, db sqlx.ExecerContext, w *where) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+t.name+w.String(), w.params()...)
	if err != nil {
		return t.trapDelete(errors.Wrapf(err, "deleting from %s", t.name))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return t.notFound
	}
	return nil
}
