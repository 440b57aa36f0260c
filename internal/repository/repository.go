// Package repository is the local stand-in for the REST backend. It speaks
// the same contract as internal/api (pages, derived goal counters, field
// validation errors) on top of a SQL database.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/apierr"
	"github.com/templui/folio/internal/model"
)

const DefaultPageSize = 20

// Backend groups the repositories behind one database handle.
type Backend struct {
	Goals        GoalRepository
	Steps        StepRepository
	Projects     ProjectRepository
	Certificates CertificateRepository
}

func NewBackend(db *sqlx.DB, pageSize int) *Backend {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Backend{
		Goals:        NewGoalRepository(db, pageSize),
		Steps:        NewStepRepository(db),
		Projects:     NewProjectRepository(db, pageSize),
		Certificates: NewCertificateRepository(db),
	}
}

// query collects WHERE conditions and numbers their placeholders. Both
// sqlite and pgx accept $N.
type query struct {
	conds []string
	args  []any
}

// bind appends arg and returns its placeholder.
func (q *query) bind(arg any) string {
	q.args = append(q.args, arg)
	return "$" + strconv.Itoa(len(q.args))
}

// where adds a condition; each "?" in cond is replaced by the next arg.
func (q *query) where(cond string, args ...any) {
	for _, arg := range args {
		cond = strings.Replace(cond, "?", q.bind(arg), 1)
	}
	q.conds = append(q.conds, cond)
}

func (q *query) clause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

// orderBy maps a list ordering ("title", "-deadline") onto a whitelisted
// SQL expression. Unknown fields fall back to def.
func orderBy(ordering string, allowed map[string]string, def string) string {
	field, desc := strings.CutPrefix(strings.TrimSpace(ordering), "-")
	expr, ok := allowed[field]
	if !ok {
		return " ORDER BY " + def
	}
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return " ORDER BY " + expr + dir + ", id ASC"
}

// paginate appends LIMIT/OFFSET and fills Next/Previous as relative
// "?page=N" links once the total count is known.
func paginate[T any](q *query, page, size int) (string, func(count int, results []T) *model.Page[T]) {
	if page < 1 {
		page = 1
	}
	limit := " LIMIT " + q.bind(size) + " OFFSET " + q.bind((page-1)*size)

	return limit, func(count int, results []T) *model.Page[T] {
		if results == nil {
			results = []T{}
		}
		p := &model.Page[T]{Count: count, Results: results}
		if page*size < count {
			p.Next = "?page=" + strconv.Itoa(page+1)
		}
		if page > 1 {
			p.Previous = "?page=" + strconv.Itoa(page-1)
		}
		return p
	}
}

func notFound(kind string, id int64) error {
	return apierr.NotFound(fmt.Sprintf("%s %d not found.", kind, id))
}

// affected turns a zero-row write into a not-found error.
func affected(res sql.Result, kind string, id int64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound(kind, id)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func parseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return id, err == nil
}
