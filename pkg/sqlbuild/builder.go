// Package sqlbuild assembles parameterized SET and WHERE clauses from sparse input.
// Column names come from code-controlled Column constants; values are always bound.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
)

// Column is an allow-listed column name. Declare them as constants next to each entity.
type Column string

// UpdatedAt is appended to every update that changed at least one field.
const UpdatedAt Column = "updated_at"

// Update collects column assignments for a single-row UPDATE.
type Update struct {
	table  string
	cols   []Column
	args   []any
	guards []string
	gargs  []any
}

func NewUpdate(table string) *Update { return &Update{table: table} }

// Set records an assignment. A nil value is an explicit NULL.
func (u *Update) Set(col Column, v any) *Update {
	u.cols = append(u.cols, col)
	u.args = append(u.args, v)
	return u
}

// SetOpt records col only when the Optional was supplied by the caller.
func SetOpt[T any](u *Update, col Column, o Optional[T]) *Update {
	if !o.Set {
		return u
	}
	return u.Set(col, o.Arg())
}

// Guard adds a predicate that must hold for the row to be updated. expr is
// code-controlled SQL with a single %s where the bound value goes.
func (u *Update) Guard(expr string, v any) *Update {
	u.guards = append(u.guards, expr)
	u.gargs = append(u.gargs, v)
	return u
}

// Len is the number of caller-supplied assignments.
func (u *Update) Len() int { return len(u.cols) }

// Fragments returns "col = $N" pieces in insertion order and the matching args.
func (u *Update) Fragments() ([]string, []any) {
	frags := make([]string, len(u.cols))
	for i, c := range u.cols {
		frags[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	args := make([]any, len(u.args))
	copy(args, u.args)
	return frags, args
}

// Build renders "UPDATE t SET ... , updated_at = CURRENT_TIMESTAMP WHERE id = $N RETURNING cols".
// It fails with NoFieldsToUpdate when nothing was set.
func (u *Update) Build(id any, returning ...Column) (string, []any, error) {
	if len(u.cols) == 0 {
		return "", nil, apperr.NoFieldsToUpdate()
	}
	frags, args := u.Fragments()
	frags = append(frags, string(UpdatedAt)+" = CURRENT_TIMESTAMP")
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", u.table, strings.Join(frags, ", "), len(args))
	for i, g := range u.guards {
		args = append(args, u.gargs[i])
		q += " AND " + fmt.Sprintf(g, fmt.Sprintf("$%d", len(args)))
	}
	if len(returning) > 0 {
		q += " RETURNING " + JoinColumns(returning...)
	}
	return q, args, nil
}

// JoinColumns renders a comma separated select list.
func JoinColumns(cols ...Column) string {
	s := make([]string, len(cols))
	for i, c := range cols {
		s[i] = string(c)
	}
	return strings.Join(s, ", ")
}

// Where accumulates AND-ed predicates with positional placeholders.
type Where struct {
	conds []string
	args  []any
}

func NewWhere() *Where { return &Where{} }

func (w *Where) placeholder(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

// Eq adds "col = $N".
func (w *Where) Eq(col Column, v any) *Where {
	w.conds = append(w.conds, fmt.Sprintf("%s = %s", col, w.placeholder(v)))
	return w
}

// EqIf adds Eq only when v is not empty.
func (w *Where) EqIf(col Column, v string) *Where {
	if v == "" {
		return w
	}
	return w.Eq(col, v)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ILike adds a case-insensitive "%term%" match across cols sharing one placeholder.
// Wildcards in term match literally. An empty term adds nothing.
func (w *Where) ILike(term string, cols ...Column) *Where {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return w
	}
	ph := w.placeholder("%" + likeEscaper.Replace(term) + "%")
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s ILIKE %s ESCAPE '\\'", c, ph)
	}
	if len(parts) == 1 {
		w.conds = append(w.conds, parts[0])
	} else {
		w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
	}
	return w
}

// SQL returns " WHERE a AND b" or "" when there are no predicates.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Args returns a copy of the bound values.
func (w *Where) Args() []any {
	out := make([]any, len(w.args))
	copy(out, w.args)
	return out
}

// Page renders the ordering and LIMIT/OFFSET tail for a list query and returns the
// full arg list (filter args followed by limit and offset).
func (w *Where) Page(orderBy string, limit, offset int) (string, []any) {
	args := w.Args()
	n := len(args)
	args = append(args, limit, offset)
	return fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, n+1, n+2), args
}
