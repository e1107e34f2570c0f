package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Query accumulates WHERE conditions for a SELECT and renders them as one
// statement with Postgres $N placeholders. Each condition marks its
// parameters with "?"; numbering follows the order conditions were added.
type Query struct {
	base    string
	conds   []condition
	orderBy string
}

type condition struct {
	expr string
	args []any
}

// NewQuery starts a statement from base, e.g. "SELECT ... FROM movies".
func NewQuery(base string) *Query {
	return &Query{base: base}
}

// Where appends a condition joined to the others with AND. expr must contain
// exactly one "?" per arg; a column-to-column comparison takes no args.
func (q *Query) Where(expr string, args ...any) *Query {
	q.conds = append(q.conds, condition{expr: expr, args: args})
	return q
}

// OrderBy sets the ORDER BY clause. clause is trusted SQL, never user input.
func (q *Query) OrderBy(clause string) *Query {
	q.orderBy = clause
	return q
}

// Build renders the statement and its ordered parameter list. A mismatch
// between markers and args is a programming error and panics.
func (q *Query) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString(q.base)

	args := []any{}
	for i, c := range q.conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}

		used := 0
		for _, r := range c.expr {
			if r != '?' {
				sb.WriteRune(r)
				continue
			}
			if used == len(c.args) {
				panic(fmt.Sprintf("data: condition %q has more markers than args", c.expr))
			}
			args = append(args, c.args[used])
			used++
			sb.WriteString("$" + strconv.Itoa(len(args)))
		}
		if used != len(c.args) {
			panic(fmt.Sprintf("data: condition %q has %d args but %d markers", c.expr, len(c.args), used))
		}
	}

	if q.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.orderBy)
	}

	return sb.String(), args
}
