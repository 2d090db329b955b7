// Package querybuilder assembles parameterized Postgres statements for the
// repository layer. It is deliberately small: equality, IN, IS NULL and raw
// expressions cover every query the auction tables need, and everything else
// stays hand-written SQL.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition renders one WHERE fragment into sql and appends its bind
// arguments to args, starting at placeholder $next.
type Condition func(sql *strings.Builder, args *[]any, next *int)

// Eq matches column = value.
func Eq(column string, value any) Condition {
	return func(sql *strings.Builder, args *[]any, next *int) {
		sql.WriteString(column)
		sql.WriteString(" = ")
		sql.WriteString(bindMarker(*next))
		*args = append(*args, value)
		*next++
	}
}

// In matches column IN (values...). An empty value list renders a clause
// that matches no rows instead of invalid SQL.
func In(column string, values []any) Condition {
	return func(sql *strings.Builder, args *[]any, next *int) {
		if len(values) == 0 {
			sql.WriteString("1=0")
			return
		}
		sql.WriteString(column)
		sql.WriteString(" IN (")
		for i, v := range values {
			if i > 0 {
				sql.WriteString(", ")
			}
			sql.WriteString(bindMarker(*next))
			*args = append(*args, v)
			*next++
		}
		sql.WriteString(")")
	}
}

// IsNull matches column IS NULL.
func IsNull(column string) Condition {
	return func(sql *strings.Builder, _ *[]any, _ *int) {
		sql.WriteString(column)
		sql.WriteString(" IS NULL")
	}
}

// Expr embeds a raw SQL fragment. Each ? in the fragment is rewritten to the
// next positional placeholder and bound to the matching argument.
func Expr(fragment string, exprArgs ...any) Condition {
	return func(sql *strings.Builder, args *[]any, next *int) {
		sql.WriteString(bindFragment(fragment, exprArgs, args, next))
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	groupBy []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	sql.WriteString(strings.Join(b.columns, ", "))
	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	args := make([]any, 0, len(b.where))
	next := 1
	writeWhere(&sql, b.where, &args, &next)
	if len(b.groupBy) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		sql.WriteString(" LIMIT ")
		sql.WriteString(strconv.Itoa(b.limit))
	}

	return sql.String(), args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends a trailing clause such as RETURNING or ON CONFLICT.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var sql strings.Builder
	sql.WriteString("INSERT INTO ")
	sql.WriteString(b.table)
	sql.WriteString(" (")
	sql.WriteString(strings.Join(b.columns, ", "))
	sql.WriteString(") VALUES ")

	args := make([]any, 0, len(b.rows)*len(b.columns))
	next := 1
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString("(")
		for j, value := range row {
			if j > 0 {
				sql.WriteString(", ")
			}
			sql.WriteString(bindMarker(next))
			args = append(args, value)
			next++
		}
		sql.WriteString(")")
	}

	if b.suffix != "" {
		sql.WriteString(" ")
		sql.WriteString(bindFragment(b.suffix, nil, &args, &next))
	}

	return sql.String(), args, nil
}

type assignment struct {
	column   string
	value    any
	fragment string
	args     []any
	raw      bool
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression, with ? placeholders bound in order.
func (b *UpdateBuilder) SetExpr(column, fragment string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, fragment: fragment, args: args, raw: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var sql strings.Builder
	sql.WriteString("UPDATE ")
	sql.WriteString(b.table)
	sql.WriteString(" SET ")

	args := make([]any, 0, len(b.sets)+len(b.where))
	next := 1
	for i, s := range b.sets {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(s.column)
		sql.WriteString(" = ")
		if s.raw {
			sql.WriteString(bindFragment(s.fragment, s.args, &args, &next))
			continue
		}
		sql.WriteString(bindMarker(next))
		args = append(args, s.value)
		next++
	}

	writeWhere(&sql, b.where, &args, &next)
	if b.suffix != "" {
		sql.WriteString(" ")
		sql.WriteString(bindFragment(b.suffix, nil, &args, &next))
	}

	return sql.String(), args, nil
}

func writeWhere(sql *strings.Builder, conditions []Condition, args *[]any, next *int) {
	if len(conditions) == 0 {
		return
	}
	sql.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			sql.WriteString(" AND ")
		}
		c(sql, args, next)
	}
}

func bindMarker(i int) string {
	return "$" + strconv.Itoa(i)
}

// bindFragment rewrites each ? in fragment to the next $n marker, appending
// the matching value from fragmentArgs. Extra ? markers are left untouched.
func bindFragment(fragment string, fragmentArgs []any, args *[]any, next *int) string {
	if len(fragmentArgs) == 0 {
		return fragment
	}

	var out strings.Builder
	consumed := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] != '?' {
			out.WriteByte(fragment[i])
			continue
		}
		if consumed >= len(fragmentArgs) {
			out.WriteByte('?')
			continue
		}
		out.WriteString(bindMarker(*next))
		*args = append(*args, fragmentArgs[consumed])
		consumed++
		*next++
	}
	return out.String()
}
