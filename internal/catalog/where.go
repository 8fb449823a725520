package catalog

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates AND-joined SQL conditions with positional
// ($n) placeholders.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// AddContains appends a case-insensitive substring match. LIKE metacharacters
// in value match literally. Empty values are skipped.
func (wb *WhereBuilder) AddContains(col, value string) {
	if value == "" {
		return
	}
	wb.add(col+` ILIKE $%d ESCAPE '\'`, "%"+escapeLike(value)+"%")
}

// AddMin appends "col >= $n" when bound is set.
func (wb *WhereBuilder) AddMin(col string, bound *float64) {
	if bound == nil {
		return
	}
	wb.add(col+" >= $%d", *bound)
}

// AddMax appends "col <= $n" when bound is set.
func (wb *WhereBuilder) AddMax(col string, bound *float64) {
	if bound == nil {
		return
	}
	wb.add(col+" <= $%d", *bound)
}

func (wb *WhereBuilder) add(format string, arg any) {
	wb.conditions = append(wb.conditions, fmt.Sprintf(format, wb.argIndex))
	wb.args = append(wb.args, arg)
	wb.argIndex++
}

// Build returns the WHERE clause (with a leading space) and its args.
// With no conditions it returns "" and nil.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the placeholder number the next argument would use.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
