package sqldb

import (
	"strconv"
	"strings"
)

// Dialect captures the small differences between the SQL engines we run on.
// Queries in this package are written with '?' placeholders and rebound per
// dialect before execution.
type Dialect struct {
	Name string

	// Rebind rewrites '?' placeholders into the engine's native form.
	Rebind func(query string) string

	// IsUniqueViolation reports whether err is a unique/primary key violation.
	IsUniqueViolation func(err error) bool
}

// RebindQuestion leaves '?' placeholders untouched (sqlite).
func RebindQuestion(query string) string { return query }

// RebindDollar rewrites '?' placeholders to $1, $2, ... (postgres).
// Queries in this package never contain a literal '?'.
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)

	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
