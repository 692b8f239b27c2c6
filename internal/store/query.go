package store

import (
	"strings"
)

// QueryBuilder converts SQL queries with ? placeholders to dialect-specific format.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build converts a query with ? placeholders to dialect-specific placeholders.
//
//	input:  "SELECT tile FROM assignments WHERE run_id = ? AND q = ?"
//	SQLite: unchanged
//	Postgres: "SELECT tile FROM assignments WHERE run_id = $1 AND q = $2"
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var result strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result.WriteString(qb.dialect.Placeholder(position))
			position++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}

// Schema substitutes the dialect's JSON column type for {{blob}}.
func (qb *QueryBuilder) Schema(ddl string) string {
	return strings.ReplaceAll(ddl, "{{blob}}", qb.dialect.BlobType())
}
