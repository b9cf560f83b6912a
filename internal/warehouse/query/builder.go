// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package query builds parameterized SQL fragments for warehouse statements.
// User values only ever travel as bound arguments; identifiers come from
// Tables, which is built from validated configuration.
package query

import (
	"strings"
)

// Tables holds the fully qualified names of the relations queries read.
type Tables struct {
	Fact     string // (playlist_id, track_uri, track_position)
	Track    string // (track_uri, track_title, artist_name)
	Playlist string // (playlist_id, playlist_name)
}

// NewTables qualifies the standard relation names with schema.
func NewTables(schema string) Tables {
	prefix := ""
	if schema != "" {
		prefix = schema + "."
	}
	return Tables{
		Fact:     prefix + "fact_playlist_track",
		Track:    prefix + "dim_track",
		Playlist: prefix + "dim_playlist",
	}
}

// Placeholders returns "?, ?, ?" for n arguments.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Args converts strings to a bindable argument slice.
func Args(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// EscapeChar escapes LIKE wildcards. A backslash is not portable: Spark SQL
// treats it as a string-literal escape.
const EscapeChar = "!"

// LikeEscape is the predicate suffix matching ContainsPattern.
const LikeEscape = " ILIKE ? ESCAPE '" + EscapeChar + "'"

// ContainsPattern turns a free-text term into a LIKE pattern matching it
// anywhere. Wildcards in the term are escaped with EscapeChar, so the
// predicate must be written as LikeEscape produces it.
func ContainsPattern(term string) string {
	r := strings.NewReplacer(EscapeChar, EscapeChar+EscapeChar, `%`, EscapeChar+`%`, `_`, EscapeChar+`_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// WhereBuilder constructs WHERE clauses with parameterized arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddNotIn("t.track_uri", seen)
//	where, args := wb.Build()
//	// t.track_uri NOT IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []any
}

// NewWhereBuilder creates an empty WhereBuilder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddIn adds "column IN (...)". An empty list matches nothing.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb.AddClause("1 = 0")
	}
	return wb.AddClause(column+" IN ("+Placeholders(len(values))+")", Args(values)...)
}

// AddNotIn adds "column NOT IN (...)". An empty list is skipped.
func (wb *WhereBuilder) AddNotIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	return wb.AddClause(column+" NOT IN ("+Placeholders(len(values))+")", Args(values)...)
}

// AddContains adds a case-insensitive substring match on column.
func (wb *WhereBuilder) AddContains(column, term string) *WhereBuilder {
	return wb.AddClause(column+LikeEscape, ContainsPattern(term))
}

// Build joins the clauses with AND. With no clauses it returns "1=1".
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build prefixed with "WHERE ", or "" when empty.
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	if len(wb.clauses) == 0 {
		return "", nil
	}
	clause, args := wb.Build()
	return "WHERE " + clause, args
}
