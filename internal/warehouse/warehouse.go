// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package warehouse runs read-only aggregation queries against the
// playlist/track warehouse and returns their rows.
//
// Every user-supplied value is bound as a "?" parameter. The Executor
// interface is the only thing the recommendation engine depends on; the
// concrete stack is
//
//	BreakerExecutor -> SQLExecutor -> *sql.DB (databricks-sql-go or duckdb-go)
//
// with a NetworkPreflight gating remote backends before heavy queries.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Statement is a parameterized query. Name identifies the query in metrics
// and logs; it never contains user data.
type Statement struct {
	Name string
	SQL  string
	Args []any
}

// Executor runs a Statement and returns its rows in order.
// Implementations must be safe for concurrent use.
type Executor interface {
	Query(ctx context.Context, stmt Statement) (*ResultSet, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, stmt Statement) (*ResultSet, error)

// Query implements Executor.
func (f ExecutorFunc) Query(ctx context.Context, stmt Statement) (*ResultSet, error) {
	return f(ctx, stmt)
}

// ResultSet is an ordered row set with named columns. Values are whatever
// the driver produced, except []byte which is converted to string.
type ResultSet struct {
	Columns []string
	Rows    [][]any

	index map[string]int
}

// NewResultSet builds a ResultSet. Column lookups are case-insensitive.
func NewResultSet(columns []string, rows [][]any) *ResultSet {
	rs := &ResultSet{Columns: columns, Rows: rows, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		rs.index[strings.ToLower(c)] = i
	}
	return rs
}

// Len returns the number of rows. A nil ResultSet has none.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Value returns the raw value at row/column, or nil when either is absent.
func (rs *ResultSet) Value(row int, column string) any {
	if rs == nil || row < 0 || row >= len(rs.Rows) {
		return nil
	}
	i := rs.columnIndex(column)
	if i < 0 || i >= len(rs.Rows[row]) {
		return nil
	}
	return rs.Rows[row][i]
}

func (rs *ResultSet) columnIndex(column string) int {
	if rs.index != nil {
		if i, ok := rs.index[strings.ToLower(column)]; ok {
			return i
		}
		return -1
	}
	for i, c := range rs.Columns {
		if strings.EqualFold(c, column) {
			return i
		}
	}
	return -1
}

// NullString returns the value as a string and whether it was non-NULL.
func (rs *ResultSet) NullString(row int, column string) (string, bool) {
	switch v := rs.Value(row, column).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// String returns the value as a string, "" for NULL.
func (rs *ResultSet) String(row int, column string) string {
	s, _ := rs.NullString(row, column)
	return s
}

// Int64 returns the value as an int64, 0 for NULL or non-numeric values.
func (rs *ResultSet) Int64(row int, column string) int64 {
	switch v := rs.Value(row, column).(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint64:
		return int64(v) //nolint:gosec // counts never exceed int64
	case uint32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case *big.Int:
		return v.Int64()
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// ConnectivityError means the warehouse could not be reached: DNS or TCP
// preflight failed, the connection dropped, or the circuit breaker is open.
type ConnectivityError struct {
	Host string
	Op   string // "resolve", "dial", "breaker", "connect"
	Err  error
}

func (e *ConnectivityError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("warehouse unreachable (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("warehouse unreachable (%s %s): %v", e.Op, e.Host, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// QueryExecutionError means the warehouse rejected or failed a well-formed
// query. It is surfaced to the caller and never retried.
type QueryExecutionError struct {
	Operation string
	Err       error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Operation, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is or wraps a *ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// IsQueryExecution reports whether err is or wraps a *QueryExecutionError.
func IsQueryExecution(err error) bool {
	var qe *QueryExecutionError
	return errors.As(err, &qe)
}
