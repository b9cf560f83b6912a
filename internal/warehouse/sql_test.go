// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package warehouse

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"math/big"
	"net"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/mixtape/internal/logging"
)

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLExecutor_Query(t *testing.T) {
	exec := NewSQLExecutor(openDuckDB(t), SQLOptions{MaxConcurrent: 2}, logging.NewTestLogger(io.Discard))
	ctx := context.Background()

	rs, err := exec.Query(ctx, Statement{
		Name: "test",
		SQL:  "SELECT ? AS name, CAST(? AS BIGINT) AS n, NULL AS missing",
		Args: []any{"alpha", 7},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rs.Len() != 1 {
		t.Fatalf("Len = %d, want 1", rs.Len())
	}
	if got := rs.String(0, "name"); got != "alpha" {
		t.Errorf("name = %q, want alpha", got)
	}
	if got := rs.Int64(0, "N"); got != 7 {
		t.Errorf("n = %d, want 7", got)
	}
	if _, ok := rs.NullString(0, "missing"); ok {
		t.Error("missing should be NULL")
	}
}

func TestSQLExecutor_QueryError(t *testing.T) {
	exec := NewSQLExecutor(openDuckDB(t), SQLOptions{}, logging.NewTestLogger(io.Discard))

	_, err := exec.Query(context.Background(), Statement{Name: "broken", SQL: "SELECT * FROM no_such_table"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsQueryExecution(err) {
		t.Errorf("expected QueryExecutionError, got %T: %v", err, err)
	}
	if IsConnectivity(err) {
		t.Error("query failure must not be classified as connectivity")
	}
}

func TestPing(t *testing.T) {
	exec := NewSQLExecutor(openDuckDB(t), SQLOptions{QueriesPerSecond: 100, Burst: 5}, logging.NewTestLogger(io.Discard))
	if err := Ping(context.Background(), exec); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestClassify(t *testing.T) {
	exec := &SQLExecutor{opts: SQLOptions{Host: "dbc.example.com", QueryTimeout: time.Second}}
	stmt := Statement{Name: "op"}

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	tests := []struct {
		name         string
		parent       context.Context
		err          error
		connectivity bool
		query        bool
	}{
		{name: "query timeout", parent: context.Background(), err: context.DeadlineExceeded, query: true},
		{name: "caller deadline", parent: expired, err: context.DeadlineExceeded},
		{name: "bad conn", parent: context.Background(), err: driver.ErrBadConn, connectivity: true},
		{name: "eof", parent: context.Background(), err: io.ErrUnexpectedEOF, connectivity: true},
		{name: "dial", parent: context.Background(), err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, connectivity: true},
		{name: "canceled", parent: context.Background(), err: context.Canceled},
		{name: "other", parent: context.Background(), err: errors.New("syntax error"), query: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exec.classify(tt.parent, stmt, tt.err)
			if IsConnectivity(got) != tt.connectivity {
				t.Errorf("IsConnectivity = %v, want %v", IsConnectivity(got), tt.connectivity)
			}
			if IsQueryExecution(got) != tt.query {
				t.Errorf("IsQueryExecution = %v, want %v", IsQueryExecution(got), tt.query)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classified error should wrap %v", tt.err)
			}
		})
	}
}

func TestSQLExecutor_QueryTimeoutIsNotConnectivity(t *testing.T) {
	exec := NewSQLExecutor(openDuckDB(t), SQLOptions{QueryTimeout: time.Nanosecond}, logging.NewTestLogger(io.Discard))

	_, err := exec.Query(context.Background(), Statement{
		Name: "slow_aggregate",
		SQL:  "SELECT COUNT(*) AS n FROM range(300000000)",
	})
	if err == nil {
		t.Fatal("expected the query timeout to fire")
	}
	if IsConnectivity(err) {
		t.Errorf("query timeout classified as connectivity: %v", err)
	}
	if !IsQueryExecution(err) {
		t.Errorf("expected QueryExecutionError, got %T: %v", err, err)
	}
}

func TestResultSet_Accessors(t *testing.T) {
	rs := NewResultSet([]string{"a", "b"}, [][]any{
		{int32(3), "x"},
		{big.NewInt(9), nil},
		{"12", []byte("raw")},
	})

	tests := []struct {
		row  int
		col  string
		want int64
	}{
		{0, "a", 3},
		{1, "a", 9},
		{2, "a", 12},
		{0, "b", 0},
		{5, "a", 0},
		{0, "nope", 0},
	}
	for _, tt := range tests {
		if got := rs.Int64(tt.row, tt.col); got != tt.want {
			t.Errorf("Int64(%d, %q) = %d, want %d", tt.row, tt.col, got, tt.want)
		}
	}

	if got := rs.String(2, "b"); got != "raw" {
		t.Errorf("String(2, b) = %q, want raw", got)
	}

	var nilRS *ResultSet
	if nilRS.Len() != 0 || nilRS.Value(0, "a") != nil {
		t.Error("nil ResultSet should be empty")
	}

	// Literal built without an index still resolves columns.
	lit := &ResultSet{Columns: []string{"Track_URI"}, Rows: [][]any{{"u"}}}
	if got := lit.String(0, "track_uri"); got != "u" {
		t.Errorf("literal lookup = %q, want u", got)
	}
}
