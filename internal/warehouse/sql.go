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
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/tomtom215/mixtape/internal/metrics"
)

// SQLOptions tunes an SQLExecutor.
type SQLOptions struct {
	// Host labels connectivity errors. Empty for local backends.
	Host string

	// QueryTimeout bounds each query. Zero means no extra deadline.
	QueryTimeout time.Duration

	// MaxConcurrent caps in-flight queries. Zero means 1.
	MaxConcurrent int

	// QueriesPerSecond throttles query starts. Zero disables throttling.
	QueriesPerSecond float64
	Burst            int
}

// SQLExecutor runs Statements over a database/sql handle.
type SQLExecutor struct {
	db      *sql.DB
	opts    SQLOptions
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewSQLExecutor wraps db. The handle is only ever used for reads.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSQLExecutor(db *sql.DB, opts SQLOptions, logger zerolog.Logger) *SQLExecutor {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	var limiter *rate.Limiter
	if opts.QueriesPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.QueriesPerSecond), burst)
	}
	return &SQLExecutor{
		db:      db,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		limiter: limiter,
		logger:  logger.With().Str("component", "warehouse").Logger(),
	}
}

// Query implements Executor.
func (e *SQLExecutor) Query(ctx context.Context, stmt Statement) (*ResultSet, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for query slot: %w", err)
		}
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire query slot: %w", err)
	}
	defer e.sem.Release(1)

	queryCtx := ctx
	if e.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, e.opts.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	rs, err := e.run(queryCtx, stmt)
	duration := time.Since(start)

	if err != nil {
		err = e.classify(ctx, stmt, err)
		kind := metrics.ErrorKindQuery
		if IsConnectivity(err) {
			kind = metrics.ErrorKindConnectivity
		}
		metrics.RecordWarehouseQuery(stmt.Name, duration, kind)
		e.logger.Warn().Err(err).Str("operation", stmt.Name).Dur("duration", duration).Msg("warehouse query failed")
		return nil, err
	}

	metrics.RecordWarehouseQuery(stmt.Name, duration, "")
	e.logger.Debug().Str("operation", stmt.Name).Int("rows", rs.Len()).Dur("duration", duration).Msg("warehouse query")
	return rs, nil
}

func (e *SQLExecutor) run(ctx context.Context, stmt Statement) (*ResultSet, error) {
	rows, err := e.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return NewResultSet(columns, out), nil
}

// classify sorts a driver error into connectivity or query execution. parent
// is the caller's context before QueryTimeout was applied: an expired caller
// deadline is returned as is, while QueryTimeout expiring on a live caller
// is a query that ran too long, not an unreachable warehouse.
func (e *SQLExecutor) classify(parent context.Context, stmt Statement, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		if parent.Err() != nil {
			return err
		}
		return &QueryExecutionError{
			Operation: stmt.Name,
			Err:       fmt.Errorf("query timeout %s exceeded: %w", e.opts.QueryTimeout, err),
		}
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &netErr):
		return &ConnectivityError{Host: e.opts.Host, Op: "connect", Err: err}
	default:
		return &QueryExecutionError{Operation: stmt.Name, Err: err}
	}
}

// Ping runs SELECT 1 through the executor.
func Ping(ctx context.Context, exec Executor) error {
	rs, err := exec.Query(ctx, Statement{Name: "ping", SQL: "SELECT 1 AS ok"})
	if err != nil {
		return err
	}
	if rs.Len() != 1 || rs.Int64(0, "ok") != 1 {
		return &QueryExecutionError{Operation: "ping", Err: errors.New("unexpected result from SELECT 1")}
	}
	return nil
}
