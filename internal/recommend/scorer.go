// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mixtape/internal/metrics"
	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/warehouse"
	"github.com/tomtom215/mixtape/internal/warehouse/query"
)

// StrategyFact is the metrics label of the fact-table popularity aggregate.
const StrategyFact = "fact"

// Scorer produces ranked candidates with one query per request.
type Scorer struct {
	exec          warehouse.Executor
	tables        query.Tables
	summaryTables []string
	logger        zerolog.Logger
}

// NewScorer creates a Scorer. summaryTables are precomputed popularity
// tables (track_uri, playlists_count) tried in order.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScorer(exec warehouse.Executor, tables query.Tables, summaryTables []string, logger zerolog.Logger) *Scorer {
	return &Scorer{
		exec:          exec,
		tables:        tables,
		summaryTables: summaryTables,
		logger:        logger.With().Str("component", "scorer").Logger(),
	}
}

// Score ranks candidates for req, best first, with ranks 1..N. req must be
// normalized: a known model and TopK >= 1.
func (s *Scorer) Score(ctx context.Context, req Request) ([]models.RecommendationRow, error) {
	switch req.Model {
	case models.ModelCoOccurrence:
		if !req.usesPlaylist() && len(req.SeedURIs) == 0 {
			return nil, newValidationError("seeds", "%s requires at least one seed track", req.Model)
		}
		return s.coOccurrence(ctx, req)
	case models.ModelPopularity:
		return s.popularity(ctx, req)
	default:
		return nil, newValidationError("model", "unknown model %q", req.Model)
	}
}

// coOccurrence scores every track sharing a playlist with any seed by the
// number of distinct seed-linked playlists containing it.
func (s *Scorer) coOccurrence(ctx context.Context, req Request) ([]models.RecommendationRow, error) {
	var stmt warehouse.Statement
	if req.usesPlaylist() {
		stmt = warehouse.Statement{
			Name: "cooccurrence_playlist",
			SQL: fmt.Sprintf(`WITH seed_playlists AS (
					SELECT DISTINCT f.playlist_id
					FROM %[1]s f
					WHERE f.track_uri IN (SELECT track_uri FROM %[1]s WHERE playlist_id = ?)
				),
				candidate_counts AS (
					SELECT f.track_uri, COUNT(DISTINCT f.playlist_id) AS cnt
					FROM %[1]s f
					JOIN seed_playlists sp ON f.playlist_id = sp.playlist_id
					WHERE f.track_uri NOT IN (SELECT track_uri FROM %[1]s WHERE playlist_id = ?)
					GROUP BY f.track_uri
				)
				SELECT t.track_uri, t.track_title, t.artist_name, c.cnt AS score
				FROM candidate_counts c
				JOIN %[2]s t ON c.track_uri = t.track_uri
				ORDER BY score DESC, t.track_uri ASC
				LIMIT ?`, s.tables.Fact, s.tables.Track),
			Args: []any{req.PlaylistID, req.PlaylistID, req.TopK},
		}
	} else {
		seeds := query.Placeholders(len(req.SeedURIs))
		args := append(query.Args(req.SeedURIs), query.Args(req.SeedURIs)...)
		stmt = warehouse.Statement{
			Name: "cooccurrence_seeds",
			SQL: fmt.Sprintf(`WITH seed_playlists AS (
					SELECT DISTINCT playlist_id FROM %[1]s WHERE track_uri IN (%[3]s)
				),
				candidate_counts AS (
					SELECT f.track_uri, COUNT(DISTINCT f.playlist_id) AS cnt
					FROM %[1]s f
					JOIN seed_playlists sp ON f.playlist_id = sp.playlist_id
					WHERE f.track_uri NOT IN (%[3]s)
					GROUP BY f.track_uri
				)
				SELECT t.track_uri, t.track_title, t.artist_name, c.cnt AS score
				FROM candidate_counts c
				JOIN %[2]s t ON c.track_uri = t.track_uri
				ORDER BY score DESC, t.track_uri ASC
				LIMIT ?`, s.tables.Fact, s.tables.Track, seeds),
			Args: append(args, req.TopK),
		}
	}

	rs, err := s.exec.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return rankRows(rs), nil
}

// popularityStrategy is one way of reading global popularity.
type popularityStrategy struct {
	name string
	// available is nil for strategies that are always present.
	available func(ctx context.Context) bool
	stmt      func(exclude string, args []any) warehouse.Statement
}

// popularity ranks tracks by distinct playlist count over the whole dataset.
// Strategies are tried in order until one is available and yields rows;
// the fact-table aggregate is always last.
func (s *Scorer) popularity(ctx context.Context, req Request) ([]models.RecommendationRow, error) {
	exclude, excludeArgs := s.popularityExclusion(req)

	for _, strategy := range s.popularityStrategies() {
		if strategy.available != nil && !strategy.available(ctx) {
			s.logger.Debug().Str("strategy", strategy.name).Msg("popularity source unavailable, trying next")
			continue
		}

		args := append(append([]any{}, excludeArgs...), req.TopK)
		rs, err := s.exec.Query(ctx, strategy.stmt(exclude, args))
		if err != nil {
			if strategy.available == nil || !warehouse.IsQueryExecution(err) {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("strategy", strategy.name).Msg("popularity summary query failed, trying next")
			continue
		}
		if rs.Len() == 0 && strategy.available != nil {
			s.logger.Debug().Str("strategy", strategy.name).Msg("popularity summary empty, trying next")
			continue
		}

		metrics.PopularityStrategyUsed.WithLabelValues(strategy.name).Inc()
		return rankRows(rs), nil
	}
	return []models.RecommendationRow{}, nil
}

func (s *Scorer) popularityExclusion(req Request) (string, []any) {
	if req.usesPlaylist() {
		return fmt.Sprintf("WHERE t.track_uri NOT IN (SELECT track_uri FROM %s WHERE playlist_id = ?)", s.tables.Fact),
			[]any{req.PlaylistID}
	}
	return query.NewWhereBuilder().AddNotIn("t.track_uri", req.SeedURIs).BuildWithPrefix()
}

func (s *Scorer) popularityStrategies() []popularityStrategy {
	strategies := make([]popularityStrategy, 0, len(s.summaryTables)+1)
	for _, table := range s.summaryTables {
		strategies = append(strategies, popularityStrategy{
			name:      "summary:" + table,
			available: func(ctx context.Context) bool { return s.tableExists(ctx, table) },
			stmt: func(exclude string, args []any) warehouse.Statement {
				return warehouse.Statement{
					Name: "popularity_summary",
					SQL: fmt.Sprintf(`SELECT t.track_uri, t.track_title, t.artist_name,
							CAST(s.playlists_count AS BIGINT) AS score
						FROM %s s
						JOIN %s t ON s.track_uri = t.track_uri
						%s
						ORDER BY score DESC, t.track_uri ASC
						LIMIT ?`, table, s.tables.Track, exclude),
					Args: args,
				}
			},
		})
	}

	return append(strategies, popularityStrategy{
		name: StrategyFact,
		stmt: func(exclude string, args []any) warehouse.Statement {
			return warehouse.Statement{
				Name: "popularity_fact",
				SQL: fmt.Sprintf(`SELECT t.track_uri, t.track_title, t.artist_name,
						COUNT(DISTINCT f.playlist_id) AS score
					FROM %s f
					JOIN %s t ON f.track_uri = t.track_uri
					%s
					GROUP BY t.track_uri, t.track_title, t.artist_name
					ORDER BY score DESC, t.track_uri ASC
					LIMIT ?`, s.tables.Fact, s.tables.Track, exclude),
				Args: args,
			}
		},
	})
}

// tableExists looks table up in information_schema. One-part names resolve
// against the current schema; two- and three-part names pin the schema and
// catalog. A failing lookup means the table is treated as absent.
func (s *Scorer) tableExists(ctx context.Context, table string) bool {
	parts := strings.Split(table, ".")
	var clause string
	var args []any
	switch len(parts) {
	case 1:
		clause = "table_schema = current_schema()"
	case 2:
		clause = "table_schema = ?"
		args = []any{parts[0]}
	case 3:
		clause = "table_catalog = ? AND table_schema = ?"
		args = []any{parts[0], parts[1]}
	default:
		return false
	}
	args = append(args, parts[len(parts)-1])

	rs, err := s.exec.Query(ctx, warehouse.Statement{
		Name: "summary_table_exists",
		SQL: fmt.Sprintf(`SELECT COUNT(*) AS n FROM information_schema.tables
			WHERE %s AND table_name = ?`, clause),
		Args: args,
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("table", table).Msg("summary table lookup failed")
		return false
	}
	return rs.Int64(0, "n") > 0
}

// rankRows converts scored rows, already in rank order, to recommendations.
func rankRows(rs *warehouse.ResultSet) []models.RecommendationRow {
	rows := make([]models.RecommendationRow, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		rows = append(rows, models.RecommendationRow{
			Rank: i + 1,
			Track: models.Track{
				URI:    rs.String(i, "track_uri"),
				Title:  rs.String(i, "track_title"),
				Artist: rs.String(i, "artist_name"),
			},
			Score: rs.Int64(i, "score"),
		})
	}
	return rows
}
