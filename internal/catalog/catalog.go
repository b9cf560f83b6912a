// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package catalog looks up tracks, artists and playlists in the warehouse.
// Every method issues parameterized statements through a warehouse.Executor.
package catalog

import (
	"context"
	"fmt"

	"github.com/tomtom215/mixtape/internal/models"
	"github.com/tomtom215/mixtape/internal/warehouse"
	"github.com/tomtom215/mixtape/internal/warehouse/query"
)

// Default limits.
const (
	DefaultSearchLimit       = 25
	DefaultArtistSearchLimit = 40
	DefaultTopArtistsLimit   = 10
	DefaultPairsLimit        = 100
)

// Repository reads reference data and co-occurrence aggregates.
type Repository struct {
	exec   warehouse.Executor
	tables query.Tables
}

// New creates a Repository reading the relations in tables.
func New(exec warehouse.Executor, tables query.Tables) *Repository {
	return &Repository{exec: exec, tables: tables}
}

// Tables returns the relations the repository reads.
func (r *Repository) Tables() query.Tables {
	return r.tables
}

// SearchTracks finds tracks whose title contains term, case-insensitively.
func (r *Repository) SearchTracks(ctx context.Context, term string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	wb := query.NewWhereBuilder().AddContains("t.track_title", term)
	where, args := wb.BuildWithPrefix()

	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "search_tracks",
		SQL: fmt.Sprintf(`SELECT DISTINCT t.track_uri, t.track_title, t.artist_name
			FROM %s t
			%s
			ORDER BY t.track_title, t.track_uri
			LIMIT ?`, r.tables.Track, where),
		Args: append(args, limit),
	})
	if err != nil {
		return nil, err
	}
	return scanTracks(rs), nil
}

// ArtistTopTracks returns the tracks of artists whose name contains term,
// ranked by distinct playlist count, then track URI.
func (r *Repository) ArtistTopTracks(ctx context.Context, term string, limit int) ([]models.ScoredTrack, error) {
	if limit <= 0 {
		limit = DefaultArtistSearchLimit
	}
	wb := query.NewWhereBuilder().AddContains("t.artist_name", term)
	where, args := wb.BuildWithPrefix()

	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "artist_top_tracks",
		SQL: fmt.Sprintf(`SELECT t.track_uri, t.track_title, t.artist_name, COUNT(DISTINCT f.playlist_id) AS score
			FROM %s t
			JOIN %s f ON t.track_uri = f.track_uri
			%s
			GROUP BY t.track_uri, t.track_title, t.artist_name
			ORDER BY score DESC, t.track_uri ASC
			LIMIT ?`, r.tables.Track, r.tables.Fact, where),
		Args: append(args, limit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.ScoredTrack, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		out = append(out, models.ScoredTrack{Track: trackAt(rs, i), Score: rs.Int64(i, "score")})
	}
	return out, nil
}

// SearchPlaylists finds playlists whose name contains term.
func (r *Repository) SearchPlaylists(ctx context.Context, term string, limit int) ([]models.Playlist, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	wb := query.NewWhereBuilder().AddContains("playlist_name", term)
	where, args := wb.BuildWithPrefix()

	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "search_playlists",
		SQL: fmt.Sprintf(`SELECT DISTINCT playlist_id, playlist_name
			FROM %s
			%s
			ORDER BY playlist_name, playlist_id
			LIMIT ?`, r.tables.Playlist, where),
		Args: append(args, limit),
	})
	if err != nil {
		return nil, err
	}
	return scanPlaylists(rs), nil
}

// PlaylistByID looks up a playlist. The bool is false when it does not exist.
func (r *Repository) PlaylistByID(ctx context.Context, id string) (models.Playlist, bool, error) {
	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "playlist_by_id",
		SQL:  fmt.Sprintf("SELECT playlist_id, playlist_name FROM %s WHERE playlist_id = ? LIMIT 1", r.tables.Playlist),
		Args: []any{id},
	})
	if err != nil {
		return models.Playlist{}, false, err
	}
	if rs.Len() == 0 {
		return models.Playlist{}, false, nil
	}
	return scanPlaylists(rs)[0], true, nil
}

// PlaylistTracks returns the tracks of a playlist in position order.
func (r *Repository) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "playlist_tracks",
		SQL: fmt.Sprintf(`SELECT f.track_uri
			FROM %s f
			WHERE f.playlist_id = ?
			ORDER BY f.track_position, f.track_uri`, r.tables.Fact),
		Args: []any{playlistID},
	})
	if err != nil {
		return nil, err
	}

	uris := make([]string, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		uris = append(uris, rs.String(i, "track_uri"))
	}
	return uris, nil
}

// Stats counts distinct tracks, playlists and artists.
func (r *Repository) Stats(ctx context.Context) (models.CatalogStats, error) {
	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "catalog_stats",
		SQL: fmt.Sprintf(`SELECT
			(SELECT COUNT(DISTINCT track_uri) FROM %s) AS tracks,
			(SELECT COUNT(DISTINCT playlist_id) FROM %s) AS playlists,
			(SELECT COUNT(DISTINCT artist_name) FROM %s) AS artists`,
			r.tables.Track, r.tables.Fact, r.tables.Track),
	})
	if err != nil {
		return models.CatalogStats{}, err
	}
	if rs.Len() == 0 {
		return models.CatalogStats{}, nil
	}
	return models.CatalogStats{
		Tracks:    rs.Int64(0, "tracks"),
		Playlists: rs.Int64(0, "playlists"),
		Artists:   rs.Int64(0, "artists"),
	}, nil
}

// TopArtists ranks artists by the number of distinct tracks they have in playlists.
func (r *Repository) TopArtists(ctx context.Context, limit int) ([]models.ArtistTrackCount, error) {
	if limit <= 0 {
		limit = DefaultTopArtistsLimit
	}
	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "top_artists",
		SQL: fmt.Sprintf(`SELECT t.artist_name, COUNT(DISTINCT f.track_uri) AS n_tracks
			FROM %s t
			JOIN %s f ON t.track_uri = f.track_uri
			WHERE t.artist_name IS NOT NULL
			GROUP BY t.artist_name
			ORDER BY n_tracks DESC, t.artist_name ASC
			LIMIT ?`, r.tables.Track, r.tables.Fact),
		Args: []any{limit},
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.ArtistTrackCount, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		out = append(out, models.ArtistTrackCount{
			Artist: rs.String(i, "artist_name"),
			Tracks: rs.Int64(i, "n_tracks"),
		})
	}
	return out, nil
}

// CoOccurrencePairs returns the tracks sharing playlists with seed, heaviest
// first, with their metadata. Tracks missing from the track dimension keep
// their URI as title.
func (r *Repository) CoOccurrencePairs(ctx context.Context, seed string, limit int) ([]models.Neighbor, error) {
	if limit <= 0 {
		limit = DefaultPairsLimit
	}
	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "cooccurrence_pairs",
		SQL: fmt.Sprintf(`WITH seed_playlists AS (
				SELECT DISTINCT playlist_id
				FROM %[1]s
				WHERE track_uri = ?
			)
			SELECT f2.track_uri AS other_track_uri, COUNT(DISTINCT f2.playlist_id) AS cnt
			FROM %[1]s f2
			JOIN seed_playlists sp ON f2.playlist_id = sp.playlist_id
			WHERE f2.track_uri != ?
			GROUP BY f2.track_uri
			ORDER BY cnt DESC, other_track_uri ASC
			LIMIT ?`, r.tables.Fact),
		Args: []any{seed, seed, limit},
	})
	if err != nil {
		return nil, err
	}
	if rs.Len() == 0 {
		return []models.Neighbor{}, nil
	}

	uris := make([]string, rs.Len())
	for i := range uris {
		uris[i] = rs.String(i, "other_track_uri")
	}
	meta, err := r.TracksByURI(ctx, uris)
	if err != nil {
		return nil, err
	}

	out := make([]models.Neighbor, len(uris))
	for i, uri := range uris {
		track, ok := meta[uri]
		if !ok {
			track = models.Track{URI: uri, Title: uri}
		}
		out[i] = models.Neighbor{Track: track, Weight: rs.Int64(i, "cnt")}
	}
	return out, nil
}

// TracksMetadata returns the tracks among uris that exist, in URI order.
// Empty input returns an empty slice without querying.
func (r *Repository) TracksMetadata(ctx context.Context, uris []string) ([]models.Track, error) {
	if len(uris) == 0 {
		return []models.Track{}, nil
	}
	wb := query.NewWhereBuilder().AddIn("track_uri", uris)
	where, args := wb.BuildWithPrefix()

	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "tracks_metadata",
		SQL: fmt.Sprintf(`SELECT track_uri, track_title, artist_name
			FROM %s
			%s
			ORDER BY track_uri`, r.tables.Track, where),
		Args: args,
	})
	if err != nil {
		return nil, err
	}
	return scanTracks(rs), nil
}

// TracksByURI is TracksMetadata keyed by URI.
func (r *Repository) TracksByURI(ctx context.Context, uris []string) (map[string]models.Track, error) {
	tracks, err := r.TracksMetadata(ctx, uris)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Track, len(tracks))
	for _, t := range tracks {
		out[t.URI] = t
	}
	return out, nil
}

// TrackPopularity returns the distinct playlist count of each of uris that
// appears in any playlist. Empty input returns an empty map without querying.
func (r *Repository) TrackPopularity(ctx context.Context, uris []string) (map[string]int64, error) {
	if len(uris) == 0 {
		return map[string]int64{}, nil
	}
	wb := query.NewWhereBuilder().AddIn("f.track_uri", uris)
	where, args := wb.BuildWithPrefix()

	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "track_popularity",
		SQL: fmt.Sprintf(`SELECT f.track_uri, COUNT(DISTINCT f.playlist_id) AS popularity
			FROM %s f
			%s
			GROUP BY f.track_uri`, r.tables.Fact, where),
		Args: args,
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		out[rs.String(i, "track_uri")] = rs.Int64(i, "popularity")
	}
	return out, nil
}

// SeedCandidateEdges returns, for every seed/candidate pair sharing at least
// one playlist, the number of distinct playlists they share. Pairs with no
// shared playlist are absent. Either list empty returns no edges without
// querying.
func (r *Repository) SeedCandidateEdges(ctx context.Context, seeds, candidates []string) ([]models.CoOccurrenceEdge, error) {
	if len(seeds) == 0 || len(candidates) == 0 {
		return []models.CoOccurrenceEdge{}, nil
	}

	args := append(query.Args(seeds), query.Args(candidates)...)
	rs, err := r.exec.Query(ctx, warehouse.Statement{
		Name: "seed_candidate_edges",
		SQL: fmt.Sprintf(`WITH seed_in_playlists AS (
				SELECT DISTINCT playlist_id, track_uri AS seed_track_uri
				FROM %[1]s
				WHERE track_uri IN (%[2]s)
			),
			cand_in_playlists AS (
				SELECT DISTINCT playlist_id, track_uri AS candidate_track_uri
				FROM %[1]s
				WHERE track_uri IN (%[3]s)
			)
			SELECT s.seed_track_uri, c.candidate_track_uri, COUNT(DISTINCT s.playlist_id) AS shared_playlists
			FROM seed_in_playlists s
			JOIN cand_in_playlists c ON s.playlist_id = c.playlist_id
			GROUP BY s.seed_track_uri, c.candidate_track_uri
			ORDER BY s.seed_track_uri, c.candidate_track_uri`,
			r.tables.Fact, query.Placeholders(len(seeds)), query.Placeholders(len(candidates))),
		Args: args,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.CoOccurrenceEdge, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		out = append(out, models.CoOccurrenceEdge{
			SeedURI:      rs.String(i, "seed_track_uri"),
			CandidateURI: rs.String(i, "candidate_track_uri"),
			Shared:       rs.Int64(i, "shared_playlists"),
		})
	}
	return out, nil
}

func trackAt(rs *warehouse.ResultSet, i int) models.Track {
	return models.Track{
		URI:    rs.String(i, "track_uri"),
		Title:  rs.String(i, "track_title"),
		Artist: rs.String(i, "artist_name"),
	}
}

func scanTracks(rs *warehouse.ResultSet) []models.Track {
	out := make([]models.Track, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		out = append(out, trackAt(rs, i))
	}
	return out
}

func scanPlaylists(rs *warehouse.ResultSet) []models.Playlist {
	out := make([]models.Playlist, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		out = append(out, models.Playlist{
			ID:   rs.String(i, "playlist_id"),
			Name: rs.String(i, "playlist_name"),
		})
	}
	return out
}
