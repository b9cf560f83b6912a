// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package recommend implements the playlist co-occurrence recommendation engine.

A request flows through four stages:

  - Seed resolution: a Selection (explicit tracks, an artist's top tracks, or
    a playlist) becomes an ordered, deduplicated SeedSet plus the SeenSet of
    tracks that must never be recommended.

  - Scoring: the co-occurrence model counts, for every track sharing a
    playlist with any seed, the distinct seed-linked playlists containing it.
    The popularity model counts distinct playlists dataset-wide, reading a
    precomputed summary table when one is available and the fact table
    otherwise.

  - Exclusion and re-ranking: every SeenSet track is removed again and ranks
    are reassigned 1..N.

  - Caching: results are memoized per exact Request for the cache TTL and
    shared across sessions. Each Session holds one CurrentRun, replaced on
    every generation and cleared when its inputs change.

Explanations are built from the CurrentRun: a dense seed by candidate matrix
of shared-playlist counts for a bounded subset, an artist-level rollup and a
per-candidate breakdown.

Ties are broken deterministically: candidates by score then track URI, artist
seeds by playlist count then track URI, breakdown contributors by shared count
then seed order.
*/
package recommend
