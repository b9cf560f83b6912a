// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package recommend

import (
	"github.com/tomtom215/mixtape/internal/metrics"
	"github.com/tomtom215/mixtape/internal/models"
)

// Rerank drops every row whose track is seen, and any repeated track, then
// renumbers the remaining rows 1..N in their original order. rows is not
// modified.
func Rerank(rows []models.RecommendationRow, seen SeenSet) []models.RecommendationRow {
	out := make([]models.RecommendationRow, 0, len(rows))
	kept := make(map[string]struct{}, len(rows))
	removed := 0

	for _, row := range rows {
		if seen.Contains(row.URI) {
			removed++
			continue
		}
		if _, dup := kept[row.URI]; dup {
			removed++
			continue
		}
		kept[row.URI] = struct{}{}
		row.Rank = len(out) + 1
		out = append(out, row)
	}

	if removed > 0 {
		metrics.SeenTracksFiltered.Add(float64(removed))
	}
	return out
}
