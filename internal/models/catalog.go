// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package models

// Track is a row of the track dimension. Artist is empty when the warehouse
// has no artist for the track.
type Track struct {
	URI    string `json:"track_uri"`
	Title  string `json:"track_title"`
	Artist string `json:"artist_name,omitempty"`
}

// Label joins title and artist for display, falling back to the URI for
// tracks without metadata.
func (t Track) Label() string {
	title := t.Title
	if title == "" {
		title = t.URI
	}
	if t.Artist == "" {
		return title
	}
	return title + " — " + t.Artist
}

// Playlist is a row of the playlist dimension.
type Playlist struct {
	ID   string `json:"playlist_id"`
	Name string `json:"playlist_name"`
}

// ScoredTrack is a track with its distinct playlist count.
type ScoredTrack struct {
	Track
	Score int64 `json:"score"`
}

// ArtistTrackCount is an artist with the number of distinct tracks that
// appear in at least one playlist.
type ArtistTrackCount struct {
	Artist string `json:"artist_name"`
	Tracks int64  `json:"n_tracks"`
}

// Neighbor is a track co-occurring with a seed, weighted by the number of
// distinct playlists they share.
type Neighbor struct {
	Track
	Weight int64 `json:"weight"`
}

// CatalogStats summarizes the dataset.
type CatalogStats struct {
	Tracks    int64 `json:"tracks"`
	Playlists int64 `json:"playlists"`
	Artists   int64 `json:"artists"`
}
