// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package services adapts long-running components to suture.Service.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - SummaryRefreshService: periodic rebuild of the track popularity summary

The cache janitor and the session sweeper implement suture.Service
themselves (cache.Janitor, recommend.SessionSweeper) and are added to the
tree directly.

Every service returns ctx.Err() on shutdown and implements fmt.Stringer so
supervisor events name it.
*/
package services
