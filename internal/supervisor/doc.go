// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package supervisor runs the server's long-lived goroutines under a suture v4
supervisor tree.

# Tree

	mixtape (root)
	├── data-layer
	│   ├── cache-janitor-recommendations
	│   ├── session-sweeper
	│   └── summary-refresh (when an interval is configured)
	└── api-layer
	    └── http-server

Layers restart independently. A service that keeps failing pushes only its
own layer into backoff.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddDataService(cache.NewJanitor(engine.ResultCache(), time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}

Supervisor events go through sutureslog into the slog bridge, so restarts
and backoff show up in the zerolog stream.

# Return values

A service returning nil is not restarted. Any other error counts as a
failure. On shutdown services return ctx.Err().

The warehouse connection is not supervised. database/sql owns its pool and
the circuit breaker in the warehouse package isolates remote failures.
*/
package supervisor
