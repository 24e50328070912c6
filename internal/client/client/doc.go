// Package client contains the client-side building blocks for gophshare.
//
// # Overview
//
// The package provides:
//  1. The Client interface: the backend API as the CLI uses it. It embeds
//     access.RequestDirectory and access.FileCatalog so an access.Workflow
//     can run directly on top of it.
//  2. HTTPClient, a JSON-over-HTTP implementation that attaches the bearer
//     access token, refreshes an expired token once and retries, and maps
//     error responses to errors matching the common sentinels.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite database and applies the embedded goose migrations.
//
// # Error Handling
//
// Error responses become *access.Error values carrying the server's kind, so
// both errors.Is(err, common.ErrorConflict) and access.KindOf(err) work.
// Network failures wrap ErrUnavailable.
//
// HTTPClient is safe for concurrent use.
package client
