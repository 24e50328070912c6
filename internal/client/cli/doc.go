// Package cli provides the interactive gophshare command-line client.
//
// It wires configuration, the local SQLite database, the HTTP API client,
// client services and the access request workflow into a REPL. On start it
// resumes a saved session if there is one and starts a background watcher
// that switches between online and offline mode.
//
// Key features:
//   - Register / Login / Logout
//   - List own, public and others' private files; upload, download, delete
//   - Request access, approve or reject received requests, withdraw sent ones
//   - Dashboard counters and a local transfer history
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
