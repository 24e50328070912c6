// Package metadata stores the client's session details (email, user id,
// refresh token, server address) in the local SQLite database so a later run
// can resume the session without asking for the password again.
//
// Get returns (nil, nil) for a missing key. SQLiteRepository works over
// dbx.DBTX, so it can take part in a transaction started with dbx.WithTx.
package metadata
