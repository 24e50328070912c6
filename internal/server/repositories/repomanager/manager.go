package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophshare/internal/dbx"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/accessrequests"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can use
// the same repositories with *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Files(db dbx.DBTX) files.Repository
	AccessRequests(db dbx.DBTX) accessrequests.Repository
}
