// Package transfers keeps a local log of uploads and downloads made by the
// client.
//
// A transfer is created as pending before any bytes move and is then marked
// completed or failed. Pending rows left behind by an interrupted run are
// reported by ListPending so the CLI can show them in the history.
//
// Typical usage:
//
//	repo := transfers.NewSQLiteRepository(db)
//	id, _ := repo.Create(ctx, &models.Transfer{...})
//	_ = repo.MarkCompleted(ctx, id, size)
//	recent, _ := repo.ListRecent(ctx, 20)
package transfers
