package transfers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophshare/internal/client/migrations"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
	"github.com/dmitrijs2005/gophshare/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))
	return db
}

func newTransfer(fileID int64, dir models.TransferDirection) *models.Transfer {
	return &models.Transfer{
		FileID:    fileID,
		FileName:  "report.pdf",
		Direction: dir,
		LocalPath: "/tmp/report.pdf",
		Size:      10,
	}
}

func TestCreateAndComplete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	id, err := r.Create(ctx, newTransfer(7, models.DirectionDownload))
	require.NoError(t, err)
	require.NotZero(t, id)

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.TransferPending, pending[0].Status)
	assert.Nil(t, pending[0].FinishedAt)

	require.NoError(t, r.MarkCompleted(ctx, id, 2048))

	pending, err = r.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	recent, err := r.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	got := recent[0]
	assert.Equal(t, int64(7), got.FileID)
	assert.Equal(t, models.DirectionDownload, got.Direction)
	assert.Equal(t, models.TransferCompleted, got.Status)
	assert.Equal(t, int64(2048), got.Size)
	assert.NotNil(t, got.FinishedAt)
}

func TestMarkFailed_StoresReason(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	id, err := r.Create(ctx, newTransfer(1, models.DirectionUpload))
	require.NoError(t, err)
	require.NoError(t, r.MarkFailed(ctx, id, "connection reset"))

	recent, err := r.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.TransferFailed, recent[0].Status)
	assert.Equal(t, "connection reset", recent[0].Error)
}

func TestFinish_OnlyPending(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	id, err := r.Create(ctx, newTransfer(1, models.DirectionUpload))
	require.NoError(t, err)
	require.NoError(t, r.MarkCompleted(ctx, id, 1))

	require.ErrorIs(t, r.MarkFailed(ctx, id, "late"), common.ErrorNotFound)
	require.ErrorIs(t, r.MarkCompleted(ctx, 999, 1), common.ErrorNotFound)
}

func TestListRecent_NewestFirstWithLimit(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	var ids []int64
	for i := int64(1); i <= 3; i++ {
		id, err := r.Create(ctx, newTransfer(i, models.DirectionDownload))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := r.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func TestCreate_RejectsUnknownDirection(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Create(context.Background(), newTransfer(1, "sideways"))
	require.ErrorContains(t, err, "failed to insert transfer")
}
