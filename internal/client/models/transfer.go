package models

import "time"

type TransferDirection string

const (
	DirectionUpload   TransferDirection = "upload"
	DirectionDownload TransferDirection = "download"
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
)

// Transfer is a locally recorded upload or download.
type Transfer struct {
	ID         int64
	FileID     int64
	FileName   string
	Direction  TransferDirection
	LocalPath  string
	Size       int64
	Status     TransferStatus
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}
