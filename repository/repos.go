package repository

import (
	"github.com/omni/bridge-relay/db"
	"github.com/omni/bridge-relay/entity"
	"github.com/omni/bridge-relay/repository/postgres"
)

type Repo struct {
	ScanCursors  entity.ScanCursorsRepo
	ProcessedTxs entity.ProcessedTxsRepo
	FailedRelays entity.FailedRelaysRepo
}

func NewRepo(db *db.DB) *Repo {
	return &Repo{
		ScanCursors:  postgres.NewScanCursorsRepo("scan_cursors", db),
		ProcessedTxs: postgres.NewProcessedTxsRepo("processed_txs", db),
		FailedRelays: postgres.NewFailedRelaysRepo("failed_relays", db),
	}
}
