package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ProcessedTx marks a lock event as successfully relayed.
// A row is inserted only after the delivery endpoint acknowledged the event.
type ProcessedTx struct {
	ChainID     string      `db:"chain_id"`
	TxHash      common.Hash `db:"tx_hash"`
	BlockNumber uint        `db:"block_number"`
	CreatedAt   *time.Time  `db:"created_at"`
}

type ProcessedTxsRepo interface {
	Ensure(ctx context.Context, tx *ProcessedTx) error
	GetByTxHash(ctx context.Context, chainID string, txHash common.Hash) (*ProcessedTx, error)
	FindTxHashes(ctx context.Context, chainID string) ([]common.Hash, error)
}
