package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// FailedRelay records an event whose delivery was permanently rejected or
// ran out of retry attempts. The scan cursor advances past such events, so
// this ledger is the only durable trace left for operational triage.
type FailedRelay struct {
	ChainID     string      `db:"chain_id"`
	TxHash      common.Hash `db:"tx_hash"`
	BlockNumber uint        `db:"block_number"`
	Attempts    uint        `db:"attempts"`
	Error       string      `db:"error"`
	CreatedAt   *time.Time  `db:"created_at"`
	UpdatedAt   *time.Time  `db:"updated_at"`
}

type FailedRelaysRepo interface {
	Ensure(ctx context.Context, failed *FailedRelay) error
	GetByTxHash(ctx context.Context, chainID string, txHash common.Hash) (*FailedRelay, error)
	FindRecent(ctx context.Context, chainID string, limit uint) ([]*FailedRelay, error)
}
