package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/omni/bridge-relay/db"
	"github.com/omni/bridge-relay/entity"
)

type failedRelaysRepo basePostgresRepo

func NewFailedRelaysRepo(table string, db *db.DB) entity.FailedRelaysRepo {
	return (*failedRelaysRepo)(newBasePostgresRepo(table, db))
}

func (r *failedRelaysRepo) Ensure(ctx context.Context, failed *entity.FailedRelay) error {
	q, args, err := sq.Insert(r.table).
		Columns("chain_id", "tx_hash", "block_number", "attempts", "error").
		Values(failed.ChainID, failed.TxHash, failed.BlockNumber, failed.Attempts, failed.Error).
		Suffix("ON CONFLICT (chain_id, tx_hash) DO UPDATE SET updated_at = NOW(), attempts = EXCLUDED.attempts, error = EXCLUDED.error").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert failed relay: %w", err)
	}
	return nil
}

func (r *failedRelaysRepo) GetByTxHash(ctx context.Context, chainID string, txHash common.Hash) (*entity.FailedRelay, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"chain_id": chainID, "tx_hash": txHash}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	failed := new(entity.FailedRelay)
	err = r.db.GetContext(ctx, failed, q, args...)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("can't get failed relay by tx_hash: %w", err)
	}
	return failed, nil
}

func (r *failedRelaysRepo) FindRecent(ctx context.Context, chainID string, limit uint) ([]*entity.FailedRelay, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"chain_id": chainID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	var failed []*entity.FailedRelay
	err = r.db.SelectContext(ctx, &failed, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't select recent failed relays: %w", err)
	}
	return failed, nil
}
