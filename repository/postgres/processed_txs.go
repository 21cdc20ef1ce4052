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

type processedTxsRepo basePostgresRepo

func NewProcessedTxsRepo(table string, db *db.DB) entity.ProcessedTxsRepo {
	return (*processedTxsRepo)(newBasePostgresRepo(table, db))
}

func (r *processedTxsRepo) Ensure(ctx context.Context, tx *entity.ProcessedTx) error {
	q, args, err := sq.Insert(r.table).
		Columns("chain_id", "tx_hash", "block_number").
		Values(tx.ChainID, tx.TxHash, tx.BlockNumber).
		Suffix("ON CONFLICT (chain_id, tx_hash) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert processed tx: %w", err)
	}
	return nil
}

func (r *processedTxsRepo) GetByTxHash(ctx context.Context, chainID string, txHash common.Hash) (*entity.ProcessedTx, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"chain_id": chainID, "tx_hash": txHash}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	tx := new(entity.ProcessedTx)
	err = r.db.GetContext(ctx, tx, q, args...)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("can't get processed tx by tx_hash: %w", err)
	}
	return tx, nil
}

func (r *processedTxsRepo) FindTxHashes(ctx context.Context, chainID string) ([]common.Hash, error) {
	q, args, err := sq.Select("tx_hash").
		From(r.table).
		Where(sq.Eq{"chain_id": chainID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	var hashes []common.Hash
	err = r.db.SelectContext(ctx, &hashes, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't select processed tx hashes: %w", err)
	}
	return hashes, nil
}
