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

type scanCursorsRepo basePostgresRepo

func NewScanCursorsRepo(table string, db *db.DB) entity.ScanCursorsRepo {
	return (*scanCursorsRepo)(newBasePostgresRepo(table, db))
}

func (r *scanCursorsRepo) Ensure(ctx context.Context, cursor *entity.ScanCursor) error {
	q, args, err := sq.Insert(r.table).
		Columns("chain_id", "address", "last_scanned_block").
		Values(cursor.ChainID, cursor.Address, cursor.LastScannedBlock).
		Suffix("ON CONFLICT (chain_id, address) DO UPDATE SET updated_at = NOW(), last_scanned_block = EXCLUDED.last_scanned_block").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert scan cursor: %w", err)
	}
	return nil
}

func (r *scanCursorsRepo) GetByChainIDAndAddress(ctx context.Context, chainID string, addr common.Address) (*entity.ScanCursor, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"chain_id": chainID, "address": addr}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	cursor := new(entity.ScanCursor)
	err = r.db.GetContext(ctx, cursor, q, args...)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("can't get scan cursor by chain_id and address: %w", err)
	}
	return cursor, nil
}
