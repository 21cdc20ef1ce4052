package presenter_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/omni/bridge-relay/config"
	"github.com/omni/bridge-relay/db"
	"github.com/omni/bridge-relay/entity"
	"github.com/omni/bridge-relay/logging"
	"github.com/omni/bridge-relay/presenter"
	"github.com/omni/bridge-relay/repository"
)

type memProcessedTxs struct {
	txs    map[common.Hash]*entity.ProcessedTx
	getErr error
}

func (r *memProcessedTxs) Ensure(ctx context.Context, tx *entity.ProcessedTx) error {
	r.txs[tx.TxHash] = tx
	return nil
}

func (r *memProcessedTxs) GetByTxHash(ctx context.Context, chainID string, txHash common.Hash) (*entity.ProcessedTx, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if tx, ok := r.txs[txHash]; ok {
		return tx, nil
	}
	return nil, db.ErrNotFound
}

func (r *memProcessedTxs) FindTxHashes(ctx context.Context, chainID string) ([]common.Hash, error) {
	return nil, nil
}

type memFailedRelays struct {
	failed map[common.Hash]*entity.FailedRelay
}

func (r *memFailedRelays) Ensure(ctx context.Context, failed *entity.FailedRelay) error {
	r.failed[failed.TxHash] = failed
	return nil
}

func (r *memFailedRelays) GetByTxHash(ctx context.Context, chainID string, txHash common.Hash) (*entity.FailedRelay, error) {
	if f, ok := r.failed[txHash]; ok {
		return f, nil
	}
	return nil, db.ErrNotFound
}

func (r *memFailedRelays) FindRecent(ctx context.Context, chainID string, limit uint) ([]*entity.FailedRelay, error) {
	res := make([]*entity.FailedRelay, 0, len(r.failed))
	for _, f := range r.failed {
		res = append(res, f)
	}
	return res, nil
}

type fixedStatus struct{}

func (fixedStatus) IsSynced() bool         { return true }
func (fixedStatus) LastScannedBlock() uint { return 200 }

func testPresenter(processed *memProcessedTxs, failed *memFailedRelays) *presenter.Presenter {
	cfg := &config.Config{
		Chain: &config.ChainConfig{ChainID: "1"},
		Bridge: &config.BridgeConfig{
			Address: common.HexToAddress("0x7301CFA0e1756B71869E93d4e4Dca5c7d0eb0AA6"),
		},
	}
	repo := &repository.Repo{
		ProcessedTxs: processed,
		FailedRelays: failed,
	}
	return presenter.NewPresenter(logging.New(), repo, cfg, fixedStatus{})
}

func txCtx(txHash common.Hash) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("txHash", txHash.String())
	return context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
}

func searchJSON(t *testing.T, p *presenter.Presenter, txHash common.Hash) string {
	t.Helper()
	res, err := p.SearchTx(txCtx(txHash))
	require.NoError(t, err)
	blob, err := json.Marshal(res)
	require.NoError(t, err)
	return string(blob)
}

func TestSearchTx(t *testing.T) {
	t.Parallel()

	relayedHash := common.Hash{0x01}
	failedHash := common.Hash{0x02}
	unknownHash := common.Hash{0x03}

	processed := &memProcessedTxs{txs: map[common.Hash]*entity.ProcessedTx{
		relayedHash: {ChainID: "1", TxHash: relayedHash, BlockNumber: 150},
	}}
	failed := &memFailedRelays{failed: map[common.Hash]*entity.FailedRelay{
		failedHash: {ChainID: "1", TxHash: failedHash, BlockNumber: 160, Attempts: 5, Error: "relay attempts exhausted"},
	}}
	p := testPresenter(processed, failed)

	require.JSONEq(t, `{
		"txHash": "`+relayedHash.String()+`",
		"status": "relayed",
		"blockNumber": 150
	}`, searchJSON(t, p, relayedHash))

	require.JSONEq(t, `{
		"txHash": "`+failedHash.String()+`",
		"status": "failed",
		"blockNumber": 160,
		"attempts": 5,
		"error": "relay attempts exhausted"
	}`, searchJSON(t, p, failedHash))

	require.JSONEq(t, `{
		"txHash": "`+unknownHash.String()+`",
		"status": "unknown"
	}`, searchJSON(t, p, unknownHash))
}

func TestSearchTxRepoError(t *testing.T) {
	t.Parallel()

	processed := &memProcessedTxs{
		txs:    map[common.Hash]*entity.ProcessedTx{},
		getErr: errors.New("connection refused"),
	}
	failed := &memFailedRelays{failed: map[common.Hash]*entity.FailedRelay{}}
	p := testPresenter(processed, failed)

	_, err := p.SearchTx(txCtx(common.Hash{0x01}))
	require.Error(t, err)
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	p := testPresenter(
		&memProcessedTxs{txs: map[common.Hash]*entity.ProcessedTx{}},
		&memFailedRelays{failed: map[common.Hash]*entity.FailedRelay{}},
	)

	res, err := p.GetStatus(context.Background())
	require.NoError(t, err)
	blob, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"chainId": "1",
		"bridgeAddress": "0x7301CFA0e1756B71869E93d4e4Dca5c7d0eb0AA6",
		"lastScannedBlock": 200,
		"synced": true
	}`, string(blob))
}
