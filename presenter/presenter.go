package presenter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/omni/bridge-relay/config"
	"github.com/omni/bridge-relay/db"
	"github.com/omni/bridge-relay/logging"
	custommiddleware "github.com/omni/bridge-relay/presenter/http/middleware"
	"github.com/omni/bridge-relay/presenter/http/render"
	"github.com/omni/bridge-relay/repository"
)

const recentFailedLimit = 100

// RelayStatus reports the live position of the relay loop.
type RelayStatus interface {
	IsSynced() bool
	LastScannedBlock() uint
}

// Presenter serves the operational HTTP API: relay status, per-tx lookup
// and the ledger of permanently failed relays.
type Presenter struct {
	logger logging.Logger
	repo   *repository.Repo
	cfg    *config.Config
	status RelayStatus
	root   chi.Router
}

func NewPresenter(logger logging.Logger, repo *repository.Repo, cfg *config.Config, status RelayStatus) *Presenter {
	return &Presenter{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
		status: status,
		root:   chi.NewMux(),
	}
}

func (p *Presenter) Serve(addr string) error {
	p.logger.WithField("addr", addr).Info("starting presenter service")
	p.root.Use(middleware.Throttle(5))
	p.root.Use(middleware.RequestID)
	p.root.Use(custommiddleware.NewLoggerMiddleware(p.logger))
	p.root.Use(custommiddleware.NewRecovererMiddleware())
	p.root.Get("/health", p.GetHealth)
	p.root.Get("/status", p.wrapJSONHandler(p.GetStatus))
	p.root.Get("/tx/{txHash:0x[0-9a-fA-F]{64}}", p.wrapJSONHandler(p.SearchTx))
	p.root.Get("/failed", p.wrapJSONHandler(p.GetFailedRelays))
	return http.ListenAndServe(addr, p.root)
}

func (p *Presenter) wrapJSONHandler(handler func(ctx context.Context) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r.Context())
		if err != nil {
			render.Error(w, r, err)
			return
		}
		render.JSON(w, r, http.StatusOK, res)
	}
}

func (p *Presenter) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type statusResponse struct {
	ChainID          string `json:"chainId"`
	BridgeAddress    string `json:"bridgeAddress"`
	LastScannedBlock uint   `json:"lastScannedBlock"`
	Synced           bool   `json:"synced"`
}

func (p *Presenter) GetStatus(ctx context.Context) (interface{}, error) {
	return &statusResponse{
		ChainID:          p.cfg.Chain.ChainID,
		BridgeAddress:    p.cfg.Bridge.Address.String(),
		LastScannedBlock: p.status.LastScannedBlock(),
		Synced:           p.status.IsSynced(),
	}, nil
}

type txResponse struct {
	TxHash      string `json:"txHash"`
	Status      string `json:"status"`
	BlockNumber uint   `json:"blockNumber,omitempty"`
	Attempts    uint   `json:"attempts,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (p *Presenter) SearchTx(ctx context.Context) (interface{}, error) {
	txHash := common.HexToHash(chi.URLParamFromCtx(ctx, "txHash"))
	chainID := p.cfg.Chain.ChainID

	processed, err := p.repo.ProcessedTxs.GetByTxHash(ctx, chainID, txHash)
	if err = db.IgnoreErrNotFound(err); err != nil {
		return nil, fmt.Errorf("failed to find processed tx: %w", err)
	}
	if processed != nil {
		return &txResponse{
			TxHash:      txHash.String(),
			Status:      "relayed",
			BlockNumber: processed.BlockNumber,
		}, nil
	}

	failed, err := p.repo.FailedRelays.GetByTxHash(ctx, chainID, txHash)
	if err = db.IgnoreErrNotFound(err); err != nil {
		return nil, fmt.Errorf("failed to find failed relay: %w", err)
	}
	if failed != nil {
		return &txResponse{
			TxHash:      txHash.String(),
			Status:      "failed",
			BlockNumber: failed.BlockNumber,
			Attempts:    failed.Attempts,
			Error:       failed.Error,
		}, nil
	}

	return &txResponse{
		TxHash: txHash.String(),
		Status: "unknown",
	}, nil
}

func (p *Presenter) GetFailedRelays(ctx context.Context) (interface{}, error) {
	failed, err := p.repo.FailedRelays.FindRecent(ctx, p.cfg.Chain.ChainID, recentFailedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent failed relays: %w", err)
	}
	res := make([]*txResponse, 0, len(failed))
	for _, f := range failed {
		res = append(res, &txResponse{
			TxHash:      f.TxHash.String(),
			Status:      "failed",
			BlockNumber: f.BlockNumber,
			Attempts:    f.Attempts,
			Error:       f.Error,
		})
	}
	return res, nil
}
