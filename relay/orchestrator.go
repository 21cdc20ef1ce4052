package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/omni/bridge-relay/config"
	"github.com/omni/bridge-relay/db"
	"github.com/omni/bridge-relay/entity"
	"github.com/omni/bridge-relay/ethclient"
	"github.com/omni/bridge-relay/logging"
	"github.com/omni/bridge-relay/repository"
	"github.com/omni/bridge-relay/utils"
)

const defaultSyncedThreshold = 10

// Orchestrator runs the scan-dedup-relay cycle: compute a safe block range,
// scan it, relay every new event sequentially, then commit the cursor.
// Cycles are strictly sequential, there is a single writer of the scan state.
type Orchestrator struct {
	logger             logging.Logger
	cfg                *config.Config
	client             ethclient.Client
	scanner            *EventScanner
	relayer            Relayer
	repo               *repository.Repo
	cursor             *entity.ScanCursor
	processed          ProcessedSet
	headBlock          uint
	isSynced           bool
	headBlockMetric    prometheus.Gauge
	scannedBlockMetric prometheus.Gauge
	syncedMetric       prometheus.Gauge
}

func NewOrchestrator(ctx context.Context, logger logging.Logger, repo *repository.Repo, cfg *config.Config, client ethclient.Client, relayer Relayer) (*Orchestrator, error) {
	if cfg.Bridge.BlockConfirmations == 0 {
		logger.Warn("required_block_confirmations is 0, reorg protection is disabled")
	}
	cursor, err := repo.ScanCursors.GetByChainIDAndAddress(ctx, cfg.Chain.ChainID, cfg.Bridge.Address)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("failed to read scan cursor: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"chain_id":    cfg.Chain.ChainID,
			"address":     cfg.Bridge.Address,
			"start_block": cfg.Bridge.StartBlock,
		}).Warn("scan cursor is not present, starting scanning from scratch")
		// start_block 0 scans from block 1, the cursor must not wrap below 0
		lastScanned := uint(0)
		if cfg.Bridge.StartBlock > 0 {
			lastScanned = cfg.Bridge.StartBlock - 1
		}
		cursor = &entity.ScanCursor{
			ChainID:          cfg.Chain.ChainID,
			Address:          cfg.Bridge.Address,
			LastScannedBlock: lastScanned,
		}
	}
	hashes, err := repo.ProcessedTxs.FindTxHashes(ctx, cfg.Chain.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to load processed tx hashes: %w", err)
	}
	commonLabels := prometheus.Labels{
		"chain_id": cfg.Chain.ChainID,
		"address":  cfg.Bridge.Address.String(),
	}
	return &Orchestrator{
		logger:             logger,
		cfg:                cfg,
		client:             client,
		scanner:            NewEventScanner(logger, client, cfg),
		relayer:            relayer,
		repo:               repo,
		cursor:             cursor,
		processed:          NewProcessedSet(hashes),
		headBlockMetric:    LatestHeadBlock.With(commonLabels),
		scannedBlockMetric: LatestScannedBlock.With(commonLabels),
		syncedMetric:       SyncedScanner.With(commonLabels),
	}, nil
}

func (o *Orchestrator) IsSynced() bool {
	return o.isSynced
}

func (o *Orchestrator) LastScannedBlock() uint {
	return o.cursor.LastScannedBlock
}

// Start runs scan cycles until the context is cancelled. Cancellation is
// honored between cycles and during the poll sleep; a relay batch already in
// flight is drained and committed before the loop exits.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.WithFields(logrus.Fields{
		"chain_id":           o.cfg.Chain.ChainID,
		"address":            o.cfg.Bridge.Address,
		"last_scanned_block": o.cursor.LastScannedBlock,
	}).Info("starting bridge event relay loop")
	for {
		if ctx.Err() != nil {
			o.logger.Info("relay loop terminated")
			return
		}
		o.RunCycle(ctx)
		if utils.ContextSleep(ctx, o.cfg.Bridge.PollInterval) == nil {
			o.logger.Info("relay loop terminated")
			return
		}
	}
}

// RunCycle executes a single scan-dedup-relay-commit cycle. It is the unit
// the Start loop repeats and can be driven step by step in tests.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	head, err := o.client.BlockNumber(ctx)
	if err != nil {
		o.logger.WithError(err).Error("can't fetch latest block number")
		return
	}
	o.recordHeadBlockNumber(head)

	blocksRange := NextScanRange(o.cursor.LastScannedBlock, head, o.cfg.Bridge.BlockConfirmations)
	if blocksRange == nil {
		o.logger.WithFields(logrus.Fields{
			"head_block":         head,
			"last_scanned_block": o.cursor.LastScannedBlock,
		}).Debug("no new confirmed blocks to scan")
		return
	}

	for _, chunk := range SplitBlockRange(blocksRange.From, blocksRange.To, o.cfg.Bridge.MaxBlockRangeSize) {
		if ctx.Err() != nil {
			return
		}
		events, err2 := o.scanner.Scan(ctx, chunk)
		if err2 != nil {
			// the cursor is unchanged, the same range is recomputed next cycle
			o.logger.WithError(err2).WithFields(logrus.Fields{
				"from_block": chunk.From,
				"to_block":   chunk.To,
			}).Error("failed to scan block range, will retry next cycle")
			return
		}

		// once a chunk is scanned, its relay batch is drained and the cursor
		// committed even if shutdown was requested in the meantime
		relayCtx := context.WithoutCancel(ctx)

		newEvents, alreadySeen := PartitionEvents(events, o.processed)
		if len(alreadySeen) > 0 {
			DuplicateEvents.Add(float64(len(alreadySeen)))
			o.logger.WithFields(logrus.Fields{
				"count":      len(alreadySeen),
				"from_block": chunk.From,
				"to_block":   chunk.To,
			}).Info("skipping already processed events")
		}
		for _, event := range newEvents {
			o.relayEvent(relayCtx, event)
		}

		if err2 = o.commitCursor(relayCtx, chunk.To); err2 != nil {
			o.logger.WithError(err2).WithField("to_block", chunk.To).
				Error("failed to persist scan cursor, range will be re-scanned")
			return
		}
	}
}

func (o *Orchestrator) relayEvent(ctx context.Context, event *entity.LockEvent) {
	outcome := o.relayer.Relay(ctx, event)
	if outcome.Delivered {
		RelayedEvents.Inc()
		o.processed.Add(event.TxHash)
		err := o.repo.ProcessedTxs.Ensure(ctx, &entity.ProcessedTx{
			ChainID:     o.cfg.Chain.ChainID,
			TxHash:      event.TxHash,
			BlockNumber: event.BlockNumber,
		})
		if err != nil {
			// delivery still counts, losing this row can at worst cause one
			// duplicate delivery after a crash, which the receiver dedups
			o.logger.WithError(err).WithField("tx_hash", event.TxHash).
				Error("can't persist processed tx")
		}
		return
	}

	PermanentFailures.Inc()
	o.logger.WithError(outcome.Err).WithFields(logrus.Fields{
		"tx_hash":      event.TxHash,
		"block_number": event.BlockNumber,
		"attempts":     outcome.Attempts,
	}).Error("giving up on event relay")
	err := o.repo.FailedRelays.Ensure(ctx, &entity.FailedRelay{
		ChainID:     o.cfg.Chain.ChainID,
		TxHash:      event.TxHash,
		BlockNumber: event.BlockNumber,
		Attempts:    outcome.Attempts,
		Error:       outcome.Err.Error(),
	})
	if err != nil {
		o.logger.WithError(err).WithField("tx_hash", event.TxHash).
			Error("can't record failed relay")
	}
}

func (o *Orchestrator) commitCursor(ctx context.Context, blockNumber uint) error {
	if blockNumber < o.cursor.LastScannedBlock {
		return nil
	}
	prev := o.cursor.LastScannedBlock
	o.cursor.LastScannedBlock = blockNumber
	if err := o.repo.ScanCursors.Ensure(ctx, o.cursor); err != nil {
		// never advance in memory past the persisted state
		o.cursor.LastScannedBlock = prev
		return err
	}
	o.scannedBlockMetric.Set(float64(blockNumber))
	o.recordIsSynced()
	return nil
}

func (o *Orchestrator) recordHeadBlockNumber(blockNumber uint) {
	if blockNumber < o.headBlock {
		return
	}
	o.headBlock = blockNumber
	o.headBlockMetric.Set(float64(blockNumber))
	o.recordIsSynced()
}

func (o *Orchestrator) recordIsSynced() {
	o.isSynced = o.cursor.LastScannedBlock+o.cfg.Bridge.BlockConfirmations+defaultSyncedThreshold > o.headBlock
	if o.isSynced {
		o.syncedMetric.Set(1)
	} else {
		o.syncedMetric.Set(0)
	}
}
