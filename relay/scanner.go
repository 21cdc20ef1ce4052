package relay

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/omni/bridge-relay/config"
	"github.com/omni/bridge-relay/contract"
	"github.com/omni/bridge-relay/entity"
	"github.com/omni/bridge-relay/ethclient"
	"github.com/omni/bridge-relay/logging"
)

// EventScanner fetches TokensLocked logs of the bridge contract in a given
// block range and decodes them into lock events.
type EventScanner struct {
	logger          logging.Logger
	client          ethclient.Client
	address         common.Address
	safeLogsRequest bool
}

func NewEventScanner(logger logging.Logger, client ethclient.Client, cfg *config.Config) *EventScanner {
	return &EventScanner{
		logger:          logger,
		client:          client,
		address:         cfg.Bridge.Address,
		safeLogsRequest: cfg.Chain.SafeLogsRequest,
	}
}

// Scan returns decoded events ordered by ascending (block number, log index).
// An RPC failure fails the whole range. A single malformed log is logged and
// skipped, refetching it cannot yield a different result.
func (s *EventScanner) Scan(ctx context.Context, blocksRange *BlocksRange) ([]*entity.LockEvent, error) {
	q := ethereum.FilterQuery{
		FromBlock: big.NewInt(int64(blocksRange.From)),
		ToBlock:   big.NewInt(int64(blocksRange.To)),
		Addresses: []common.Address{s.address},
		Topics:    [][]common.Hash{{contract.TokensLockedTopic}},
	}
	var logs []types.Log
	var err error
	if s.safeLogsRequest {
		logs, err = s.client.FilterLogsSafe(ctx, q)
	} else {
		logs, err = s.client.FilterLogs(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("can't fetch logs in range [%d, %d]: %w", blocksRange.From, blocksRange.To, err)
	}
	sort.Slice(logs, func(i, j int) bool {
		a, b := logs[i], logs[j]
		return a.BlockNumber < b.BlockNumber || (a.BlockNumber == b.BlockNumber && a.Index < b.Index)
	})
	events := make([]*entity.LockEvent, 0, len(logs))
	for _, log := range logs {
		event, err2 := contract.ParseLockEvent(log)
		if err2 != nil {
			MalformedLogs.Inc()
			s.logger.WithError(err2).WithFields(logrus.Fields{
				"block_number": log.BlockNumber,
				"log_index":    log.Index,
				"tx_hash":      log.TxHash,
			}).Warn("skipping malformed event log")
			continue
		}
		events = append(events, event)
	}
	s.logger.WithFields(logrus.Fields{
		"count":      len(events),
		"from_block": blocksRange.From,
		"to_block":   blocksRange.To,
	}).Info("fetched events in range")
	return events, nil
}
