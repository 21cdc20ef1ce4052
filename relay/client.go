package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omni/bridge-relay/config"
	"github.com/omni/bridge-relay/entity"
	"github.com/omni/bridge-relay/logging"
	"github.com/omni/bridge-relay/utils"
)

// ErrEndpointRejected marks a non-retryable 4xx response, the same payload
// will not succeed unchanged.
var ErrEndpointRejected = errors.New("delivery endpoint rejected event")

// Outcome is the final per-event relay result. It is never persisted.
type Outcome struct {
	Delivered bool
	Attempts  uint
	Receipt   json.RawMessage
	Err       error
}

// Relayer delivers a single lock event to the destination endpoint.
type Relayer interface {
	Relay(ctx context.Context, event *entity.LockEvent) *Outcome
}

// Client delivers events to the destination HTTP endpoint with bounded
// exponential-backoff retry. Each attempt makes exactly one network call;
// no state is kept between attempts beyond the in-memory counter.
type Client struct {
	logger     logging.Logger
	cfg        *config.RelayConfig
	httpClient *http.Client
}

func NewClient(logger logging.Logger, cfg *config.RelayConfig) *Client {
	return &Client{
		logger: logger,
		cfg:    cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type relayPayload struct {
	SourceTxHash       string `json:"sourceTxHash"`
	Sender             string `json:"sender"`
	Recipient          string `json:"recipient"`
	Amount             string `json:"amount"`
	DestinationChainID uint64 `json:"destinationChainId"`
	BlockNumber        uint   `json:"blockNumber"`
}

// BackoffDelay returns the pause before the given attempt, baseDelay doubled
// for every retry after the first one and capped at maxDelay. Attempt numbers
// start at 1 and the first attempt is made without any delay.
func BackoffDelay(attempt uint, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 2 {
		return 0
	}
	delay := baseDelay << (attempt - 2)
	if delay <= 0 || (maxDelay > 0 && delay > maxDelay) {
		return maxDelay
	}
	return delay
}

func (c *Client) Relay(ctx context.Context, event *entity.LockEvent) *Outcome {
	payload, err := json.Marshal(relayPayload{
		SourceTxHash:       event.TxHash.String(),
		Sender:             event.Sender.String(),
		Recipient:          event.Recipient.String(),
		Amount:             event.Amount.String(),
		DestinationChainID: event.DestinationChainID,
		BlockNumber:        event.BlockNumber,
	})
	if err != nil {
		return &Outcome{Err: fmt.Errorf("can't marshal relay payload: %w", err)}
	}

	logger := c.logger.WithField("tx_hash", event.TxHash)
	for attempt := uint(1); attempt <= c.cfg.MaxAttempts; attempt++ {
		if delay := BackoffDelay(attempt, c.cfg.BaseDelay, c.cfg.MaxDelay); delay > 0 {
			if utils.ContextSleep(ctx, delay) == nil {
				return &Outcome{Attempts: attempt - 1, Err: ctx.Err()}
			}
		}
		receipt, retryable, err2 := c.deliver(ctx, payload)
		if err2 == nil {
			RelayAttempts.WithLabelValues("ok").Inc()
			logger.WithField("attempt", attempt).Info("relayed event to destination endpoint")
			return &Outcome{Delivered: true, Attempts: attempt, Receipt: receipt}
		}
		RelayAttempts.WithLabelValues("error").Inc()
		logger.WithError(err2).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": c.cfg.MaxAttempts,
		}).Warn("failed to relay event")
		if !retryable {
			return &Outcome{Attempts: attempt, Err: err2}
		}
		err = err2
	}
	return &Outcome{Attempts: c.cfg.MaxAttempts, Err: fmt.Errorf("relay attempts exhausted: %w", err)}
}

// deliver makes a single delivery attempt. The second return value reports
// whether the failure is worth retrying: network-level errors, 5xx responses
// and 429 are, any other 4xx is a permanent rejection.
func (c *Client) deliver(ctx context.Context, payload []byte) (json.RawMessage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("can't create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("can't send relay request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, fmt.Errorf("can't read relay response: %w", err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, false, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("endpoint returned status %d: %w", resp.StatusCode, ErrEndpointRejected)
	}
}
