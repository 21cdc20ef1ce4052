package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/omni/bridge-relay/entity"
)

// TokensLocked is the single bridge contract event being monitored.
// Amount is the only non-indexed input, so it is carried in the log data,
// while sender, recipient and destination chain id live in the topics.
const tokensLockedJSONABI = `[{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"from","type":"address"},{"indexed":true,"internalType":"address","name":"to","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"},{"indexed":true,"internalType":"uint256","name":"destinationChainId","type":"uint256"}],"name":"TokensLocked","type":"event"}]`

const TokensLockedEventName = "TokensLocked"

var (
	BridgeABI         abi.ABI
	TokensLockedTopic common.Hash
)

func init() {
	var err error
	BridgeABI, err = abi.JSON(strings.NewReader(tokensLockedJSONABI))
	if err != nil {
		panic(err)
	}
	TokensLockedTopic = BridgeABI.Events[TokensLockedEventName].ID
}

func Indexed(args abi.Arguments) abi.Arguments {
	var indexed abi.Arguments
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func DecodeEventLog(event *abi.Event, topics []common.Hash, data []byte) (map[string]interface{}, error) {
	indexed := Indexed(event.Inputs)
	values := make(map[string]interface{})
	if len(indexed) < len(event.Inputs) {
		if err := event.Inputs.UnpackIntoMap(values, data); err != nil {
			return nil, fmt.Errorf("can't unpack data: %w", err)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, topics[1:]); err != nil {
		return nil, fmt.Errorf("can't unpack topics: %w", err)
	}
	return values, nil
}

// ParseLockEvent decodes a raw TokensLocked log into a LockEvent.
// A decoding failure is permanent for the given log, refetching it
// yields the same malformed payload.
func ParseLockEvent(log types.Log) (*entity.LockEvent, error) {
	event := BridgeABI.Events[TokensLockedEventName]
	if len(log.Topics) == 0 || log.Topics[0] != TokensLockedTopic {
		return nil, fmt.Errorf("log topic does not match %s event signature", TokensLockedEventName)
	}
	if len(log.Topics) != len(Indexed(event.Inputs))+1 {
		return nil, fmt.Errorf("unexpected topics count %d in %s event", len(log.Topics), TokensLockedEventName)
	}
	values, err := DecodeEventLog(&event, log.Topics, log.Data)
	if err != nil {
		return nil, err
	}
	sender, ok := values["from"].(common.Address)
	if !ok {
		return nil, fmt.Errorf("can't decode from address in %s event", TokensLockedEventName)
	}
	recipient, ok := values["to"].(common.Address)
	if !ok {
		return nil, fmt.Errorf("can't decode to address in %s event", TokensLockedEventName)
	}
	amount, ok := values["amount"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("can't decode amount in %s event", TokensLockedEventName)
	}
	destinationChainID, ok := values["destinationChainId"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("can't decode destinationChainId in %s event", TokensLockedEventName)
	}
	return &entity.LockEvent{
		TxHash:             log.TxHash,
		BlockNumber:        uint(log.BlockNumber),
		LogIndex:           uint(log.Index),
		Sender:             sender,
		Recipient:          recipient,
		Amount:             amount,
		DestinationChainID: destinationChainID.Uint64(),
	}, nil
}
