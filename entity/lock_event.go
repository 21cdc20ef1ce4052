package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LockEvent is a decoded TokensLocked event observed on the source chain.
// TxHash is the dedup key: two events with equal hashes are the same event.
type LockEvent struct {
	TxHash             common.Hash
	BlockNumber        uint
	LogIndex           uint
	Sender             common.Address
	Recipient          common.Address
	Amount             *big.Int
	DestinationChainID uint64
}
