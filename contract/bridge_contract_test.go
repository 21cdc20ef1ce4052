package contract_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/omni/bridge-relay/contract"
	"github.com/omni/bridge-relay/entity"
)

func lockEventLog(txHash common.Hash, blockNumber uint64, logIndex uint, sender, recipient common.Address, amount *big.Int, destChainID uint64) types.Log {
	return types.Log{
		Topics: []common.Hash{
			contract.TokensLockedTopic,
			sender.Hash(),
			recipient.Hash(),
			common.BigToHash(new(big.Int).SetUint64(destChainID)),
		},
		Data:        common.BigToHash(amount).Bytes(),
		BlockNumber: blockNumber,
		Index:       logIndex,
		TxHash:      txHash,
	}
}

func TestParseLockEvent(t *testing.T) {
	t.Parallel()

	txHash := common.HexToHash("0x51db4529af8577dbf36ed2d4a45ee08bdf2dc3e48cc92808e1f5d05cfc58bba0")
	sender := common.HexToAddress("0x73cA9C4e72fF109259cf7374F038faf950949C51")
	recipient := common.HexToAddress("0x4aa42145Aa6Ebf72e164C9bBC74fbD3788045016")
	amount := big.NewInt(1234567890)

	event, err := contract.ParseLockEvent(lockEventLog(txHash, 100, 3, sender, recipient, amount, 56))
	require.NoError(t, err)
	require.Equal(t, &entity.LockEvent{
		TxHash:             txHash,
		BlockNumber:        100,
		LogIndex:           3,
		Sender:             sender,
		Recipient:          recipient,
		Amount:             amount,
		DestinationChainID: 56,
	}, event)
}

func TestParseLockEventErrors(t *testing.T) {
	t.Parallel()

	sender := common.HexToAddress("0x73cA9C4e72fF109259cf7374F038faf950949C51")
	recipient := common.HexToAddress("0x4aa42145Aa6Ebf72e164C9bBC74fbD3788045016")

	t.Run("wrong topic0", func(t *testing.T) {
		t.Parallel()
		log := lockEventLog(common.Hash{}, 100, 0, sender, recipient, big.NewInt(1), 56)
		log.Topics[0] = common.HexToHash("0xdeadbeef")
		_, err := contract.ParseLockEvent(log)
		require.Error(t, err)
	})

	t.Run("missing topics", func(t *testing.T) {
		t.Parallel()
		log := lockEventLog(common.Hash{}, 100, 0, sender, recipient, big.NewInt(1), 56)
		log.Topics = log.Topics[:2]
		_, err := contract.ParseLockEvent(log)
		require.Error(t, err)
	})

	t.Run("truncated data", func(t *testing.T) {
		t.Parallel()
		log := lockEventLog(common.Hash{}, 100, 0, sender, recipient, big.NewInt(1), 56)
		log.Data = log.Data[:16]
		_, err := contract.ParseLockEvent(log)
		require.Error(t, err)
	})

	t.Run("no topics at all", func(t *testing.T) {
		t.Parallel()
		_, err := contract.ParseLockEvent(types.Log{})
		require.Error(t, err)
	})
}
