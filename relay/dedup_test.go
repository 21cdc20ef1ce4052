package relay_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/omni/bridge-relay/entity"
	"github.com/omni/bridge-relay/relay"
)

func lockEvent(hash byte, blockNumber uint) *entity.LockEvent {
	return &entity.LockEvent{
		TxHash:      common.Hash{hash},
		BlockNumber: blockNumber,
	}
}

func TestPartitionEvents(t *testing.T) {
	t.Parallel()

	processed := relay.NewProcessedSet([]common.Hash{{0x01}, {0x02}})

	events := []*entity.LockEvent{
		lockEvent(0x01, 100),
		lockEvent(0x03, 101),
		lockEvent(0x02, 102),
		lockEvent(0x04, 103),
	}
	newEvents, alreadySeen := relay.PartitionEvents(events, processed)
	require.Equal(t, []*entity.LockEvent{events[1], events[3]}, newEvents)
	require.Equal(t, []*entity.LockEvent{events[0], events[2]}, alreadySeen)

	// partitioning must not mutate the set
	require.False(t, processed.Contains(common.Hash{0x03}))
	require.False(t, processed.Contains(common.Hash{0x04}))
}

func TestPartitionEventsDuplicateWithinBatch(t *testing.T) {
	t.Parallel()

	events := []*entity.LockEvent{
		lockEvent(0x01, 100),
		lockEvent(0x01, 100),
		lockEvent(0x02, 101),
	}
	newEvents, alreadySeen := relay.PartitionEvents(events, relay.NewProcessedSet(nil))
	require.Equal(t, []*entity.LockEvent{events[0], events[2]}, newEvents)
	require.Equal(t, []*entity.LockEvent{events[1]}, alreadySeen)
}

func TestPartitionEventsEmpty(t *testing.T) {
	t.Parallel()

	newEvents, alreadySeen := relay.PartitionEvents(nil, relay.NewProcessedSet(nil))
	require.Empty(t, newEvents)
	require.Empty(t, alreadySeen)
}
