package relay

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/omni/bridge-relay/entity"
)

// ProcessedSet holds the tx hashes of events that were already relayed.
type ProcessedSet map[common.Hash]struct{}

func NewProcessedSet(hashes []common.Hash) ProcessedSet {
	set := make(ProcessedSet, len(hashes))
	for _, hash := range hashes {
		set[hash] = struct{}{}
	}
	return set
}

func (s ProcessedSet) Contains(hash common.Hash) bool {
	_, ok := s[hash]
	return ok
}

func (s ProcessedSet) Add(hash common.Hash) {
	s[hash] = struct{}{}
}

// PartitionEvents splits a scanned batch into events that still need to be
// relayed and events that were already processed. It reads the set but never
// mutates it, marking an event as processed is tied to a confirmed delivery.
// A tx hash repeated within the batch counts as already seen after its first
// occurrence, so a single cycle never relays the same event twice.
func PartitionEvents(events []*entity.LockEvent, processed ProcessedSet) (newEvents, alreadySeen []*entity.LockEvent) {
	seenInBatch := make(map[common.Hash]struct{}, len(events))
	for _, event := range events {
		if _, ok := seenInBatch[event.TxHash]; ok {
			alreadySeen = append(alreadySeen, event)
			continue
		}
		seenInBatch[event.TxHash] = struct{}{}
		if processed.Contains(event.TxHash) {
			alreadySeen = append(alreadySeen, event)
			continue
		}
		newEvents = append(newEvents, event)
	}
	return newEvents, alreadySeen
}
