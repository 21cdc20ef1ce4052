package relay

// BlocksRange is a non-empty inclusive range of block numbers to scan.
type BlocksRange struct {
	From uint
	To   uint
}

// NextScanRange computes the next safe range to scan. Blocks within
// confirmations of the chain head are excluded, they may still be
// reorganized out. Returns nil when there is nothing new and safe to scan.
func NextScanRange(lastScannedBlock, latestChainBlock, confirmations uint) *BlocksRange {
	if latestChainBlock < confirmations {
		return nil
	}
	safeTip := latestChainBlock - confirmations
	if safeTip < lastScannedBlock+1 {
		return nil
	}
	return &BlocksRange{
		From: lastScannedBlock + 1,
		To:   safeTip,
	}
}

// SplitBlockRange splits [fromBlock, toBlock] into chunks of at most maxSize
// blocks, so a single eth_getLogs request never covers an oversized range.
func SplitBlockRange(fromBlock, toBlock, maxSize uint) []*BlocksRange {
	batches := make([]*BlocksRange, 0, 10)
	for fromBlock <= toBlock {
		batchToBlock := fromBlock + maxSize - 1
		if batchToBlock > toBlock {
			batchToBlock = toBlock
		}
		batches = append(batches, &BlocksRange{
			From: fromBlock,
			To:   batchToBlock,
		})
		fromBlock += maxSize
	}
	return batches
}
