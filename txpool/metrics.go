package txpool

import "github.com/ethereum/go-ethereum/metrics"

// Per-status gauges and per-reason rejection meters, matching
// core/txpool's metrics registration style.
var (
	metricQueued  = metrics.NewRegisteredGauge("txpool/status/queued", nil)
	metricPending = metrics.NewRegisteredGauge("txpool/status/pending", nil)
	metricStaged  = metrics.NewRegisteredGauge("txpool/status/staged", nil)
	metricSlots   = metrics.NewRegisteredGauge("txpool/slots", nil)

	metricRejectedAlreadyKnown = metrics.NewRegisteredMeter("txpool/rejected/alreadyknown", nil)
	metricRejectedInvalidTx    = metrics.NewRegisteredMeter("txpool/rejected/invalid", nil)
	metricRejectedNonceIndex   = metrics.NewRegisteredMeter("txpool/rejected/nonceindex", nil)
	metricRejectedExpired      = metrics.NewRegisteredMeter("txpool/rejected/expired", nil)
	metricRejectedUnderpriced  = metrics.NewRegisteredMeter("txpool/rejected/underpriced", nil)
)

// reportRejection increments the meter matching reason's taxonomy,
// falling back to the generic invalid-tx meter for anything else.
func reportRejection(reason error) {
	switch reason {
	case ErrAlreadyKnown:
		metricRejectedAlreadyKnown.Mark(1)
	case ErrSenderNonceIndex:
		metricRejectedNonceIndex.Mark(1)
	case ErrTxExpired:
		metricRejectedExpired.Mark(1)
	case ErrUnderpriced:
		metricRejectedUnderpriced.Mark(1)
	default:
		metricRejectedInvalidTx.Mark(1)
	}
}

// reportCounts refreshes the per-status gauges from a pool snapshot.
func reportCounts(queued, pending, staged, slots int) {
	metricQueued.Update(int64(queued))
	metricPending.Update(int64(pending))
	metricStaged.Update(int64(staged))
	metricSlots.Update(int64(slots))
}
