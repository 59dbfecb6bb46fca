package skeleton

import "github.com/ethereum/go-ethereum/metrics"

// Gauges exported Named exactly as listed so downstream
// dashboards built against the metric names keep working.
var (
	metricBase               = metrics.NewRegisteredGauge("beacon/base", nil)
	metricCoupler            = metrics.NewRegisteredGauge("beacon/coupler", nil)
	metricDangling           = metrics.NewRegisteredGauge("beacon/dangling", nil)
	metricEnd                = metrics.NewRegisteredGauge("beacon/end", nil)
	metricTarget             = metrics.NewRegisteredGauge("beacon/target", nil)
	metricHeaderListsStaged  = metrics.NewRegisteredGauge("beacon/header_lists_staged", nil)
	metricHeadersUnprocessed = metrics.NewRegisteredGauge("beacon/headers_unprocessed", nil)
	metricBlockListsStaged   = metrics.NewRegisteredGauge("beacon/block_lists_staged", nil)
	metricBlocksUnprocessed  = metrics.NewRegisteredGauge("beacon/blocks_unprocessed", nil)
	metricBuddies            = metrics.NewRegisteredGauge("beacon/buddies", nil)
)

// reportProgress pushes the current Progress/Tally snapshot to the gauges
// above. Called by the daemon after each tick.
func (r *Registry) reportProgress(t *Tally) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.progress.Segments) > 0 {
		metricCoupler.Update(int64(r.progress.Segments[0].Tail))
		metricEnd.Update(int64(r.progress.Segments[len(r.progress.Segments)-1].Head))
		metricDangling.Update(int64(r.progress.Segments[len(r.progress.Segments)-1].Tail))
	}
	if t != nil {
		metricHeadersUnprocessed.Update(int64(t.Mask().Len()))
		metricBlocksUnprocessed.Update(int64(t.Mask().Len()))
	}
}
