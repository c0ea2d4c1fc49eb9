package telemetry

import (
	"strconv"

	"github.com/armon/go-metrics"
)

const (
	watcherMetricsPrefix      = "watcher"
	relayMetricsPrefix        = "relay"
	confirmationMetricsPrefix = "confirmation"
	settlementMetricsPrefix   = "settlement"
)

func chainLabel(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}

func UpdateWatcherEventsObservedCounter(chainID uint64, cnt int) {
	metrics.IncrCounter([]string{watcherMetricsPrefix, "events_observed_counter", chainLabel(chainID)}, float32(cnt))
}

func UpdateWatcherProcessedHeight(chainID uint64, height uint64) {
	metrics.SetGauge([]string{watcherMetricsPrefix, "processed_height", chainLabel(chainID)}, float32(height))
}

func UpdateWatcherResubscribeCounter(chainID uint64) {
	metrics.IncrCounter([]string{watcherMetricsPrefix, "resubscribe_counter", chainLabel(chainID)}, 1)
}

func UpdateRelayDuplicateCounter(chainID uint64) {
	metrics.IncrCounter([]string{relayMetricsPrefix, "duplicate_counter", chainLabel(chainID)}, 1)
}

func UpdateRelayRejectedCounter(chainID uint64) {
	metrics.IncrCounter([]string{relayMetricsPrefix, "rejected_counter", chainLabel(chainID)}, 1)
}

func UpdateRelayQueueLength(length int) {
	metrics.SetGauge([]string{relayMetricsPrefix, "queue_length"}, float32(length))
}

func UpdateConfirmationMaxWaitExceededCounter(chainID uint64) {
	metrics.IncrCounter([]string{confirmationMetricsPrefix, "max_wait_exceeded_counter", chainLabel(chainID)}, 1)
}

func UpdateSettlementSucceededCounter(targetChainID uint64) {
	metrics.IncrCounter([]string{settlementMetricsPrefix, "succeeded_counter", chainLabel(targetChainID)}, 1)
}

func UpdateSettlementStuckCounter(targetChainID uint64) {
	metrics.IncrCounter([]string{settlementMetricsPrefix, "stuck_counter", chainLabel(targetChainID)}, 1)
}

func UpdateSettlementAttemptsCounter(targetChainID uint64, cnt uint64) {
	metrics.IncrCounter([]string{settlementMetricsPrefix, "attempts_counter", chainLabel(targetChainID)}, float32(cnt))
}
