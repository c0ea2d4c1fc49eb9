package watcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/CultureBridge/bridge-relayer/eth"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/CultureBridge/bridge-relayer/telemetry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/hashicorp/go-hclog"
)

const liveLogsBufferSize = 256

var errSubscriptionClosed = errors.New("subscription closed")

type ProcessedHeightReader interface {
	GetProcessedHeight(chainID uint64) (uint64, bool, error)
}

type logPosition struct {
	block uint64
	index uint
}

func (p logPosition) isAfter(other logPosition) bool {
	return p.block > other.block || (p.block == other.block && p.index > other.index)
}

// EventWatcherImpl turns bridge logs of one ledger into transfer events. Events are emitted in
// (block, log index) order and a log is never emitted twice while the process runs
type EventWatcherImpl struct {
	chainConfig core.ChainConfig
	client      eth.ChainReader
	parser      *eth.TransferEventParser
	heights     ProcessedHeightReader
	sink        core.EventSink
	config      core.WatcherConfig
	logger      hclog.Logger

	nextBlock   uint64
	lastEmitted *logPosition
}

var _ core.EventWatcher = (*EventWatcherImpl)(nil)

func NewEventWatcher(
	chainConfig core.ChainConfig, client eth.ChainReader, heights ProcessedHeightReader,
	sink core.EventSink, config core.WatcherConfig, logger hclog.Logger,
) (*EventWatcherImpl, error) {
	parser, err := eth.NewTransferEventParser(chainConfig.ChainID, common.HexToAddress(chainConfig.BridgeAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to create event parser: %w", err)
	}

	return &EventWatcherImpl{
		chainConfig: chainConfig,
		client:      client,
		parser:      parser,
		heights:     heights,
		sink:        sink,
		config:      config,
		logger:      logger,
	}, nil
}

// Start blocks until ctx is done. Subscription failures are followed by a resubscription with
// capped exponential backoff and a rescan from the last observed block. Endpoints without
// notification support are polled instead
func (w *EventWatcherImpl) Start(ctx context.Context) error {
	processedHeight, exists, err := w.heights.GetProcessedHeight(w.chainConfig.ChainID)
	if err != nil {
		return fmt.Errorf("failed to read processed height: %w", err)
	}

	w.nextBlock = w.chainConfig.StartBlock
	if exists && processedHeight > w.nextBlock {
		w.nextBlock = processedHeight
	}

	w.logger.Info("Starting watcher", "chain", w.chainConfig.ChainID, "fromBlock", w.nextBlock)

	// a watcher never gives up on its ledger, so only the delays of the backoff apply
	resubscribe := w.config.Resubscribe
	resubscribe.MaxRetries = 0

	backoff := resubscribe.NewBackoff()

	for {
		subscribed, err := w.watch(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if errors.Is(err, rpc.ErrNotificationsUnsupported) {
			w.logger.Info("Endpoint does not support subscriptions, polling for logs",
				"interval", w.config.PollInterval)

			return w.poll(ctx)
		}

		if subscribed {
			backoff = resubscribe.NewBackoff()
		}

		delay, _ := backoff.Next()

		telemetry.UpdateWatcherResubscribeCounter(w.chainConfig.ChainID)
		w.logger.Warn("Log subscription failed, resubscribing", "fromBlock", w.nextBlock, "delay", delay, "err", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (w *EventWatcherImpl) watch(ctx context.Context) (bool, error) {
	liveLogsCh := make(chan types.Log, liveLogsBufferSize)

	// subscribe before the back-fill so nothing mined in between is missed
	sub, err := w.client.SubscribeFilterLogs(ctx, w.parser.Query(w.nextBlock, nil), liveLogsCh)
	if err != nil {
		return false, fmt.Errorf("failed to subscribe: %w", err)
	}

	defer sub.Unsubscribe()

	if err := w.backfill(ctx); err != nil {
		return true, err
	}

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case err, ok := <-sub.Err():
			if !ok || err == nil {
				return true, errSubscriptionClosed
			}

			return true, fmt.Errorf("subscription error: %w", err)
		case log := <-liveLogsCh:
			w.handleLog(log)
		}
	}
}

func (w *EventWatcherImpl) poll(ctx context.Context) error {
	for {
		if err := w.backfill(ctx); err != nil && ctx.Err() == nil {
			w.logger.Warn("Failed to poll logs", "fromBlock", w.nextBlock, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.config.PollInterval):
		}
	}
}

// backfill scans [nextBlock, head] in windows of at most MaxBlockRange blocks
func (w *EventWatcherImpl) backfill(ctx context.Context) error {
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve block number: %w", err)
	}

	maxBlockRange := w.chainConfig.MaxBlockRange
	if maxBlockRange == 0 {
		maxBlockRange = 1
	}

	for w.nextBlock <= head {
		toBlock := head
		if w.nextBlock+maxBlockRange-1 < head {
			toBlock = w.nextBlock + maxBlockRange - 1
		}

		logs, err := w.client.FilterLogs(ctx, w.parser.Query(w.nextBlock, &toBlock))
		if err != nil {
			return fmt.Errorf("failed to filter logs in [%d, %d]: %w", w.nextBlock, toBlock, err)
		}

		sort.Slice(logs, func(i, j int) bool {
			return positionOf(logs[j]).isAfter(positionOf(logs[i]))
		})

		for _, log := range logs {
			w.handleLog(log)
		}

		w.logger.Debug("Scanned blocks", "from", w.nextBlock, "to", toBlock, "logs", len(logs))

		w.nextBlock = toBlock + 1
	}

	return nil
}

func (w *EventWatcherImpl) handleLog(log types.Log) {
	position := positionOf(log)

	if log.Removed {
		w.rewind(position)

		return
	}

	if w.lastEmitted != nil && !position.isAfter(*w.lastEmitted) {
		return
	}

	w.lastEmitted = &position

	if log.BlockNumber > w.nextBlock {
		w.nextBlock = log.BlockNumber
	}

	event, err := w.parser.Parse(log)
	if err != nil {
		w.logger.Warn("Skipping bridge log", "block", log.BlockNumber, "index", log.Index, "tx", log.TxHash, "err", err)

		return
	}

	telemetry.UpdateWatcherEventsObservedCounter(w.chainConfig.ChainID, 1)
	w.logger.Info("Transfer event observed", "event", event)

	w.sink.Enqueue(event)
}

// rewind makes the logs of a reorganized block eligible again, the replacement block
// may carry other transfer logs at the same positions
func (w *EventWatcherImpl) rewind(removed logPosition) {
	w.logger.Info("Log removed by reorg", "block", removed.block, "index", removed.index)

	if w.lastEmitted == nil || removed.isAfter(*w.lastEmitted) {
		return
	}

	if removed.block == 0 {
		w.lastEmitted = nil
	} else {
		w.lastEmitted = &logPosition{block: removed.block - 1, index: math.MaxUint}
	}

	if removed.block < w.nextBlock {
		w.nextBlock = removed.block
	}
}

func positionOf(log types.Log) logPosition {
	return logPosition{block: log.BlockNumber, index: log.Index}
}
