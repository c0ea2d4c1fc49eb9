package relayer

import (
	"context"
	"errors"
	"fmt"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/queue"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/CultureBridge/bridge-relayer/telemetry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-hclog"
)

type RelayOrchestratorConfig struct {
	// InstanceID identifies this relayer as the owner of the dedup keys it claims
	InstanceID string
	// RequiredSignatures holds the quorum of every target ledger
	RequiredSignatures map[uint64]uint64
	StageRetry         bridgeCommon.BackoffConfig
}

// RelayOrchestrator drains the event queue and drives one transfer at a time through
// dedup, confirmation, validation, signing and settlement
type RelayOrchestrator struct {
	config     RelayOrchestratorConfig
	db         core.TransferStateDB
	dedupStore core.DedupStore
	gate       core.ConfirmationGate
	validator  core.TransferStateValidator
	collector  core.SignatureCollector
	executor   core.SettlementExecutor
	notifier   core.StuckNotifier
	queue      *queue.ConsumerQueue[*bridgeCommon.TransferEvent]
	logger     hclog.Logger
}

var (
	_ core.EventSink              = (*RelayOrchestrator)(nil)
	_ core.TransferStatusProvider = (*RelayOrchestrator)(nil)
)

func NewRelayOrchestrator(
	config RelayOrchestratorConfig,
	db core.TransferStateDB,
	dedupStore core.DedupStore,
	gate core.ConfirmationGate,
	validator core.TransferStateValidator,
	collector core.SignatureCollector,
	executor core.SettlementExecutor,
	notifier core.StuckNotifier,
	logger hclog.Logger,
) *RelayOrchestrator {
	return &RelayOrchestrator{
		config:     config,
		db:         db,
		dedupStore: dedupStore,
		gate:       gate,
		validator:  validator,
		collector:  collector,
		executor:   executor,
		notifier:   notifier,
		queue:      queue.NewConsumerQueue[*bridgeCommon.TransferEvent](),
		logger:     logger,
	}
}

// Start blocks until ctx is done or Stop is called. The transfer in flight at that moment
// is driven to a point where its persisted state can be resumed
func (o *RelayOrchestrator) Start(ctx context.Context) {
	o.logger.Debug("Relay orchestrator started")

	stopCh := make(chan struct{})
	defer close(stopCh)

	go func() {
		select {
		case <-ctx.Done():
			o.queue.Stop()
		case <-stopCh:
		}
	}()

	for {
		event, ok := o.queue.WaitForItem()
		if !ok {
			o.logger.Debug("Relay orchestrator stopped")

			return
		}

		telemetry.UpdateRelayQueueLength(o.queue.Len())

		if err := o.process(ctx, event); err != nil {
			if ctx.Err() != nil {
				o.logger.Info("Transfer processing interrupted by shutdown", "transfer", event, "err", err)
			} else {
				o.logger.Error("Failed to process transfer", "transfer", event, "err", err)
			}
		}
	}
}

// Enqueue never blocks. Events arriving after Stop are dropped, they are re-derived from logs on restart
func (o *RelayOrchestrator) Enqueue(event *bridgeCommon.TransferEvent) {
	if !o.queue.Add(event) {
		o.logger.Debug("Queue stopped, event dropped", "transfer", event)

		return
	}

	telemetry.UpdateRelayQueueLength(o.queue.Len())
}

func (o *RelayOrchestrator) Stop() {
	o.queue.Stop()
}

func (o *RelayOrchestrator) GetTransferStatus(transferID common.Hash) ([]*bridgeCommon.TransferState, error) {
	states, err := o.db.GetTransferStatesByTransferID(transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer states for %s: %w", transferID, err)
	}

	return states, nil
}

func (o *RelayOrchestrator) GetTransferStateByKey(dedupKey string) (*bridgeCommon.TransferState, error) {
	state, err := o.db.GetTransferState(dedupKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer state %s: %w", dedupKey, err)
	}

	return state, nil
}

func (o *RelayOrchestrator) GetStuckTransfers() ([]*bridgeCommon.TransferState, error) {
	return o.db.GetStuckTransferStates()
}

func isRejection(err error) bool {
	return errors.Is(err, core.ErrTransferRejected) || errors.Is(err, core.ErrChainNotConfigured)
}
