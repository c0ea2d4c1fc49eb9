package relayer

import (
	"context"
	"errors"
	"fmt"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	ethtxhelper "github.com/CultureBridge/bridge-relayer/eth/txhelper"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/CultureBridge/bridge-relayer/telemetry"
	"github.com/ethereum/go-ethereum/common"
)

const reasonOutcomeUnknown = "settlement outcome unknown after restart"

func (o *RelayOrchestrator) process(ctx context.Context, event *bridgeCommon.TransferEvent) error {
	key := event.DedupKey()

	state, isNew, err := o.loadOrCreateState(ctx, event)
	if err != nil {
		return err
	}

	if state.Status.IsTerminal() {
		telemetry.UpdateRelayDuplicateCounter(event.SourceChainID)
		o.logger.Debug("Transfer already processed", "transfer", event, "status", state.Status)

		return o.advanceProcessedHeight(ctx, event)
	}

	var (
		alreadySeen bool
		claimedBy   string
	)

	err = o.retryStage(ctx, "dedup", event, func(ctx context.Context) (err error) {
		alreadySeen, claimedBy, err = o.dedupStore.MarkSeen(ctx, key, o.config.InstanceID)

		return err
	})
	if err != nil {
		return err
	}

	if alreadySeen {
		telemetry.UpdateRelayDuplicateCounter(event.SourceChainID)

		if claimedBy == "" || claimedBy != o.config.InstanceID {
			return o.handleClaimedElsewhere(ctx, state, claimedBy)
		}

		o.logger.Info("Resuming transfer", "transfer", event, "status", state.Status, "isNew", isNew)
	}

	if state.Status == bridgeCommon.TransferStatusSettling {
		return o.reconcileSettling(ctx, state)
	}

	if state.Status == bridgeCommon.TransferStatusObserved {
		if err := o.moveTo(ctx, state, bridgeCommon.TransferStatusDeduped, state.ToDeduped); err != nil {
			return err
		}
	}

	// the local store is only trusted after the target ledger confirms the transfer is still open
	var settled bool

	err = o.retryStage(ctx, "target cross-check", event, func(ctx context.Context) (err error) {
		settled, err = o.validator.IsSettledOnTarget(ctx, event)

		return err
	})

	switch {
	case isRejection(err):
		return o.reject(ctx, state, err)
	case err != nil:
		return err
	case settled:
		o.logger.Info("Transfer already settled on target chain", "transfer", event)

		return o.completeSettled(ctx, state, state.SettlementTxHash)
	}

	if state.Status == bridgeCommon.TransferStatusDeduped {
		err := o.moveTo(ctx, state, bridgeCommon.TransferStatusConfirmationPending, state.ToConfirmationPending)
		if err != nil {
			return err
		}
	}

	if state.Status == bridgeCommon.TransferStatusConfirmationPending {
		if err := o.confirmAndValidate(ctx, state); err != nil {
			return err
		}

		if state.Status.IsTerminal() {
			return nil
		}
	}

	if state.Status == bridgeCommon.TransferStatusValidated {
		if err := o.moveTo(ctx, state, bridgeCommon.TransferStatusQuorumPending, state.ToQuorumPending); err != nil {
			return err
		}
	}

	bundle, err := o.collectSignatures(ctx, state)

	switch {
	case isRejection(err):
		return o.reject(ctx, state, err)
	case err != nil:
		return err
	}

	return o.settle(ctx, state, bundle)
}

func (o *RelayOrchestrator) loadOrCreateState(
	ctx context.Context, event *bridgeCommon.TransferEvent,
) (state *bridgeCommon.TransferState, isNew bool, err error) {
	err = o.retryStage(ctx, "load state", event, func(context.Context) (err error) {
		state, err = o.db.GetTransferState(event.DedupKey())

		return err
	})
	if err != nil || state != nil {
		return state, false, err
	}

	state = bridgeCommon.NewTransferState(*event)

	if err := o.persist(ctx, state); err != nil {
		return nil, false, err
	}

	o.logger.Info("Transfer observed", "transfer", event)

	return state, true, nil
}

// handleClaimedElsewhere covers a dedup store shared with other relayer instances. The key is owned
// by another instance, or it is already settled, so this instance never drives it further.
// Local state is left untouched unless the key is settled, so every replay ends up here again
func (o *RelayOrchestrator) handleClaimedElsewhere(
	ctx context.Context, state *bridgeCommon.TransferState, claimedBy string,
) error {
	var (
		settled bool
		txHash  common.Hash
	)

	err := o.retryStage(ctx, "dedup settled check", &state.Event, func(ctx context.Context) (err error) {
		settled, txHash, err = o.dedupStore.IsSettled(ctx, state.DedupKey)

		return err
	})
	if err != nil {
		return err
	}

	if settled {
		return o.completeSettled(ctx, state, txHash)
	}

	o.logger.Info("Transfer claimed by another relayer instance, skipping",
		"transfer", state.Event, "owner", claimedBy, "status", state.Status)

	return nil
}

// reconcileSettling handles a transfer whose settlement was in flight when the process stopped.
// Nothing is resubmitted: either the target reports it settled or it is surfaced as stuck
func (o *RelayOrchestrator) reconcileSettling(ctx context.Context, state *bridgeCommon.TransferState) error {
	var settled bool

	err := o.retryStage(ctx, "settlement reconciliation", &state.Event, func(ctx context.Context) (err error) {
		settled, err = o.validator.IsSettledOnTarget(ctx, &state.Event)

		return err
	})

	switch {
	case isRejection(err):
		return o.markStuck(ctx, state, fmt.Sprintf("%s: %v", reasonOutcomeUnknown, err))
	case err != nil:
		return err
	case settled:
		return o.completeSettled(ctx, state, state.SettlementTxHash)
	default:
		return o.markStuck(ctx, state, reasonOutcomeUnknown)
	}
}

func (o *RelayOrchestrator) confirmAndValidate(ctx context.Context, state *bridgeCommon.TransferState) error {
	event := &state.Event

	err := o.retryStage(ctx, "confirmation", event, func(ctx context.Context) error {
		return o.gate.WaitForDepth(ctx, event.SourceChainID, event.BlockHeight)
	})

	switch {
	case isRejection(err):
		return o.reject(ctx, state, err)
	case err != nil:
		return err
	}

	err = o.retryStage(ctx, "validation", event, func(ctx context.Context) error {
		return o.validator.Validate(ctx, event)
	})

	switch {
	case isRejection(err):
		return o.reject(ctx, state, err)
	case err != nil:
		return err
	}

	return o.moveTo(ctx, state, bridgeCommon.TransferStatusValidated, state.ToValidated)
}

func (o *RelayOrchestrator) collectSignatures(
	ctx context.Context, state *bridgeCommon.TransferState,
) (bundle *core.SignatureBundle, err error) {
	event := &state.Event

	required, exists := o.config.RequiredSignatures[event.TargetChainID]
	if !exists {
		return nil, fmt.Errorf("%w: no quorum known for chain %d", core.ErrChainNotConfigured, event.TargetChainID)
	}

	msg := core.NewTransferMessage(event)

	err = o.retryStage(ctx, "signature collection", event, func(ctx context.Context) (err error) {
		bundle, err = o.collector.Collect(ctx, msg, required)
		if err != nil {
			return err
		}

		if uint64(bundle.Count()) < required {
			return fmt.Errorf("%w: %d of %d signatures", core.ErrInsufficientQuorum, bundle.Count(), required)
		}

		return nil
	})

	return bundle, err
}

// settle hands the bundle to the executor. Settling is persisted right before the transaction is
// sent, so a transfer still in QuorumPending after a restart is known to have nothing in flight
func (o *RelayOrchestrator) settle(
	ctx context.Context, state *bridgeCommon.TransferState, bundle *core.SignatureBundle,
) error {
	beforeSend := func(ctx context.Context) error {
		if state.Status == bridgeCommon.TransferStatusSettling {
			return nil
		}

		return o.moveTo(ctx, state, bridgeCommon.TransferStatusSettling, state.ToSettling)
	}

	result, err := o.executor.Settle(ctx, &state.Event, bundle, beforeSend)
	if result != nil {
		state.Attempts = result.Attempts
		state.SettlementTxHash = result.TxHash
	}

	// a sent transaction has to be recorded even when shutdown is in progress
	persistCtx := context.WithoutCancel(ctx)

	switch {
	case err == nil:
		return o.completeSettled(persistCtx, state, state.SettlementTxHash)
	case errors.Is(err, core.ErrTransferRejected):
		return o.reject(persistCtx, state, err)
	case ctx.Err() != nil && !errors.Is(err, core.ErrSettlementStuck):
		if state.Status == bridgeCommon.TransferStatusSettling {
			o.logger.Warn("Shutdown while settlement was in flight, it will be reconciled on restart",
				"transfer", state.Event, "err", err)
		} else {
			o.logger.Info("Shutdown before settlement was sent, it resumes on restart",
				"transfer", state.Event, "err", err)
		}

		return ctx.Err()
	case result == nil && !errors.Is(err, core.ErrSettlementStuck):
		return err
	default:
		if state.Status != bridgeCommon.TransferStatusSettling {
			err := o.moveTo(persistCtx, state, bridgeCommon.TransferStatusSettling, state.ToSettling)
			if err != nil {
				return err
			}
		}

		return o.markStuck(persistCtx, state, err.Error())
	}
}

func (o *RelayOrchestrator) completeSettled(
	ctx context.Context, state *bridgeCommon.TransferState, txHash common.Hash,
) error {
	err := o.retryStage(ctx, "mark settled", &state.Event, func(ctx context.Context) error {
		return o.dedupStore.MarkSettled(ctx, state.DedupKey, txHash)
	})
	if err != nil {
		return err
	}

	err = o.moveTo(ctx, state, bridgeCommon.TransferStatusSettled, func() { state.ToSettled(txHash) })
	if err != nil {
		return err
	}

	telemetry.UpdateSettlementSucceededCounter(state.Event.TargetChainID)
	o.logger.Info("Transfer settled", "transfer", state.Event, "tx", txHash)

	return o.advanceProcessedHeight(ctx, &state.Event)
}

func (o *RelayOrchestrator) reject(ctx context.Context, state *bridgeCommon.TransferState, reason error) error {
	err := o.moveTo(ctx, state, bridgeCommon.TransferStatusRejected, func() { state.ToRejected(reason.Error()) })
	if err != nil {
		return err
	}

	telemetry.UpdateRelayRejectedCounter(state.Event.SourceChainID)
	o.logger.Warn("Transfer rejected", "transfer", state.Event, "reason", reason)

	return o.advanceProcessedHeight(ctx, &state.Event)
}

func (o *RelayOrchestrator) markStuck(ctx context.Context, state *bridgeCommon.TransferState, reason string) error {
	err := o.moveTo(ctx, state, bridgeCommon.TransferStatusStuck, func() { state.ToStuck(reason) })
	if err != nil {
		return err
	}

	telemetry.UpdateSettlementStuckCounter(state.Event.TargetChainID)
	o.logger.Error("Transfer stuck, operator action required", "transfer", state.Event,
		"tx", state.SettlementTxHash, "reason", reason)

	if err := o.notifier.NotifyStuck(ctx, state); err != nil {
		o.logger.Error("Failed to notify about stuck transfer", "transfer", state.Event, "err", err)
	}

	return o.advanceProcessedHeight(ctx, &state.Event)
}

// moveTo applies a forward transition and persists the state before the next stage starts
func (o *RelayOrchestrator) moveTo(
	ctx context.Context, state *bridgeCommon.TransferState, status bridgeCommon.TransferStatus, apply func(),
) error {
	if err := state.IsTransitionPossible(status); err != nil {
		return err
	}

	apply()

	return o.persist(ctx, state)
}

func (o *RelayOrchestrator) persist(ctx context.Context, state *bridgeCommon.TransferState) error {
	return o.retryStage(ctx, "persist state", &state.Event, func(context.Context) error {
		return o.db.SaveTransferState(state)
	})
}

// advanceProcessedHeight is called once a transfer is final. The watcher resumes from this
// height inclusively so other events of the same block are seen again and deduplicated
func (o *RelayOrchestrator) advanceProcessedHeight(ctx context.Context, event *bridgeCommon.TransferEvent) error {
	err := o.retryStage(ctx, "processed height", event, func(context.Context) error {
		return o.db.SetProcessedHeight(event.SourceChainID, event.BlockHeight)
	})
	if err != nil {
		return err
	}

	telemetry.UpdateWatcherProcessedHeight(event.SourceChainID, event.BlockHeight)

	return nil
}

// retryStage retries transient failures with exponential backoff until shutdown.
// Rejections are returned right away
func (o *RelayOrchestrator) retryStage(
	ctx context.Context, stage string, event *bridgeCommon.TransferEvent, fn func(context.Context) error,
) error {
	return bridgeCommon.ExecuteWithRetry(ctx, o.config.StageRetry.NewBackoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil || isRejection(err) || ctx.Err() != nil {
			return err
		}

		if ethtxhelper.IsRetryableEthError(err) {
			o.logger.Warn("Transient failure, retrying", "stage", stage, "transfer", event, "err", err)
		} else {
			o.logger.Error("Stage failed, retrying", "stage", stage, "transfer", event, "err", err)
		}

		return err
	}, func(err error) bool {
		return !isRejection(err)
	})
}
