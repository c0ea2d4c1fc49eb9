package settlement

import (
	"context"
	"errors"
	"fmt"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/eth"
	ethtxhelper "github.com/CultureBridge/bridge-relayer/eth/txhelper"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/CultureBridge/bridge-relayer/telemetry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/sethvargo/go-retry"
)

var (
	errInvalidGasLimit = errors.New("invalid gas limit")
	errSendAborted     = errors.New("settlement send aborted")
)

type SettlementExecutorImpl struct {
	registry core.ChainEndpointRegistry
	config   core.SettlementConfig
	logger   hclog.Logger
}

var _ core.SettlementExecutor = (*SettlementExecutorImpl)(nil)

func NewSettlementExecutor(
	registry core.ChainEndpointRegistry, config core.SettlementConfig, logger hclog.Logger,
) *SettlementExecutorImpl {
	return &SettlementExecutorImpl{
		registry: registry,
		config:   config,
		logger:   logger,
	}
}

// Settle submits mintTokens or releaseTokens on the target ledger and waits for one confirmation.
// Estimation and submission are retried up to MaxAttempts times. A failed send may still have reached
// the node, so every later attempt first reads the target status and stops once the transfer is settled.
// Once the node accepted the transaction nothing is resent: the receipt is awaited on a context
// detached from ctx and bounded by ReceiptTimeout. The returned result is nil only when nothing was sent
func (e *SettlementExecutorImpl) Settle(
	ctx context.Context, event *bridgeCommon.TransferEvent, bundle *core.SignatureBundle, beforeSend core.SendHook,
) (*core.SettlementResult, error) {
	target, err := e.registry.Get(event.TargetChainID)
	if err != nil {
		return nil, err
	}

	call := eth.SettlementCall{
		Kind:          event.Kind,
		Beneficiary:   event.Beneficiary,
		Amount:        event.Amount,
		SourceChainID: event.SourceChainID,
		TransferID:    event.TransferID,
		Signatures:    bundle.Signatures,
	}

	if _, err := call.Method(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTransferRejected, err)
	}

	var (
		result         = &core.SettlementResult{}
		settledEarlier bool
	)

	err = bridgeCommon.ExecuteWithRetry(ctx, e.newBackoff(), func(ctx context.Context) error {
		result.Attempts++

		if result.Sent {
			settled, err := e.isSettled(ctx, target.Bridge, event)
			if err != nil {
				return err
			}

			if settled {
				settledEarlier = true

				return nil
			}
		}

		txHash, err := e.submit(ctx, target.Bridge, call, result, beforeSend)
		if err != nil {
			e.logger.Warn("Settlement attempt failed", "transfer", event, "attempt", result.Attempts,
				"sent", result.Sent, "retryable", ethtxhelper.IsRetryableEthError(err), "err", err)

			return err
		}

		result.TxHash = txHash

		return nil
	}, isRecoverableSubmitError)

	telemetry.UpdateSettlementAttemptsCounter(event.TargetChainID, result.Attempts)

	switch {
	case err == nil:
	case ctx.Err() != nil:
		return resultIfSent(result), ctx.Err()
	case errors.Is(err, errSendAborted):
		return resultIfSent(result), err
	case ethtxhelper.IsRevertError(err):
		return resultIfSent(result), fmt.Errorf("%w: settlement reverted: %w", core.ErrTransferRejected, err)
	default:
		return resultIfSent(result), fmt.Errorf("%w: submission failed after %d attempts: %w",
			core.ErrSettlementStuck, result.Attempts, err)
	}

	if settledEarlier {
		e.logger.Info("Settlement of an earlier attempt went through", "transfer", event, "attempts", result.Attempts)

		return result, nil
	}

	e.logger.Info("Settlement submitted", "transfer", event, "tx", result.TxHash, "attempts", result.Attempts)

	receipt, err := e.waitForReceipt(ctx, target.Bridge, result.TxHash)
	if err != nil {
		return result, fmt.Errorf("%w: settlement tx %s sent but receipt not observed: %w",
			core.ErrSettlementStuck, result.TxHash, err)
	}

	if receipt.Status == types.ReceiptStatusSuccessful {
		return result, nil
	}

	return e.handleReverted(ctx, target.Bridge, event, result, receipt)
}

// handleReverted tells a settlement that lost against an earlier attempt of this transfer
// from one the bridge refused
func (e *SettlementExecutorImpl) handleReverted(
	ctx context.Context, bridge eth.IBridgeSmartContract, event *bridgeCommon.TransferEvent,
	result *core.SettlementResult, receipt *types.Receipt,
) (*core.SettlementResult, error) {
	settled, err := e.isSettled(context.WithoutCancel(ctx), bridge, event)
	if err != nil {
		return result, fmt.Errorf("%w: settlement tx %s reverted in block %v and target status is unknown: %w",
			core.ErrSettlementStuck, result.TxHash, receipt.BlockNumber, err)
	}

	if settled {
		e.logger.Info("Settlement tx reverted but transfer is settled by an earlier attempt",
			"transfer", event, "tx", result.TxHash)

		result.TxHash = common.Hash{}

		return result, nil
	}

	return result, fmt.Errorf("%w: settlement tx %s reverted in block %v",
		core.ErrTransferRejected, result.TxHash, receipt.BlockNumber)
}

func (e *SettlementExecutorImpl) submit(
	ctx context.Context, bridge eth.IBridgeSmartContract, call eth.SettlementCall,
	result *core.SettlementResult, beforeSend core.SendHook,
) (common.Hash, error) {
	estimatedGas, err := bridge.EstimateSettlementGas(ctx, call)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate settlement gas: %w", err)
	}

	gasLimit, err := ethtxhelper.ApplyGasMultiplier(estimatedGas, e.config.GasLimitMultiplier)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", errInvalidGasLimit, err)
	}

	if beforeSend != nil {
		if err := beforeSend(ctx); err != nil {
			return common.Hash{}, fmt.Errorf("%w: %w", errSendAborted, err)
		}
	}

	result.Sent = true

	txHash, err := bridge.SendSettlement(ctx, call, gasLimit)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send settlement: %w", err)
	}

	return txHash, nil
}

func (e *SettlementExecutorImpl) isSettled(
	ctx context.Context, bridge eth.IBridgeSmartContract, event *bridgeCommon.TransferEvent,
) (bool, error) {
	settledStatus, err := event.Kind.SettledTargetStatus()
	if err != nil {
		return false, err
	}

	status, err := bridge.GetTransferStatus(ctx, event.TransferID)
	if err != nil {
		return false, fmt.Errorf("failed to read transfer status on target chain %d: %w", event.TargetChainID, err)
	}

	return status == settledStatus, nil
}

func (e *SettlementExecutorImpl) waitForReceipt(
	ctx context.Context, bridge eth.IBridgeSmartContract, txHash common.Hash,
) (*types.Receipt, error) {
	receiptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.ReceiptTimeout)
	defer cancel()

	return bridge.WaitForReceipt(receiptCtx, txHash)
}

func (e *SettlementExecutorImpl) newBackoff() retry.Backoff {
	backoffConfig := e.config.Backoff
	backoffConfig.MaxRetries = 0

	maxRetries := uint64(0)
	if e.config.MaxAttempts > 1 {
		maxRetries = e.config.MaxAttempts - 1
	}

	return retry.WithMaxRetries(maxRetries, backoffConfig.NewBackoff())
}

func isRecoverableSubmitError(err error) bool {
	return !ethtxhelper.IsRevertError(err) && !errors.Is(err, errInvalidGasLimit) && !errors.Is(err, errSendAborted)
}

func resultIfSent(result *core.SettlementResult) *core.SettlementResult {
	if result.Sent {
		return result
	}

	return nil
}
