package finality

import (
	"context"
	"fmt"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
)

type TransferStateValidatorImpl struct {
	registry core.ChainEndpointRegistry
}

var _ core.TransferStateValidator = (*TransferStateValidatorImpl)(nil)

func NewTransferStateValidator(registry core.ChainEndpointRegistry) *TransferStateValidatorImpl {
	return &TransferStateValidatorImpl{
		registry: registry,
	}
}

// Validate re-reads the transfer on the source bridge. Anything that can never become valid is
// wrapped in ErrTransferRejected; rpc failures are returned as they are so the caller can retry
func (v *TransferStateValidatorImpl) Validate(ctx context.Context, event *bridgeCommon.TransferEvent) error {
	expected, err := event.Kind.ExpectedSourceStatus()
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransferRejected, err)
	}

	if event.Amount == nil || event.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: invalid amount %v", core.ErrTransferRejected, event.Amount)
	}

	if event.SourceChainID == event.TargetChainID {
		return fmt.Errorf("%w: source and target chain are the same: %d", core.ErrTransferRejected, event.SourceChainID)
	}

	if _, err := v.registry.Get(event.TargetChainID); err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransferRejected, err)
	}

	source, err := v.registry.Get(event.SourceChainID)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransferRejected, err)
	}

	status, err := source.Bridge.GetTransferStatus(ctx, event.TransferID)
	if err != nil {
		return fmt.Errorf("failed to read transfer status on source chain %d: %w", event.SourceChainID, err)
	}

	if status != expected {
		return fmt.Errorf("%w: source chain %d reports status %s, expected %s",
			core.ErrTransferRejected, event.SourceChainID, status, expected)
	}

	return nil
}

// IsSettledOnTarget reports whether the target bridge already minted or released the transfer
func (v *TransferStateValidatorImpl) IsSettledOnTarget(
	ctx context.Context, event *bridgeCommon.TransferEvent,
) (bool, error) {
	settledStatus, err := event.Kind.SettledTargetStatus()
	if err != nil {
		return false, fmt.Errorf("%w: %w", core.ErrTransferRejected, err)
	}

	target, err := v.registry.Get(event.TargetChainID)
	if err != nil {
		return false, err
	}

	status, err := target.Bridge.GetTransferStatus(ctx, event.TransferID)
	if err != nil {
		return false, fmt.Errorf("failed to read transfer status on target chain %d: %w", event.TargetChainID, err)
	}

	return status == settledStatus, nil
}
