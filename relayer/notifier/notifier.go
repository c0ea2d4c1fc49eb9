package notifier

import (
	"context"
	"errors"
	"time"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-hclog"
)

// StuckTransferNotification is published for every transfer that needs operator attention
type StuckTransferNotification struct {
	InstanceID       string    `json:"instanceId"`
	DedupKey         string    `json:"dedupKey"`
	TransferID       string    `json:"transferId"`
	Kind             string    `json:"kind"`
	SourceChainID    uint64    `json:"sourceChainId"`
	TargetChainID    uint64    `json:"targetChainId"`
	SourceTxHash     string    `json:"sourceTxHash"`
	Beneficiary      string    `json:"beneficiary"`
	Amount           string    `json:"amount"`
	SettlementTxHash string    `json:"settlementTxHash,omitempty"`
	Reason           string    `json:"reason"`
	Attempts         uint64    `json:"attempts"`
	StuckAt          time.Time `json:"stuckAt"`
}

func NewStuckTransferNotification(instanceID string, state *bridgeCommon.TransferState) StuckTransferNotification {
	notification := StuckTransferNotification{
		InstanceID:    instanceID,
		DedupKey:      state.DedupKey,
		TransferID:    state.Event.TransferID.Hex(),
		Kind:          string(state.Event.Kind),
		SourceChainID: state.Event.SourceChainID,
		TargetChainID: state.Event.TargetChainID,
		SourceTxHash:  state.Event.SourceTxHash.Hex(),
		Beneficiary:   state.Event.Beneficiary.Hex(),
		Reason:        state.FailureReason,
		Attempts:      state.Attempts,
		StuckAt:       state.UpdatedAt,
	}

	if state.Event.Amount != nil {
		notification.Amount = state.Event.Amount.String()
	}

	if state.SettlementTxHash != (common.Hash{}) {
		notification.SettlementTxHash = state.SettlementTxHash.Hex()
	}

	return notification
}

type LogStuckNotifier struct {
	logger hclog.Logger
}

var _ core.StuckNotifier = (*LogStuckNotifier)(nil)

func NewLogStuckNotifier(logger hclog.Logger) *LogStuckNotifier {
	return &LogStuckNotifier{logger: logger}
}

func (n *LogStuckNotifier) NotifyStuck(_ context.Context, state *bridgeCommon.TransferState) error {
	n.logger.Error("Transfer is stuck and requires operator attention",
		"key", state.DedupKey, "transferId", state.Event.TransferID,
		"source", state.Event.SourceChainID, "target", state.Event.TargetChainID,
		"settlementTx", state.SettlementTxHash, "attempts", state.Attempts, "reason", state.FailureReason)

	return nil
}

// MultiStuckNotifier forwards to every notifier even if some of them fail
type MultiStuckNotifier []core.StuckNotifier

var _ core.StuckNotifier = (MultiStuckNotifier)(nil)

func (m MultiStuckNotifier) NotifyStuck(ctx context.Context, state *bridgeCommon.TransferState) error {
	var errs []error

	for _, notifier := range m {
		if err := notifier.NotifyStuck(ctx, state); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
