package core

import (
	"context"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type ConfirmationGateMock struct {
	mock.Mock
}

var _ ConfirmationGate = (*ConfirmationGateMock)(nil)

func (m *ConfirmationGateMock) WaitForDepth(ctx context.Context, chainID uint64, blockHeight uint64) error {
	return m.Called(ctx, chainID, blockHeight).Error(0)
}

type TransferStateValidatorMock struct {
	mock.Mock
}

var _ TransferStateValidator = (*TransferStateValidatorMock)(nil)

func (m *TransferStateValidatorMock) Validate(ctx context.Context, event *bridgeCommon.TransferEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *TransferStateValidatorMock) IsSettledOnTarget(
	ctx context.Context, event *bridgeCommon.TransferEvent,
) (bool, error) {
	args := m.Called(ctx, event)

	return args.Bool(0), args.Error(1)
}

type SignatureCollectorMock struct {
	mock.Mock
}

var _ SignatureCollector = (*SignatureCollectorMock)(nil)

func (m *SignatureCollectorMock) Collect(
	ctx context.Context, msg TransferMessage, required uint64,
) (*SignatureBundle, error) {
	args := m.Called(ctx, msg, required)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*SignatureBundle), args.Error(1) //nolint:forcetypeassert
}

type SettlementExecutorMock struct {
	mock.Mock
}

var _ SettlementExecutor = (*SettlementExecutorMock)(nil)

func (m *SettlementExecutorMock) Settle(
	ctx context.Context, event *bridgeCommon.TransferEvent, bundle *SignatureBundle, beforeSend SendHook,
) (*SettlementResult, error) {
	args := m.Called(ctx, event, bundle, beforeSend)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*SettlementResult), args.Error(1) //nolint:forcetypeassert
}

type StuckNotifierMock struct {
	mock.Mock
}

var _ StuckNotifier = (*StuckNotifierMock)(nil)

func (m *StuckNotifierMock) NotifyStuck(ctx context.Context, state *bridgeCommon.TransferState) error {
	return m.Called(ctx, state).Error(0)
}

type TransferStatusProviderMock struct {
	mock.Mock
}

var _ TransferStatusProvider = (*TransferStatusProviderMock)(nil)

func (m *TransferStatusProviderMock) GetTransferStatus(
	transferID common.Hash,
) ([]*bridgeCommon.TransferState, error) {
	args := m.Called(transferID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*bridgeCommon.TransferState), args.Error(1) //nolint:forcetypeassert
}

func (m *TransferStatusProviderMock) GetTransferStateByKey(dedupKey string) (*bridgeCommon.TransferState, error) {
	args := m.Called(dedupKey)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*bridgeCommon.TransferState), args.Error(1) //nolint:forcetypeassert
}

func (m *TransferStatusProviderMock) GetStuckTransfers() ([]*bridgeCommon.TransferState, error) {
	args := m.Called()

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*bridgeCommon.TransferState), args.Error(1) //nolint:forcetypeassert
}
