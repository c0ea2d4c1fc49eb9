package eth

import (
	"context"
	"math/big"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

type BridgeSmartContractMock struct {
	mock.Mock
}

var _ IBridgeSmartContract = (*BridgeSmartContractMock)(nil)

func (m *BridgeSmartContractMock) GetTransferStatus(
	ctx context.Context, transferID common.Hash,
) (bridgeCommon.OnChainTransferStatus, error) {
	args := m.Called(ctx, transferID)
	arg0, _ := args.Get(0).(bridgeCommon.OnChainTransferStatus)

	return arg0, args.Error(1)
}

func (m *BridgeSmartContractMock) GetRequiredSignatures(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *BridgeSmartContractMock) EstimateSettlementGas(ctx context.Context, call SettlementCall) (uint64, error) {
	args := m.Called(ctx, call)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *BridgeSmartContractMock) SendSettlement(
	ctx context.Context, call SettlementCall, gasLimit uint64,
) (common.Hash, error) {
	args := m.Called(ctx, call, gasLimit)
	arg0, _ := args.Get(0).(common.Hash)

	return arg0, args.Error(1)
}

func (m *BridgeSmartContractMock) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).(*types.Receipt)

	return arg0, args.Error(1)
}

type ChainClientMock struct {
	mock.Mock
}

var _ ChainClient = (*ChainClientMock)(nil)

func (m *ChainClientMock) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)

	if fn, ok := args.Get(0).(func(context.Context) uint64); ok {
		return fn(ctx), args.Error(1)
	}

	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *ChainClientMock) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	args := m.Called(ctx, q)

	if fn, ok := args.Get(0).(func(ethereum.FilterQuery) []types.Log); ok {
		return fn(q), args.Error(1)
	}

	arg0, _ := args.Get(0).([]types.Log)

	return arg0, args.Error(1)
}

func (m *ChainClientMock) SubscribeFilterLogs(
	ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log,
) (ethereum.Subscription, error) {
	args := m.Called(ctx, q, ch)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).(ethereum.Subscription)

	return arg0, args.Error(1)
}

func (m *ChainClientMock) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).(*big.Int)

	return arg0, args.Error(1)
}

func (m *ChainClientMock) Close() {
	m.Called()
}
