package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/contractbinding"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	mintTokensMethod    = "mintTokens"
	releaseTokensMethod = "releaseTokens"
)

// SettlementCall holds the arguments of mintTokens/releaseTokens
type SettlementCall struct {
	Kind          bridgeCommon.TransferEventKind
	Beneficiary   common.Address
	Amount        *big.Int
	SourceChainID uint64
	TransferID    common.Hash
	Signatures    []byte
}

// Method returns the bridge method settling the event kind: Locked is minted, Burned is released
func (c SettlementCall) Method() (string, error) {
	switch c.Kind {
	case bridgeCommon.TransferEventKindLocked:
		return mintTokensMethod, nil
	case bridgeCommon.TransferEventKindBurned:
		return releaseTokensMethod, nil
	default:
		return "", fmt.Errorf("no settlement method for event kind %q", string(c.Kind))
	}
}

func (c SettlementCall) args() []interface{} {
	return []interface{}{
		c.Beneficiary, c.Amount, new(big.Int).SetUint64(c.SourceChainID), [32]byte(c.TransferID), c.Signatures,
	}
}

type IBridgeSmartContract interface {
	GetTransferStatus(ctx context.Context, transferID common.Hash) (bridgeCommon.OnChainTransferStatus, error)
	GetRequiredSignatures(ctx context.Context) (uint64, error)
	EstimateSettlementGas(ctx context.Context, call SettlementCall) (uint64, error)
	SendSettlement(ctx context.Context, call SettlementCall, gasLimit uint64) (common.Hash, error)
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type BridgeSmartContractImpl struct {
	smartContractAddress common.Address
	ethHelper            *EthHelperWrapper
}

var _ IBridgeSmartContract = (*BridgeSmartContractImpl)(nil)

func NewBridgeSmartContract(smartContractAddress string, ethHelper *EthHelperWrapper) *BridgeSmartContractImpl {
	return &BridgeSmartContractImpl{
		smartContractAddress: common.HexToAddress(smartContractAddress),
		ethHelper:            ethHelper,
	}
}

func (bsc *BridgeSmartContractImpl) GetTransferStatus(
	ctx context.Context, transferID common.Hash,
) (bridgeCommon.OnChainTransferStatus, error) {
	contract, err := bsc.getContract()
	if err != nil {
		return bridgeCommon.OnChainTransferStatusUnknown, err
	}

	status, err := contract.GetTransferStatus(&bind.CallOpts{
		Context: ctx,
	}, transferID)
	if err != nil {
		return bridgeCommon.OnChainTransferStatusUnknown, bsc.ethHelper.ProcessError(err)
	}

	return bridgeCommon.OnChainTransferStatus(status), nil
}

func (bsc *BridgeSmartContractImpl) GetRequiredSignatures(ctx context.Context) (uint64, error) {
	contract, err := bsc.getContract()
	if err != nil {
		return 0, err
	}

	required, err := contract.RequiredSignatures(&bind.CallOpts{
		Context: ctx,
	})
	if err != nil {
		return 0, bsc.ethHelper.ProcessError(err)
	}

	if !required.IsUint64() {
		return 0, fmt.Errorf("required signatures out of range: %s", required)
	}

	return required.Uint64(), nil
}

func (bsc *BridgeSmartContractImpl) EstimateSettlementGas(ctx context.Context, call SettlementCall) (uint64, error) {
	method, err := call.Method()
	if err != nil {
		return 0, err
	}

	wallet := bsc.ethHelper.GetWallet()
	if wallet == nil {
		return 0, errors.New("wallet is not set")
	}

	ethTxHelper, err := bsc.ethHelper.GetEthHelper()
	if err != nil {
		return 0, err
	}

	estimatedGas, err := ethTxHelper.EstimateGas(
		ctx, wallet.GetAddress(), bsc.smartContractAddress, nil,
		contractbinding.BridgeContractMetaData, method, call.args()...)
	if err != nil {
		return 0, bsc.ethHelper.ProcessError(err)
	}

	return estimatedGas, nil
}

func (bsc *BridgeSmartContractImpl) SendSettlement(
	ctx context.Context, call SettlementCall, gasLimit uint64,
) (common.Hash, error) {
	if _, err := call.Method(); err != nil {
		return common.Hash{}, err
	}

	contract, err := bsc.getContract()
	if err != nil {
		return common.Hash{}, err
	}

	tx, err := bsc.ethHelper.SendTx(ctx, bind.TransactOpts{GasLimit: gasLimit},
		func(opts *bind.TransactOpts) (*types.Transaction, error) {
			if call.Kind == bridgeCommon.TransferEventKindBurned {
				return contract.ReleaseTokens(
					opts, call.Beneficiary, call.Amount, new(big.Int).SetUint64(call.SourceChainID),
					call.TransferID, call.Signatures)
			}

			return contract.MintTokens(
				opts, call.Beneficiary, call.Amount, new(big.Int).SetUint64(call.SourceChainID),
				call.TransferID, call.Signatures)
		})
	if err != nil {
		return common.Hash{}, err
	}

	return tx.Hash(), nil
}

func (bsc *BridgeSmartContractImpl) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return bsc.ethHelper.WaitForReceipt(ctx, txHash.Hex())
}

func (bsc *BridgeSmartContractImpl) getContract() (*contractbinding.BridgeContract, error) {
	ethTxHelper, err := bsc.ethHelper.GetEthHelper()
	if err != nil {
		return nil, err
	}

	contract, err := contractbinding.NewBridgeContract(bsc.smartContractAddress, ethTxHelper.GetClient())
	if err != nil {
		return nil, fmt.Errorf("failed to bind bridge contract %s: %w", bsc.smartContractAddress, err)
	}

	return contract, nil
}
