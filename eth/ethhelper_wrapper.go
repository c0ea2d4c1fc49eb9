package eth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	ethtxhelper "github.com/CultureBridge/bridge-relayer/eth/txhelper"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
)

// EthHelperWrapper lazily creates tx helper and drops it when the connection is lost
type EthHelperWrapper struct {
	wallet      ethtxhelper.IEthTxWallet
	ethTxHelper ethtxhelper.IEthTxHelper
	opts        []ethtxhelper.TxRelayerOption
	lock        sync.Mutex
	logger      hclog.Logger
}

func NewEthHelperWrapperWithWallet(
	wallet ethtxhelper.IEthTxWallet, logger hclog.Logger,
	opts ...ethtxhelper.TxRelayerOption,
) *EthHelperWrapper {
	return &EthHelperWrapper{
		wallet: wallet,
		opts:   append([]ethtxhelper.TxRelayerOption(nil), opts...),
		logger: logger,
	}
}

func (e *EthHelperWrapper) GetEthHelper() (ethtxhelper.IEthTxHelper, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.ethTxHelper != nil {
		return e.ethTxHelper, nil
	}

	ethTxHelper, err := ethtxhelper.NewEThTxHelper(e.opts...)
	if err != nil {
		return nil, fmt.Errorf("error while NewEThTxHelper: %w", err)
	}

	e.ethTxHelper = ethTxHelper

	return ethTxHelper, nil
}

func (e *EthHelperWrapper) GetWallet() ethtxhelper.IEthTxWallet {
	return e.wallet
}

func (e *EthHelperWrapper) ProcessError(err error) error {
	var netErr net.Error

	if errors.Is(err, net.ErrClosed) {
		e.reset()
	} else if ok := errors.As(err, &netErr); ok && netErr.Timeout() && !bridgeCommon.IsContextDoneErr(err) {
		e.reset()
	}

	return err
}

func (e *EthHelperWrapper) reset() {
	e.lock.Lock()
	e.ethTxHelper = nil
	e.lock.Unlock()
}

// SendTx only submits the transaction. Waiting for inclusion is done with WaitForReceipt
func (e *EthHelperWrapper) SendTx(
	ctx context.Context, txOpts bind.TransactOpts, handler ethtxhelper.SendTxFunc,
) (*types.Transaction, error) {
	if e.wallet == nil {
		return nil, errors.New("wallet is not set")
	}

	ethTxHelper, err := e.GetEthHelper()
	if err != nil {
		return nil, fmt.Errorf("error while GetEthHelper: %w", err)
	}

	tx, err := ethTxHelper.SendTx(ctx, e.wallet, txOpts, handler)
	if err != nil {
		return nil, fmt.Errorf("error while SendTx: %w", e.ProcessError(err))
	}

	e.logger.Info("tx has been sent", "hash", tx.Hash(), "nonce", tx.Nonce(),
		"gas limit", tx.Gas(), "gas price", tx.GasPrice())

	return tx, nil
}

func (e *EthHelperWrapper) WaitForReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	ethTxHelper, err := e.GetEthHelper()
	if err != nil {
		return nil, fmt.Errorf("error while GetEthHelper: %w", err)
	}

	receipt, err := ethTxHelper.WaitForReceipt(ctx, txHash, true)
	if err != nil {
		return nil, fmt.Errorf("failed to receive receipt for tx %s: %w", txHash, e.ProcessError(err))
	}

	e.logger.Info("tx has been included in block", "hash", txHash,
		"block", receipt.BlockNumber, "block hash", receipt.BlockHash,
		"gas used", receipt.GasUsed, "status", receipt.Status)

	return receipt, nil
}
