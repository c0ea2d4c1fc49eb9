package ethtxhelper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

type SendTxFunc func(*bind.TransactOpts) (*types.Transaction, error)

const (
	defaultGasLimit         = uint64(5_242_880) // 0x500000
	defaultNumRetries       = 1000
	defaultGasFeeMultiplier = 170 // 170%
)

var ErrReceiptTimeout = errors.New("timeout while waiting for transaction receipt")

// EthClient is the subset of ethclient.Client used for sending transactions
type EthClient interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	FeeHistory(
		ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64,
	) (*ethereum.FeeHistory, error)
}

type IEthTxHelper interface {
	GetClient() EthClient
	WaitForReceipt(ctx context.Context, hash string, skipNotFound bool) (*types.Receipt, error)
	SendTx(ctx context.Context, wallet IEthTxWallet,
		txOpts bind.TransactOpts, sendTxHandler SendTxFunc) (*types.Transaction, error)
	EstimateGas(
		ctx context.Context, from, to common.Address, value *big.Int,
		bindMetadata *bind.MetaData, method string, args ...interface{},
	) (uint64, error)
	PopulateTxOpts(ctx context.Context, from common.Address, txOpts *bind.TransactOpts) error
}

type EthTxHelperImpl struct {
	client           EthClient
	nodeURL          string
	numRetries       int
	receiptWaitTime  time.Duration
	gasFeeMultiplier uint64
	isDynamic        bool
	defaultGasLimit  uint64
	chainID          *big.Int
	mutex            sync.Mutex
}

var _ IEthTxHelper = (*EthTxHelperImpl)(nil)

func NewEThTxHelper(opts ...TxRelayerOption) (*EthTxHelperImpl, error) {
	t := &EthTxHelperImpl{
		receiptWaitTime:  50 * time.Millisecond,
		numRetries:       defaultNumRetries,
		gasFeeMultiplier: defaultGasFeeMultiplier,
		defaultGasLimit:  defaultGasLimit,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.client == nil {
		client, err := ethclient.Dial(t.nodeURL)
		if err != nil {
			return nil, err
		}

		t.client = client
	}

	return t, nil
}

func (t *EthTxHelperImpl) GetClient() EthClient {
	return t.client
}

func (t *EthTxHelperImpl) WaitForReceipt(
	ctx context.Context, hash string, skipNotFound bool,
) (*types.Receipt, error) {
	for count := 0; count < t.numRetries; count++ {
		receipt, err := t.client.TransactionReceipt(ctx, common.HexToHash(hash))
		if err != nil {
			if !skipNotFound && errors.Is(err, ethereum.NotFound) {
				return nil, err
			}
		} else if receipt != nil {
			return receipt, nil
		}

		select {
		case <-time.After(t.receiptWaitTime):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrReceiptTimeout, hash)
}

func (t *EthTxHelperImpl) SendTx(
	ctx context.Context, wallet IEthTxWallet, txOptsParam bind.TransactOpts, sendTxHandler SendTxFunc,
) (*types.Transaction, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	chainID := t.chainID
	if chainID == nil {
		// chainID retrieval
		retChainID, err := t.client.ChainID(ctx)
		if err != nil {
			return nil, err
		}

		chainID = retChainID
	}

	txOptsRes, err := wallet.GetTransactOpts(chainID)
	if err != nil {
		return nil, err
	}

	copyTxOpts(txOptsRes, &txOptsParam)

	if err := t.PopulateTxOpts(ctx, wallet.GetAddress(), txOptsRes); err != nil {
		return nil, err
	}

	return sendTxHandler(txOptsRes)
}

// EstimateGas returns the raw node estimation for calling method on the contract at address to
func (t *EthTxHelperImpl) EstimateGas(
	ctx context.Context, from, to common.Address, value *big.Int,
	bindMetadata *bind.MetaData, method string, args ...interface{},
) (uint64, error) {
	parsed, err := bindMetadata.GetAbi()
	if err != nil {
		return 0, err
	}

	input, err := parsed.Pack(method, args...)
	if err != nil {
		return 0, err
	}

	return t.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  input,
	})
}

func (t *EthTxHelperImpl) PopulateTxOpts(
	ctx context.Context, from common.Address, txOpts *bind.TransactOpts,
) error {
	txOpts.Context = ctx
	txOpts.From = from

	// Nonce retrieval
	if txOpts.Nonce == nil {
		nonce, err := t.client.PendingNonceAt(ctx, txOpts.From)
		if err != nil {
			return err
		}

		txOpts.Nonce = new(big.Int).SetUint64(nonce)
	}

	if txOpts.GasLimit == 0 {
		txOpts.GasLimit = t.defaultGasLimit
	}

	// Gas price
	if !t.isDynamic {
		if txOpts.GasPrice == nil {
			gasPrice, err := t.client.SuggestGasPrice(ctx)
			if err != nil {
				return err
			}

			txOpts.GasPrice = bridgeCommon.MulPercentage(gasPrice, t.gasFeeMultiplier)
		}
	} else if txOpts.GasFeeCap == nil || txOpts.GasTipCap == nil {
		gasTipCap, err := t.client.SuggestGasTipCap(ctx)
		if err != nil {
			return err
		}

		txOpts.GasTipCap = bridgeCommon.MulPercentage(gasTipCap, t.gasFeeMultiplier)

		hs, err := t.client.FeeHistory(ctx, 1, nil, nil)
		if err != nil {
			return err
		}

		if len(hs.BaseFee) == 0 {
			return errors.New("fee history returned no base fee")
		}

		gasFeeCap := new(big.Int).Add(hs.BaseFee[len(hs.BaseFee)-1], gasTipCap)

		txOpts.GasFeeCap = bridgeCommon.MulPercentage(gasFeeCap, t.gasFeeMultiplier)
	}

	return nil
}

// ApplyGasMultiplier scales estimated gas rounding up. It fails instead of overflowing
func ApplyGasMultiplier(estimatedGas uint64, multiplier float64) (uint64, error) {
	if multiplier < 1 {
		return 0, fmt.Errorf("invalid gas multiplier: %f", multiplier)
	}

	limit := math.Ceil(float64(estimatedGas) * multiplier)
	if limit >= math.MaxUint64 {
		return 0, fmt.Errorf("gas limit overflow: estimated %d, multiplier %f", estimatedGas, multiplier)
	}

	return uint64(limit), nil
}

type TxRelayerOption func(*EthTxHelperImpl)

func WithDynamicTx(value bool) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.isDynamic = value
	}
}

func WithClient(client EthClient) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.client = client
	}
}

func WithNodeURL(nodeURL string) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.nodeURL = nodeURL
	}
}

func WithReceiptWaitTime(receiptWaitTime time.Duration) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.receiptWaitTime = receiptWaitTime
	}
}

func WithGasFeeMultiplier(gasFeeMultiplier uint64) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.gasFeeMultiplier = gasFeeMultiplier
	}
}

func WithChainID(chainID *big.Int) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.chainID = chainID
	}
}

func copyTxOpts(dst, src *bind.TransactOpts) {
	dst.NoSend = src.NoSend
	dst.GasPrice = src.GasPrice
	dst.GasFeeCap = src.GasFeeCap
	dst.GasTipCap = src.GasTipCap
	dst.GasLimit = src.GasLimit
	dst.Nonce = src.Nonce
	dst.Value = src.Value
}
