package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/contractbinding"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	lockedEventName = "Locked"
	burnedEventName = "Burned"
)

var errUnknownTransferEvent = errors.New("log is not a Locked or Burned event")

// ChainReader is the read side of a ledger rpc endpoint used by watchers and the confirmation gate
type ChainReader interface {
	ethereum.BlockNumberReader
	ethereum.LogFilterer
}

type ChainClient interface {
	ChainReader
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

func DialChainClient(ctx context.Context, rpcURL string) (ChainClient, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	return client, nil
}

// TransferEventParser turns bridge logs from one ledger into transfer events
type TransferEventParser struct {
	chainID       uint64
	bridgeAddress common.Address
	filterer      *contractbinding.BridgeContractFilterer
	lockedID      common.Hash
	burnedID      common.Hash
}

func NewTransferEventParser(chainID uint64, bridgeAddress common.Address) (*TransferEventParser, error) {
	parsed, err := contractbinding.BridgeContractMetaData.GetAbi()
	if err != nil {
		return nil, err
	}

	filterer, err := contractbinding.NewBridgeContractFilterer(bridgeAddress, nil)
	if err != nil {
		return nil, err
	}

	return &TransferEventParser{
		chainID:       chainID,
		bridgeAddress: bridgeAddress,
		filterer:      filterer,
		lockedID:      eventID(parsed, lockedEventName),
		burnedID:      eventID(parsed, burnedEventName),
	}, nil
}

// Query returns filter for both transfer events. nil toBlock means latest
func (p *TransferEventParser) Query(fromBlock uint64, toBlock *uint64) ethereum.FilterQuery {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{p.bridgeAddress},
		Topics:    [][]common.Hash{{p.lockedID, p.burnedID}},
	}

	if toBlock != nil {
		query.ToBlock = new(big.Int).SetUint64(*toBlock)
	}

	return query
}

func (p *TransferEventParser) Parse(log types.Log) (*bridgeCommon.TransferEvent, error) {
	if len(log.Topics) == 0 {
		return nil, errUnknownTransferEvent
	}

	if log.Address != p.bridgeAddress {
		return nil, fmt.Errorf("log emitted by %s instead of bridge %s", log.Address, p.bridgeAddress)
	}

	var (
		kind                  bridgeCommon.TransferEventKind
		transferID            [32]byte
		beneficiary           common.Address
		amount, targetChainID *big.Int
	)

	switch log.Topics[0] {
	case p.lockedID:
		ev, err := p.filterer.ParseLocked(log)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Locked log: %w", err)
		}

		kind, transferID, beneficiary, amount, targetChainID = bridgeCommon.TransferEventKindLocked,
			ev.TransferId, ev.Beneficiary, ev.Amount, ev.TargetChainId
	case p.burnedID:
		ev, err := p.filterer.ParseBurned(log)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Burned log: %w", err)
		}

		kind, transferID, beneficiary, amount, targetChainID = bridgeCommon.TransferEventKindBurned,
			ev.TransferId, ev.Beneficiary, ev.Amount, ev.TargetChainId
	default:
		return nil, errUnknownTransferEvent
	}

	if !targetChainID.IsUint64() {
		return nil, fmt.Errorf("target chain id out of range: %s", targetChainID)
	}

	return &bridgeCommon.TransferEvent{
		Kind:          kind,
		SourceChainID: p.chainID,
		TargetChainID: targetChainID.Uint64(),
		Beneficiary:   beneficiary,
		Amount:        amount,
		SourceTxHash:  log.TxHash,
		BlockHeight:   log.BlockNumber,
		LogIndex:      log.Index,
		TransferID:    transferID,
	}, nil
}

func eventID(parsed *abi.ABI, name string) common.Hash {
	return parsed.Events[name].ID
}
