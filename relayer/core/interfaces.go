package core

import (
	"context"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/eth"
	"github.com/ethereum/go-ethereum/common"
)

type RelayerManager interface {
	Start() error
	Stop() error
}

type EventWatcher interface {
	Start(ctx context.Context) error
}

// EventSink receives events in the order they were emitted on the source ledger
type EventSink interface {
	Enqueue(event *bridgeCommon.TransferEvent)
}

type ChainEndpoint struct {
	Config ChainConfig
	Client eth.ChainClient
	Bridge eth.IBridgeSmartContract
}

type ChainEndpointRegistry interface {
	Get(chainID uint64) (*ChainEndpoint, error)
	ChainIDs() []uint64
	Close() error
}

type ConfirmationGate interface {
	// WaitForDepth blocks until blockHeight has reached the required number of confirmations
	WaitForDepth(ctx context.Context, chainID uint64, blockHeight uint64) error
}

type TransferStateValidator interface {
	// Validate checks the event against the source bridge. A mismatch is wrapped in ErrTransferRejected
	Validate(ctx context.Context, event *bridgeCommon.TransferEvent) error
	IsSettledOnTarget(ctx context.Context, event *bridgeCommon.TransferEvent) (bool, error)
}

type SignatureCollector interface {
	Collect(ctx context.Context, msg TransferMessage, required uint64) (*SignatureBundle, error)
}

type SettlementExecutor interface {
	// Settle submits the settlement on the target ledger and waits for its receipt. beforeSend is
	// called ahead of every send. Terminal failures are wrapped in ErrTransferRejected or ErrSettlementStuck
	Settle(
		ctx context.Context, event *bridgeCommon.TransferEvent, bundle *SignatureBundle, beforeSend SendHook,
	) (*SettlementResult, error)
}

type StuckNotifier interface {
	NotifyStuck(ctx context.Context, state *bridgeCommon.TransferState) error
}

type DedupStore interface {
	// MarkSeen atomically records key as claimed by owner and reports whether it had been recorded
	// before together with the owner holding it. A key that is already settled reports no owner
	MarkSeen(ctx context.Context, key string, owner string) (alreadySeen bool, claimedBy string, err error)
	MarkSettled(ctx context.Context, key string, settlementTxHash common.Hash) error
	IsSettled(ctx context.Context, key string) (bool, common.Hash, error)
	Close() error
}

type TransferStateDB interface {
	GetTransferState(dedupKey string) (*bridgeCommon.TransferState, error)
	GetTransferStatesByTransferID(transferID common.Hash) ([]*bridgeCommon.TransferState, error)
	GetStuckTransferStates() ([]*bridgeCommon.TransferState, error)
	SaveTransferState(state *bridgeCommon.TransferState) error
	GetProcessedHeight(chainID uint64) (uint64, bool, error)
	SetProcessedHeight(chainID uint64, height uint64) error
}

type Database interface {
	TransferStateDB
	DedupStore
	Init(filePath string) error
}

// TransferStatusProvider answers operator queries about relayed transfers
type TransferStatusProvider interface {
	GetTransferStatus(transferID common.Hash) ([]*bridgeCommon.TransferState, error)
	GetTransferStateByKey(dedupKey string) (*bridgeCommon.TransferState, error)
	GetStuckTransfers() ([]*bridgeCommon.TransferState, error)
}
