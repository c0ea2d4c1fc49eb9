package core

import (
	"context"
	"math/big"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/ethereum/go-ethereum/common"
)

// TransferMessage is the payload every relayer signs before settlement
type TransferMessage struct {
	Beneficiary   common.Address
	Amount        *big.Int
	SourceChainID uint64
	TargetChainID uint64
	TransferID    common.Hash
}

func NewTransferMessage(event *bridgeCommon.TransferEvent) TransferMessage {
	return TransferMessage{
		Beneficiary:   event.Beneficiary,
		Amount:        new(big.Int).Set(event.Amount),
		SourceChainID: event.SourceChainID,
		TargetChainID: event.TargetChainID,
		TransferID:    event.TransferID,
	}
}

type SignatureBundle struct {
	MessageHash common.Hash
	// Signers are sorted ascending and Signatures holds their 65 byte signatures in the same order
	Signers    []common.Address
	Signatures []byte
}

func (b *SignatureBundle) Count() int {
	return len(b.Signers)
}

type SettlementResult struct {
	TxHash   common.Hash
	Attempts uint64
	// Sent is set once a settlement transaction was handed to the node, even if that call failed
	Sent bool
}

// SendHook runs right before every settlement transaction is handed to the node. An error aborts
// the settlement without sending
type SendHook func(ctx context.Context) error
