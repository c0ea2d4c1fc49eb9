package common

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type TransferEventKind string

const (
	TransferEventKindLocked TransferEventKind = "Locked"
	TransferEventKindBurned TransferEventKind = "Burned"
)

func (k TransferEventKind) Validate() error {
	switch k {
	case TransferEventKindLocked, TransferEventKindBurned:
		return nil
	default:
		return fmt.Errorf("unknown transfer event kind: %q", string(k))
	}
}

// ExpectedSourceStatus is the on-chain status the source bridge must report before settlement
func (k TransferEventKind) ExpectedSourceStatus() (OnChainTransferStatus, error) {
	switch k {
	case TransferEventKindLocked:
		return OnChainTransferStatusLocked, nil
	case TransferEventKindBurned:
		return OnChainTransferStatusBurned, nil
	default:
		return OnChainTransferStatusUnknown, fmt.Errorf("unknown transfer event kind: %q", string(k))
	}
}

// SettledTargetStatus is the on-chain status the target bridge reports once settlement went through
func (k TransferEventKind) SettledTargetStatus() (OnChainTransferStatus, error) {
	switch k {
	case TransferEventKindLocked:
		return OnChainTransferStatusMinted, nil
	case TransferEventKindBurned:
		return OnChainTransferStatusReleased, nil
	default:
		return OnChainTransferStatusUnknown, fmt.Errorf("unknown transfer event kind: %q", string(k))
	}
}

// OnChainTransferStatus mirrors the status enum kept by the bridge contract
type OnChainTransferStatus uint8

const (
	OnChainTransferStatusUnknown OnChainTransferStatus = iota
	OnChainTransferStatusLocked
	OnChainTransferStatusConfirmed
	OnChainTransferStatusMinted
	OnChainTransferStatusBurned
	OnChainTransferStatusReleased
)

func (s OnChainTransferStatus) String() string {
	switch s {
	case OnChainTransferStatusUnknown:
		return "Unknown"
	case OnChainTransferStatusLocked:
		return "Locked"
	case OnChainTransferStatusConfirmed:
		return "Confirmed"
	case OnChainTransferStatusMinted:
		return "Minted"
	case OnChainTransferStatusBurned:
		return "Burned"
	case OnChainTransferStatusReleased:
		return "Released"
	default:
		return fmt.Sprintf("OnChainTransferStatus(%d)", uint8(s))
	}
}

// TransferEvent is a normalized Locked or Burned log observed on the source ledger
type TransferEvent struct {
	Kind          TransferEventKind `json:"kind"`
	SourceChainID uint64            `json:"sourceChainId"`
	TargetChainID uint64            `json:"targetChainId"`
	Beneficiary   common.Address    `json:"beneficiary"`
	Amount        *big.Int          `json:"amount"`
	SourceTxHash  common.Hash       `json:"sourceTxHash"`
	BlockHeight   uint64            `json:"blockHeight"`
	LogIndex      uint              `json:"logIndex"`
	TransferID    common.Hash       `json:"transferId"`
}

func (e TransferEvent) DedupKey() string {
	return ToDedupKey(e.SourceTxHash, e.Kind)
}

func (e TransferEvent) String() string {
	return fmt.Sprintf("%s(transferId=%s, %d -> %d, block=%d, tx=%s)",
		e.Kind, e.TransferID, e.SourceChainID, e.TargetChainID, e.BlockHeight, e.SourceTxHash)
}

func ToDedupKey(sourceTxHash common.Hash, kind TransferEventKind) string {
	return sourceTxHash.Hex() + ":" + string(kind)
}
