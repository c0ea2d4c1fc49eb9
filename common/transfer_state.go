package common

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type TransferStatus string

const (
	TransferStatusObserved            TransferStatus = "Observed"
	TransferStatusDeduped             TransferStatus = "Deduped"
	TransferStatusConfirmationPending TransferStatus = "ConfirmationPending"
	TransferStatusValidated           TransferStatus = "Validated"
	TransferStatusQuorumPending       TransferStatus = "QuorumPending"
	TransferStatusSettling            TransferStatus = "Settling"
	TransferStatusSettled             TransferStatus = "Settled"
	TransferStatusRejected            TransferStatus = "Rejected"
	TransferStatusStuck               TransferStatus = "Stuck"
)

var transferStatusOrder = map[TransferStatus]int{
	TransferStatusObserved:            0,
	TransferStatusDeduped:             1,
	TransferStatusConfirmationPending: 2,
	TransferStatusValidated:           3,
	TransferStatusQuorumPending:       4,
	TransferStatusSettling:            5,
	TransferStatusSettled:             6,
	TransferStatusRejected:            6,
	TransferStatusStuck:               6,
}

func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusSettled || s == TransferStatusRejected || s == TransferStatusStuck
}

// IsBefore reports whether s comes earlier in the pipeline than other
func (s TransferStatus) IsBefore(other TransferStatus) bool {
	return transferStatusOrder[s] < transferStatusOrder[other]
}

type TransferState struct {
	DedupKey         string         `json:"dedupKey"`
	Event            TransferEvent  `json:"event"`
	Status           TransferStatus `json:"status"`
	SettlementTxHash common.Hash    `json:"settlementTxHash"`
	FailureReason    string         `json:"failureReason,omitempty"`
	Attempts         uint64         `json:"attempts"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func NewTransferState(event TransferEvent) *TransferState {
	now := time.Now().UTC()

	return &TransferState{
		DedupKey:  event.DedupKey(),
		Event:     event,
		Status:    TransferStatusObserved,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *TransferState) ToDBKey() []byte {
	return []byte(s.DedupKey)
}

func (s *TransferState) ToDeduped() {
	s.setStatus(TransferStatusDeduped)
}

func (s *TransferState) ToConfirmationPending() {
	s.setStatus(TransferStatusConfirmationPending)
}

func (s *TransferState) ToValidated() {
	s.setStatus(TransferStatusValidated)
}

func (s *TransferState) ToQuorumPending() {
	s.setStatus(TransferStatusQuorumPending)
}

func (s *TransferState) ToSettling() {
	s.setStatus(TransferStatusSettling)
}

func (s *TransferState) ToSettled(settlementTxHash common.Hash) {
	s.setStatus(TransferStatusSettled)
	s.SettlementTxHash = settlementTxHash
}

func (s *TransferState) ToRejected(reason string) {
	s.setStatus(TransferStatusRejected)
	s.FailureReason = reason
}

func (s *TransferState) ToStuck(reason string) {
	s.setStatus(TransferStatusStuck)
	s.FailureReason = reason
}

func (s *TransferState) setStatus(status TransferStatus) {
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
}

// IsTransitionPossible allows only forward moves. Rejected can not happen before dedup
// and Stuck is reachable only while settling
func (s *TransferState) IsTransitionPossible(newStatus TransferStatus) error {
	_, known := transferStatusOrder[newStatus]
	isInvalidTransition := !known || s.Status.IsTerminal() || !s.Status.IsBefore(newStatus)

	switch newStatus {
	case TransferStatusRejected:
		isInvalidTransition = isInvalidTransition || s.Status == TransferStatusObserved
	case TransferStatusStuck:
		isInvalidTransition = isInvalidTransition || s.Status != TransferStatusSettling
	}

	if isInvalidTransition {
		return fmt.Errorf("TransferState (%s) invalid transition %s -> %s",
			s.DedupKey, s.Status, newStatus)
	}

	return nil
}
