package core

import "errors"

var (
	ErrInsufficientQuorum = errors.New("insufficient relayer signatures for quorum")
	ErrTransferRejected   = errors.New("transfer rejected")
	ErrSettlementStuck    = errors.New("settlement stuck")
	ErrChainNotConfigured = errors.New("chain not configured")
)
