package response

import (
	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/ethereum/go-ethereum/common"
)

type TransferStateResponse struct {
	DedupKey         string `json:"dedupKey"`
	TransferID       string `json:"transferId"`
	Kind             string `json:"kind"`
	SourceChainID    uint64 `json:"sourceChainId"`
	TargetChainID    uint64 `json:"targetChainId"`
	Beneficiary      string `json:"beneficiary"`
	Amount           string `json:"amount"`
	SourceTxHash     string `json:"sourceTxHash"`
	BlockHeight      uint64 `json:"blockHeight"`
	Status           string `json:"status"`
	SettlementTxHash string `json:"settlementTxHash,omitempty"`
	FailureReason    string `json:"failureReason,omitempty"`
	Attempts         uint64 `json:"attempts"`
	UpdatedAt        int64  `json:"updatedAt"`
}

func NewTransferStateResponse(state *bridgeCommon.TransferState) *TransferStateResponse {
	resp := &TransferStateResponse{
		DedupKey:      state.DedupKey,
		TransferID:    state.Event.TransferID.Hex(),
		Kind:          string(state.Event.Kind),
		SourceChainID: state.Event.SourceChainID,
		TargetChainID: state.Event.TargetChainID,
		Beneficiary:   state.Event.Beneficiary.Hex(),
		SourceTxHash:  state.Event.SourceTxHash.Hex(),
		BlockHeight:   state.Event.BlockHeight,
		Status:        string(state.Status),
		FailureReason: state.FailureReason,
		Attempts:      state.Attempts,
		UpdatedAt:     state.UpdatedAt.Unix(),
	}

	if state.Event.Amount != nil {
		resp.Amount = state.Event.Amount.String()
	}

	if state.SettlementTxHash != (common.Hash{}) {
		resp.SettlementTxHash = state.SettlementTxHash.Hex()
	}

	return resp
}

func NewTransferStatesResponse(states []*bridgeCommon.TransferState) []*TransferStateResponse {
	result := make([]*TransferStateResponse, 0, len(states))
	for _, state := range states {
		result = append(result, NewTransferStateResponse(state))
	}

	return result
}
