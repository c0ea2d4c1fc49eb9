package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apiCore "github.com/CultureBridge/bridge-relayer/api/core"
	"github.com/CultureBridge/bridge-relayer/api/model/response"
	"github.com/CultureBridge/bridge-relayer/api/utils"
	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-hclog"
)

type TransferStateControllerImpl struct {
	provider core.TransferStatusProvider
	logger   hclog.Logger
}

var _ apiCore.APIController = (*TransferStateControllerImpl)(nil)

func NewTransferStateController(
	provider core.TransferStatusProvider, logger hclog.Logger,
) *TransferStateControllerImpl {
	return &TransferStateControllerImpl{
		provider: provider,
		logger:   logger,
	}
}

func (*TransferStateControllerImpl) GetPathPrefix() string {
	return "Transfer"
}

func (c *TransferStateControllerImpl) GetEndpoints() []*apiCore.APIEndpoint {
	return []*apiCore.APIEndpoint{
		{Path: "Get", Method: http.MethodGet, Handler: c.get, APIKeyAuth: true},
		{Path: "GetByKey", Method: http.MethodGet, Handler: c.getByKey, APIKeyAuth: true},
		{Path: "GetStuck", Method: http.MethodGet, Handler: c.getStuck, APIKeyAuth: true},
	}
}

func (c *TransferStateControllerImpl) get(w http.ResponseWriter, r *http.Request) {
	transferIDStr, ok := utils.GetQueryParam(w, r, "transferId", c.logger)
	if !ok {
		return
	}

	transferID, err := parseHash(transferIDStr)
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest, fmt.Errorf("invalid transferId: %w", err), c.logger)

		return
	}

	states, err := c.provider.GetTransferStatus(transferID)
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	if len(states) == 0 {
		utils.WriteErrorResponse(w, r, http.StatusNotFound, errors.New("transfer not found"), c.logger)

		return
	}

	utils.WriteResponse(w, r, http.StatusOK, response.NewTransferStatesResponse(states), c.logger)
}

func (c *TransferStateControllerImpl) getByKey(w http.ResponseWriter, r *http.Request) {
	key, ok := utils.GetQueryParam(w, r, "key", c.logger)
	if !ok {
		return
	}

	txHashStr, kind, found := strings.Cut(key, ":")
	if !found {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest,
			fmt.Errorf("invalid key %q, expected <sourceTxHash>:<kind>", key), c.logger)

		return
	}

	txHash, err := parseHash(txHashStr)
	if err == nil {
		err = bridgeCommon.TransferEventKind(kind).Validate()
	}

	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest, fmt.Errorf("invalid key: %w", err), c.logger)

		return
	}

	state, err := c.provider.GetTransferStateByKey(bridgeCommon.ToDedupKey(txHash, bridgeCommon.TransferEventKind(kind)))
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	if state == nil {
		utils.WriteErrorResponse(w, r, http.StatusNotFound, errors.New("transfer not found"), c.logger)

		return
	}

	utils.WriteResponse(w, r, http.StatusOK, response.NewTransferStateResponse(state), c.logger)
}

func (c *TransferStateControllerImpl) getStuck(w http.ResponseWriter, r *http.Request) {
	states, err := c.provider.GetStuckTransfers()
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	utils.WriteResponse(w, r, http.StatusOK, response.NewTransferStatesResponse(states), c.logger)
}

func parseHash(value string) (common.Hash, error) {
	bytes, err := bridgeCommon.DecodeHex(value)
	if err != nil {
		return common.Hash{}, err
	}

	if len(bytes) != common.HashLength {
		return common.Hash{}, fmt.Errorf("expected %d bytes, got %d", common.HashLength, len(bytes))
	}

	return common.BytesToHash(bytes), nil
}
