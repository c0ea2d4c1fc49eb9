package ethtxhelper

import (
	"errors"
	"net"
	"strings"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/ethereum/go-ethereum/core/vm"
)

var retryableMessages = []string{
	"replacement tx underpriced",
	"nonce too low",
	"intrinsic gas too low",
	"insufficient funds",
	"tx with the same nonce is already present",
	"already known",
	"rejected future tx due to low slots",
	"connection refused",
	"connection reset",
	"too many requests",
	"503 service unavailable",
	"502 bad gateway",
	"eof",
}

func IsRetryableEthError(err error) bool {
	if err == nil {
		return false
	}

	// Context was explicitly canceled or deadline exceeded; not retryable
	if bridgeCommon.IsContextDoneErr(err) {
		return false
	}

	if IsRevertError(err) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	for _, msg := range retryableMessages {
		if strings.Contains(errStr, msg) {
			return true
		}
	}

	return false
}

// IsRevertError reports whether the contract itself refused the call
func IsRevertError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, vm.ErrExecutionReverted) ||
		strings.Contains(strings.ToLower(err.Error()), vm.ErrExecutionReverted.Error())
}
