package finality

import (
	"context"
	"time"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/CultureBridge/bridge-relayer/telemetry"
	"github.com/hashicorp/go-hclog"
)

type ConfirmationGateImpl struct {
	registry core.ChainEndpointRegistry
	config   core.ConfirmationConfig
	logger   hclog.Logger
}

var _ core.ConfirmationGate = (*ConfirmationGateImpl)(nil)

func NewConfirmationGate(
	registry core.ChainEndpointRegistry, config core.ConfirmationConfig, logger hclog.Logger,
) *ConfirmationGateImpl {
	return &ConfirmationGateImpl{
		registry: registry,
		config:   config,
		logger:   logger,
	}
}

// WaitForDepth polls the ledger head until currentHeight - blockHeight reaches the configured
// confirmation depth. Rpc errors are logged and polling continues. Once MaxWait elapses an alert
// is raised a single time and the gate keeps waiting
func (g *ConfirmationGateImpl) WaitForDepth(ctx context.Context, chainID uint64, blockHeight uint64) error {
	endpoint, err := g.registry.Get(chainID)
	if err != nil {
		return err
	}

	required := endpoint.Config.RequiredConfirmations
	startedAt := time.Now()
	alerted := false

	for {
		currentHeight, err := endpoint.Client.BlockNumber(ctx)

		switch {
		case err != nil && bridgeCommon.IsContextDoneErr(err):
			return err
		case err != nil:
			g.logger.Warn("Failed to retrieve block number", "chain", chainID, "err", err)
		case currentHeight >= blockHeight && currentHeight-blockHeight >= required:
			g.logger.Debug("Confirmation depth reached", "chain", chainID,
				"block", blockHeight, "current", currentHeight, "required", required)

			return nil
		}

		if !alerted && g.config.MaxWait > 0 && time.Since(startedAt) > g.config.MaxWait {
			alerted = true

			telemetry.UpdateConfirmationMaxWaitExceededCounter(chainID)
			g.logger.Error("Confirmation wait exceeded max wait, still waiting", "chain", chainID,
				"block", blockHeight, "current", currentHeight, "required", required, "maxWait", g.config.MaxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.config.PollInterval):
		}
	}
}
