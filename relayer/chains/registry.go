package chains

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/CultureBridge/bridge-relayer/eth"
	ethtxhelper "github.com/CultureBridge/bridge-relayer/eth/txhelper"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
)

type ChainEndpointRegistryImpl struct {
	endpoints map[uint64]*core.ChainEndpoint
	chainIDs  []uint64
}

var _ core.ChainEndpointRegistry = (*ChainEndpointRegistryImpl)(nil)

// NewChainEndpointRegistry dials every configured ledger and checks that the endpoint
// serves the configured chain id. Settlement transactions are signed with submitter and
// their receipts are polled every receiptPollInterval
func NewChainEndpointRegistry(
	ctx context.Context, chains []core.ChainConfig, submitter ethtxhelper.IEthTxWallet,
	receiptPollInterval time.Duration, logger hclog.Logger,
) (*ChainEndpointRegistryImpl, error) {
	endpoints := make([]*core.ChainEndpoint, 0, len(chains))

	closeAll := func() {
		for _, endpoint := range endpoints {
			endpoint.Client.Close()
		}
	}

	for _, chainConfig := range chains {
		client, err := eth.DialChainClient(ctx, chainConfig.RPCURL)
		if err != nil {
			closeAll()

			return nil, fmt.Errorf("chain %s: %w", chainConfig.DisplayName(), err)
		}

		endpoints = append(endpoints, &core.ChainEndpoint{
			Config: chainConfig,
			Client: client,
			Bridge: eth.NewBridgeSmartContract(
				chainConfig.BridgeAddress,
				eth.NewEthHelperWrapperWithWallet(
					submitter,
					logger.Named(strings.ToUpper(chainConfig.DisplayName())),
					ethtxhelper.WithNodeURL(chainConfig.RPCURL),
					ethtxhelper.WithDynamicTx(chainConfig.DynamicTx),
					ethtxhelper.WithGasFeeMultiplier(chainConfig.GasFeeMultiplier),
					ethtxhelper.WithChainID(new(big.Int).SetUint64(chainConfig.ChainID)),
					ethtxhelper.WithReceiptWaitTime(receiptPollInterval),
				),
			),
		})

		if err := verifyChainID(ctx, client, chainConfig); err != nil {
			closeAll()

			return nil, err
		}

		logger.Info("Connected to ledger", "chain", chainConfig.DisplayName(),
			"chainId", chainConfig.ChainID, "bridge", chainConfig.BridgeAddress)
	}

	return NewChainEndpointRegistryFromEndpoints(endpoints)
}

func NewChainEndpointRegistryFromEndpoints(endpoints []*core.ChainEndpoint) (*ChainEndpointRegistryImpl, error) {
	registry := &ChainEndpointRegistryImpl{
		endpoints: make(map[uint64]*core.ChainEndpoint, len(endpoints)),
		chainIDs:  make([]uint64, 0, len(endpoints)),
	}

	for _, endpoint := range endpoints {
		chainID := endpoint.Config.ChainID

		if _, exists := registry.endpoints[chainID]; exists {
			return nil, fmt.Errorf("chain %d registered more than once", chainID)
		}

		registry.endpoints[chainID] = endpoint
		registry.chainIDs = append(registry.chainIDs, chainID)
	}

	sort.Slice(registry.chainIDs, func(i, j int) bool {
		return registry.chainIDs[i] < registry.chainIDs[j]
	})

	return registry, nil
}

func (r *ChainEndpointRegistryImpl) Get(chainID uint64) (*core.ChainEndpoint, error) {
	endpoint, exists := r.endpoints[chainID]
	if !exists {
		return nil, fmt.Errorf("%w: %d", core.ErrChainNotConfigured, chainID)
	}

	return endpoint, nil
}

func (r *ChainEndpointRegistryImpl) ChainIDs() []uint64 {
	return append([]uint64(nil), r.chainIDs...)
}

func (r *ChainEndpointRegistryImpl) Close() error {
	for _, endpoint := range r.endpoints {
		endpoint.Client.Close()
	}

	return nil
}

func verifyChainID(ctx context.Context, client eth.ChainClient, chainConfig core.ChainConfig) error {
	reported, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain %s: failed to retrieve chain id: %w", chainConfig.DisplayName(), err)
	}

	if reported == nil || !reported.IsUint64() || reported.Uint64() != chainConfig.ChainID {
		return fmt.Errorf("chain %s: endpoint reports chain id %v, expected %d",
			chainConfig.DisplayName(), reported, chainConfig.ChainID)
	}

	return nil
}
