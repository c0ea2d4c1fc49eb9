package relayer_manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CultureBridge/bridge-relayer/eth"
	"github.com/CultureBridge/bridge-relayer/relayer/chains"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/CultureBridge/bridge-relayer/relayer/signer"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testKey1 = "3b1a4e4c2a7b8e9f0d1c2b3a4f5e6d7c8b9a0f1e2d3c4b5a69788796a5b4c3d2"
	testKey2 = "7c9e2f1a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6"
	testKey3 = "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"
)

const testConfigJSON = `{
	"chains": [
		{
			"chainId": 11155111,
			"name": "sepolia",
			"rpcUrl": "http://localhost:8545",
			"bridgeAddress": "0x816402271eE6D9078Fc8Cb537aDBDD58219485BA",
			"requiredConfirmations": 12,
			"startBlock": 5000000
		},
		{
			"chainId": 80002,
			"name": "amoy",
			"rpcUrl": "http://localhost:9545",
			"bridgeAddress": "0x2a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d",
			"requiredConfirmations": 20
		}
	],
	"dbsPath": "/tmp/relayer",
	"confirmation": {
		"pollInterval": "5s"
	},
	"settlement": {
		"gasLimitMultiplier": 1.5,
		"maxAttempts": 4,
		"backoff": {
			"initial": "500ms",
			"max": "10s"
		}
	},
	"api": {
		"port": 10000,
		"pathPrefix": "api",
		"apiKeyHeader": "X-API-KEY"
	},
	"logger": {
		"logLevel": "debug",
		"name": "relayer"
	}
}`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "relayer-config")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	configPath := filepath.Join(dir, "relayer_config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	return configPath
}

func TestLoadConfig(t *testing.T) {
	t.Run("file with env secrets", func(t *testing.T) {
		configPath := writeTestConfig(t, testConfigJSON)

		t.Setenv("RELAYER_RELAYERKEYS", testKey1+","+testKey2)
		t.Setenv("RELAYER_API_APIKEYS", "operator-key")

		config, err := LoadConfig(configPath, "")
		require.NoError(t, err)

		require.Len(t, config.Chains, 2)
		require.Equal(t, uint64(11155111), config.Chains[0].ChainID)
		require.Equal(t, "sepolia", config.Chains[0].Name)
		require.Equal(t, uint64(12), config.Chains[0].RequiredConfirmations)
		require.Equal(t, uint64(5000000), config.Chains[0].StartBlock)
		require.Equal(t, uint64(80002), config.Chains[1].ChainID)
		require.Equal(t, []string{testKey1, testKey2}, config.RelayerKeys)
		require.Equal(t, []string{"operator-key"}, config.APIConfig.APIKeys)
		require.Equal(t, 5*time.Second, config.Confirmation.PollInterval)
		require.Equal(t, 1.5, config.Settlement.GasLimitMultiplier)
		require.Equal(t, uint64(4), config.Settlement.MaxAttempts)
		require.Equal(t, 500*time.Millisecond, config.Settlement.Backoff.Initial)
		require.Equal(t, 10*time.Second, config.Settlement.Backoff.Max)
		require.Equal(t, "debug", config.Logger.LogLevel)
	})

	t.Run("defaults applied", func(t *testing.T) {
		configPath := writeTestConfig(t, testConfigJSON)

		t.Setenv("RELAYER_RELAYERKEYS", testKey1)

		config, err := LoadConfig(configPath, "")
		require.NoError(t, err)

		require.Equal(t, 30*time.Minute, config.Confirmation.MaxWait)
		require.Equal(t, uint64(2000), config.Chains[1].MaxBlockRange)
		require.Equal(t, core.DedupDriverBBolt, config.Dedup.Driver)
		require.Equal(t, 2*time.Minute, config.ShutdownGracePeriod)
	})

	t.Run("env overrides file value", func(t *testing.T) {
		configPath := writeTestConfig(t, testConfigJSON)

		t.Setenv("RELAYER_RELAYERKEYS", testKey1)
		t.Setenv("RELAYER_SETTLEMENT_MAXATTEMPTS", "7")

		config, err := LoadConfig(configPath, "")
		require.NoError(t, err)
		require.Equal(t, uint64(7), config.Settlement.MaxAttempts)
	})

	t.Run("env file", func(t *testing.T) {
		configPath := writeTestConfig(t, testConfigJSON)
		envPath := filepath.Join(filepath.Dir(configPath), ".env")

		require.NoError(t, os.WriteFile(envPath, []byte(
			"RELAYER_RELAYERKEYS="+testKey3+"\nRELAYER_SETTLEMENT_SUBMITTERPRIVATEKEY="+testKey2+"\n"), 0600))

		t.Cleanup(func() {
			_ = os.Unsetenv("RELAYER_RELAYERKEYS")
			_ = os.Unsetenv("RELAYER_SETTLEMENT_SUBMITTERPRIVATEKEY")
		})

		config, err := LoadConfig(configPath, envPath)
		require.NoError(t, err)
		require.Equal(t, []string{testKey3}, config.RelayerKeys)
		require.Equal(t, testKey2, config.Settlement.SubmitterPrivateKey)
	})

	t.Run("missing env file is ignored", func(t *testing.T) {
		configPath := writeTestConfig(t, testConfigJSON)

		t.Setenv("RELAYER_RELAYERKEYS", testKey1)

		_, err := LoadConfig(configPath, filepath.Join(filepath.Dir(configPath), "missing.env"))
		require.NoError(t, err)
	})

	t.Run("no relayer keys", func(t *testing.T) {
		configPath := writeTestConfig(t, testConfigJSON)

		_, err := LoadConfig(configPath, "")
		require.ErrorContains(t, err, "no relayer keys configured")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(os.TempDir(), "does-not-exist", "relayer_config.json"), "")
		require.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("malformed duration", func(t *testing.T) {
		configPath := writeTestConfig(t, `{"confirmation": {"pollInterval": "soon"}}`)

		_, err := LoadConfig(configPath, "")
		require.ErrorContains(t, err, "failed to decode config file")
	})
}

func TestResolveRequiredSignatures(t *testing.T) {
	const (
		chainA = uint64(11155111)
		chainB = uint64(80002)
	)

	newCollector := func(t *testing.T, keys ...string) *signer.SignatureQuorumCollectorImpl {
		t.Helper()

		keySet, err := signer.NewRelayerKeySet(keys)
		require.NoError(t, err)

		return signer.NewSignatureQuorumCollector(keySet, hclog.NewNullLogger())
	}

	newRegistry := func(t *testing.T, requiredA, requiredB uint64) (core.ChainEndpointRegistry, []*eth.BridgeSmartContractMock) {
		t.Helper()

		bridgeA, bridgeB := &eth.BridgeSmartContractMock{}, &eth.BridgeSmartContractMock{}
		bridgeA.On("GetRequiredSignatures", mock.Anything).Return(requiredA, nil)
		bridgeB.On("GetRequiredSignatures", mock.Anything).Return(requiredB, nil)

		registry, err := chains.NewChainEndpointRegistryFromEndpoints([]*core.ChainEndpoint{
			{Config: core.ChainConfig{ChainID: chainA}, Client: &eth.ChainClientMock{}, Bridge: bridgeA},
			{Config: core.ChainConfig{ChainID: chainB}, Client: &eth.ChainClientMock{}, Bridge: bridgeB},
		})
		require.NoError(t, err)

		return registry, []*eth.BridgeSmartContractMock{bridgeA, bridgeB}
	}

	t.Run("read from bridges", func(t *testing.T) {
		registry, bridges := newRegistry(t, 2, 3)

		required, err := resolveRequiredSignatures(
			context.Background(), registry, 0, newCollector(t, testKey1, testKey2, testKey3))
		require.NoError(t, err)
		require.Equal(t, map[uint64]uint64{chainA: 2, chainB: 3}, required)

		for _, bridge := range bridges {
			bridge.AssertNumberOfCalls(t, "GetRequiredSignatures", 1)
		}
	})

	t.Run("configured override skips bridges", func(t *testing.T) {
		registry, bridges := newRegistry(t, 3, 3)

		required, err := resolveRequiredSignatures(
			context.Background(), registry, 1, newCollector(t, testKey1))
		require.NoError(t, err)
		require.Equal(t, map[uint64]uint64{chainA: 1, chainB: 1}, required)

		for _, bridge := range bridges {
			bridge.AssertNotCalled(t, "GetRequiredSignatures", mock.Anything)
		}
	})

	t.Run("insufficient identities", func(t *testing.T) {
		registry, _ := newRegistry(t, 2, 3)

		_, err := resolveRequiredSignatures(
			context.Background(), registry, 0, newCollector(t, testKey1, testKey2))
		require.ErrorIs(t, err, core.ErrInsufficientQuorum)
		require.ErrorContains(t, err, "chain 80002")
	})

	t.Run("bridge read fails", func(t *testing.T) {
		bridge := &eth.BridgeSmartContractMock{}
		bridge.On("GetRequiredSignatures", mock.Anything).Return(uint64(0), errors.New("connection refused"))

		registry, err := chains.NewChainEndpointRegistryFromEndpoints([]*core.ChainEndpoint{
			{Config: core.ChainConfig{ChainID: chainA}, Client: &eth.ChainClientMock{}, Bridge: bridge},
		})
		require.NoError(t, err)

		_, err = resolveRequiredSignatures(context.Background(), registry, 0, newCollector(t, testKey1))
		require.ErrorContains(t, err, "failed to read required signatures on chain 11155111")
	})
}
