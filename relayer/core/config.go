package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	apiCore "github.com/CultureBridge/bridge-relayer/api/core"
	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/telemetry"
)

const (
	DedupDriverBBolt = "bbolt"
	DedupDriverRedis = "redis"

	MinGasLimitMultiplier = 1.2

	defaultConfirmationPollInterval = 15 * time.Second
	defaultConfirmationMaxWait      = 30 * time.Minute
	defaultWatcherPollInterval      = 10 * time.Second
	defaultMaxBlockRange            = 2000
	defaultSettlementMaxAttempts    = 3
	defaultReceiptTimeout           = 5 * time.Minute
	defaultReceiptPollInterval      = 2 * time.Second
	defaultShutdownGracePeriod      = 2 * time.Minute
	defaultGasFeeMultiplier         = 120 // 120%
)

type ChainConfig struct {
	ChainID               uint64 `json:"chainId" mapstructure:"chainId"`
	Name                  string `json:"name" mapstructure:"name"`
	RPCURL                string `json:"rpcUrl" mapstructure:"rpcUrl"`
	BridgeAddress         string `json:"bridgeAddress" mapstructure:"bridgeAddress"`
	TokenAddress          string `json:"tokenAddress" mapstructure:"tokenAddress"`
	RequiredConfirmations uint64 `json:"requiredConfirmations" mapstructure:"requiredConfirmations"`
	StartBlock            uint64 `json:"startBlock" mapstructure:"startBlock"`
	MaxBlockRange         uint64 `json:"maxBlockRange" mapstructure:"maxBlockRange"`
	DynamicTx             bool   `json:"dynamicTx" mapstructure:"dynamicTx"`
	GasFeeMultiplier      uint64 `json:"gasFeeMultiplier" mapstructure:"gasFeeMultiplier"`
}

func (c ChainConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}

	return strconv.FormatUint(c.ChainID, 10)
}

type WatcherConfig struct {
	PollInterval time.Duration              `json:"pollInterval" mapstructure:"pollInterval"`
	Resubscribe  bridgeCommon.BackoffConfig `json:"resubscribe" mapstructure:"resubscribe"`
}

type ConfirmationConfig struct {
	PollInterval time.Duration `json:"pollInterval" mapstructure:"pollInterval"`
	MaxWait      time.Duration `json:"maxWait" mapstructure:"maxWait"`
}

type SettlementConfig struct {
	SubmitterPrivateKey string                     `json:"submitterPrivateKey" mapstructure:"submitterPrivateKey"`
	GasLimitMultiplier  float64                    `json:"gasLimitMultiplier" mapstructure:"gasLimitMultiplier"`
	MaxAttempts         uint64                     `json:"maxAttempts" mapstructure:"maxAttempts"`
	Backoff             bridgeCommon.BackoffConfig `json:"backoff" mapstructure:"backoff"`
	ReceiptTimeout      time.Duration              `json:"receiptTimeout" mapstructure:"receiptTimeout"`
	ReceiptPollInterval time.Duration              `json:"receiptPollInterval" mapstructure:"receiptPollInterval"`
}

type DedupConfig struct {
	Driver         string `json:"driver" mapstructure:"driver"`
	RedisAddr      string `json:"redisAddr" mapstructure:"redisAddr"`
	RedisPassword  string `json:"redisPassword" mapstructure:"redisPassword"`
	RedisDB        int    `json:"redisDb" mapstructure:"redisDb"`
	RedisKeyPrefix string `json:"redisKeyPrefix" mapstructure:"redisKeyPrefix"`
}

type StuckNotifierConfig struct {
	KafkaBrokers []string `json:"kafkaBrokers" mapstructure:"kafkaBrokers"`
	KafkaTopic   string   `json:"kafkaTopic" mapstructure:"kafkaTopic"`
}

type RelayerManagerConfiguration struct {
	Chains              []ChainConfig              `json:"chains" mapstructure:"chains"`
	RelayerKeys         []string                   `json:"relayerKeys" mapstructure:"relayerKeys"`
	RequiredSignatures  uint64                     `json:"requiredSignatures" mapstructure:"requiredSignatures"`
	DbsPath             string                     `json:"dbsPath" mapstructure:"dbsPath"`
	Watcher             WatcherConfig              `json:"watcher" mapstructure:"watcher"`
	Confirmation        ConfirmationConfig         `json:"confirmation" mapstructure:"confirmation"`
	Settlement          SettlementConfig           `json:"settlement" mapstructure:"settlement"`
	StageRetry          bridgeCommon.BackoffConfig `json:"stageRetry" mapstructure:"stageRetry"`
	ShutdownGracePeriod time.Duration              `json:"shutdownGracePeriod" mapstructure:"shutdownGracePeriod"`
	Dedup               DedupConfig                `json:"dedup" mapstructure:"dedup"`
	StuckNotifier       StuckNotifierConfig        `json:"stuckNotifier" mapstructure:"stuckNotifier"`
	APIConfig           apiCore.APIConfig          `json:"api" mapstructure:"api"`
	Telemetry           telemetry.TelemetryConfig  `json:"telemetry" mapstructure:"telemetry"`
	Logger              bridgeCommon.LoggerConfig  `json:"logger" mapstructure:"logger"`
}

func (c *RelayerManagerConfiguration) SetDefaults() {
	for i := range c.Chains {
		if c.Chains[i].MaxBlockRange == 0 {
			c.Chains[i].MaxBlockRange = defaultMaxBlockRange
		}

		if c.Chains[i].GasFeeMultiplier == 0 {
			c.Chains[i].GasFeeMultiplier = defaultGasFeeMultiplier
		}
	}

	if c.Watcher.PollInterval == 0 {
		c.Watcher.PollInterval = defaultWatcherPollInterval
	}

	if c.Watcher.Resubscribe.Initial == 0 {
		c.Watcher.Resubscribe.Initial = time.Second
	}

	if c.Watcher.Resubscribe.Max == 0 {
		c.Watcher.Resubscribe.Max = time.Minute
	}

	if c.Confirmation.PollInterval == 0 {
		c.Confirmation.PollInterval = defaultConfirmationPollInterval
	}

	if c.Confirmation.MaxWait == 0 {
		c.Confirmation.MaxWait = defaultConfirmationMaxWait
	}

	if c.Settlement.GasLimitMultiplier == 0 {
		c.Settlement.GasLimitMultiplier = MinGasLimitMultiplier
	}

	if c.Settlement.MaxAttempts == 0 {
		c.Settlement.MaxAttempts = defaultSettlementMaxAttempts
	}

	if c.Settlement.Backoff.Initial == 0 {
		c.Settlement.Backoff.Initial = 2 * time.Second
	}

	if c.Settlement.Backoff.Max == 0 {
		c.Settlement.Backoff.Max = time.Minute
	}

	if c.Settlement.ReceiptTimeout == 0 {
		c.Settlement.ReceiptTimeout = defaultReceiptTimeout
	}

	if c.Settlement.ReceiptPollInterval == 0 {
		c.Settlement.ReceiptPollInterval = defaultReceiptPollInterval
	}

	if c.StageRetry.Initial == 0 {
		c.StageRetry.Initial = time.Second
	}

	if c.StageRetry.Max == 0 {
		c.StageRetry.Max = 30 * time.Second
	}

	if c.ShutdownGracePeriod == 0 {
		c.ShutdownGracePeriod = defaultShutdownGracePeriod
	}

	if c.Dedup.Driver == "" {
		c.Dedup.Driver = DedupDriverBBolt
	}

	if c.Dedup.RedisKeyPrefix == "" {
		c.Dedup.RedisKeyPrefix = "relayer:dedup:"
	}

	if c.StuckNotifier.KafkaTopic == "" {
		c.StuckNotifier.KafkaTopic = "relayer.stuck-transfers"
	}
}

func (c *RelayerManagerConfiguration) Validate() error {
	if len(c.Chains) < 2 {
		return errors.New("at least two chains must be configured")
	}

	seen := make(map[uint64]bool, len(c.Chains))

	for _, chain := range c.Chains {
		if chain.ChainID == 0 {
			return fmt.Errorf("chain %s: chain id must be set", chain.DisplayName())
		}

		if seen[chain.ChainID] {
			return fmt.Errorf("chain %d configured more than once", chain.ChainID)
		}

		seen[chain.ChainID] = true

		if !bridgeCommon.IsValidURL(chain.RPCURL) {
			return fmt.Errorf("chain %s: invalid rpc url: %q", chain.DisplayName(), chain.RPCURL)
		}

		if !bridgeCommon.IsValidAddress(chain.BridgeAddress) {
			return fmt.Errorf("chain %s: invalid bridge address: %q", chain.DisplayName(), chain.BridgeAddress)
		}

		if chain.TokenAddress != "" && !bridgeCommon.IsValidAddress(chain.TokenAddress) {
			return fmt.Errorf("chain %s: invalid token address: %q", chain.DisplayName(), chain.TokenAddress)
		}
	}

	if len(c.RelayerKeys) == 0 {
		return errors.New("no relayer keys configured")
	}

	if c.Settlement.GasLimitMultiplier < MinGasLimitMultiplier {
		return fmt.Errorf("gas limit multiplier must be at least %.1f, got %f",
			MinGasLimitMultiplier, c.Settlement.GasLimitMultiplier)
	}

	if c.Settlement.MaxAttempts == 0 {
		return errors.New("settlement max attempts must be at least 1")
	}

	switch c.Dedup.Driver {
	case DedupDriverBBolt:
	case DedupDriverRedis:
		if c.Dedup.RedisAddr == "" {
			return errors.New("redis dedup driver requires redisAddr")
		}
	default:
		return fmt.Errorf("unknown dedup driver: %q", c.Dedup.Driver)
	}

	return nil
}
