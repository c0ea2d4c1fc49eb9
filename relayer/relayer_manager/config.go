package relayer_manager

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "RELAYER"

// secret keys are bound explicitly so they can be provided only through the environment
var secretConfigKeys = []string{
	"relayerKeys",
	"settlement.submitterPrivateKey",
	"dedup.redisPassword",
	"api.apiKeys",
}

// LoadConfig reads the json configuration file and applies RELAYER_ prefixed environment overrides,
// for example RELAYER_SETTLEMENT_MAXATTEMPTS. When envFile is set its variables are loaded first
// without replacing variables already present in the environment
func LoadConfig(configPath string, envFile string) (*core.RelayerManagerConfiguration, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range secretConfigKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := &core.RelayerManagerConfiguration{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", configPath, err)
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
