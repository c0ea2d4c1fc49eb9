package databaseaccess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

const (
	redisSeenPrefix    = "seen:"
	redisPingTimeout   = 5 * time.Second
	redisSettledPrefix = "settled:"
)

// RedisDedupStore keeps dedup entries in redis so several relayer processes can share them
type RedisDedupStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ core.DedupStore = (*RedisDedupStore)(nil)

func NewRedisDedupStore(ctx context.Context, config core.DedupConfig) (*RedisDedupStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.RedisAddr, err)
	}

	return &RedisDedupStore{
		client:    client,
		keyPrefix: config.RedisKeyPrefix,
	}, nil
}

// MarkSeen claims key with SETNX. A key claimed before is read back to report its owner
func (rs *RedisDedupStore) MarkSeen(ctx context.Context, key string, owner string) (bool, string, error) {
	inserted, err := rs.client.SetNX(ctx, rs.keyPrefix+key, redisSeenPrefix+owner, 0).Result()
	if err != nil {
		return false, "", fmt.Errorf("failed to mark %s as seen: %w", key, err)
	}

	if inserted {
		return false, owner, nil
	}

	value, err := rs.client.Get(ctx, rs.keyPrefix+key).Result()
	if err != nil {
		return true, "", fmt.Errorf("failed to read owner of %s: %w", key, err)
	}

	claimedBy, _ := strings.CutPrefix(value, redisSeenPrefix)
	if strings.HasPrefix(value, redisSettledPrefix) {
		claimedBy = ""
	}

	return true, claimedBy, nil
}

func (rs *RedisDedupStore) MarkSettled(ctx context.Context, key string, settlementTxHash common.Hash) error {
	err := rs.client.Set(ctx, rs.keyPrefix+key, encodeSettledValue(settlementTxHash), 0).Err()
	if err != nil {
		return fmt.Errorf("failed to mark %s as settled: %w", key, err)
	}

	return nil
}

func (rs *RedisDedupStore) IsSettled(ctx context.Context, key string) (bool, common.Hash, error) {
	value, err := rs.client.Get(ctx, rs.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, common.Hash{}, nil
	} else if err != nil {
		return false, common.Hash{}, fmt.Errorf("failed to read dedup entry %s: %w", key, err)
	}

	settled, txHash := decodeSettledValue(value)

	return settled, txHash, nil
}

func (rs *RedisDedupStore) Close() error {
	return rs.client.Close()
}

func encodeSettledValue(txHash common.Hash) string {
	return redisSettledPrefix + txHash.Hex()
}

func decodeSettledValue(value string) (bool, common.Hash) {
	hexHash, found := strings.CutPrefix(value, redisSettledPrefix)
	if !found {
		return false, common.Hash{}
	}

	return true, common.HexToHash(hexHash)
}
