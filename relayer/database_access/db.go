package databaseaccess

import (
	"context"
	"fmt"
	"path/filepath"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
)

const relayerDBFileName = "relayer.db"

func NewDatabase(dbsPath string) (*BBoltDatabase, error) {
	if err := bridgeCommon.CreateDirectoryIfNotExists(dbsPath); err != nil {
		return nil, fmt.Errorf("failed to create directory for relayer database: %w", err)
	}

	db := &BBoltDatabase{}
	if err := db.Init(filepath.Join(dbsPath, relayerDBFileName)); err != nil {
		return nil, err
	}

	return db, nil
}

// NewDedupStore returns the store selected by config. The bbolt driver shares db with the transfer states
func NewDedupStore(ctx context.Context, config core.DedupConfig, db *BBoltDatabase) (core.DedupStore, error) {
	switch config.Driver {
	case core.DedupDriverBBolt, "":
		return db, nil
	case core.DedupDriverRedis:
		store, err := NewRedisDedupStore(ctx, config)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unknown dedup driver: %q", config.Driver)
	}
}
