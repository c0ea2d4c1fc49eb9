package databaseaccess

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	transferStatesBucket   = []byte("TransferStates")
	transferIDIndexBucket  = []byte("TransferIDIndex")
	dedupBucket            = []byte("Dedup")
	processedHeightsBucket = []byte("ProcessedHeights")
	metaBucket             = []byte("Meta")

	instanceIDKey = []byte("instanceID")
)

const (
	dedupFlagSeen    byte = 0
	dedupFlagSettled byte = 1
)

type BBoltDatabase struct {
	db *bbolt.DB
}

var _ core.Database = (*BBoltDatabase)(nil)

func (bd *BBoltDatabase) Init(filePath string) error {
	db, err := bbolt.Open(filePath, 0660, nil)
	if err != nil {
		return fmt.Errorf("could not open db: %w", err)
	}

	bd.db = db

	return db.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{
			transferStatesBucket, transferIDIndexBucket, dedupBucket, processedHeightsBucket, metaBucket,
		} {
			if _, err := tx.CreateBucketIfNotExists(bn); err != nil {
				return fmt.Errorf("could not create bucket: %s, err: %w", string(bn), err)
			}
		}

		return nil
	})
}

func (bd *BBoltDatabase) Close() error {
	return bd.db.Close()
}

func (bd *BBoltDatabase) GetTransferState(dedupKey string) (result *bridgeCommon.TransferState, err error) {
	err = bd.db.View(func(tx *bbolt.Tx) error {
		result, err = getTransferState(tx, []byte(dedupKey))

		return err
	})

	return result, err
}

func (bd *BBoltDatabase) GetTransferStatesByTransferID(
	transferID common.Hash,
) ([]*bridgeCommon.TransferState, error) {
	var result []*bridgeCommon.TransferState

	err := bd.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(transferIDIndexBucket).Cursor()
		prefix := transferID.Bytes()

		for k, _ := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = cursor.Next() {
			state, err := getTransferState(tx, k[len(prefix):])
			if err != nil {
				return err
			}

			if state != nil {
				result = append(result, state)
			}
		}

		return nil
	})

	return result, err
}

func (bd *BBoltDatabase) GetStuckTransferStates() ([]*bridgeCommon.TransferState, error) {
	var result []*bridgeCommon.TransferState

	err := bd.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(transferStatesBucket).ForEach(func(k, v []byte) error {
			var state bridgeCommon.TransferState

			if err := json.Unmarshal(v, &state); err != nil {
				return fmt.Errorf("could not unmarshal transfer state %s: %w", string(k), err)
			}

			if state.Status == bridgeCommon.TransferStatusStuck {
				result = append(result, &state)
			}

			return nil
		})
	})

	return result, err
}

func (bd *BBoltDatabase) SaveTransferState(state *bridgeCommon.TransferState) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		bytes, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("could not marshal transfer state: %w", err)
		}

		if err := tx.Bucket(transferStatesBucket).Put(state.ToDBKey(), bytes); err != nil {
			return fmt.Errorf("transfer state write error: %w", err)
		}

		indexKey := append(state.Event.TransferID.Bytes(), state.ToDBKey()...)
		if err := tx.Bucket(transferIDIndexBucket).Put(indexKey, []byte{}); err != nil {
			return fmt.Errorf("transfer id index write error: %w", err)
		}

		return nil
	})
}

func (bd *BBoltDatabase) GetProcessedHeight(chainID uint64) (height uint64, exists bool, err error) {
	err = bd.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(processedHeightsBucket).Get(uint64ToBytes(chainID)); len(data) == 8 {
			height, exists = binary.BigEndian.Uint64(data), true
		}

		return nil
	})

	return height, exists, err
}

// SetProcessedHeight never moves the stored height backwards
func (bd *BBoltDatabase) SetProcessedHeight(chainID uint64, height uint64) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(processedHeightsBucket)
		key := uint64ToBytes(chainID)

		if data := bucket.Get(key); len(data) == 8 && binary.BigEndian.Uint64(data) >= height {
			return nil
		}

		if err := bucket.Put(key, uint64ToBytes(height)); err != nil {
			return fmt.Errorf("processed height write error: %w", err)
		}

		return nil
	})
}

// MarkSeen stores the key together with its owner. A settled key reports no owner
func (bd *BBoltDatabase) MarkSeen(
	_ context.Context, key string, owner string,
) (alreadySeen bool, claimedBy string, err error) {
	err = bd.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(dedupBucket)

		if data := bucket.Get([]byte(key)); data != nil {
			alreadySeen = true

			if len(data) > 0 && data[0] == dedupFlagSeen {
				claimedBy = string(data[1:])
			}

			return nil
		}

		claimedBy = owner

		return bucket.Put([]byte(key), append([]byte{dedupFlagSeen}, owner...))
	})

	return alreadySeen, claimedBy, err
}

func (bd *BBoltDatabase) MarkSettled(_ context.Context, key string, settlementTxHash common.Hash) error {
	return bd.db.Update(func(tx *bbolt.Tx) error {
		value := append([]byte{dedupFlagSettled}, settlementTxHash.Bytes()...)

		if err := tx.Bucket(dedupBucket).Put([]byte(key), value); err != nil {
			return fmt.Errorf("dedup entry write error: %w", err)
		}

		return nil
	})
}

func (bd *BBoltDatabase) IsSettled(_ context.Context, key string) (settled bool, txHash common.Hash, err error) {
	err = bd.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(dedupBucket).Get([]byte(key))
		if len(data) == 1+common.HashLength && data[0] == dedupFlagSettled {
			settled, txHash = true, common.BytesToHash(data[1:])
		}

		return nil
	})

	return settled, txHash, err
}

// GetOrCreateInstanceID returns the relayer identity bound to this database. It is generated
// on first use and survives restarts so dedup claims made before a restart stay owned
func (bd *BBoltDatabase) GetOrCreateInstanceID() (instanceID string, err error) {
	err = bd.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(metaBucket)

		if data := bucket.Get(instanceIDKey); len(data) > 0 {
			instanceID = string(data)

			return nil
		}

		instanceID = uuid.NewString()

		return bucket.Put(instanceIDKey, []byte(instanceID))
	})

	return instanceID, err
}

func getTransferState(tx *bbolt.Tx, key []byte) (*bridgeCommon.TransferState, error) {
	data := tx.Bucket(transferStatesBucket).Get(key)
	if data == nil {
		return nil, nil
	}

	var state bridgeCommon.TransferState

	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("could not unmarshal transfer state %s: %w", string(key), err)
	}

	return &state, nil
}

func uint64ToBytes(value uint64) []byte {
	result := make([]byte, 8)
	binary.BigEndian.PutUint64(result, value)

	return result
}
