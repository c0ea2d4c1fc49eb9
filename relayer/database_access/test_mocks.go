package databaseaccess

import (
	"context"

	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type DedupStoreMock struct {
	mock.Mock
}

var _ core.DedupStore = (*DedupStoreMock)(nil)

func (m *DedupStoreMock) MarkSeen(ctx context.Context, key string, owner string) (bool, string, error) {
	args := m.Called(ctx, key, owner)

	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *DedupStoreMock) MarkSettled(ctx context.Context, key string, settlementTxHash common.Hash) error {
	return m.Called(ctx, key, settlementTxHash).Error(0)
}

func (m *DedupStoreMock) IsSettled(ctx context.Context, key string) (bool, common.Hash, error) {
	args := m.Called(ctx, key)

	return args.Bool(0), args.Get(1).(common.Hash), args.Error(2) //nolint:forcetypeassert
}

func (m *DedupStoreMock) Close() error {
	return nil
}
