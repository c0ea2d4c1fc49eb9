package relayer

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/eth"
	"github.com/CultureBridge/bridge-relayer/relayer/chains"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	databaseaccess "github.com/CultureBridge/bridge-relayer/relayer/database_access"
	"github.com/CultureBridge/bridge-relayer/relayer/finality"
	"github.com/CultureBridge/bridge-relayer/relayer/settlement"
	"github.com/CultureBridge/bridge-relayer/relayer/signer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	chainA = uint64(11155111)
	chainB = uint64(80002)

	testKey1 = "3b1a4e4c2a7b8e9f0d1c2b3a4f5e6d7c8b9a0f1e2d3c4b5a69788796a5b4c3d2"
	testKey2 = "0x7c9e2f1a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6"
	testKey3 = "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

	testInstanceID  = "relayer-local"
	otherInstanceID = "relayer-other"
)

var (
	settlementTxHash = common.HexToHash("0x5e771e")
	successReceipt   = &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(900)}
	fastRetry        = bridgeCommon.BackoffConfig{Initial: time.Millisecond, Max: 2 * time.Millisecond}
)

type testEnv struct {
	dbPath       string
	db           *databaseaccess.BBoltDatabase
	clientA      *eth.ChainClientMock
	bridgeA      *eth.BridgeSmartContractMock
	bridgeB      *eth.BridgeSmartContractMock
	keySet       *signer.RelayerKeySet
	notifier     *core.StuckNotifierMock
	orchestrator *RelayOrchestrator
	closeOnce    sync.Once
}

// newTestEnv wires real pipeline stages around mocked ledgers. dbPath is reused to simulate a restart
func newTestEnv(t *testing.T, dbPath string, confirmations uint64) *testEnv {
	t.Helper()

	db, err := databaseaccess.NewDatabase(dbPath)
	require.NoError(t, err)

	env := &testEnv{
		dbPath:   dbPath,
		db:       db,
		clientA:  &eth.ChainClientMock{},
		bridgeA:  &eth.BridgeSmartContractMock{},
		bridgeB:  &eth.BridgeSmartContractMock{},
		notifier: &core.StuckNotifierMock{},
	}

	t.Cleanup(env.close)

	registry, err := chains.NewChainEndpointRegistryFromEndpoints([]*core.ChainEndpoint{
		{
			Config: core.ChainConfig{ChainID: chainA, RequiredConfirmations: confirmations},
			Client: env.clientA,
			Bridge: env.bridgeA,
		},
		{
			Config: core.ChainConfig{ChainID: chainB},
			Client: &eth.ChainClientMock{},
			Bridge: env.bridgeB,
		},
	})
	require.NoError(t, err)

	env.keySet, err = signer.NewRelayerKeySet([]string{testKey1, testKey2, testKey3})
	require.NoError(t, err)

	logger := hclog.NewNullLogger()

	env.orchestrator = NewRelayOrchestrator(
		RelayOrchestratorConfig{
			InstanceID:         testInstanceID,
			RequiredSignatures: map[uint64]uint64{chainA: 3, chainB: 3},
			StageRetry:         fastRetry,
		},
		db, db,
		finality.NewConfirmationGate(registry, core.ConfirmationConfig{PollInterval: time.Millisecond}, logger),
		finality.NewTransferStateValidator(registry),
		signer.NewSignatureQuorumCollector(env.keySet, logger),
		settlement.NewSettlementExecutor(registry, core.SettlementConfig{
			GasLimitMultiplier: 1.2,
			MaxAttempts:        3,
			Backoff:            fastRetry,
			ReceiptTimeout:     time.Second,
		}, logger),
		env.notifier,
		logger,
	)

	return env
}

func (e *testEnv) close() {
	e.closeOnce.Do(func() {
		_ = e.db.Close()
	})
}

func (e *testEnv) requireState(t *testing.T, event *bridgeCommon.TransferEvent) *bridgeCommon.TransferState {
	t.Helper()

	state, err := e.db.GetTransferState(event.DedupKey())
	require.NoError(t, err)
	require.NotNil(t, state)

	return state
}

func (e *testEnv) requireProcessedHeight(t *testing.T, expected uint64) {
	t.Helper()

	height, exists, err := e.db.GetProcessedHeight(chainA)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, expected, height)
}

func newTestDBPath(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "relayer-orchestrator")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return filepath.Join(dir, "db")
}

func newLockedEvent(txByte byte, height uint64) *bridgeCommon.TransferEvent {
	return &bridgeCommon.TransferEvent{
		Kind:          bridgeCommon.TransferEventKindLocked,
		SourceChainID: chainA,
		TargetChainID: chainB,
		Beneficiary:   common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		Amount:        big.NewInt(10),
		SourceTxHash:  common.BytesToHash([]byte{txByte}),
		BlockHeight:   height,
		TransferID:    common.BytesToHash([]byte{0x70, txByte}),
	}
}

// isQuorumSignedMint accepts only a mint of 10 units carrying valid signatures of every relayer
func isQuorumSignedMint(t *testing.T, event *bridgeCommon.TransferEvent, keySet *signer.RelayerKeySet) interface{} {
	t.Helper()

	messageHash, err := signer.MessageHash(core.NewTransferMessage(event))
	require.NoError(t, err)

	return mock.MatchedBy(func(call eth.SettlementCall) bool {
		method, _ := call.Method()
		if method != "mintTokens" || call.Amount.Cmp(big.NewInt(10)) != 0 || call.SourceChainID != chainA ||
			call.TransferID != event.TransferID || call.Beneficiary != event.Beneficiary {
			return false
		}

		identities := keySet.Identities()
		if len(call.Signatures) != len(identities)*crypto.SignatureLength {
			return false
		}

		for i, identity := range identities {
			recovered, err := signer.RecoverSigner(
				messageHash, call.Signatures[i*crypto.SignatureLength:(i+1)*crypto.SignatureLength])
			if err != nil || recovered != identity {
				return false
			}
		}

		return true
	})
}

func (e *testEnv) expectOpenTransfer(event *bridgeCommon.TransferEvent, head uint64) {
	e.clientA.On("BlockNumber", mock.Anything).Return(head, nil)
	e.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
		Return(bridgeCommon.OnChainTransferStatusUnknown, nil)
	e.bridgeA.On("GetTransferStatus", mock.Anything, event.TransferID).
		Return(bridgeCommon.OnChainTransferStatusLocked, nil)
}

func TestRelayOrchestrator_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("lock with all relayers present mints once on target", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 12)
		event := newLockedEvent(1, 80)
		isExpectedCall := isQuorumSignedMint(t, event, env.keySet)

		env.expectOpenTransfer(event, 100)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, isExpectedCall).Return(uint64(100_000), nil).Once()
		env.bridgeB.On("SendSettlement", mock.Anything, isExpectedCall, uint64(120_000)).
			Return(settlementTxHash, nil).Once()
		env.bridgeB.On("WaitForReceipt", mock.Anything, settlementTxHash).Return(successReceipt, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		state := env.requireState(t, event)
		require.Equal(t, bridgeCommon.TransferStatusSettled, state.Status)
		require.Equal(t, settlementTxHash, state.SettlementTxHash)
		require.Equal(t, uint64(1), state.Attempts)

		settled, txHash, err := env.db.IsSettled(ctx, event.DedupKey())
		require.NoError(t, err)
		require.True(t, settled)
		require.Equal(t, settlementTxHash, txHash)

		env.requireProcessedHeight(t, 80)
		env.bridgeB.AssertExpectations(t)
	})

	t.Run("replay after restart does not mint again", func(t *testing.T) {
		dbPath := newTestDBPath(t)
		env := newTestEnv(t, dbPath, 0)
		event := newLockedEvent(2, 80)

		env.expectOpenTransfer(event, 100)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(100_000), nil).Once()
		env.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, uint64(120_000)).
			Return(settlementTxHash, nil).Once()
		env.bridgeB.On("WaitForReceipt", mock.Anything, settlementTxHash).Return(successReceipt, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))
		env.close()

		restarted := newTestEnv(t, dbPath, 0)

		require.NoError(t, restarted.orchestrator.process(ctx, event))
		require.NoError(t, restarted.orchestrator.process(ctx, event))

		require.Equal(t, bridgeCommon.TransferStatusSettled, restarted.requireState(t, event).Status)
		restarted.bridgeB.AssertNotCalled(t, "SendSettlement", mock.Anything, mock.Anything, mock.Anything)
		restarted.bridgeB.AssertNotCalled(t, "EstimateSettlementGas", mock.Anything, mock.Anything)
	})

	t.Run("replay with wiped store is suppressed by target status", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(3, 80)

		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusMinted, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		require.Equal(t, bridgeCommon.TransferStatusSettled, env.requireState(t, event).Status)

		settled, _, err := env.db.IsSettled(ctx, event.DedupKey())
		require.NoError(t, err)
		require.True(t, settled)

		env.bridgeB.AssertNotCalled(t, "SendSettlement", mock.Anything, mock.Anything, mock.Anything)
		env.bridgeA.AssertNotCalled(t, "GetTransferStatus", mock.Anything, mock.Anything)
		env.requireProcessedHeight(t, 80)
	})

	t.Run("contract rejection marks rejected without retry", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(4, 80)

		env.expectOpenTransfer(event, 100)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).
			Return(uint64(0), errors.New("execution reverted: TransferLimitExceeded")).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		state := env.requireState(t, event)
		require.Equal(t, bridgeCommon.TransferStatusRejected, state.Status)
		require.Contains(t, state.FailureReason, "TransferLimitExceeded")

		env.bridgeB.AssertNumberOfCalls(t, "EstimateSettlementGas", 1)
		env.bridgeB.AssertNotCalled(t, "SendSettlement", mock.Anything, mock.Anything, mock.Anything)
		env.notifier.AssertNotCalled(t, "NotifyStuck", mock.Anything, mock.Anything)
		env.requireProcessedHeight(t, 80)
	})

	t.Run("submission failing three times is stuck and listed", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(5, 80)

		env.expectOpenTransfer(event, 100)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).
			Return(uint64(0), errors.New("connection refused")).Times(3)
		env.notifier.On("NotifyStuck", mock.Anything, mock.MatchedBy(func(state *bridgeCommon.TransferState) bool {
			return state.Status == bridgeCommon.TransferStatusStuck && state.DedupKey == event.DedupKey()
		})).Return(nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		stuck, err := env.orchestrator.GetStuckTransfers()
		require.NoError(t, err)
		require.Len(t, stuck, 1)
		require.Equal(t, event.DedupKey(), stuck[0].DedupKey)
		require.Contains(t, stuck[0].FailureReason, "submission failed after 3 attempts")

		env.bridgeB.AssertNumberOfCalls(t, "EstimateSettlementGas", 3)
		env.bridgeB.AssertNotCalled(t, "SendSettlement", mock.Anything, mock.Anything, mock.Anything)
		env.notifier.AssertExpectations(t)
		env.requireProcessedHeight(t, 80)
	})

	t.Run("validation waits for twelve confirmations", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 12)
		event := newLockedEvent(6, 200)

		var (
			lock        sync.Mutex
			heights     = []uint64{195, 200, 205, 211, 212}
			calls       int
			lastHeight  uint64
			validatedAt uint64
		)

		env.clientA.On("BlockNumber", mock.Anything).Return(func(context.Context) uint64 {
			lock.Lock()
			defer lock.Unlock()

			lastHeight = heights[min(calls, len(heights)-1)]
			calls++

			return lastHeight
		}, nil)
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil)
		env.bridgeA.On("GetTransferStatus", mock.Anything, event.TransferID).
			Run(func(mock.Arguments) {
				lock.Lock()
				defer lock.Unlock()

				validatedAt = lastHeight
			}).
			Return(bridgeCommon.OnChainTransferStatusBurned, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		require.Equal(t, uint64(212), validatedAt)
		require.Equal(t, 5, calls)
		require.Equal(t, bridgeCommon.TransferStatusRejected, env.requireState(t, event).Status)
	})
}

func TestRelayOrchestrator_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("status mismatch on source is rejected before signing", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(10, 50)

		env.clientA.On("BlockNumber", mock.Anything).Return(uint64(60), nil)
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil)
		env.bridgeA.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		state := env.requireState(t, event)
		require.Equal(t, bridgeCommon.TransferStatusRejected, state.Status)
		require.Contains(t, state.FailureReason, "expected Locked")

		require.NoError(t, env.orchestrator.process(ctx, event))
		env.bridgeA.AssertNumberOfCalls(t, "GetTransferStatus", 1)
		env.bridgeB.AssertNotCalled(t, "EstimateSettlementGas", mock.Anything, mock.Anything)
	})

	t.Run("transient rpc errors are retried", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(11, 50)

		env.clientA.On("BlockNumber", mock.Anything).Return(uint64(60), nil)
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, errors.New("connection reset")).Once()
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil)
		env.bridgeA.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, errors.New("503 service unavailable")).Twice()
		env.bridgeA.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusLocked, nil)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil).Once()
		env.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, uint64(60_000)).
			Return(settlementTxHash, nil).Once()
		env.bridgeB.On("WaitForReceipt", mock.Anything, settlementTxHash).Return(successReceipt, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		require.Equal(t, bridgeCommon.TransferStatusSettled, env.requireState(t, event).Status)
		env.bridgeA.AssertNumberOfCalls(t, "GetTransferStatus", 3)
	})

	t.Run("unknown target chain is rejected", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(12, 50)
		event.TargetChainID = 999

		require.NoError(t, env.orchestrator.process(ctx, event))

		state := env.requireState(t, event)
		require.Equal(t, bridgeCommon.TransferStatusRejected, state.Status)
		require.Contains(t, state.FailureReason, core.ErrChainNotConfigured.Error())
	})

	t.Run("settling found after restart is stuck unless settled on target", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		stuckEvent := newLockedEvent(13, 50)
		settledEvent := newLockedEvent(14, 51)

		for _, event := range []*bridgeCommon.TransferEvent{stuckEvent, settledEvent} {
			state := bridgeCommon.NewTransferState(*event)
			state.ToSettling()
			require.NoError(t, env.db.SaveTransferState(state))

			_, _, err := env.db.MarkSeen(ctx, event.DedupKey(), testInstanceID)
			require.NoError(t, err)
		}

		env.bridgeB.On("GetTransferStatus", mock.Anything, stuckEvent.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil).Once()
		env.bridgeB.On("GetTransferStatus", mock.Anything, settledEvent.TransferID).
			Return(bridgeCommon.OnChainTransferStatusMinted, nil).Once()
		env.notifier.On("NotifyStuck", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		require.NoError(t, env.orchestrator.process(ctx, stuckEvent))
		require.NoError(t, env.orchestrator.process(ctx, settledEvent))

		stuckState := env.requireState(t, stuckEvent)
		require.Equal(t, bridgeCommon.TransferStatusStuck, stuckState.Status)
		require.Equal(t, reasonOutcomeUnknown, stuckState.FailureReason)
		require.Equal(t, bridgeCommon.TransferStatusSettled, env.requireState(t, settledEvent).Status)

		env.bridgeB.AssertNotCalled(t, "EstimateSettlementGas", mock.Anything, mock.Anything)
		env.notifier.AssertExpectations(t)
		env.requireProcessedHeight(t, 51)
	})

	t.Run("shutdown before anything was sent resumes after restart", func(t *testing.T) {
		dbPath := newTestDBPath(t)
		env := newTestEnv(t, dbPath, 0)
		event := newLockedEvent(15, 50)
		cancelCtx, cancel := context.WithCancel(ctx)

		defer cancel()

		env.expectOpenTransfer(event, 60)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(uint64(0), errors.New("connection refused")).Once()

		require.ErrorIs(t, env.orchestrator.process(cancelCtx, event), context.Canceled)

		require.Equal(t, bridgeCommon.TransferStatusQuorumPending, env.requireState(t, event).Status)
		env.bridgeB.AssertNotCalled(t, "SendSettlement", mock.Anything, mock.Anything, mock.Anything)

		_, exists, err := env.db.GetProcessedHeight(chainA)
		require.NoError(t, err)
		require.False(t, exists)

		env.close()

		restarted := newTestEnv(t, dbPath, 0)

		restarted.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil)
		restarted.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil).Once()
		restarted.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, uint64(60_000)).
			Return(settlementTxHash, nil).Once()
		restarted.bridgeB.On("WaitForReceipt", mock.Anything, settlementTxHash).Return(successReceipt, nil).Once()

		require.NoError(t, restarted.orchestrator.process(ctx, event))

		require.Equal(t, bridgeCommon.TransferStatusSettled, restarted.requireState(t, event).Status)
		restarted.notifier.AssertNotCalled(t, "NotifyStuck", mock.Anything, mock.Anything)
		restarted.requireProcessedHeight(t, 50)
	})

	t.Run("shutdown after send leaves transfer settling", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(20, 50)
		cancelCtx, cancel := context.WithCancel(ctx)

		defer cancel()

		env.expectOpenTransfer(event, 60)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil).Once()
		env.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(common.Hash{}, context.Canceled).Once()

		require.ErrorIs(t, env.orchestrator.process(cancelCtx, event), context.Canceled)

		require.Equal(t, bridgeCommon.TransferStatusSettling, env.requireState(t, event).Status)
	})

	t.Run("ambiguous send error does not mint twice", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(21, 50)

		env.clientA.On("BlockNumber", mock.Anything).Return(uint64(60), nil)
		env.bridgeA.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusLocked, nil)
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil).Once()
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusMinted, nil)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil)
		env.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, mock.Anything).
			Return(common.Hash{}, errors.New("write tcp: connection reset by peer")).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		require.Equal(t, bridgeCommon.TransferStatusSettled, env.requireState(t, event).Status)
		env.bridgeB.AssertNumberOfCalls(t, "SendSettlement", 1)
		env.notifier.AssertNotCalled(t, "NotifyStuck", mock.Anything, mock.Anything)
	})

	t.Run("reverted duplicate of a minted transfer is settled", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(22, 50)

		env.clientA.On("BlockNumber", mock.Anything).Return(uint64(60), nil)
		env.bridgeA.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusLocked, nil)
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil).Once()
		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusMinted, nil)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil).Once()
		env.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, mock.Anything).
			Return(settlementTxHash, nil).Once()
		env.bridgeB.On("WaitForReceipt", mock.Anything, settlementTxHash).
			Return(&types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(901)}, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		state := env.requireState(t, event)
		require.Equal(t, bridgeCommon.TransferStatusSettled, state.Status)
		require.Empty(t, state.FailureReason)
	})

	t.Run("resumes a transfer interrupted before settling", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(16, 50)

		state := bridgeCommon.NewTransferState(*event)
		state.ToDeduped()
		state.ToConfirmationPending()
		state.ToValidated()
		require.NoError(t, env.db.SaveTransferState(state))

		_, _, err := env.db.MarkSeen(ctx, event.DedupKey(), testInstanceID)
		require.NoError(t, err)

		env.bridgeB.On("GetTransferStatus", mock.Anything, event.TransferID).
			Return(bridgeCommon.OnChainTransferStatusUnknown, nil).Once()
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil).Once()
		env.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, uint64(60_000)).
			Return(settlementTxHash, nil).Once()
		env.bridgeB.On("WaitForReceipt", mock.Anything, settlementTxHash).Return(successReceipt, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		require.Equal(t, bridgeCommon.TransferStatusSettled, env.requireState(t, event).Status)
		env.clientA.AssertNotCalled(t, "BlockNumber", mock.Anything)
		env.bridgeA.AssertNotCalled(t, "GetTransferStatus", mock.Anything, mock.Anything)
	})

	t.Run("resumes own claim interrupted right after dedup", func(t *testing.T) {
		env := newTestEnv(t, newTestDBPath(t), 0)
		event := newLockedEvent(23, 50)

		require.NoError(t, env.db.SaveTransferState(bridgeCommon.NewTransferState(*event)))

		_, _, err := env.db.MarkSeen(ctx, event.DedupKey(), testInstanceID)
		require.NoError(t, err)

		env.expectOpenTransfer(event, 60)
		env.bridgeB.On("EstimateSettlementGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil).Once()
		env.bridgeB.On("SendSettlement", mock.Anything, mock.Anything, uint64(60_000)).
			Return(settlementTxHash, nil).Once()
		env.bridgeB.On("WaitForReceipt", mock.Anything, settlementTxHash).Return(successReceipt, nil).Once()

		require.NoError(t, env.orchestrator.process(ctx, event))

		require.Equal(t, bridgeCommon.TransferStatusSettled, env.requireState(t, event).Status)
	})

	t.Run("key claimed by another instance through shared dedup store", func(t *testing.T) {
		db, err := databaseaccess.NewDatabase(newTestDBPath(t))
		require.NoError(t, err)

		defer db.Close()

		dedupStore := &databaseaccess.DedupStoreMock{}
		validator := &core.TransferStateValidatorMock{}
		claimedEvent := newLockedEvent(17, 50)
		settledEvent := newLockedEvent(18, 51)

		dedupStore.On("MarkSeen", mock.Anything, claimedEvent.DedupKey(), testInstanceID).
			Return(true, otherInstanceID, nil)
		dedupStore.On("MarkSeen", mock.Anything, settledEvent.DedupKey(), testInstanceID).Return(true, "", nil)
		dedupStore.On("IsSettled", mock.Anything, claimedEvent.DedupKey()).Return(false, common.Hash{}, nil).Twice()
		dedupStore.On("IsSettled", mock.Anything, settledEvent.DedupKey()).Return(true, settlementTxHash, nil).Once()
		dedupStore.On("MarkSettled", mock.Anything, settledEvent.DedupKey(), settlementTxHash).Return(nil).Once()

		executor := &core.SettlementExecutorMock{}
		orchestrator := NewRelayOrchestrator(
			RelayOrchestratorConfig{InstanceID: testInstanceID, StageRetry: fastRetry},
			db, dedupStore, &core.ConfirmationGateMock{}, validator, &core.SignatureCollectorMock{},
			executor, &core.StuckNotifierMock{}, hclog.NewNullLogger())

		// the replay finds a local record and must still leave the transfer to its owner
		require.NoError(t, orchestrator.process(ctx, claimedEvent))
		require.NoError(t, orchestrator.process(ctx, claimedEvent))
		require.NoError(t, orchestrator.process(ctx, settledEvent))

		claimed, err := db.GetTransferState(claimedEvent.DedupKey())
		require.NoError(t, err)
		require.Equal(t, bridgeCommon.TransferStatusObserved, claimed.Status)

		settled, err := db.GetTransferState(settledEvent.DedupKey())
		require.NoError(t, err)
		require.Equal(t, bridgeCommon.TransferStatusSettled, settled.Status)
		require.Equal(t, settlementTxHash, settled.SettlementTxHash)

		dedupStore.AssertExpectations(t)
		dedupStore.AssertNumberOfCalls(t, "IsSettled", 3)
		validator.AssertNotCalled(t, "IsSettledOnTarget", mock.Anything, mock.Anything)
		validator.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
		executor.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bundle below quorum is never settled", func(t *testing.T) {
		db, err := databaseaccess.NewDatabase(newTestDBPath(t))
		require.NoError(t, err)

		defer db.Close()

		validator := &core.TransferStateValidatorMock{}
		gate := &core.ConfirmationGateMock{}
		collector := &core.SignatureCollectorMock{}
		executor := &core.SettlementExecutorMock{}
		event := newLockedEvent(19, 50)
		cancelCtx, cancel := context.WithCancel(ctx)

		defer cancel()

		validator.On("IsSettledOnTarget", mock.Anything, mock.Anything).Return(false, nil)
		validator.On("Validate", mock.Anything, mock.Anything).Return(nil)
		gate.On("WaitForDepth", mock.Anything, chainA, uint64(50)).Return(nil)
		collector.On("Collect", mock.Anything, core.NewTransferMessage(event), uint64(2)).
			Run(func(mock.Arguments) { cancel() }).
			Return(&core.SignatureBundle{Signers: []common.Address{common.HexToAddress("0x01")}}, nil).Once()

		orchestrator := NewRelayOrchestrator(RelayOrchestratorConfig{
			InstanceID:         testInstanceID,
			RequiredSignatures: map[uint64]uint64{chainB: 2},
			StageRetry:         fastRetry,
		}, db, db, gate, validator, collector, executor, &core.StuckNotifierMock{}, hclog.NewNullLogger())

		require.ErrorIs(t, orchestrator.process(cancelCtx, event), core.ErrInsufficientQuorum)

		state, err := db.GetTransferState(event.DedupKey())
		require.NoError(t, err)
		require.Equal(t, bridgeCommon.TransferStatusQuorumPending, state.Status)
		executor.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRelayOrchestrator_Start(t *testing.T) {
	db, err := databaseaccess.NewDatabase(newTestDBPath(t))
	require.NoError(t, err)

	defer db.Close()

	validator := &core.TransferStateValidatorMock{}
	gate := &core.ConfirmationGateMock{}
	validatedCh := make(chan uint64, 10)

	var (
		lock        sync.Mutex
		gateHeights []uint64
	)

	validator.On("IsSettledOnTarget", mock.Anything, mock.Anything).Return(false, nil)
	gate.On("WaitForDepth", mock.Anything, chainA, mock.Anything).Run(func(args mock.Arguments) {
		lock.Lock()
		defer lock.Unlock()

		gateHeights = append(gateHeights, args.Get(2).(uint64)) //nolint:forcetypeassert
	}).Return(nil)
	validator.On("Validate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		validatedCh <- args.Get(1).(*bridgeCommon.TransferEvent).BlockHeight //nolint:forcetypeassert
	}).Return(core.ErrTransferRejected)

	orchestrator := NewRelayOrchestrator(RelayOrchestratorConfig{
		InstanceID:         testInstanceID,
		RequiredSignatures: map[uint64]uint64{chainB: 1},
		StageRetry:         fastRetry,
	}, db, db, gate, validator, &core.SignatureCollectorMock{}, &core.SettlementExecutorMock{},
		&core.StuckNotifierMock{}, hclog.NewNullLogger())

	for i, height := range []uint64{10, 10, 11, 15} {
		orchestrator.Enqueue(newLockedEvent(byte(30+i), height))
	}

	// duplicate delivery of an already queued log
	orchestrator.Enqueue(newLockedEvent(30, 10))

	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)

		orchestrator.Start(ctx)
	}()

	validated := make([]uint64, 0, 4)

	for len(validated) < 4 {
		select {
		case height := <-validatedCh:
			validated = append(validated, height)
		case <-time.After(5 * time.Second):
			t.Fatalf("validated %d of 4 events", len(validated))
		}
	}

	require.Equal(t, []uint64{10, 10, 11, 15}, validated)

	require.Eventually(t, func() bool {
		height, _, err := db.GetProcessedHeight(chainA)

		return err == nil && height == 15
	}, 5*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("orchestrator did not stop")
	}

	lock.Lock()
	require.Equal(t, []uint64{10, 10, 11, 15}, gateHeights)
	lock.Unlock()

	validator.AssertNumberOfCalls(t, "Validate", 4)

	orchestrator.Enqueue(newLockedEvent(40, 20))
	require.Equal(t, 0, orchestrator.queue.Len())
}
