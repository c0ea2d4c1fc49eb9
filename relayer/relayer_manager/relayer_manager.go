package relayer_manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/CultureBridge/bridge-relayer/api"
	apiCore "github.com/CultureBridge/bridge-relayer/api/core"
	apiUtils "github.com/CultureBridge/bridge-relayer/api/utils"
	ethtxhelper "github.com/CultureBridge/bridge-relayer/eth/txhelper"
	"github.com/CultureBridge/bridge-relayer/relayer/api/controllers"
	"github.com/CultureBridge/bridge-relayer/relayer/chains"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	databaseaccess "github.com/CultureBridge/bridge-relayer/relayer/database_access"
	"github.com/CultureBridge/bridge-relayer/relayer/finality"
	"github.com/CultureBridge/bridge-relayer/relayer/notifier"
	"github.com/CultureBridge/bridge-relayer/relayer/relayer"
	"github.com/CultureBridge/bridge-relayer/relayer/settlement"
	"github.com/CultureBridge/bridge-relayer/relayer/signer"
	"github.com/CultureBridge/bridge-relayer/relayer/watcher"
	"github.com/CultureBridge/bridge-relayer/telemetry"
	"github.com/hashicorp/go-hclog"
)

type RelayerManagerImpl struct {
	ctx          context.Context
	cancelCtx    context.CancelFunc
	config       *core.RelayerManagerConfiguration
	instanceID   string
	db           *databaseaccess.BBoltDatabase
	dedupStore   core.DedupStore
	registry     core.ChainEndpointRegistry
	orchestrator *relayer.RelayOrchestrator
	watchers     []core.EventWatcher
	closers      []io.Closer
	api          apiCore.API
	telemetry    *telemetry.Telemetry
	logger       hclog.Logger

	watchersWG     sync.WaitGroup
	orchestratorCh chan struct{}
}

var _ core.RelayerManager = (*RelayerManagerImpl)(nil)

// NewRelayerManager connects to every ledger and wires the relay pipeline. A key set that can not
// reach the quorum of some ledger is a fatal error
func NewRelayerManager(
	ctx context.Context, config *core.RelayerManagerConfiguration, logger hclog.Logger,
) (_ *RelayerManagerImpl, err error) {
	rm := &RelayerManagerImpl{
		config:         config,
		telemetry:      telemetry.NewTelemetry(config.Telemetry, logger.Named("telemetry")),
		logger:         logger,
		orchestratorCh: make(chan struct{}),
	}

	rm.ctx, rm.cancelCtx = context.WithCancel(ctx)

	defer func() {
		if err != nil {
			if closeErr := rm.dispose(); closeErr != nil {
				logger.Error("Failed to release resources", "err", closeErr)
			}
		}
	}()

	keySet, err := signer.NewRelayerKeySet(config.RelayerKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to load relayer keys: %w", err)
	}

	submitterKey := config.Settlement.SubmitterPrivateKey
	if submitterKey == "" {
		submitterKey = config.RelayerKeys[0]
	}

	submitter, err := ethtxhelper.NewEthTxWallet(submitterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitter key: %w", err)
	}

	rm.db, err = databaseaccess.NewDatabase(config.DbsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open relayer database: %w", err)
	}

	// the id outlives restarts so keys claimed before a crash are resumed by this instance
	rm.instanceID, err = rm.db.GetOrCreateInstanceID()
	if err != nil {
		return nil, err
	}

	dedupStore, err := databaseaccess.NewDedupStore(rm.ctx, config.Dedup, rm.db)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup store: %w", err)
	}

	rm.dedupStore = dedupStore

	registry, err := chains.NewChainEndpointRegistry(
		rm.ctx, config.Chains, submitter, config.Settlement.ReceiptPollInterval, logger.Named("chains"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chains: %w", err)
	}

	rm.registry = registry

	collector := signer.NewSignatureQuorumCollector(keySet, logger.Named("signer"))

	requiredSignatures, err := resolveRequiredSignatures(rm.ctx, rm.registry, config.RequiredSignatures, collector)
	if err != nil {
		return nil, err
	}

	stuckNotifier, err := rm.createStuckNotifier()
	if err != nil {
		return nil, err
	}

	rm.orchestrator = relayer.NewRelayOrchestrator(
		relayer.RelayOrchestratorConfig{
			InstanceID:         rm.instanceID,
			RequiredSignatures: requiredSignatures,
			StageRetry:         config.StageRetry,
		},
		rm.db,
		rm.dedupStore,
		finality.NewConfirmationGate(rm.registry, config.Confirmation, logger.Named("confirmation")),
		finality.NewTransferStateValidator(rm.registry),
		collector,
		settlement.NewSettlementExecutor(rm.registry, config.Settlement, logger.Named("settlement")),
		stuckNotifier,
		logger.Named("orchestrator"),
	)

	for _, chainID := range rm.registry.ChainIDs() {
		endpoint, err := rm.registry.Get(chainID)
		if err != nil {
			return nil, err
		}

		w, err := watcher.NewEventWatcher(
			endpoint.Config, endpoint.Client, rm.db, rm.orchestrator, config.Watcher,
			logger.Named("WATCHER_"+strings.ToUpper(endpoint.Config.DisplayName())))
		if err != nil {
			return nil, fmt.Errorf("failed to create watcher for chain %d: %w", chainID, err)
		}

		rm.watchers = append(rm.watchers, w)
	}

	if config.APIConfig.IsEnabled() {
		apiLogger, err := apiUtils.NewAPILogger(config.Logger)
		if err != nil {
			return nil, err
		}

		rm.api = api.NewAPI(rm.ctx, config.APIConfig, []apiCore.APIController{
			controllers.NewTransferStateController(rm.orchestrator, apiLogger.Named("transfer_controller")),
		}, apiLogger)
	}

	return rm, nil
}

func (rm *RelayerManagerImpl) Start() error {
	rm.logger.Debug("Starting RelayerManager", "instance", rm.instanceID)

	go func() {
		defer close(rm.orchestratorCh)

		rm.orchestrator.Start(rm.ctx)
	}()

	if err := rm.telemetry.Start(); err != nil {
		return fmt.Errorf("failed to start telemetry: %w", err)
	}

	for _, w := range rm.watchers {
		rm.watchersWG.Add(1)

		go func(w core.EventWatcher) {
			defer rm.watchersWG.Done()

			if err := w.Start(rm.ctx); err != nil {
				rm.logger.Error("Watcher stopped with error", "err", err)
			}
		}(w)
	}

	if rm.api != nil {
		go rm.api.Start()
	}

	rm.logger.Info("RelayerManager started", "instance", rm.instanceID, "chains", rm.registry.ChainIDs())

	return nil
}

// Stop stops accepting events and waits for the transfer in flight for at most ShutdownGracePeriod.
// Queued events are dropped, the watchers re-derive them from logs on the next start
func (rm *RelayerManagerImpl) Stop() error {
	rm.logger.Info("Stopping RelayerManager")

	rm.cancelCtx()
	rm.orchestrator.Stop()
	rm.watchersWG.Wait()

	select {
	case <-rm.orchestratorCh:
	case <-time.After(rm.config.ShutdownGracePeriod):
		rm.logger.Warn("In-flight transfer did not finish within the grace period",
			"gracePeriod", rm.config.ShutdownGracePeriod)
	}

	if err := rm.dispose(); err != nil {
		return fmt.Errorf("errors while stopping relayer manager: %w", err)
	}

	rm.logger.Info("RelayerManager stopped")

	return nil
}

func (rm *RelayerManagerImpl) createStuckNotifier() (core.StuckNotifier, error) {
	stuckNotifier := notifier.MultiStuckNotifier{
		notifier.NewLogStuckNotifier(rm.logger.Named("stuck_notifier")),
	}

	if len(rm.config.StuckNotifier.KafkaBrokers) > 0 {
		kafkaNotifier, err := notifier.NewKafkaStuckNotifier(
			rm.config.StuckNotifier, rm.instanceID, rm.logger.Named("kafka_notifier"))
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka notifier: %w", err)
		}

		rm.closers = append(rm.closers, kafkaNotifier)
		stuckNotifier = append(stuckNotifier, kafkaNotifier)
	}

	return stuckNotifier, nil
}

func (rm *RelayerManagerImpl) dispose() error {
	rm.cancelCtx()

	var errs []error

	if rm.api != nil {
		if err := rm.api.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("failed to dispose api: %w", err))
		}
	}

	for _, closer := range rm.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close notifier: %w", err))
		}
	}

	if rm.registry != nil {
		if err := rm.registry.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close chain endpoints: %w", err))
		}
	}

	// the bbolt dedup store is the database itself and is closed below
	if rm.dedupStore != nil && rm.dedupStore != core.DedupStore(rm.db) {
		if err := rm.dedupStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close dedup store: %w", err))
		}
	}

	if rm.db != nil {
		if err := rm.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close relayer database: %w", err))
		}
	}

	if err := rm.telemetry.Close(context.Background()); err != nil {
		errs = append(errs, fmt.Errorf("failed to close telemetry: %w", err))
	}

	return errors.Join(errs...)
}

// resolveRequiredSignatures reads the quorum of every bridge unless it is configured and checks
// that this process holds enough relayer identities to reach it
func resolveRequiredSignatures(
	ctx context.Context, registry core.ChainEndpointRegistry, configured uint64, collector *signer.SignatureQuorumCollectorImpl,
) (map[uint64]uint64, error) {
	result := make(map[uint64]uint64, len(registry.ChainIDs()))

	for _, chainID := range registry.ChainIDs() {
		required := configured

		if required == 0 {
			endpoint, err := registry.Get(chainID)
			if err != nil {
				return nil, err
			}

			required, err = endpoint.Bridge.GetRequiredSignatures(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to read required signatures on chain %d: %w", chainID, err)
			}
		}

		if err := collector.CheckQuorum(required); err != nil {
			return nil, fmt.Errorf("chain %d: %w", chainID, err)
		}

		result[chainID] = required
	}

	return result, nil
}
