package clirelayer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/relayer_manager"
	"github.com/spf13/cobra"
)

var initParamsData = &initParams{}

func GetRunRelayerCommand() *cobra.Command {
	runRelayerCmd := &cobra.Command{
		Use:     "run-relayer",
		Short:   "runs relayer component",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	initParamsData.setFlags(runRelayerCmd)

	return runRelayerCmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return initParamsData.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := common.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	config, err := relayer_manager.LoadConfig(initParamsData.config, initParamsData.envFile)
	if err != nil {
		outputter.SetError(err)

		return
	}

	logger, err := common.NewLogger(config.Logger)
	if err != nil {
		outputter.SetError(err)

		return
	}

	ctx, cancelCtx := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelCtx()

	relayerManager, err := relayer_manager.NewRelayerManager(ctx, config, logger)
	if err != nil {
		logger.Error("relayer manager creation failed", "err", err)
		outputter.SetError(fmt.Errorf("failed to create relayer manager: %w", err))

		return
	}

	if err := relayerManager.Start(); err != nil {
		logger.Error("relayer manager start failed", "err", err)
		outputter.SetError(err)

		_ = relayerManager.Stop()

		return
	}

	<-ctx.Done()

	if err := relayerManager.Stop(); err != nil {
		logger.Error("error while stopping relayer manager", "err", err)
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(&CmdResult{config: initParamsData.config})
}
