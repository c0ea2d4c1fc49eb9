package cli

import (
	"fmt"
	"os"

	"github.com/CultureBridge/bridge-relayer/common"
	clirelayer "github.com/CultureBridge/bridge-relayer/cli/relayer"
	cliversion "github.com/CultureBridge/bridge-relayer/cli/version"
	"github.com/spf13/cobra"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "culturebridge-relayer",
			Short: "cross-chain relay and settlement engine for the CultureBridge bridge contracts",
		},
	}

	rootCommand.baseCmd.PersistentFlags().Bool(common.JSONOutputFlag, false, "get all outputs in json format")

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		clirelayer.GetRunRelayerCommand(),
		cliversion.GetVersionCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
