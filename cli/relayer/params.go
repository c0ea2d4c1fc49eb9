package clirelayer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	configFlag  = "config"
	envFileFlag = "env-file"

	configFlagDesc  = "path to config json file (defaults to relayer_config.json next to the executable)"
	envFileFlagDesc = "path to .env file with RELAYER_ prefixed overrides"

	defaultConfigFileName = "relayer_config.json"
)

type initParams struct {
	config  string
	envFile string
}

func (ip *initParams) validateFlags() error {
	if ip.config == "" {
		ex, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to resolve executable path: %w", err)
		}

		ip.config = filepath.Join(filepath.Dir(ex), defaultConfigFileName)
	}

	if _, err := os.Stat(ip.config); err != nil {
		return fmt.Errorf("invalid --%s flag: %w", configFlag, err)
	}

	return nil
}

func (ip *initParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&ip.config,
		configFlag,
		"",
		configFlagDesc,
	)
	cmd.Flags().StringVar(
		&ip.envFile,
		envFileFlag,
		"",
		envFileFlagDesc,
	)
}
