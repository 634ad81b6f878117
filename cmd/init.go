package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/condfix/fix"
)

var forceInit bool

// initCmd: condfix init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initConfigurationFile(cfgFile, forceInit)
		if err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) (string, error) {
	if configurationPath == "" {
		configurationPath = fix.DefaultConfigFile
	}

	if !force {
		if _, err := os.Stat(configurationPath); err == nil {
			return "", fmt.Errorf("%s already exists", configurationPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	return configurationPath, fix.WriteConfig(configurationPath, fix.DefaultConfig())
}
