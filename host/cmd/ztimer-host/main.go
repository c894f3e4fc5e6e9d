package main

import (
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ztimer/board/config"
)

type rootParams struct {
	configFile string
	verbose    bool
}

var (
	params rootParams
	log    = logrus.New()
)

// RootCommand is the base command all subcommands are added to
var RootCommand = &cobra.Command{
	Use:          path.Base(os.Args[0]),
	Short:        "ztimer host tool",
	Long:         "Builds a clock tree from a board configuration and runs it on the host.",
	SilenceUsage: true,
}

func init() {
	// assigned here rather than in the literal: checkEnvironmentVariables
	// refers to RootCommand, which would form an initialization cycle
	RootCommand.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := checkEnvironmentVariables(cmd); err != nil {
			return err
		}
		if params.verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		return nil
	}

	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	RootCommand.PersistentFlags().StringVarP(&params.configFile, "config", "c", "", "board configuration file (YAML); built-in host tree if empty")
	RootCommand.PersistentFlags().BoolVarP(&params.verbose, "verbose", "v", false, "enable debug logging and clock debug output")
}

// loadConfig returns the configured board or the built-in default
func loadConfig() (*config.Config, error) {
	if params.configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFile(params.configFile)
}

func main() {
	if err := RootCommand.Execute(); err != nil {
		log.WithError(err).Error("ztimer-host failed")
		os.Exit(1)
	}
}
