package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "interviewai",
		Short:         "Interview questions generated from a resume",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file (default $CONFIG_FILE)")

	root.AddCommand(
		newServeCmd(&configPath),
		newGenerateCmd(&configPath),
		newCacheCmd(&configPath),
	)
	return root
}
