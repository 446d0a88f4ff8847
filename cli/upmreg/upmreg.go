package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/upmreg/internal/cli"
)

var (
	configPath string
	verbose    bool
	logLevel   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upmreg",
		Short: "A static Unity package registry builder",
		Long: `upmreg builds a read-only npm-style registry for the Unity Package Manager:
- build: turn directories of package tarballs into registry JSON and an index page
- pack: create npm-layout tarballs from package directories
- config, hook: manage the configuration and the build hooks`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ./upmreg.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (error, warn, info, debug)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.LogLevel = &logLevel

	cmd.AddCommand(
		cli.NewBuildCmd(),
		cli.NewPackCmd(),
		cli.NewConfigCmd(),
		cli.NewHookCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
