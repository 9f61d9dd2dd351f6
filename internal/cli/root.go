// Package cli is the wanwu command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/raywall/wanwu/internal/client"
	"github.com/raywall/wanwu/internal/config"
	"github.com/raywall/wanwu/internal/logging"
)

const (
	flagVerbose = "verbose"
	flagDebug   = "debug"
	flagConfig  = "config"
	flagRegion  = "region"
	flagProfile = "profile"
	flagOutput  = "output"
)

// Version is set at build time with -ldflags "-X github.com/raywall/wanwu/internal/cli.Version=...".
var Version = "dev"

// NewClient builds the AWS client for a run. Tests replace it.
var NewClient = client.New

type options struct {
	configPath string
	region     string
	profile    string
}

// NewRootCommand assembles the command tree.
func NewRootCommand(logger logging.LogManager) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "wanwu",
		Short:         "Provision an API Gateway REST API that proxies every request to one Lambda function",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed(flagVerbose) {
				logger.SetVerboseLevel()
			}
			if cmd.Flags().Changed(flagDebug) {
				logger.SetDebugLevel()
			}
		},
	}

	root.PersistentFlags().BoolP(flagVerbose, "v", false, "Verbose output")
	root.PersistentFlags().BoolP(flagDebug, "d", false, "Debug output")
	root.PersistentFlags().StringVarP(&opts.configPath, flagConfig, "c", "", "Config file (default: ./wanwu.yaml when present)")
	root.PersistentFlags().StringVar(&opts.region, flagRegion, "", "AWS region, overrides the config file")
	root.PersistentFlags().StringVarP(&opts.profile, flagProfile, "p", "", "AWS shared config profile, overrides the config file")

	root.AddCommand(
		newProvisionCommand(opts, logger),
		newTeardownCommand(opts, logger),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	logger := logging.GetLogManager()
	if err := NewRootCommand(logger).Execute(); err != nil {
		logger.Error("Error executing command", "err", err)
		return 1
	}
	return 0
}

// load reads the config and connects to the account it names.
func (o *options) load(ctx context.Context) (*config.Config, *client.AWSClient, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.region != "" {
		cfg.Region = o.region
	}
	if o.profile != "" {
		cfg.Profile = o.profile
	}

	c, err := NewClient(ctx, client.Options{Region: cfg.Region, Profile: cfg.Profile})
	if err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}
