package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/service"
)

func newTeardownCommand(opts *options, logger logging.LogManager) *cobra.Command {
	return &cobra.Command{
		Use:   "teardown",
		Short: "Delete everything provision created for the configured names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, c, err := opts.load(ctx)
			if err != nil {
				return err
			}

			svc := service.NewDeploymentService(c, logger)
			st, err := svc.Resolve(ctx, cfg.GatewayDTO(), *cfg.LambdaDTO())
			if err != nil {
				return err
			}
			logger.Info("Tearing down", "gateway", st.GatewayID, "function", st.FunctionName)
			if err := svc.DeleteDeployment(ctx, st); err != nil {
				return err
			}

			color.New(color.FgHiRed).Fprintf(cmd.OutOrStdout(), "Deleted %s and %s\n", cfg.Gateway.Name, cfg.Lambda.FunctionName)
			return nil
		},
	}
}
