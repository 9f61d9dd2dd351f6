package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/service"
	"github.com/raywall/wanwu/pkg/types"
)

func newProvisionCommand(opts *options, logger logging.LogManager) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create or update the role, function, log group and gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, c, err := opts.load(ctx)
			if err != nil {
				return err
			}

			logger.Info("Provisioning", "gateway", cfg.Gateway.Name, "function", cfg.Lambda.FunctionName, "region", c.Region)
			svc := service.NewDeploymentService(c, logger)
			st, err := svc.EnsureDeployment(ctx, cfg.GatewayDTO(), *cfg.LambdaDTO())
			if err != nil {
				return err
			}

			if output == "json" {
				return printJSON(cmd.OutOrStdout(), st)
			}
			printSummary(cmd.OutOrStdout(), st, c.Region)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, flagOutput, "o", "text", "Output format: text or json")
	return cmd
}

// InvokeURL is the public URL of a deployed stage.
func InvokeURL(gatewayID, region, stage string) string {
	return fmt.Sprintf("https://%s.execute-api.%s.amazonaws.com/%s/", gatewayID, region, stage)
}

func printSummary(w io.Writer, st *types.DeploymentState, region string) {
	green := color.New(color.FgHiGreen)
	dark := color.New(color.FgGreen)

	green.Fprintf(w, "Gateway   %s (%s)\n", st.GatewayName, st.GatewayID)
	dark.Fprintf(w, "  %s %s -> %s\n", st.HTTPMethod, st.RootResource.Path, st.FunctionName)
	dark.Fprintf(w, "  %s %s -> %s\n", st.HTTPMethod, st.ProxyResource.Path, st.FunctionName)
	green.Fprintf(w, "Function  %s\n", st.FunctionArn)
	dark.Fprintf(w, "  code sha256 %s\n", st.CodeSha256)
	green.Fprintf(w, "Role      %s\n", st.RoleArn)
	green.Fprintf(w, "Logs      %s\n", st.LogGroup)
	if st.StageName != "" && st.DeploymentID != "" {
		green.Fprintf(w, "URL       %s\n", InvokeURL(st.GatewayID, region, st.StageName))
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
