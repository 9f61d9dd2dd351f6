// Package provider é a superfície de plugin Terraform do wanwu.
package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"

	"github.com/raywall/wanwu/internal/client"
	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/service"
	"github.com/raywall/wanwu/provider/internal/models"
	"github.com/raywall/wanwu/provider/internal/resource"
)

// Provider devolve o schema do provider e seus recursos.
func Provider() *schema.Provider {
	return &schema.Provider{
		Schema: map[string]*schema.Schema{
			"region": {
				Type:        schema.TypeString,
				Optional:    true,
				DefaultFunc: schema.EnvDefaultFunc("AWS_REGION", "us-east-1"),
				Description: "AWS region to use for resources",
			},
			"profile": {
				Type:        schema.TypeString,
				Optional:    true,
				DefaultFunc: schema.EnvDefaultFunc("AWS_PROFILE", ""),
				Description: "Shared config profile used to load credentials",
			},
		},
		ResourcesMap: map[string]*schema.Resource{
			"wanwu_lambda_proxy": resource.ResourceLambdaProxy(),
		},
		ConfigureContextFunc: providerConfigure,
	}
}

func providerConfigure(ctx context.Context, d *schema.ResourceData) (interface{}, diag.Diagnostics) {
	awsClient, err := client.New(ctx, client.Options{
		Region:  d.Get("region").(string),
		Profile: d.Get("profile").(string),
	})
	if err != nil {
		return nil, diag.FromErr(fmt.Errorf("failed to create aws client: %w", err))
	}

	return &models.ConfigurationBundle{
		DeployService: service.NewDeploymentService(awsClient, logging.GetLogManager()),
		Client:        awsClient,
	}, nil
}
