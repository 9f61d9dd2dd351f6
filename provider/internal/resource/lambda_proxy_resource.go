package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-sdk/v2/diag"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/validation"

	"github.com/raywall/wanwu/provider/internal/models"
	"github.com/raywall/wanwu/pkg/types"
)

// ResourceLambdaProxy define o recurso wanwu_lambda_proxy: uma REST API cujos
// recursos raiz e {proxy+} são integrados a uma função Lambda.
func ResourceLambdaProxy() *schema.Resource {
	return &schema.Resource{
		CreateContext: resourceCreate,
		ReadContext:   resourceRead,
		UpdateContext: resourceUpdate,
		DeleteContext: resourceDelete,
		Schema: map[string]*schema.Schema{
			"gateway_name": {Type: schema.TypeString, Required: true, ForceNew: true},
			"http_method": {
				Type:         schema.TypeString,
				Optional:     true,
				Default:      "GET",
				ForceNew:     true,
				ValidateFunc: validation.StringInSlice([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "ANY"}, true),
				StateFunc:    func(v interface{}) string { return strings.ToUpper(v.(string)) },
			},
			"stage_name": {Type: schema.TypeString, Optional: true, Default: "prod"},
			"function_name": {Type: schema.TypeString, Required: true, ForceNew: true},
			"role_name":     {Type: schema.TypeString, Required: true, ForceNew: true},
			"runtime":       {Type: schema.TypeString, Optional: true, Default: "provided.al2023", ForceNew: true},
			"handler":       {Type: schema.TypeString, Optional: true, Default: "bootstrap", ForceNew: true},
			"source_file":   {Type: schema.TypeString, Required: true},
			"source_code_hash": {
				Type:        schema.TypeString,
				Optional:    true,
				Description: "Change this (for example with filebase64sha256) to push new code.",
			},
			"archive_name": {Type: schema.TypeString, Optional: true},
			"memory_size":  {Type: schema.TypeInt, Optional: true, Default: 128, ForceNew: true},
			"timeout": {
				Type:         schema.TypeInt,
				Optional:     true,
				Default:      30,
				ValidateFunc: validation.IntBetween(1, 900),
			},
			"policy_arns": {
				Type:        schema.TypeList,
				Optional:    true,
				Description: "Managed policies attached to the execution role in addition to AWSLambdaBasicExecutionRole.",
				Elem:        &schema.Schema{Type: schema.TypeString},
			},
			"environment": {
				Type:     schema.TypeMap,
				Optional: true,
				ForceNew: true,
				Elem:     &schema.Schema{Type: schema.TypeString},
			},
			"artifact_bucket":    {Type: schema.TypeString, Optional: true},
			"log_retention_days": {Type: schema.TypeInt, Optional: true, Default: 14},

			"gateway_id":   {Type: schema.TypeString, Computed: true},
			"function_arn": {Type: schema.TypeString, Computed: true},
			"role_arn":     {Type: schema.TypeString, Computed: true},
			"code_sha256":  {Type: schema.TypeString, Computed: true},
			"invoke_url":   {Type: schema.TypeString, Computed: true},
			"internal":     {Type: schema.TypeString, Computed: true},
		},
	}
}

func bundleFrom(m interface{}) (*models.ConfigurationBundle, error) {
	bundle, ok := m.(*models.ConfigurationBundle)
	if !ok || bundle.DeployService == nil {
		return nil, fmt.Errorf("deployment service not configured")
	}
	return bundle, nil
}

func resourceCreate(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	bundle, err := bundleFrom(m)
	if err != nil {
		return diag.FromErr(err)
	}

	gw, lc := extractConfig(d)
	st, err := bundle.DeployService.EnsureDeployment(ctx, gw, lc)
	if err != nil {
		return diag.FromErr(fmt.Errorf("deployment failed: %w", err))
	}

	d.SetId(fmt.Sprintf("%s/%s", st.GatewayID, st.FunctionName))
	return setState(d, st, bundle.Client.Region)
}

func resourceRead(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	bundle, err := bundleFrom(m)
	if err != nil {
		return diag.FromErr(err)
	}

	st, err := internalState(d)
	if err != nil {
		d.SetId("")
		return diag.FromErr(err)
	}
	if st == nil {
		return nil
	}

	exists, err := bundle.DeployService.CheckDeploymentExists(ctx, st)
	if err != nil {
		return diag.FromErr(fmt.Errorf("failed during existence check: %w", err))
	}
	if !exists {
		d.SetId("")
	}
	return nil
}

func resourceUpdate(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	return resourceCreate(ctx, d, m)
}

func resourceDelete(ctx context.Context, d *schema.ResourceData, m interface{}) diag.Diagnostics {
	bundle, err := bundleFrom(m)
	if err != nil {
		return diag.FromErr(err)
	}

	st, err := internalState(d)
	if err != nil {
		return diag.FromErr(err)
	}
	if st == nil {
		d.SetId("")
		return nil
	}

	if err := bundle.DeployService.DeleteDeployment(ctx, st); err != nil {
		return diag.FromErr(fmt.Errorf("failed to delete deployment: %w", err))
	}
	d.SetId("")
	return nil
}

func internalState(d *schema.ResourceData) (*types.DeploymentState, error) {
	raw := d.Get("internal").(string)
	if raw == "" {
		return nil, nil
	}
	var st types.DeploymentState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("failed reading internal state: %w", err)
	}
	return &st, nil
}

func setState(d *schema.ResourceData, st *types.DeploymentState, region string) diag.Diagnostics {
	b, err := json.Marshal(st)
	if err != nil {
		return diag.FromErr(err)
	}

	invokeURL := ""
	if st.StageName != "" {
		invokeURL = fmt.Sprintf("https://%s.execute-api.%s.amazonaws.com/%s/", st.GatewayID, region, st.StageName)
	}
	values := map[string]interface{}{
		"gateway_id":   st.GatewayID,
		"function_arn": st.FunctionArn,
		"role_arn":     st.RoleArn,
		"code_sha256":  st.CodeSha256,
		"invoke_url":   invokeURL,
		"internal":     string(b),
	}
	for k, v := range values {
		if err := d.Set(k, v); err != nil {
			return diag.FromErr(err)
		}
	}
	return nil
}

// extractConfig converte o schema nos DTOs dos serviços.
func extractConfig(d *schema.ResourceData) (types.GatewayConfig, types.LambdaConfig) {
	gw := types.GatewayConfig{
		Name:       d.Get("gateway_name").(string),
		HTTPMethod: strings.ToUpper(d.Get("http_method").(string)),
		StageName:  d.Get("stage_name").(string),
	}

	env := make(map[string]string)
	for k, v := range d.Get("environment").(map[string]interface{}) {
		env[k] = v.(string)
	}
	policiesRaw := d.Get("policy_arns").([]interface{})
	policies := make([]string, 0, len(policiesRaw))
	for _, p := range policiesRaw {
		if s, ok := p.(string); ok {
			policies = append(policies, s)
		}
	}

	lc := types.LambdaConfig{
		FunctionName:   d.Get("function_name").(string),
		RoleName:       d.Get("role_name").(string),
		Runtime:        d.Get("runtime").(string),
		Handler:        d.Get("handler").(string),
		SourceFile:     d.Get("source_file").(string),
		ArchiveName:    d.Get("archive_name").(string),
		MemorySize:     int32(d.Get("memory_size").(int)),
		Timeout:        int32(d.Get("timeout").(int)),
		PolicyARNs:     policies,
		Environment:    env,
		ArtifactBucket: d.Get("artifact_bucket").(string),
		LogRetention:   int32(d.Get("log_retention_days").(int)),
	}
	return gw, lc
}
