package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/terraform-plugin-sdk/v2/helper/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/wanwu/internal/client/fake"
	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/repository"
	"github.com/raywall/wanwu/internal/service"
	"github.com/raywall/wanwu/provider/internal/models"
)

func testBundle(acct *fake.Account) *models.ConfigurationBundle {
	c := acct.Client()
	return &models.ConfigurationBundle{
		DeployService: service.NewDeploymentService(c, logging.Discard()),
		Client:        c,
	}
}

func TestLambdaProxyLifecycle(t *testing.T) {
	repository.UpdateWaitBackoff = time.Millisecond
	acct := fake.NewAccount("us-east-1", "541056992659")
	bundle := testBundle(acct)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "bootstrap")
	require.NoError(t, os.WriteFile(src, []byte("binary"), 0o755))

	r := ResourceLambdaProxy()
	d := schema.TestResourceDataRaw(t, r.Schema, map[string]interface{}{
		"gateway_name":  "wanwu",
		"http_method":   "get",
		"function_name": "wanwu_lambda",
		"role_name":     "wanwu_lambda_role",
		"source_file":   src,
		"policy_arns":   []interface{}{"arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess"},
	})

	require.False(t, r.CreateContext(ctx, d, bundle).HasError())
	gatewayID := d.Get("gateway_id").(string)
	assert.Equal(t, gatewayID+"/wanwu_lambda", d.Id())
	assert.Equal(t, "arn:aws:lambda:us-east-1:541056992659:function:wanwu_lambda", d.Get("function_arn"))
	assert.Equal(t, "https://"+gatewayID+".execute-api.us-east-1.amazonaws.com/prod/", d.Get("invoke_url"))
	assert.Len(t, acct.Snapshot().Roles["wanwu_lambda_role"], 2)
	assert.Contains(t, acct.Snapshot().Gateways[gatewayID].Resources["/"].Methods, "GET")

	require.False(t, r.ReadContext(ctx, d, bundle).HasError())
	assert.NotEmpty(t, d.Id())

	require.False(t, r.DeleteContext(ctx, d, bundle).HasError())
	assert.Empty(t, d.Id())
	snap := acct.Snapshot()
	assert.Empty(t, snap.Gateways)
	assert.Empty(t, snap.Functions)
	assert.Empty(t, snap.Roles)
}

func TestReadDetectsDrift(t *testing.T) {
	acct := fake.NewAccount("us-east-1", "541056992659")
	bundle := testBundle(acct)
	ctx := context.Background()

	r := ResourceLambdaProxy()
	d := schema.TestResourceDataRaw(t, r.Schema, map[string]interface{}{
		"gateway_name":  "wanwu",
		"function_name": "wanwu_lambda",
		"role_name":     "wanwu_lambda_role",
		"source_file":   "unused",
	})
	d.SetId("api00001/wanwu_lambda")
	require.NoError(t, d.Set("internal", `{"role_name":"wanwu_lambda_role","function_name":"wanwu_lambda"}`))

	require.False(t, r.ReadContext(ctx, d, bundle).HasError())
	assert.Empty(t, d.Id())
}

func TestUnconfiguredProvider(t *testing.T) {
	r := ResourceLambdaProxy()
	d := schema.TestResourceDataRaw(t, r.Schema, map[string]interface{}{})
	assert.True(t, r.CreateContext(context.Background(), d, nil).HasError())
}
