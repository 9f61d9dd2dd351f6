package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/wanwu/internal/repository"
	"github.com/raywall/wanwu/pkg/lambdaarn"
	"github.com/raywall/wanwu/pkg/types"
)

func TestStatementIDAndSourceARN(t *testing.T) {
	assert.Equal(t, "api1-res2-GET-wanwu_lambda", StatementID("api1", "res2", "GET", "wanwu_lambda"))

	fn := types.FunctionARN{Region: "us-east-1", AccountID: testAccount, FunctionName: "wanwu_lambda"}
	assert.Equal(t, "arn:aws:execute-api:us-east-1:541056992659:api1/*/GET/*", SourceARN(fn, "api1", "GET"))
	fn.Partition = "aws-cn"
	assert.Equal(t, "arn:aws-cn:execute-api:us-east-1:541056992659:api1/*/GET/*", SourceARN(fn, "api1", "GET"))
}

func TestEnsureIntegrationToleratesExistingGrant(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	ctx := context.Background()
	st, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)

	sid, err := svc.APIGatewayService.EnsureIntegration(ctx, st.GatewayID, st.RootResource.ResourceID, "GET", st.FunctionArn)
	require.NoError(t, err)
	assert.Equal(t, st.StatementIDs[0], sid)
	assert.Equal(t, 3, acct.Calls("AddPermission"))
	assert.Len(t, acct.Snapshot().Functions["wanwu_lambda"].Permissions, 2)
}

func TestEnsureIntegrationRejectsMalformedARN(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct).APIGatewayService

	_, err := svc.EnsureIntegration(context.Background(), "api1", "res2", "GET", "wanwu_lambda")
	assert.ErrorIs(t, err, lambdaarn.ErrMalformedARN)
	assert.Equal(t, 0, acct.Calls("PutIntegration"))
}

func TestEnsureIntegrationGrantFailureIsFatal(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	ctx := context.Background()
	st, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)

	acct.FailNext("AddPermission", throttled())
	_, err = svc.APIGatewayService.EnsureIntegration(ctx, st.GatewayID, st.RootResource.ResourceID, "GET", st.FunctionArn)
	assert.ErrorContains(t, err, "AddPermission failed")
}

func TestEnsureProxyOnExistingGateway(t *testing.T) {
	acct := newAccount()
	existing := acct.AddGateway("wanwu")
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)

	st, err := svc.EnsureDeployment(context.Background(), gw, lc)
	require.NoError(t, err)
	assert.Equal(t, existing, st.GatewayID)
	assert.Equal(t, 0, acct.Calls("CreateRestApi"))
}

func TestEnsureProxyRedeploysOnlyOnChange(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	ctx := context.Background()

	first, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)
	require.Equal(t, 1, acct.Deployments(first.GatewayID))

	// the stage is gone: deploy again even though the routes are in place
	require.NoError(t, acct.DeleteStage(first.GatewayID, "prod"))
	second, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)
	assert.Equal(t, 2, acct.Deployments(first.GatewayID))
	assert.NotEqual(t, first.DeploymentID, second.DeploymentID)
	assert.Equal(t, 2, acct.Calls("PutIntegration"))

	// a route pointing elsewhere is rewritten and the stage moves on
	other := "arn:aws:lambda:us-east-1:541056992659:function:other_fn"
	_, err = svc.APIGatewayService.EnsureIntegration(ctx, first.GatewayID, first.ProxyResource.ResourceID, "GET", other)
	require.Error(t, err) // other_fn does not exist, the grant fails after the integration is written
	third, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)
	assert.Equal(t, 3, acct.Deployments(first.GatewayID))
	assert.Equal(t, third.DeploymentID, acct.StageDeployment(first.GatewayID, "prod"))

	want := repository.IntegrationURI(types.FunctionARN{Region: "us-east-1", AccountID: testAccount, FunctionName: "wanwu_lambda"})
	assert.Equal(t, want, acct.Snapshot().Gateways[first.GatewayID].Resources["/{proxy+}"].Methods["GET"].IntegrationURI)
}
