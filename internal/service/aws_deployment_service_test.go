package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/wanwu/internal/client/fake"
	"github.com/raywall/wanwu/internal/repository"
)

func TestEnsureDeploymentBuildsTheStack(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)

	st, err := svc.EnsureDeployment(context.Background(), gw, lc)
	require.NoError(t, err)

	fnARN := "arn:aws:lambda:us-east-1:541056992659:function:wanwu_lambda"
	uri := "arn:aws:apigateway:us-east-1:lambda:path/2015-03-31/functions/" + fnARN + "/invocations"
	assert.Equal(t, fnARN, st.FunctionArn)
	assert.Equal(t, "arn:aws:iam::541056992659:role/wanwu_lambda_role", st.RoleArn)
	assert.Equal(t, "/aws/lambda/wanwu_lambda", st.LogGroup)
	assert.Equal(t, "/", st.RootResource.Path)
	assert.Equal(t, "/{proxy+}", st.ProxyResource.Path)
	assert.Equal(t, st.RootResource.ResourceID, st.ProxyResource.ParentID)
	assert.Equal(t, st.DeploymentID, acct.StageDeployment(st.GatewayID, "prod"))
	assert.Equal(t, []string{
		StatementID(st.GatewayID, st.RootResource.ResourceID, "GET", "wanwu_lambda"),
		StatementID(st.GatewayID, st.ProxyResource.ResourceID, "GET", "wanwu_lambda"),
	}, st.StatementIDs)

	snap := acct.Snapshot()
	require.Contains(t, snap.Gateways, st.GatewayID)
	gateway := snap.Gateways[st.GatewayID]
	assert.Equal(t, "wanwu", gateway.Name)
	assert.Equal(t, []string{"prod"}, gateway.Stages)
	for _, path := range []string{"/", "/{proxy+}"} {
		m := gateway.Resources[path].Methods["GET"]
		assert.Equal(t, "NONE", m.Authorization, path)
		assert.Equal(t, "AWS_PROXY", m.IntegrationType, path)
		assert.Equal(t, uri, m.IntegrationURI, path)
	}

	fn := snap.Functions["wanwu_lambda"]
	assert.Equal(t, int32(30), fn.Timeout)
	assert.Equal(t, "provided.al2023", fn.Runtime)
	assert.Equal(t, st.RoleArn, fn.Role)
	assert.Equal(t, st.CodeSha256, fn.CodeSha256)
	assert.Len(t, fn.Permissions, 2)

	principal, source, ok := acct.Permission("wanwu_lambda", st.StatementIDs[0])
	require.True(t, ok)
	assert.Equal(t, "apigateway.amazonaws.com", principal)
	assert.Equal(t, "arn:aws:execute-api:us-east-1:541056992659:"+st.GatewayID+"/*/GET/*", source)

	assert.Equal(t, []string{BasicExecutionPolicy}, snap.Roles["wanwu_lambda_role"])
	assert.Equal(t, int32(14), snap.LogGroups["/aws/lambda/wanwu_lambda"])
}

func TestEnsureDeploymentIsIdempotent(t *testing.T) {
	acct := newAccount()
	acct.PendingPolls = 1
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	ctx := context.Background()

	first, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)
	before := acct.Snapshot()

	second, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)

	assert.Equal(t, before, acct.Snapshot())
	assert.Equal(t, 1, acct.GatewaysNamed("wanwu"))
	assert.Equal(t, first.GatewayID, second.GatewayID)
	assert.Equal(t, first.ProxyResource, second.ProxyResource)
	assert.Equal(t, first.StatementIDs, second.StatementIDs)

	assert.Equal(t, 1, acct.Calls("CreateRestApi"))
	assert.Equal(t, 1, acct.Calls("CreateFunction"))
	assert.Equal(t, 0, acct.Calls("UpdateFunctionCode"))
	assert.Equal(t, 0, acct.Calls("UpdateFunctionConfiguration"))
	assert.Equal(t, 2, acct.Calls("PutMethod"))
	assert.Equal(t, 2, acct.Calls("CreateResource"))
	assert.Equal(t, 2, acct.Calls("PutIntegration"))
	assert.Equal(t, 1, acct.Deployments(first.GatewayID))
	assert.Equal(t, first.DeploymentID, second.DeploymentID)
	assert.Equal(t, second.DeploymentID, acct.StageDeployment(first.GatewayID, "prod"))
}

func TestEnsureDeploymentWithoutStage(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	gw.StageName = ""

	st, err := svc.EnsureDeployment(context.Background(), gw, lc)
	require.NoError(t, err)
	assert.Empty(t, st.DeploymentID)
	assert.Equal(t, 0, acct.Deployments(st.GatewayID))
}

func TestEnsureDeploymentStopsOnFailureAndRecovers(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	ctx := context.Background()

	acct.FailNext("PutIntegration", throttled())
	_, err := svc.EnsureDeployment(ctx, gw, lc)
	require.Error(t, err)
	assert.ErrorContains(t, err, "API Gateway setup failed")
	assert.Equal(t, 0, acct.Calls("AddPermission"))
	assert.Equal(t, 0, acct.Calls("CreateResource"))

	// nothing is rolled back and the next run finishes the job
	assert.Equal(t, 1, acct.GatewaysNamed("wanwu"))
	st, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)
	assert.Len(t, st.StatementIDs, 2)
	assert.Equal(t, 1, acct.GatewaysNamed("wanwu"))
	assert.Equal(t, 1, acct.Calls("CreateFunction"))
}

func TestEnsureDeploymentPageOverflow(t *testing.T) {
	acct := newAccount()
	for i := 0; i < repository.PageSize; i++ {
		acct.AddGateway("other")
	}
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)

	_, err := svc.EnsureDeployment(context.Background(), gw, lc)
	assert.ErrorIs(t, err, repository.ErrPageOverflow)
}

func TestDeleteDeploymentEmptiesTheAccount(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	lc.ArtifactBucket = "artifacts"
	ctx := context.Background()

	st, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)

	exists, err := svc.CheckDeploymentExists(ctx, st)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, svc.DeleteDeployment(ctx, st))
	assertEmpty(t, acct)

	exists, err = svc.CheckDeploymentExists(ctx, st)
	require.NoError(t, err)
	assert.False(t, exists)

	// a second teardown finds nothing left to delete
	require.NoError(t, svc.DeleteDeployment(ctx, st))
}

func TestResolveThenDelete(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)
	lc.ArtifactBucket = "artifacts"
	ctx := context.Background()

	provisioned, err := svc.EnsureDeployment(ctx, gw, lc)
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, gw, lc)
	require.NoError(t, err)
	resolved.RoleArn = provisioned.RoleArn
	resolved.DeploymentID = provisioned.DeploymentID
	assert.Equal(t, provisioned, resolved)

	require.NoError(t, svc.DeleteDeployment(ctx, resolved))
	assertEmpty(t, acct)
}

func TestResolveOnEmptyAccount(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct)
	gw, lc := testConfigs(t)

	st, err := svc.Resolve(context.Background(), gw, lc)
	require.NoError(t, err)
	assert.Empty(t, st.GatewayID)
	assert.Empty(t, st.FunctionArn)
	assert.Empty(t, st.StatementIDs)
	require.NoError(t, svc.DeleteDeployment(context.Background(), st))
}

func assertEmpty(t *testing.T, acct *fake.Account) {
	t.Helper()
	snap := acct.Snapshot()
	assert.Empty(t, snap.Gateways)
	assert.Empty(t, snap.Functions)
	assert.Empty(t, snap.Roles)
	assert.Empty(t, snap.LogGroups)
	assert.Empty(t, snap.Objects)
}
