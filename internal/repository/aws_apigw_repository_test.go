package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/wanwu/pkg/types"
)

func TestCreateGatewayReusesExisting(t *testing.T) {
	acct := newAccount()
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()

	first, err := repo.CreateGateway(ctx, "wanwu")
	require.NoError(t, err)
	second, err := repo.CreateGateway(ctx, "wanwu")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, acct.GatewaysNamed("wanwu"))
	assert.Equal(t, 1, acct.Calls("CreateRestApi"))
}

func TestCreateGatewayPageOverflow(t *testing.T) {
	acct := newAccount()
	for i := 0; i < PageSize; i++ {
		acct.AddGateway(fmt.Sprintf("other-%d", i))
	}
	repo := &APIGWRepository{Client: acct.Client()}

	_, err := repo.CreateGateway(context.Background(), "wanwu")
	assert.ErrorIs(t, err, ErrPageOverflow)
	assert.Equal(t, 0, acct.Calls("CreateRestApi"))
}

func TestCreateGatewayListFailure(t *testing.T) {
	acct := newAccount()
	acct.FailNext("GetRestApis", throttled())
	repo := &APIGWRepository{Client: acct.Client()}

	_, err := repo.CreateGateway(context.Background(), "wanwu")
	assert.ErrorContains(t, err, "GetRestApis failed")
}

func TestResourceByPath(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()

	root, err := repo.ResourceByPath(ctx, id, "/")
	require.NoError(t, err)
	assert.Equal(t, "/", root.Path)
	assert.NotEmpty(t, root.ResourceID)

	_, err = repo.ResourceByPath(ctx, id, "/missing")
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.ErrorContains(t, err, "/missing")
}

func TestResourceByPathPageOverflow(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	acct.AddResources(id, PageSize-1)
	repo := &APIGWRepository{Client: acct.Client()}

	_, err := repo.ResourceByPath(context.Background(), id, "/")
	assert.ErrorIs(t, err, ErrPageOverflow)
}

func TestWildChildFallsBackOnConflict(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()

	root, err := repo.ResourceByPath(ctx, id, "/")
	require.NoError(t, err)

	created, err := repo.WildChild(ctx, id, root.ResourceID)
	require.NoError(t, err)
	assert.Equal(t, "/{proxy+}", created.Path)
	assert.Equal(t, root.ResourceID, created.ParentID)

	again, err := repo.WildChild(ctx, id, root.ResourceID)
	require.NoError(t, err)
	assert.Equal(t, created.ResourceID, again.ResourceID)
	assert.Equal(t, 2, acct.Calls("CreateResource"))
}

func TestWildChildOtherErrorIsFatal(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	acct.FailNext("CreateResource", throttled())
	repo := &APIGWRepository{Client: acct.Client()}

	_, err := repo.WildChild(context.Background(), id, "res00002")
	require.Error(t, err)
	assert.Equal(t, 0, acct.Calls("GetResources"))
}

func TestEnsureMethod(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()
	root, err := repo.ResourceByPath(ctx, id, "/")
	require.NoError(t, err)

	m, err := repo.EnsureMethod(ctx, id, root.ResourceID, "GET")
	require.NoError(t, err)
	assert.Equal(t, "NONE", aws.ToString(m.AuthorizationType))

	_, err = repo.EnsureMethod(ctx, id, root.ResourceID, "GET")
	require.NoError(t, err)
	assert.Equal(t, 1, acct.Calls("PutMethod"))

	acct.FailNext("GetMethod", throttled())
	_, err = repo.EnsureMethod(ctx, id, root.ResourceID, "POST")
	assert.ErrorContains(t, err, "GetMethod failed")
	assert.Equal(t, 1, acct.Calls("PutMethod"))
}

func TestPutIntegration(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()
	root, err := repo.ResourceByPath(ctx, id, "/")
	require.NoError(t, err)
	_, err = repo.EnsureMethod(ctx, id, root.ResourceID, "GET")
	require.NoError(t, err)

	fn := types.FunctionARN{Region: "us-east-1", AccountID: testAccount, FunctionName: "wanwu_lambda"}
	out, err := repo.PutIntegration(ctx, id, root.ResourceID, "GET", fn)
	require.NoError(t, err)

	want := "arn:aws:apigateway:us-east-1:lambda:path/2015-03-31/functions/arn:aws:lambda:us-east-1:541056992659:function:wanwu_lambda/invocations"
	assert.Equal(t, want, aws.ToString(out.Uri))
	assert.Equal(t, apigwtypes.IntegrationTypeAwsProxy, out.Type)
	assert.Equal(t, "POST", aws.ToString(out.HttpMethod))

	method := acct.Snapshot().Gateways[id].Resources["/"].Methods["GET"]
	assert.Equal(t, want, method.IntegrationURI)

	got, err := repo.EnsureMethod(ctx, id, root.ResourceID, "GET")
	require.NoError(t, err)
	assert.True(t, Integrated(got, fn))
	assert.False(t, Integrated(got, types.FunctionARN{Region: "us-east-1", AccountID: testAccount, FunctionName: "other_fn"}))
}

func TestIntegrationURIDropsQualifier(t *testing.T) {
	fn := types.FunctionARN{Partition: "aws", Region: "eu-west-1", AccountID: testAccount, FunctionName: "wanwu_lambda", Qualifier: "live"}
	assert.Equal(t,
		"arn:aws:apigateway:eu-west-1:lambda:path/2015-03-31/functions/arn:aws:lambda:eu-west-1:541056992659:function:wanwu_lambda/invocations",
		IntegrationURI(fn))
}

func TestStageDeployment(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()

	current, err := repo.StageDeployment(ctx, id, "prod")
	require.NoError(t, err)
	assert.Empty(t, current)

	dep, err := repo.Deploy(ctx, id, "prod")
	require.NoError(t, err)
	current, err = repo.StageDeployment(ctx, id, "prod")
	require.NoError(t, err)
	assert.Equal(t, dep, current)

	acct.FailNext("GetStage", throttled())
	_, err = repo.StageDeployment(ctx, id, "prod")
	assert.ErrorContains(t, err, "GetStage failed")
}

func TestDeployCreatesThenUpdatesStage(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()

	first, err := repo.Deploy(ctx, id, "prod")
	require.NoError(t, err)
	assert.Equal(t, first, acct.StageDeployment(id, "prod"))
	assert.Equal(t, 1, acct.Calls("CreateStage"))

	second, err := repo.Deploy(ctx, id, "prod")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, acct.StageDeployment(id, "prod"))
	assert.Equal(t, 1, acct.Calls("UpdateStage"))
	assert.Equal(t, 2, acct.Deployments(id))
}

func TestDeleteGatewayToleratesMissing(t *testing.T) {
	acct := newAccount()
	id := acct.AddGateway("wanwu")
	repo := &APIGWRepository{Client: acct.Client()}
	ctx := context.Background()

	require.NoError(t, repo.DeleteGateway(ctx, id))
	require.NoError(t, repo.DeleteGateway(ctx, id))
	assert.Equal(t, 0, acct.GatewaysNamed("wanwu"))
}

func TestFindGatewayDoesNotCreate(t *testing.T) {
	acct := newAccount()
	repo := &APIGWRepository{Client: acct.Client()}

	id, err := repo.FindGateway(context.Background(), "wanwu")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 0, acct.Calls("CreateRestApi"))
}
