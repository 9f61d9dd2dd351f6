package client

import (
	"context"

	apigw "github.com/aws/aws-sdk-go-v2/service/apigateway"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	sts "github.com/aws/aws-sdk-go-v2/service/sts"
)

// APIGatewayAPI is the subset of the API Gateway (v1) client in use.
type APIGatewayAPI interface {
	GetRestApis(ctx context.Context, params *apigw.GetRestApisInput, optFns ...func(*apigw.Options)) (*apigw.GetRestApisOutput, error)
	CreateRestApi(ctx context.Context, params *apigw.CreateRestApiInput, optFns ...func(*apigw.Options)) (*apigw.CreateRestApiOutput, error)
	DeleteRestApi(ctx context.Context, params *apigw.DeleteRestApiInput, optFns ...func(*apigw.Options)) (*apigw.DeleteRestApiOutput, error)
	GetResources(ctx context.Context, params *apigw.GetResourcesInput, optFns ...func(*apigw.Options)) (*apigw.GetResourcesOutput, error)
	CreateResource(ctx context.Context, params *apigw.CreateResourceInput, optFns ...func(*apigw.Options)) (*apigw.CreateResourceOutput, error)
	GetMethod(ctx context.Context, params *apigw.GetMethodInput, optFns ...func(*apigw.Options)) (*apigw.GetMethodOutput, error)
	PutMethod(ctx context.Context, params *apigw.PutMethodInput, optFns ...func(*apigw.Options)) (*apigw.PutMethodOutput, error)
	PutIntegration(ctx context.Context, params *apigw.PutIntegrationInput, optFns ...func(*apigw.Options)) (*apigw.PutIntegrationOutput, error)
	CreateDeployment(ctx context.Context, params *apigw.CreateDeploymentInput, optFns ...func(*apigw.Options)) (*apigw.CreateDeploymentOutput, error)
	GetStage(ctx context.Context, params *apigw.GetStageInput, optFns ...func(*apigw.Options)) (*apigw.GetStageOutput, error)
	CreateStage(ctx context.Context, params *apigw.CreateStageInput, optFns ...func(*apigw.Options)) (*apigw.CreateStageOutput, error)
	UpdateStage(ctx context.Context, params *apigw.UpdateStageInput, optFns ...func(*apigw.Options)) (*apigw.UpdateStageOutput, error)
}

// LambdaAPI is the subset of the Lambda client in use.
type LambdaAPI interface {
	GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
	CreateFunction(ctx context.Context, params *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error)
	UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
	DeleteFunction(ctx context.Context, params *lambda.DeleteFunctionInput, optFns ...func(*lambda.Options)) (*lambda.DeleteFunctionOutput, error)
	AddPermission(ctx context.Context, params *lambda.AddPermissionInput, optFns ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error)
	RemovePermission(ctx context.Context, params *lambda.RemovePermissionInput, optFns ...func(*lambda.Options)) (*lambda.RemovePermissionOutput, error)
}

// IAMAPI is the subset of the IAM client in use.
type IAMAPI interface {
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	DeleteRole(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
	DetachRolePolicy(ctx context.Context, params *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error)
}

// CWLogsAPI is the subset of the CloudWatch Logs client in use.
type CWLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cw.CreateLogGroupInput, optFns ...func(*cw.Options)) (*cw.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cw.PutRetentionPolicyInput, optFns ...func(*cw.Options)) (*cw.PutRetentionPolicyOutput, error)
	DeleteLogGroup(ctx context.Context, params *cw.DeleteLogGroupInput, optFns ...func(*cw.Options)) (*cw.DeleteLogGroupOutput, error)
}

// S3API is the subset of the S3 client in use.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// STSAPI is the subset of the STS client in use.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}
