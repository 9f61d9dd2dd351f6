package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	apigw "github.com/aws/aws-sdk-go-v2/service/apigateway"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	sts "github.com/aws/aws-sdk-go-v2/service/sts"
)

// AWSClient bundles the control-plane clients used by the provisioning code.
// Every repository receives it explicitly; nothing reads ambient sessions.
type AWSClient struct {
	Config    aws.Config
	APIGW     APIGatewayAPI // REST API (v1)
	Lambda    LambdaAPI
	IAM       IAMAPI
	CWLogs    CWLogsAPI
	S3        S3API // artifact uploads
	STS       STSAPI
	Region    string
	AccountID string
}

// Options selects the credentials the client is built from.
type Options struct {
	Region  string
	Profile string
}

// New loads the default AWS config chain and builds every service client.
func New(ctx context.Context, opts Options) (*AWSClient, error) {
	var loaders []func(*config.LoadOptions) error
	if strings.TrimSpace(opts.Region) != "" {
		loaders = append(loaders, config.WithRegion(opts.Region))
	}
	if strings.TrimSpace(opts.Profile) != "" {
		loaders = append(loaders, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := &AWSClient{
		Config: cfg,
		APIGW:  apigw.NewFromConfig(cfg),
		Lambda: lambda.NewFromConfig(cfg),
		IAM:    iam.NewFromConfig(cfg),
		CWLogs: cw.NewFromConfig(cfg),
		S3:     s3.NewFromConfig(cfg),
		STS:    sts.NewFromConfig(cfg),
		Region: cfg.Region,
	}

	accountID, err := getAccountID(ctx, client.STS)
	if err != nil {
		return nil, err
	}
	client.AccountID = accountID

	return client, nil
}

func getAccountID(ctx context.Context, stsClient STSAPI) (string, error) {
	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting account ID: %w", err)
	}
	return aws.ToString(result.Account), nil
}
