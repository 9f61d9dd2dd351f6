package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/raywall/wanwu/internal/client"
)

var (
	RetentionAttempts = 6
	RetentionBackoff  = 300 * time.Millisecond
)

// CWLogsRepository encapsula as operações do CloudWatch Logs para os Log Groups das funções.
type CWLogsRepository struct {
	Client *client.AWSClient
}

// LogGroupName é onde a Lambda escreve os logs da função.
func LogGroupName(functionName string) string {
	return "/aws/lambda/" + functionName
}

// CreateLogGroupIfNotExists cria o Log Group e define a retenção.
func (r *CWLogsRepository) CreateLogGroupIfNotExists(ctx context.Context, name string, retentionDays int32) error {
	_, err := r.Client.CWLogs.CreateLogGroup(ctx, &cw.CreateLogGroupInput{
		LogGroupName: aws.String(name),
	})
	if err != nil && !client.IsAPIErrorCode(err, "ResourceAlreadyExistsException") {
		return fmt.Errorf("CreateLogGroup failed: %w", err)
	}
	if retentionDays <= 0 {
		return nil
	}

	// um Log Group recém-criado nem sempre aparece de imediato para PutRetentionPolicy
	err = client.Retry(ctx, RetentionAttempts, RetentionBackoff, func() error {
		_, perr := r.Client.CWLogs.PutRetentionPolicy(ctx, &cw.PutRetentionPolicyInput{
			LogGroupName:    aws.String(name),
			RetentionInDays: aws.Int32(retentionDays),
		})
		if perr != nil && !client.IsAPIErrorCode(perr, "ResourceNotFoundException", "OperationAbortedException") {
			return client.Permanent(perr)
		}
		return perr
	})
	if err != nil {
		return fmt.Errorf("PutRetentionPolicy failed: %w", err)
	}
	return nil
}

// DeleteLogGroup deleta o Log Group.
func (r *CWLogsRepository) DeleteLogGroup(ctx context.Context, name string) error {
	_, err := r.Client.CWLogs.DeleteLogGroup(ctx, &cw.DeleteLogGroupInput{
		LogGroupName: aws.String(name),
	})
	if err != nil && !client.IsAPIErrorCode(err, "ResourceNotFoundException") {
		return fmt.Errorf("DeleteLogGroup failed: %w", err)
	}
	return nil
}
