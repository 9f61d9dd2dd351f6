package fake

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	sts "github.com/aws/aws-sdk-go-v2/service/sts"
)

func (a *Account) CreateLogGroup(ctx context.Context, params *cw.CreateLogGroupInput, optFns ...func(*cw.Options)) (*cw.CreateLogGroupOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("CreateLogGroup"); err != nil {
		return nil, err
	}

	name := aws.ToString(params.LogGroupName)
	if _, ok := a.logGroups[name]; ok {
		return nil, &cwtypes.ResourceAlreadyExistsException{
			Message: aws.String("The specified log group already exists"),
		}
	}
	a.logGroups[name] = 0
	return &cw.CreateLogGroupOutput{}, nil
}

func (a *Account) PutRetentionPolicy(ctx context.Context, params *cw.PutRetentionPolicyInput, optFns ...func(*cw.Options)) (*cw.PutRetentionPolicyOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("PutRetentionPolicy"); err != nil {
		return nil, err
	}

	name := aws.ToString(params.LogGroupName)
	if _, ok := a.logGroups[name]; !ok {
		return nil, &cwtypes.ResourceNotFoundException{
			Message: aws.String("The specified log group does not exist."),
		}
	}
	a.logGroups[name] = aws.ToInt32(params.RetentionInDays)
	return &cw.PutRetentionPolicyOutput{}, nil
}

func (a *Account) DeleteLogGroup(ctx context.Context, params *cw.DeleteLogGroupInput, optFns ...func(*cw.Options)) (*cw.DeleteLogGroupOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("DeleteLogGroup"); err != nil {
		return nil, err
	}

	name := aws.ToString(params.LogGroupName)
	if _, ok := a.logGroups[name]; !ok {
		return nil, &cwtypes.ResourceNotFoundException{
			Message: aws.String("The specified log group does not exist."),
		}
	}
	delete(a.logGroups, name)
	return &cw.DeleteLogGroupOutput{}, nil
}

func (a *Account) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("PutObject"); err != nil {
		return nil, err
	}

	var body []byte
	if params.Body != nil {
		b, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		body = b
	}
	a.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{ETag: aws.String(fmt.Sprintf("%q", codeSha256(body)))}, nil
}

func (a *Account) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("DeleteObject"); err != nil {
		return nil, err
	}

	delete(a.objects, aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (a *Account) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetCallerIdentity"); err != nil {
		return nil, err
	}

	return &sts.GetCallerIdentityOutput{
		Account: aws.String(a.AccountID),
		Arn:     aws.String(fmt.Sprintf("arn:aws:iam::%s:user/provisioner", a.AccountID)),
		UserId:  aws.String("AIDAFAKEPROVISIONER"),
	}, nil
}
