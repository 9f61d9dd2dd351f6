package fake

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

func lambdaNotFound(name string) error {
	return &lambdatypes.ResourceNotFoundException{
		Message: aws.String(fmt.Sprintf("Function not found: %s", name)),
	}
}

func (a *Account) functionArn(name string) string {
	return fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", a.Region, a.AccountID, name)
}

func (a *Account) lookupFunction(name *string) (*function, error) {
	fn, ok := a.functions[aws.ToString(name)]
	if !ok {
		return nil, lambdaNotFound(a.functionArn(aws.ToString(name)))
	}
	return fn, nil
}

func (a *Account) roleExists(arn string) bool {
	for _, r := range a.roles {
		if r.arn == arn {
			return true
		}
	}
	return false
}

// resolveCode reads inline bytes or the referenced S3 object.
func (a *Account) resolveCode(zip []byte, bucket, key *string) ([]byte, error) {
	if len(zip) > 0 {
		return zip, nil
	}
	b, ok := a.objects[aws.ToString(bucket)+"/"+aws.ToString(key)]
	if !ok {
		return nil, &lambdatypes.InvalidParameterValueException{
			Message: aws.String("Error occurred while GetObject. S3 Error Code: NoSuchKey"),
		}
	}
	return b, nil
}

func (fn *function) configuration() *lambdatypes.FunctionConfiguration {
	status := lambdatypes.LastUpdateStatusSuccessful
	if fn.pending > 0 {
		status = lambdatypes.LastUpdateStatusInProgress
	}
	return &lambdatypes.FunctionConfiguration{
		FunctionName:     aws.String(fn.name),
		FunctionArn:      aws.String(fn.arn),
		Role:             aws.String(fn.role),
		Runtime:          lambdatypes.Runtime(fn.runtime),
		Handler:          aws.String(fn.handler),
		Timeout:          aws.Int32(fn.timeout),
		MemorySize:       aws.Int32(fn.memory),
		CodeSha256:       aws.String(fn.sha),
		CodeSize:         int64(len(fn.code)),
		State:            lambdatypes.StateActive,
		LastUpdateStatus: status,
	}
}

func (a *Account) GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetFunction"); err != nil {
		return nil, err
	}

	fn, err := a.lookupFunction(params.FunctionName)
	if err != nil {
		return nil, err
	}
	return &lambda.GetFunctionOutput{
		Configuration: fn.configuration(),
		Code:          &lambdatypes.FunctionCodeLocation{RepositoryType: aws.String("S3")},
	}, nil
}

func (a *Account) GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetFunctionConfiguration"); err != nil {
		return nil, err
	}

	fn, err := a.lookupFunction(params.FunctionName)
	if err != nil {
		return nil, err
	}
	cfg := fn.configuration()
	if fn.pending > 0 {
		fn.pending--
	}
	return &lambda.GetFunctionConfigurationOutput{
		FunctionName:     cfg.FunctionName,
		FunctionArn:      cfg.FunctionArn,
		Timeout:          cfg.Timeout,
		CodeSha256:       cfg.CodeSha256,
		State:            cfg.State,
		LastUpdateStatus: cfg.LastUpdateStatus,
	}, nil
}

func (a *Account) CreateFunction(ctx context.Context, params *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("CreateFunction"); err != nil {
		return nil, err
	}

	name := aws.ToString(params.FunctionName)
	if _, ok := a.functions[name]; ok {
		return nil, &lambdatypes.ResourceConflictException{
			Message: aws.String("Function already exist: " + name),
		}
	}
	if a.RoleAssumeFailures > 0 || !a.roleExists(aws.ToString(params.Role)) {
		if a.RoleAssumeFailures > 0 {
			a.RoleAssumeFailures--
		}
		return nil, &lambdatypes.InvalidParameterValueException{
			Message: aws.String("The role defined for the function cannot be assumed by Lambda."),
		}
	}
	if params.Code == nil {
		return nil, &lambdatypes.InvalidParameterValueException{Message: aws.String("Code is required")}
	}
	code, err := a.resolveCode(params.Code.ZipFile, params.Code.S3Bucket, params.Code.S3Key)
	if err != nil {
		return nil, err
	}

	fn := &function{
		name:        name,
		arn:         a.functionArn(name),
		role:        aws.ToString(params.Role),
		runtime:     string(params.Runtime),
		handler:     aws.ToString(params.Handler),
		timeout:     3,
		memory:      128,
		code:        code,
		sha:         codeSha256(code),
		pending:     a.PendingPolls,
		permissions: make(map[string]permission),
	}
	if params.Timeout != nil {
		fn.timeout = *params.Timeout
	}
	if params.MemorySize != nil {
		fn.memory = *params.MemorySize
	}
	if params.Environment != nil {
		fn.env = params.Environment.Variables
	}
	a.functions[name] = fn

	cfg := fn.configuration()
	return &lambda.CreateFunctionOutput{
		FunctionName:     cfg.FunctionName,
		FunctionArn:      cfg.FunctionArn,
		Role:             cfg.Role,
		Timeout:          cfg.Timeout,
		CodeSha256:       cfg.CodeSha256,
		State:            lambdatypes.StatePending,
		LastUpdateStatus: cfg.LastUpdateStatus,
	}, nil
}

func updateInProgress() error {
	return &lambdatypes.ResourceConflictException{
		Message: aws.String("The operation cannot be performed at this time. An update is in progress for resource"),
	}
}

func (a *Account) UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("UpdateFunctionCode"); err != nil {
		return nil, err
	}

	fn, err := a.lookupFunction(params.FunctionName)
	if err != nil {
		return nil, err
	}
	if fn.pending > 0 {
		return nil, updateInProgress()
	}
	code, err := a.resolveCode(params.ZipFile, params.S3Bucket, params.S3Key)
	if err != nil {
		return nil, err
	}
	fn.code = code
	fn.sha = codeSha256(code)
	fn.pending = a.PendingPolls
	a.LastCodeUpdate = code

	cfg := fn.configuration()
	return &lambda.UpdateFunctionCodeOutput{
		FunctionName:     cfg.FunctionName,
		FunctionArn:      cfg.FunctionArn,
		CodeSha256:       cfg.CodeSha256,
		LastUpdateStatus: cfg.LastUpdateStatus,
	}, nil
}

func (a *Account) UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("UpdateFunctionConfiguration"); err != nil {
		return nil, err
	}

	fn, err := a.lookupFunction(params.FunctionName)
	if err != nil {
		return nil, err
	}
	if fn.pending > 0 {
		return nil, updateInProgress()
	}
	if params.Timeout != nil {
		fn.timeout = *params.Timeout
	}
	if params.MemorySize != nil {
		fn.memory = *params.MemorySize
	}
	fn.pending = a.PendingPolls

	cfg := fn.configuration()
	return &lambda.UpdateFunctionConfigurationOutput{
		FunctionName:     cfg.FunctionName,
		FunctionArn:      cfg.FunctionArn,
		Timeout:          cfg.Timeout,
		LastUpdateStatus: cfg.LastUpdateStatus,
	}, nil
}

func (a *Account) DeleteFunction(ctx context.Context, params *lambda.DeleteFunctionInput, optFns ...func(*lambda.Options)) (*lambda.DeleteFunctionOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("DeleteFunction"); err != nil {
		return nil, err
	}

	if _, err := a.lookupFunction(params.FunctionName); err != nil {
		return nil, err
	}
	delete(a.functions, aws.ToString(params.FunctionName))
	return &lambda.DeleteFunctionOutput{}, nil
}

func (a *Account) AddPermission(ctx context.Context, params *lambda.AddPermissionInput, optFns ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("AddPermission"); err != nil {
		return nil, err
	}

	fn, err := a.lookupFunction(params.FunctionName)
	if err != nil {
		return nil, err
	}
	sid := aws.ToString(params.StatementId)
	if _, ok := fn.permissions[sid]; ok {
		return nil, &lambdatypes.ResourceConflictException{
			Message: aws.String(fmt.Sprintf("The statement id (%s) provided already exists. Please provide a new statement id, or remove the existing statement.", sid)),
		}
	}
	fn.permissions[sid] = permission{
		action:    aws.ToString(params.Action),
		principal: aws.ToString(params.Principal),
		sourceArn: aws.ToString(params.SourceArn),
	}
	statement := fmt.Sprintf(`{"Sid":%q,"Effect":"Allow","Principal":{"Service":%q},"Action":%q,"Resource":%q}`,
		sid, aws.ToString(params.Principal), aws.ToString(params.Action), fn.arn)
	return &lambda.AddPermissionOutput{Statement: aws.String(statement)}, nil
}

func (a *Account) RemovePermission(ctx context.Context, params *lambda.RemovePermissionInput, optFns ...func(*lambda.Options)) (*lambda.RemovePermissionOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("RemovePermission"); err != nil {
		return nil, err
	}

	fn, err := a.lookupFunction(params.FunctionName)
	if err != nil {
		return nil, err
	}
	sid := aws.ToString(params.StatementId)
	if _, ok := fn.permissions[sid]; !ok {
		return nil, &lambdatypes.ResourceNotFoundException{
			Message: aws.String("The resource you requested does not exist."),
		}
	}
	delete(fn.permissions, sid)
	return &lambda.RemovePermissionOutput{}, nil
}

// Permission returns the principal and source ARN of a granted statement.
func (a *Account) Permission(functionName, sid string) (principal, sourceArn string, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn, found := a.functions[functionName]
	if !found {
		return "", "", false
	}
	p, ok := fn.permissions[sid]
	return p.principal, p.sourceArn, ok
}

// SetTimeout changes a function's timeout out of band, simulating drift.
func (a *Account) SetTimeout(functionName string, timeout int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fn, ok := a.functions[functionName]; ok {
		fn.timeout = timeout
	}
}
