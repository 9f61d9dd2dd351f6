package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/raywall/wanwu/internal/client"
)

// Backoff usado enquanto a Lambda converge.
var (
	RoleAssumeAttempts = 8
	RoleAssumeBackoff  = 2 * time.Second
	UpdateWaitAttempts = 10
	UpdateWaitBackoff  = time.Second
)

// CodeSource é o zip em memória ou um objeto no S3.
type CodeSource struct {
	ZipFile  []byte
	S3Bucket string
	S3Key    string
}

// FunctionSpec carrega as configurações de criação da função.
type FunctionSpec struct {
	Name        string
	RoleARN     string
	Runtime     string
	Handler     string
	Timeout     int32
	MemorySize  int32
	Environment map[string]string
	Code        CodeSource
}

// Permission é um statement da resource policy que permite a um serviço invocar a função.
type Permission struct {
	FunctionName string
	StatementID  string
	Principal    string
	SourceARN    string
}

// LambdaRepository encapsula operações CRUD da AWS Lambda.
type LambdaRepository struct {
	Client *client.AWSClient
}

// GetFunction busca a função. Devolve nil, nil quando ela não existe.
func (r *LambdaRepository) GetFunction(ctx context.Context, name string) (*lambda.GetFunctionOutput, error) {
	out, err := r.Client.Lambda.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(name)})
	if err != nil {
		if client.IsAPIErrorCode(err, "ResourceNotFoundException") {
			return nil, nil
		}
		return nil, fmt.Errorf("GetFunction failed: %w", err)
	}
	return out, nil
}

// CreateFunction cria a função. Uma Role recém-criada pode ainda não ser
// assumível; nesse caso a chamada é repetida com backoff.
func (r *LambdaRepository) CreateFunction(ctx context.Context, spec FunctionSpec) (*lambda.CreateFunctionOutput, error) {
	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(spec.Name),
		Role:         aws.String(spec.RoleARN),
		Runtime:      mapRuntime(spec.Runtime),
		Handler:      aws.String(spec.Handler),
		Timeout:      aws.Int32(spec.Timeout),
		Code:         functionCode(spec.Code),
	}
	if spec.MemorySize > 0 {
		input.MemorySize = aws.Int32(spec.MemorySize)
	}
	if len(spec.Environment) > 0 {
		input.Environment = &lambdatypes.Environment{Variables: spec.Environment}
	}

	var out *lambda.CreateFunctionOutput
	err := client.Retry(ctx, RoleAssumeAttempts, RoleAssumeBackoff, func() error {
		var cerr error
		out, cerr = r.Client.Lambda.CreateFunction(ctx, input)
		if cerr == nil {
			return nil
		}
		if isRoleNotAssumable(cerr) {
			return cerr
		}
		return client.Permanent(cerr)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateFunction failed: %w", err)
	}
	return out, nil
}

// UpdateCode troca o pacote da função e espera a atualização terminar.
func (r *LambdaRepository) UpdateCode(ctx context.Context, name string, code CodeSource) (*lambda.UpdateFunctionCodeOutput, error) {
	input := &lambda.UpdateFunctionCodeInput{FunctionName: aws.String(name)}
	if len(code.ZipFile) > 0 {
		input.ZipFile = code.ZipFile
	} else {
		input.S3Bucket = aws.String(code.S3Bucket)
		input.S3Key = aws.String(code.S3Key)
	}

	out, err := r.Client.Lambda.UpdateFunctionCode(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("UpdateFunctionCode failed: %w", err)
	}
	if err := r.WaitForUpdate(ctx, name); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTimeout altera o timeout da função e espera a atualização terminar.
func (r *LambdaRepository) UpdateTimeout(ctx context.Context, name string, timeout int32) error {
	_, err := r.Client.Lambda.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(name),
		Timeout:      aws.Int32(timeout),
	})
	if err != nil {
		return fmt.Errorf("UpdateFunctionConfiguration failed: %w", err)
	}
	return r.WaitForUpdate(ctx, name)
}

// WaitForUpdate consulta a configuração da função até ela sair do estado
// Pending e a última atualização não estar mais em andamento.
func (r *LambdaRepository) WaitForUpdate(ctx context.Context, name string) error {
	err := client.Retry(ctx, UpdateWaitAttempts, UpdateWaitBackoff, func() error {
		cfg, err := r.Client.Lambda.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
			FunctionName: aws.String(name),
		})
		if err != nil {
			return client.Permanent(err)
		}
		if cfg.State == lambdatypes.StatePending {
			return fmt.Errorf("function %s is still pending", name)
		}
		switch cfg.LastUpdateStatus {
		case lambdatypes.LastUpdateStatusInProgress:
			return fmt.Errorf("update of %s still in progress", name)
		case lambdatypes.LastUpdateStatusFailed:
			return client.Permanent(fmt.Errorf("update of %s failed: %s", name, aws.ToString(cfg.LastUpdateStatusReason)))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("waiting for function update: %w", err)
	}
	return nil
}

// AddPermission concede o statement. Um statement id já presente conta como
// concedido.
func (r *LambdaRepository) AddPermission(ctx context.Context, p Permission) error {
	_, err := r.Client.Lambda.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(p.FunctionName),
		StatementId:  aws.String(p.StatementID),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String(p.Principal),
		SourceArn:    optional(p.SourceARN),
	})
	if err != nil && !client.IsAPIErrorCode(err, "ResourceConflictException") {
		return fmt.Errorf("AddPermission failed: %w", err)
	}
	return nil
}

// RemovePermission revoga um statement.
func (r *LambdaRepository) RemovePermission(ctx context.Context, functionName, statementID string) error {
	_, err := r.Client.Lambda.RemovePermission(ctx, &lambda.RemovePermissionInput{
		FunctionName: aws.String(functionName),
		StatementId:  aws.String(statementID),
	})
	if err != nil && !client.IsAPIErrorCode(err, "ResourceNotFoundException") {
		return fmt.Errorf("RemovePermission failed: %w", err)
	}
	return nil
}

// DeleteFunction deleta a função.
func (r *LambdaRepository) DeleteFunction(ctx context.Context, name string) error {
	_, err := r.Client.Lambda.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil && !client.IsAPIErrorCode(err, "ResourceNotFoundException") {
		return fmt.Errorf("DeleteFunction failed: %w", err)
	}
	return nil
}

func functionCode(code CodeSource) *lambdatypes.FunctionCode {
	if len(code.ZipFile) > 0 {
		return &lambdatypes.FunctionCode{ZipFile: code.ZipFile}
	}
	return &lambdatypes.FunctionCode{
		S3Bucket: aws.String(code.S3Bucket),
		S3Key:    aws.String(code.S3Key),
	}
}

func isRoleNotAssumable(err error) bool {
	return client.IsAPIErrorCode(err, "InvalidParameterValueException") &&
		strings.Contains(err.Error(), "cannot be assumed")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func mapRuntime(runtime string) lambdatypes.Runtime {
	switch strings.ToLower(strings.TrimSpace(runtime)) {
	case "provided.al2", "providedal2":
		return lambdatypes.RuntimeProvidedal2
	case "provided.al2023", "providedal2023":
		return lambdatypes.RuntimeProvidedal2023
	case "python3.12":
		return lambdatypes.RuntimePython312
	case "nodejs20.x":
		return lambdatypes.RuntimeNodejs20x
	default:
		return lambdatypes.Runtime(runtime)
	}
}
