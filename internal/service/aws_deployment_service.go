package service

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/raywall/wanwu/internal/client"
	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/repository"
	"github.com/raywall/wanwu/pkg/types"
)

// DeploymentService orquestra a criação e a remoção da pilha inteira: Role de
// execução, função, Log Group e o gateway proxy na frente deles.
type DeploymentService struct {
	IAMService        *IAMService
	FunctionService   *FunctionService
	CWLogsService     *CWLogsService
	APIGatewayService *APIGatewayService
	APIGWRepo         *repository.APIGWRepository
	ArtifactRepo      *repository.ArtifactRepository
	Log               logging.LogManager
}

// NewDeploymentService liga todos os repositórios e serviços a c.
func NewDeploymentService(c *client.AWSClient, log logging.LogManager) *DeploymentService {
	log = loggerOrDiscard(log)
	apigwRepo := &repository.APIGWRepository{Client: c}
	lambdaRepo := &repository.LambdaRepository{Client: c}
	artifactRepo := &repository.ArtifactRepository{Client: c}

	return &DeploymentService{
		IAMService: &IAMService{
			IAMRepo: &repository.IAMRepository{Client: c},
			Log:     log,
		},
		FunctionService: &FunctionService{
			LambdaRepo:   lambdaRepo,
			ArtifactRepo: artifactRepo,
			Log:          log,
		},
		CWLogsService: &CWLogsService{
			CWLogsRepo: &repository.CWLogsRepository{Client: c},
			Log:        log,
		},
		APIGatewayService: &APIGatewayService{
			APIGWRepo:  apigwRepo,
			LambdaRepo: lambdaRepo,
			Log:        log,
		},
		APIGWRepo:    apigwRepo,
		ArtifactRepo: artifactRepo,
		Log:          log,
	}
}

// EnsureDeployment orquestra toda a criação ou atualização do recurso. Uma falha
// interrompe a execução sem desfazer o que já foi criado; rodar de novo continua
// de onde parou.
func (s *DeploymentService) EnsureDeployment(ctx context.Context, gw types.GatewayConfig, lc types.LambdaConfig) (*types.DeploymentState, error) {
	roleARN, err := s.IAMService.EnsureRole(ctx, lc.RoleName, lc.PolicyARNs)
	if err != nil {
		return nil, fmt.Errorf("IAM role setup failed: %w", err)
	}

	fn, err := s.FunctionService.EnsureFunction(ctx, lc, roleARN)
	if err != nil {
		return nil, fmt.Errorf("Lambda function setup failed: %w", err)
	}
	functionARN := aws.ToString(fn.Configuration.FunctionArn)

	logGroup, err := s.CWLogsService.EnsureLogGroup(ctx, lc.FunctionName, lc.LogRetention)
	if err != nil {
		return nil, fmt.Errorf("log group setup failed: %w", err)
	}

	st, err := s.APIGatewayService.EnsureProxy(ctx, gw, functionARN)
	if err != nil {
		return nil, fmt.Errorf("API Gateway setup failed: %w", err)
	}

	st.RoleName = lc.RoleName
	st.RoleArn = roleARN
	st.FunctionName = lc.FunctionName
	st.FunctionArn = functionARN
	st.CodeSha256 = aws.ToString(fn.Configuration.CodeSha256)
	st.LogGroup = logGroup
	st.AttachedPolicies = AttachedPolicies(lc.PolicyARNs)
	if lc.ArtifactBucket != "" {
		key, err := artifactKey(lc.FunctionName, st.CodeSha256)
		if err != nil {
			return nil, err
		}
		st.ArtifactBucket = lc.ArtifactBucket
		st.ArtifactKey = key
	}
	return st, nil
}

// CheckDeploymentExists verifica se a Role e a função registradas em st ainda
// existem na AWS.
func (s *DeploymentService) CheckDeploymentExists(ctx context.Context, st *types.DeploymentState) (bool, error) {
	ok, err := s.IAMService.CheckRoleExists(ctx, st.RoleName)
	if err != nil || !ok {
		return false, err
	}
	fn, err := s.FunctionService.LambdaRepo.GetFunction(ctx, st.FunctionName)
	if err != nil {
		return false, err
	}
	return fn != nil, nil
}

// Resolve reconstrói o estado de um deploy existente só a partir da
// configuração, sem criar nada. Recursos ausentes ficam vazios.
func (s *DeploymentService) Resolve(ctx context.Context, gw types.GatewayConfig, lc types.LambdaConfig) (*types.DeploymentState, error) {
	st := &types.DeploymentState{
		GatewayName:      gw.Name,
		HTTPMethod:       gw.HTTPMethod,
		StageName:        gw.StageName,
		RoleName:         lc.RoleName,
		FunctionName:     lc.FunctionName,
		LogGroup:         repository.LogGroupName(lc.FunctionName),
		AttachedPolicies: AttachedPolicies(lc.PolicyARNs),
	}

	gatewayID, err := s.APIGWRepo.FindGateway(ctx, gw.Name)
	if err != nil {
		return nil, err
	}
	st.GatewayID = gatewayID
	if gatewayID != "" {
		for _, path := range []string{"/", "/" + repository.ProxyPathPart} {
			res, err := s.APIGWRepo.ResourceByPath(ctx, gatewayID, path)
			if errors.Is(err, repository.ErrResourceNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if path == "/" {
				st.RootResource = *res
			} else {
				st.ProxyResource = *res
			}
			st.StatementIDs = append(st.StatementIDs, StatementID(gatewayID, res.ResourceID, gw.HTTPMethod, lc.FunctionName))
		}
	}

	fn, err := s.FunctionService.LambdaRepo.GetFunction(ctx, lc.FunctionName)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		st.FunctionArn = aws.ToString(fn.Configuration.FunctionArn)
		st.CodeSha256 = aws.ToString(fn.Configuration.CodeSha256)
		if lc.ArtifactBucket != "" {
			key, err := artifactKey(lc.FunctionName, st.CodeSha256)
			if err != nil {
				return nil, err
			}
			st.ArtifactBucket = lc.ArtifactBucket
			st.ArtifactKey = key
		}
	}
	return st, nil
}

// DeleteDeployment orquestra a exclusão completa dos recursos registrados em st.
// Segue em frente após uma etapa com falha e reporta todas as falhas juntas.
func (s *DeploymentService) DeleteDeployment(ctx context.Context, st *types.DeploymentState) error {
	var errs []error

	if err := s.APIGatewayService.DeleteProxy(ctx, st); err != nil {
		errs = append(errs, fmt.Errorf("API Gateway deletion failed: %w", err))
	}
	if err := s.FunctionService.DeleteFunction(ctx, st.FunctionName); err != nil {
		errs = append(errs, fmt.Errorf("Lambda deletion failed: %w", err))
	}
	if st.LogGroup != "" {
		if err := s.CWLogsService.DeleteLogGroup(ctx, st.LogGroup); err != nil {
			errs = append(errs, fmt.Errorf("log group deletion failed: %w", err))
		}
	}
	if err := s.IAMService.DeleteRoleAndPolicies(ctx, st.RoleName, st.AttachedPolicies); err != nil {
		errs = append(errs, fmt.Errorf("IAM role deletion failed: %w", err))
	}
	if st.ArtifactBucket != "" && st.ArtifactKey != "" {
		if err := s.ArtifactRepo.Delete(ctx, st.ArtifactBucket, st.ArtifactKey); err != nil {
			errs = append(errs, fmt.Errorf("artifact deletion failed: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	loggerOrDiscard(s.Log).Info("deployment deleted", "gateway", st.GatewayName, "function", st.FunctionName)
	return nil
}

// artifactKey deriva a chave no S3 a partir do digest base64 informado pela Lambda.
func artifactKey(functionName, codeSha256 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(codeSha256)
	if err != nil {
		return "", fmt.Errorf("decoding code digest %q: %w", codeSha256, err)
	}
	return repository.ArtifactKey(functionName, hex.EncodeToString(raw)), nil
}
