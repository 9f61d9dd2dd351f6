package service

import (
	"context"
	"fmt"

	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/repository"
	"github.com/raywall/wanwu/pkg/lambdaarn"
	"github.com/raywall/wanwu/pkg/types"
)

// APIGatewayPrincipal é o principal de serviço que recebe permissão de invocação.
const APIGatewayPrincipal = "apigateway.amazonaws.com"

// APIGatewayService manipula a lógica de negócio para API Gateway.
type APIGatewayService struct {
	APIGWRepo  *repository.APIGWRepository
	LambdaRepo *repository.LambdaRepository
	Log        logging.LogManager
}

// StatementID nomeia o statement de permissão de um método do gateway.
func StatementID(gatewayID, resourceID, verb, functionName string) string {
	return fmt.Sprintf("%s-%s-%s-%s", gatewayID, resourceID, verb, functionName)
}

// SourceARN restringe a permissão de invocação a um verbo de um gateway.
func SourceARN(fn types.FunctionARN, gatewayID, verb string) string {
	partition := fn.Partition
	if partition == "" {
		partition = "aws"
	}
	return fmt.Sprintf("arn:%s:execute-api:%s:%s:%s/*/%s/*", partition, fn.Region, fn.AccountID, gatewayID, verb)
}

// EnsureIntegration aponta o método para a função e permite que o API Gateway
// a invoque. Devolve o statement id da permissão.
func (s *APIGatewayService) EnsureIntegration(ctx context.Context, gatewayID, resourceID, verb, functionARN string) (string, error) {
	fn, err := lambdaarn.Parse(functionARN)
	if err != nil {
		return "", err
	}

	if _, err := s.APIGWRepo.PutIntegration(ctx, gatewayID, resourceID, verb, fn); err != nil {
		return "", err
	}
	return s.grantInvoke(ctx, gatewayID, resourceID, verb, fn)
}

func (s *APIGatewayService) grantInvoke(ctx context.Context, gatewayID, resourceID, verb string, fn types.FunctionARN) (string, error) {
	sid := StatementID(gatewayID, resourceID, verb, fn.FunctionName)
	err := s.LambdaRepo.AddPermission(ctx, repository.Permission{
		FunctionName: fn.FunctionName,
		StatementID:  sid,
		Principal:    APIGatewayPrincipal,
		SourceARN:    SourceARN(fn, gatewayID, verb),
	})
	if err != nil {
		return "", err
	}
	loggerOrDiscard(s.Log).Debug("integration ready", "gateway", gatewayID, "resource", resourceID, "method", verb, "statement", sid)
	return sid, nil
}

// EnsureProxy liga os recursos raiz e {proxy+} do gateway à função e, se houver
// stage configurado, faz o deploy. Um stage cujas rotas não mudaram mantém o
// deployment atual.
func (s *APIGatewayService) EnsureProxy(ctx context.Context, gw types.GatewayConfig, functionARN string) (*types.DeploymentState, error) {
	log := loggerOrDiscard(s.Log).With("gateway", gw.Name)

	gatewayID, err := s.APIGWRepo.CreateGateway(ctx, gw.Name)
	if err != nil {
		return nil, err
	}
	log.Info("gateway ready", "id", gatewayID)

	st := &types.DeploymentState{
		GatewayName: gw.Name,
		GatewayID:   gatewayID,
		HTTPMethod:  gw.HTTPMethod,
		StageName:   gw.StageName,
	}

	root, err := s.APIGWRepo.ResourceByPath(ctx, gatewayID, "/")
	if err != nil {
		return nil, err
	}
	st.RootResource = *root
	rootChanged, err := s.ensureRoute(ctx, st, root, functionARN)
	if err != nil {
		return nil, err
	}

	proxy, err := s.APIGWRepo.WildChild(ctx, gatewayID, root.ResourceID)
	if err != nil {
		return nil, err
	}
	st.ProxyResource = *proxy
	proxyChanged, err := s.ensureRoute(ctx, st, proxy, functionARN)
	if err != nil {
		return nil, err
	}

	if gw.StageName == "" {
		return st, nil
	}
	current, err := s.APIGWRepo.StageDeployment(ctx, gatewayID, gw.StageName)
	if err != nil {
		return nil, err
	}
	if current != "" && !rootChanged && !proxyChanged {
		st.DeploymentID = current
		log.Info("stage up to date", "stage", gw.StageName, "deployment", current)
		return st, nil
	}
	st.DeploymentID, err = s.APIGWRepo.Deploy(ctx, gatewayID, gw.StageName)
	if err != nil {
		return nil, err
	}
	log.Info("stage deployed", "stage", gw.StageName, "deployment", st.DeploymentID)
	return st, nil
}

// ensureRoute informa se o método ou a integração precisou ser gravado.
func (s *APIGatewayService) ensureRoute(ctx context.Context, st *types.DeploymentState, res *types.ResourceInfo, functionARN string) (bool, error) {
	fn, err := lambdaarn.Parse(functionARN)
	if err != nil {
		return false, err
	}
	m, err := s.APIGWRepo.EnsureMethod(ctx, st.GatewayID, res.ResourceID, st.HTTPMethod)
	if err != nil {
		return false, fmt.Errorf("method %s %s: %w", st.HTTPMethod, res.Path, err)
	}

	changed := !repository.Integrated(m, fn)
	if changed {
		if _, err := s.APIGWRepo.PutIntegration(ctx, st.GatewayID, res.ResourceID, st.HTTPMethod, fn); err != nil {
			return false, fmt.Errorf("integration %s %s: %w", st.HTTPMethod, res.Path, err)
		}
	}
	sid, err := s.grantInvoke(ctx, st.GatewayID, res.ResourceID, st.HTTPMethod, fn)
	if err != nil {
		return false, fmt.Errorf("integration %s %s: %w", st.HTTPMethod, res.Path, err)
	}
	st.StatementIDs = append(st.StatementIDs, sid)
	loggerOrDiscard(s.Log).Info("route ready", "path", res.Path, "method", st.HTTPMethod, "changed", changed)
	return changed, nil
}

// DeleteProxy revoga as permissões de invocação e deleta o gateway.
func (s *APIGatewayService) DeleteProxy(ctx context.Context, st *types.DeploymentState) error {
	for _, sid := range st.StatementIDs {
		if err := s.LambdaRepo.RemovePermission(ctx, st.FunctionName, sid); err != nil {
			return err
		}
	}
	if st.GatewayID == "" {
		return nil
	}
	if err := s.APIGWRepo.DeleteGateway(ctx, st.GatewayID); err != nil {
		return err
	}
	loggerOrDiscard(s.Log).Info("gateway deleted", "id", st.GatewayID)
	return nil
}
