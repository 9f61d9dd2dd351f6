package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	apigw "github.com/aws/aws-sdk-go-v2/service/apigateway"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigateway/types"

	"github.com/raywall/wanwu/internal/client"
	"github.com/raywall/wanwu/pkg/lambdaarn"
	"github.com/raywall/wanwu/pkg/types"
)

// PageSize é o limite de listagem de REST APIs e recursos. As buscas não seguem
// tokens de paginação; uma página cheia vira ErrPageOverflow.
const PageSize = 100

// ProxyPathPart é a variável de caminho gulosa do recurso filho que captura tudo.
const ProxyPathPart = "{proxy+}"

var (
	ErrPageOverflow     = errors.New("listing filled a whole page; pagination is not supported")
	ErrResourceNotFound = errors.New("resource not found")
)

// APIGWRepository encapsula as operações da AWS API Gateway (v1) usadas para
// rotear uma REST API para uma função Lambda.
type APIGWRepository struct {
	Client *client.AWSClient
}

// FindGateway devolve o ID da primeira REST API chamada name, ou "" quando não
// existe nenhuma.
func (r *APIGWRepository) FindGateway(ctx context.Context, name string) (string, error) {
	out, err := r.Client.APIGW.GetRestApis(ctx, &apigw.GetRestApisInput{Limit: aws.Int32(PageSize)})
	if err != nil {
		return "", fmt.Errorf("GetRestApis failed: %w", err)
	}
	if len(out.Items) >= PageSize {
		return "", fmt.Errorf("listing REST APIs: %w", ErrPageOverflow)
	}
	for _, api := range out.Items {
		if aws.ToString(api.Name) == name {
			return aws.ToString(api.Id), nil
		}
	}
	return "", nil
}

// CreateGateway devolve o ID da REST API com o nome dado, criando-a se não existir.
func (r *APIGWRepository) CreateGateway(ctx context.Context, name string) (string, error) {
	id, err := r.FindGateway(ctx, name)
	if err != nil || id != "" {
		return id, err
	}

	created, err := r.Client.APIGW.CreateRestApi(ctx, &apigw.CreateRestApiInput{Name: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("CreateRestApi failed: %w", err)
	}
	return aws.ToString(created.Id), nil
}

// ResourceByPath busca um recurso do gateway pelo caminho exato.
func (r *APIGWRepository) ResourceByPath(ctx context.Context, gatewayID, path string) (*types.ResourceInfo, error) {
	out, err := r.Client.APIGW.GetResources(ctx, &apigw.GetResourcesInput{
		RestApiId: aws.String(gatewayID),
		Limit:     aws.Int32(PageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("GetResources failed: %w", err)
	}
	if len(out.Items) >= PageSize {
		return nil, fmt.Errorf("listing resources of %s: %w", gatewayID, ErrPageOverflow)
	}
	for _, res := range out.Items {
		if aws.ToString(res.Path) == path {
			info := resourceInfo(res.Id, res.ParentId, res.Path, res.PathPart)
			return &info, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrResourceNotFound)
}

// WildChild cria o filho {proxy+} de parentID. Se o filho já existir, ele é
// buscado em vez de criado.
func (r *APIGWRepository) WildChild(ctx context.Context, gatewayID, parentID string) (*types.ResourceInfo, error) {
	out, err := r.Client.APIGW.CreateResource(ctx, &apigw.CreateResourceInput{
		RestApiId: aws.String(gatewayID),
		ParentId:  aws.String(parentID),
		PathPart:  aws.String(ProxyPathPart),
	})
	if err != nil {
		if client.IsAPIErrorCode(err, "ConflictException") {
			return r.ResourceByPath(ctx, gatewayID, "/"+ProxyPathPart)
		}
		return nil, fmt.Errorf("CreateResource failed for %s: %w", ProxyPathPart, err)
	}
	info := resourceInfo(out.Id, out.ParentId, out.Path, out.PathPart)
	return &info, nil
}

// EnsureMethod devolve o método existente ou o cria sem autorização.
func (r *APIGWRepository) EnsureMethod(ctx context.Context, gatewayID, resourceID, verb string) (*apigwtypes.Method, error) {
	got, err := r.Client.APIGW.GetMethod(ctx, &apigw.GetMethodInput{
		RestApiId:  aws.String(gatewayID),
		ResourceId: aws.String(resourceID),
		HttpMethod: aws.String(verb),
	})
	if err == nil {
		return &apigwtypes.Method{
			HttpMethod:        got.HttpMethod,
			AuthorizationType: got.AuthorizationType,
			MethodIntegration: got.MethodIntegration,
		}, nil
	}
	if !client.IsAPIErrorCode(err, "NotFoundException") {
		return nil, fmt.Errorf("GetMethod failed: %w", err)
	}

	put, err := r.Client.APIGW.PutMethod(ctx, &apigw.PutMethodInput{
		RestApiId:         aws.String(gatewayID),
		ResourceId:        aws.String(resourceID),
		HttpMethod:        aws.String(verb),
		AuthorizationType: aws.String("NONE"),
	})
	if err != nil {
		return nil, fmt.Errorf("PutMethod failed: %w", err)
	}
	return &apigwtypes.Method{
		HttpMethod:        put.HttpMethod,
		AuthorizationType: put.AuthorizationType,
	}, nil
}

// IntegrationURI é a URI de invocação usada pelo API Gateway num proxy Lambda.
// Versão ou alias do ARN não entram na URI.
func IntegrationURI(fn types.FunctionARN) string {
	return fmt.Sprintf("arn:aws:apigateway:%s:lambda:path/2015-03-31/functions/%s/invocations",
		fn.Region, lambdaarn.Unqualified(fn))
}

// Integrated informa se o método já tem uma integração AWS_PROXY apontando para fn.
func Integrated(m *apigwtypes.Method, fn types.FunctionARN) bool {
	if m == nil || m.MethodIntegration == nil {
		return false
	}
	return m.MethodIntegration.Type == apigwtypes.IntegrationTypeAwsProxy &&
		aws.ToString(m.MethodIntegration.Uri) == IntegrationURI(fn)
}

// PutIntegration define uma integração AWS_PROXY apontando para fn. A chamada é
// idempotente no serviço.
func (r *APIGWRepository) PutIntegration(ctx context.Context, gatewayID, resourceID, verb string, fn types.FunctionARN) (*apigw.PutIntegrationOutput, error) {
	out, err := r.Client.APIGW.PutIntegration(ctx, &apigw.PutIntegrationInput{
		RestApiId:             aws.String(gatewayID),
		ResourceId:            aws.String(resourceID),
		HttpMethod:            aws.String(verb),
		Type:                  apigwtypes.IntegrationTypeAwsProxy,
		IntegrationHttpMethod: aws.String("POST"),
		Uri:                   aws.String(IntegrationURI(fn)),
	})
	if err != nil {
		return nil, fmt.Errorf("PutIntegration failed: %w", err)
	}
	return out, nil
}

// StageDeployment devolve o deployment para o qual o stage aponta, ou "" quando
// o stage não existe.
func (r *APIGWRepository) StageDeployment(ctx context.Context, gatewayID, stage string) (string, error) {
	out, err := r.Client.APIGW.GetStage(ctx, &apigw.GetStageInput{
		RestApiId: aws.String(gatewayID),
		StageName: aws.String(stage),
	})
	if err != nil {
		if client.IsAPIErrorCode(err, "NotFoundException") {
			return "", nil
		}
		return "", fmt.Errorf("GetStage failed: %w", err)
	}
	return aws.ToString(out.DeploymentId), nil
}

// Deploy cria um novo deployment do gateway e aponta o stage para ele.
func (r *APIGWRepository) Deploy(ctx context.Context, gatewayID, stage string) (string, error) {
	dep, err := r.Client.APIGW.CreateDeployment(ctx, &apigw.CreateDeploymentInput{
		RestApiId:   aws.String(gatewayID),
		Description: aws.String("wanwu"),
	})
	if err != nil {
		return "", fmt.Errorf("CreateDeployment failed: %w", err)
	}
	deploymentID := aws.ToString(dep.Id)

	current, err := r.StageDeployment(ctx, gatewayID, stage)
	if err != nil {
		return "", err
	}
	if current != "" {
		_, err = r.Client.APIGW.UpdateStage(ctx, &apigw.UpdateStageInput{
			RestApiId: aws.String(gatewayID),
			StageName: aws.String(stage),
			PatchOperations: []apigwtypes.PatchOperation{{
				Op:    apigwtypes.OpReplace,
				Path:  aws.String("/deploymentId"),
				Value: aws.String(deploymentID),
			}},
		})
		if err != nil {
			return "", fmt.Errorf("UpdateStage failed: %w", err)
		}
		return deploymentID, nil
	}

	_, err = r.Client.APIGW.CreateStage(ctx, &apigw.CreateStageInput{
		RestApiId:    aws.String(gatewayID),
		StageName:    aws.String(stage),
		DeploymentId: aws.String(deploymentID),
	})
	if err != nil {
		return "", fmt.Errorf("CreateStage failed: %w", err)
	}
	return deploymentID, nil
}

// DeleteGateway remove a REST API com todos os recursos e stages.
func (r *APIGWRepository) DeleteGateway(ctx context.Context, gatewayID string) error {
	_, err := r.Client.APIGW.DeleteRestApi(ctx, &apigw.DeleteRestApiInput{RestApiId: aws.String(gatewayID)})
	if err != nil && !client.IsAPIErrorCode(err, "NotFoundException") {
		return fmt.Errorf("DeleteRestApi failed: %w", err)
	}
	return nil
}

func resourceInfo(id, parentID, path, pathPart *string) types.ResourceInfo {
	return types.ResourceInfo{
		ResourceID: aws.ToString(id),
		ParentID:   aws.ToString(parentID),
		Path:       aws.ToString(path),
		PathPart:   aws.ToString(pathPart),
	}
}
