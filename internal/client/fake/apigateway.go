package fake

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	apigw "github.com/aws/aws-sdk-go-v2/service/apigateway"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigateway/types"
)

func apigwNotFound(msg string) error {
	return &apigwtypes.NotFoundException{Message: aws.String(msg)}
}

func apigwConflict(msg string) error {
	return &apigwtypes.ConflictException{Message: aws.String(msg)}
}

// AddGateway creates a REST API directly, bypassing call accounting.
func (a *Account) AddGateway(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.createRestAPI(name)
}

func (a *Account) createRestAPI(name string) string {
	api := &restAPI{
		id:        a.nextID("api"),
		name:      name,
		resources: make(map[string]*resource),
		stages:    make(map[string]string),
	}
	root := &resource{id: a.nextID("res"), path: "/", methods: make(map[string]*method)}
	api.resources[root.id] = root
	api.order = append(api.order, root.id)
	a.apis[api.id] = api
	a.apiOrder = append(a.apiOrder, api.id)
	return api.id
}

func (a *Account) lookupAPI(id *string) (*restAPI, error) {
	api, ok := a.apis[aws.ToString(id)]
	if !ok {
		return nil, apigwNotFound("Invalid API identifier specified")
	}
	return api, nil
}

func (a *Account) lookupMethod(apiID, resourceID, verb *string) (*resource, *method, error) {
	api, err := a.lookupAPI(apiID)
	if err != nil {
		return nil, nil, err
	}
	res, ok := api.resources[aws.ToString(resourceID)]
	if !ok {
		return nil, nil, apigwNotFound("Invalid Resource identifier specified")
	}
	return res, res.methods[aws.ToString(verb)], nil
}

func limitOf(limit *int32) int {
	if limit == nil {
		return 25
	}
	return int(*limit)
}

func (a *Account) GetRestApis(ctx context.Context, params *apigw.GetRestApisInput, optFns ...func(*apigw.Options)) (*apigw.GetRestApisOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetRestApis"); err != nil {
		return nil, err
	}

	out := &apigw.GetRestApisOutput{}
	for _, id := range a.apiOrder {
		if len(out.Items) == limitOf(params.Limit) {
			out.Position = aws.String(id)
			break
		}
		api, ok := a.apis[id]
		if !ok {
			continue
		}
		out.Items = append(out.Items, apigwtypes.RestApi{Id: aws.String(api.id), Name: aws.String(api.name)})
	}
	return out, nil
}

func (a *Account) CreateRestApi(ctx context.Context, params *apigw.CreateRestApiInput, optFns ...func(*apigw.Options)) (*apigw.CreateRestApiOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("CreateRestApi"); err != nil {
		return nil, err
	}

	id := a.createRestAPI(aws.ToString(params.Name))
	return &apigw.CreateRestApiOutput{Id: aws.String(id), Name: params.Name}, nil
}

func (a *Account) DeleteRestApi(ctx context.Context, params *apigw.DeleteRestApiInput, optFns ...func(*apigw.Options)) (*apigw.DeleteRestApiOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("DeleteRestApi"); err != nil {
		return nil, err
	}

	if _, err := a.lookupAPI(params.RestApiId); err != nil {
		return nil, err
	}
	delete(a.apis, aws.ToString(params.RestApiId))
	return &apigw.DeleteRestApiOutput{}, nil
}

func (a *Account) GetResources(ctx context.Context, params *apigw.GetResourcesInput, optFns ...func(*apigw.Options)) (*apigw.GetResourcesOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetResources"); err != nil {
		return nil, err
	}

	api, err := a.lookupAPI(params.RestApiId)
	if err != nil {
		return nil, err
	}
	out := &apigw.GetResourcesOutput{}
	for _, id := range api.order {
		if len(out.Items) == limitOf(params.Limit) {
			out.Position = aws.String(id)
			break
		}
		res := api.resources[id]
		item := apigwtypes.Resource{
			Id:       aws.String(res.id),
			Path:     aws.String(res.path),
			PathPart: aws.String(res.pathPart),
		}
		if res.parentID != "" {
			item.ParentId = aws.String(res.parentID)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// AddResources pads a REST API with n extra children of its root resource.
func (a *Account) AddResources(apiID string, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	api := a.apis[apiID]
	rootID := api.order[0]
	for i := 0; i < n; i++ {
		part := fmt.Sprintf("filler%d", i)
		res := &resource{id: a.nextID("res"), parentID: rootID, path: "/" + part, pathPart: part, methods: make(map[string]*method)}
		api.resources[res.id] = res
		api.order = append(api.order, res.id)
	}
}

func (a *Account) CreateResource(ctx context.Context, params *apigw.CreateResourceInput, optFns ...func(*apigw.Options)) (*apigw.CreateResourceOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("CreateResource"); err != nil {
		return nil, err
	}

	api, err := a.lookupAPI(params.RestApiId)
	if err != nil {
		return nil, err
	}
	parent, ok := api.resources[aws.ToString(params.ParentId)]
	if !ok {
		return nil, apigwNotFound("Invalid Resource identifier specified")
	}
	part := aws.ToString(params.PathPart)
	for _, res := range api.resources {
		if res.parentID == parent.id && res.pathPart == part {
			return nil, apigwConflict("Another resource with the same parent already has this name: " + part)
		}
	}

	path := parent.path + "/" + part
	if parent.path == "/" {
		path = "/" + part
	}
	res := &resource{id: a.nextID("res"), parentID: parent.id, path: path, pathPart: part, methods: make(map[string]*method)}
	api.resources[res.id] = res
	api.order = append(api.order, res.id)

	return &apigw.CreateResourceOutput{
		Id:       aws.String(res.id),
		ParentId: aws.String(res.parentID),
		Path:     aws.String(res.path),
		PathPart: aws.String(res.pathPart),
	}, nil
}

func (a *Account) GetMethod(ctx context.Context, params *apigw.GetMethodInput, optFns ...func(*apigw.Options)) (*apigw.GetMethodOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetMethod"); err != nil {
		return nil, err
	}

	_, m, err := a.lookupMethod(params.RestApiId, params.ResourceId, params.HttpMethod)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apigwNotFound("Invalid Method identifier specified")
	}
	out := &apigw.GetMethodOutput{
		HttpMethod:        params.HttpMethod,
		AuthorizationType: aws.String(m.authorization),
	}
	if m.integrationType != "" {
		out.MethodIntegration = &apigwtypes.Integration{
			Type:       apigwtypes.IntegrationType(m.integrationType),
			Uri:        aws.String(m.integrationURI),
			HttpMethod: aws.String(m.integrationVerb),
		}
	}
	return out, nil
}

func (a *Account) PutMethod(ctx context.Context, params *apigw.PutMethodInput, optFns ...func(*apigw.Options)) (*apigw.PutMethodOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("PutMethod"); err != nil {
		return nil, err
	}

	res, m, err := a.lookupMethod(params.RestApiId, params.ResourceId, params.HttpMethod)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return nil, apigwConflict("Method already exists for this resource")
	}
	res.methods[aws.ToString(params.HttpMethod)] = &method{authorization: aws.ToString(params.AuthorizationType)}
	return &apigw.PutMethodOutput{
		HttpMethod:        params.HttpMethod,
		AuthorizationType: params.AuthorizationType,
	}, nil
}

func (a *Account) PutIntegration(ctx context.Context, params *apigw.PutIntegrationInput, optFns ...func(*apigw.Options)) (*apigw.PutIntegrationOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("PutIntegration"); err != nil {
		return nil, err
	}

	_, m, err := a.lookupMethod(params.RestApiId, params.ResourceId, params.HttpMethod)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apigwNotFound("Invalid Method identifier specified")
	}
	m.integrationType = string(params.Type)
	m.integrationURI = aws.ToString(params.Uri)
	m.integrationVerb = aws.ToString(params.IntegrationHttpMethod)
	return &apigw.PutIntegrationOutput{
		Type:       params.Type,
		Uri:        params.Uri,
		HttpMethod: params.IntegrationHttpMethod,
	}, nil
}

func (a *Account) CreateDeployment(ctx context.Context, params *apigw.CreateDeploymentInput, optFns ...func(*apigw.Options)) (*apigw.CreateDeploymentOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("CreateDeployment"); err != nil {
		return nil, err
	}

	api, err := a.lookupAPI(params.RestApiId)
	if err != nil {
		return nil, err
	}
	id := a.nextID("dep")
	api.deployments = append(api.deployments, id)
	if stage := aws.ToString(params.StageName); stage != "" {
		api.stages[stage] = id
	}
	return &apigw.CreateDeploymentOutput{Id: aws.String(id), Description: params.Description}, nil
}

func (a *Account) GetStage(ctx context.Context, params *apigw.GetStageInput, optFns ...func(*apigw.Options)) (*apigw.GetStageOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetStage"); err != nil {
		return nil, err
	}

	api, err := a.lookupAPI(params.RestApiId)
	if err != nil {
		return nil, err
	}
	dep, ok := api.stages[aws.ToString(params.StageName)]
	if !ok {
		return nil, apigwNotFound("Invalid Stage identifier specified")
	}
	return &apigw.GetStageOutput{StageName: params.StageName, DeploymentId: aws.String(dep)}, nil
}

func (a *Account) CreateStage(ctx context.Context, params *apigw.CreateStageInput, optFns ...func(*apigw.Options)) (*apigw.CreateStageOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("CreateStage"); err != nil {
		return nil, err
	}

	api, err := a.lookupAPI(params.RestApiId)
	if err != nil {
		return nil, err
	}
	stage := aws.ToString(params.StageName)
	if _, ok := api.stages[stage]; ok {
		return nil, apigwConflict("Stage already exists")
	}
	if !api.hasDeployment(aws.ToString(params.DeploymentId)) {
		return nil, apigwNotFound("Invalid Deployment identifier specified")
	}
	api.stages[stage] = aws.ToString(params.DeploymentId)
	return &apigw.CreateStageOutput{StageName: params.StageName, DeploymentId: params.DeploymentId}, nil
}

func (a *Account) UpdateStage(ctx context.Context, params *apigw.UpdateStageInput, optFns ...func(*apigw.Options)) (*apigw.UpdateStageOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("UpdateStage"); err != nil {
		return nil, err
	}

	api, err := a.lookupAPI(params.RestApiId)
	if err != nil {
		return nil, err
	}
	stage := aws.ToString(params.StageName)
	if _, ok := api.stages[stage]; !ok {
		return nil, apigwNotFound("Invalid Stage identifier specified")
	}
	for _, op := range params.PatchOperations {
		if op.Op == apigwtypes.OpReplace && aws.ToString(op.Path) == "/deploymentId" {
			if !api.hasDeployment(aws.ToString(op.Value)) {
				return nil, apigwNotFound("Invalid Deployment identifier specified")
			}
			api.stages[stage] = aws.ToString(op.Value)
		}
	}
	return &apigw.UpdateStageOutput{StageName: params.StageName, DeploymentId: aws.String(api.stages[stage])}, nil
}

func (api *restAPI) hasDeployment(id string) bool {
	for _, dep := range api.deployments {
		if dep == id {
			return true
		}
	}
	return false
}

// DeleteStage drops a stage directly, bypassing call accounting.
func (a *Account) DeleteStage(apiID, stage string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	api, ok := a.apis[apiID]
	if !ok {
		return apigwNotFound("Invalid API identifier specified")
	}
	if _, ok := api.stages[stage]; !ok {
		return apigwNotFound("Invalid Stage identifier specified")
	}
	delete(api.stages, stage)
	return nil
}
