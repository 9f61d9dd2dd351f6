package types

// DeploymentState is what a provisioning run resolved on the remote account.
// It is stored as JSON by the Terraform resource and printed by the CLI.
type DeploymentState struct {
	GatewayName      string       `json:"gateway_name"`
	GatewayID        string       `json:"gateway_id"`
	RootResource     ResourceInfo `json:"root_resource"`
	ProxyResource    ResourceInfo `json:"proxy_resource"`
	HTTPMethod       string       `json:"http_method"`
	StageName        string       `json:"stage_name,omitempty"`
	DeploymentID     string       `json:"deployment_id,omitempty"`
	RoleName         string       `json:"role_name"`
	RoleArn          string       `json:"role_arn"`
	FunctionName     string       `json:"function_name"`
	FunctionArn      string       `json:"function_arn"`
	CodeSha256       string       `json:"code_sha256"`
	LogGroup         string       `json:"log_group"`
	ArtifactBucket   string       `json:"artifact_bucket,omitempty"`
	ArtifactKey      string       `json:"artifact_key,omitempty"`
	StatementIDs     []string     `json:"statement_ids"`
	AttachedPolicies []string     `json:"attached_policy_arns"`
}
