package types

// GatewayConfig DTO describes the REST API that fronts the function.
type GatewayConfig struct {
	Name       string
	HTTPMethod string
	StageName  string // empty skips the deployment step
}
