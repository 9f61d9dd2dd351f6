package models

import (
	"github.com/raywall/wanwu/internal/client"
	"github.com/raywall/wanwu/internal/service"
)

// ConfigurationBundle é o que o provider entrega a cada recurso como meta.
type ConfigurationBundle struct {
	DeployService *service.DeploymentService
	Client        *client.AWSClient
}
