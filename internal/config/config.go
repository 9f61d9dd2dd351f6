// Package config loads provisioning settings from wanwu.yaml and WANWU_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/raywall/wanwu/pkg/types"
)

// Config mirrors wanwu.yaml.
type Config struct {
	Region  string        `mapstructure:"region"`
	Profile string        `mapstructure:"profile"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Lambda  LambdaConfig  `mapstructure:"lambda"`
}

type GatewayConfig struct {
	Name       string `mapstructure:"name"`
	HTTPMethod string `mapstructure:"http_method"`
	Stage      string `mapstructure:"stage"`
}

type LambdaConfig struct {
	FunctionName   string            `mapstructure:"function_name"`
	RoleName       string            `mapstructure:"role_name"`
	Runtime        string            `mapstructure:"runtime"`
	Handler        string            `mapstructure:"handler"`
	SourceFile     string            `mapstructure:"source_file"`
	ArchiveName    string            `mapstructure:"archive_name"`
	MemorySize     int32             `mapstructure:"memory_size"`
	Timeout        int32             `mapstructure:"timeout"`
	PolicyARNs     []string          `mapstructure:"policy_arns"`
	Environment    map[string]string `mapstructure:"environment"`
	ArtifactBucket string            `mapstructure:"artifact_bucket"`
	LogRetention   int32             `mapstructure:"log_retention_days"`
}

// envKeys have no default but can still be set through WANWU_* variables.
var envKeys = []string{
	"region",
	"profile",
	"lambda.policy_arns",
	"lambda.artifact_bucket",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.name", "wanwu")
	v.SetDefault("gateway.http_method", "GET")
	v.SetDefault("gateway.stage", "prod")

	v.SetDefault("lambda.function_name", "wanwu_lambda")
	v.SetDefault("lambda.role_name", "wanwu_lambda_role")
	v.SetDefault("lambda.runtime", "provided.al2023")
	v.SetDefault("lambda.handler", "bootstrap")
	v.SetDefault("lambda.source_file", "build/bootstrap")
	v.SetDefault("lambda.archive_name", "bootstrap")
	v.SetDefault("lambda.memory_size", 128)
	v.SetDefault("lambda.timeout", 30)
	v.SetDefault("lambda.log_retention_days", 14)
}

// Load reads path (optional; "" searches ./wanwu.yaml) and applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WANWU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wanwu")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Gateway.HTTPMethod = strings.ToUpper(cfg.Gateway.HTTPMethod)

	if used := v.ConfigFileUsed(); used != "" && cfg.Lambda.Environment != nil {
		env, err := readEnvironment(used)
		if err != nil {
			return nil, err
		}
		cfg.Lambda.Environment = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readEnvironment re-reads lambda.environment from the file itself: viper
// lowercases map keys and variable names are case sensitive.
func readEnvironment(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", "":
	default:
		return nil, fmt.Errorf("config: lambda.environment is only supported in YAML or JSON files, got %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var doc struct {
		Lambda struct {
			Environment map[string]string `yaml:"environment"`
		} `yaml:"lambda"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding lambda.environment: %w", err)
	}
	return doc.Lambda.Environment, nil
}

// Validate rejects settings the provisioning run cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Gateway.Name == "":
		return errors.New("config: gateway.name is required")
	case c.Gateway.HTTPMethod == "":
		return errors.New("config: gateway.http_method is required")
	case c.Lambda.FunctionName == "":
		return errors.New("config: lambda.function_name is required")
	case c.Lambda.RoleName == "":
		return errors.New("config: lambda.role_name is required")
	case c.Lambda.SourceFile == "":
		return errors.New("config: lambda.source_file is required")
	case c.Lambda.Timeout < 1 || c.Lambda.Timeout > 900:
		return fmt.Errorf("config: lambda.timeout must be between 1 and 900 seconds, got %d", c.Lambda.Timeout)
	}
	return nil
}

// GatewayDTO converts the gateway section for the services.
func (c *Config) GatewayDTO() types.GatewayConfig {
	return types.GatewayConfig{
		Name:       c.Gateway.Name,
		HTTPMethod: c.Gateway.HTTPMethod,
		StageName:  c.Gateway.Stage,
	}
}

// LambdaDTO converts the lambda section for the services.
func (c *Config) LambdaDTO() *types.LambdaConfig {
	return &types.LambdaConfig{
		FunctionName:   c.Lambda.FunctionName,
		RoleName:       c.Lambda.RoleName,
		Runtime:        c.Lambda.Runtime,
		Handler:        c.Lambda.Handler,
		SourceFile:     c.Lambda.SourceFile,
		ArchiveName:    c.Lambda.ArchiveName,
		MemorySize:     c.Lambda.MemorySize,
		Timeout:        c.Lambda.Timeout,
		PolicyARNs:     c.Lambda.PolicyARNs,
		Environment:    c.Lambda.Environment,
		ArtifactBucket: c.Lambda.ArtifactBucket,
		LogRetention:   c.Lambda.LogRetention,
	}
}
