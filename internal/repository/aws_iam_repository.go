package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/raywall/wanwu/internal/client"
)

// LambdaTrustPolicy permite que o serviço Lambda assuma a Role.
const LambdaTrustPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"lambda.amazonaws.com"},"Action":"sts:AssumeRole"}]}`

// IAMRepository encapsula operações CRUD de Roles do IAM.
type IAMRepository struct {
	Client *client.AWSClient
}

// GetRole busca a Role. Devolve nil, nil quando ela não existe.
func (r *IAMRepository) GetRole(ctx context.Context, roleName string) (*iamtypes.Role, error) {
	out, err := r.Client.IAM.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		if client.IsAPIErrorCode(err, "NoSuchEntity") {
			return nil, nil
		}
		return nil, fmt.Errorf("GetRole failed: %w", err)
	}
	return out.Role, nil
}

// CreateRole cria a Role com a trust policy da Lambda. Se já existir uma Role
// com esse nome, ela é buscada e devolvida.
func (r *IAMRepository) CreateRole(ctx context.Context, roleName string) (*iamtypes.Role, error) {
	out, err := r.Client.IAM.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(roleName),
		AssumeRolePolicyDocument: aws.String(LambdaTrustPolicy),
	})
	if err == nil {
		return out.Role, nil
	}
	if !client.IsAPIErrorCode(err, "EntityAlreadyExists") {
		return nil, fmt.Errorf("CreateRole failed: %w", err)
	}

	got, err := r.Client.IAM.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		return nil, fmt.Errorf("GetRole failed: %w", err)
	}
	return got.Role, nil
}

// AttachPolicy anexa uma policy gerenciada. Anexar duas vezes não tem efeito no
// serviço.
func (r *IAMRepository) AttachPolicy(ctx context.Context, roleName, policyARN string) error {
	_, err := r.Client.IAM.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return fmt.Errorf("AttachPolicy %s failed: %w", policyARN, err)
	}
	return nil
}

// DetachPolicy desanexa uma policy gerenciada, ignorando uma que não esteja anexada.
func (r *IAMRepository) DetachPolicy(ctx context.Context, roleName, policyARN string) error {
	_, err := r.Client.IAM.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil && !client.IsAPIErrorCode(err, "NoSuchEntity") {
		return fmt.Errorf("DetachPolicy %s failed: %w", policyARN, err)
	}
	return nil
}

// DeleteRole deleta a Role. As policies precisam ser desanexadas antes.
func (r *IAMRepository) DeleteRole(ctx context.Context, roleName string) error {
	_, err := r.Client.IAM.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(roleName)})
	if err != nil && !client.IsAPIErrorCode(err, "NoSuchEntity") {
		return fmt.Errorf("DeleteRole failed: %w", err)
	}
	return nil
}
