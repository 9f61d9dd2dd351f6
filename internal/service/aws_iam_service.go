package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/raywall/wanwu/internal/logging"
	"github.com/raywall/wanwu/internal/repository"
)

// BasicExecutionPolicy permite que a função escreva no CloudWatch Logs.
const BasicExecutionPolicy = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"

// IAMService manipula a lógica de negócio para Roles e Policies.
type IAMService struct {
	IAMRepo *repository.IAMRepository
	Log     logging.LogManager
}

// CheckRoleExists verifica se a Role existe.
func (s *IAMService) CheckRoleExists(ctx context.Context, roleName string) (bool, error) {
	role, err := s.IAMRepo.GetRole(ctx, roleName)
	if err != nil {
		return false, err
	}
	return role != nil, nil
}

// EnsureRole garante que a Role exista e anexa a policy básica de execução e as
// policies extras. Devolve o ARN da Role.
func (s *IAMService) EnsureRole(ctx context.Context, roleName string, policyARNs []string) (string, error) {
	log := loggerOrDiscard(s.Log).With("role", roleName)

	role, err := s.IAMRepo.CreateRole(ctx, roleName)
	if err != nil {
		return "", err
	}
	log.Info("role ready", "arn", aws.ToString(role.Arn))

	for _, arn := range AttachedPolicies(policyARNs) {
		if err := s.IAMRepo.AttachPolicy(ctx, roleName, arn); err != nil {
			return "", err
		}
		log.Debug("policy attached", "policy", arn)
	}
	return aws.ToString(role.Arn), nil
}

// DeleteRoleAndPolicies desanexa as políticas e deleta a Role.
func (s *IAMService) DeleteRoleAndPolicies(ctx context.Context, roleName string, policyARNs []string) error {
	var errs []error
	for _, arn := range AttachedPolicies(policyARNs) {
		if err := s.IAMRepo.DetachPolicy(ctx, roleName, arn); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.IAMRepo.DeleteRole(ctx, roleName); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("deleting role %s: %w", roleName, errors.Join(errs...))
	}
	loggerOrDiscard(s.Log).Info("role deleted", "role", roleName)
	return nil
}

// AttachedPolicies é a policy básica de execução seguida das policies extras,
// sem duplicatas.
func AttachedPolicies(extra []string) []string {
	out := []string{BasicExecutionPolicy}
	seen := map[string]bool{BasicExecutionPolicy: true}
	for _, arn := range extra {
		if arn == "" || seen[arn] {
			continue
		}
		seen[arn] = true
		out = append(out, arn)
	}
	return out
}
