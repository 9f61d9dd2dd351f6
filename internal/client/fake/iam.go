package fake

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	iam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

func noSuchRole(name string) error {
	return &iamtypes.NoSuchEntityException{
		Message: aws.String(fmt.Sprintf("The role with name %s cannot be found.", name)),
	}
}

func (r *role) view() *iamtypes.Role {
	return &iamtypes.Role{
		RoleName:                 aws.String(r.name),
		Arn:                      aws.String(r.arn),
		RoleId:                   aws.String(r.id),
		Path:                     aws.String("/"),
		AssumeRolePolicyDocument: aws.String(r.trust),
	}
}

func (a *Account) CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("CreateRole"); err != nil {
		return nil, err
	}

	name := aws.ToString(params.RoleName)
	if _, ok := a.roles[name]; ok {
		return nil, &iamtypes.EntityAlreadyExistsException{
			Message: aws.String(fmt.Sprintf("Role with name %s already exists.", name)),
		}
	}
	r := &role{
		name:     name,
		arn:      fmt.Sprintf("arn:aws:iam::%s:role/%s", a.AccountID, name),
		id:       a.nextID("AROA"),
		trust:    aws.ToString(params.AssumeRolePolicyDocument),
		policies: make(map[string]bool),
	}
	a.roles[name] = r
	return &iam.CreateRoleOutput{Role: r.view()}, nil
}

func (a *Account) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("GetRole"); err != nil {
		return nil, err
	}

	r, ok := a.roles[aws.ToString(params.RoleName)]
	if !ok {
		return nil, noSuchRole(aws.ToString(params.RoleName))
	}
	return &iam.GetRoleOutput{Role: r.view()}, nil
}

func (a *Account) DeleteRole(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("DeleteRole"); err != nil {
		return nil, err
	}

	name := aws.ToString(params.RoleName)
	r, ok := a.roles[name]
	if !ok {
		return nil, noSuchRole(name)
	}
	if len(r.policies) > 0 {
		return nil, &iamtypes.DeleteConflictException{
			Message: aws.String("Cannot delete entity, must detach all policies first."),
		}
	}
	delete(a.roles, name)
	return &iam.DeleteRoleOutput{}, nil
}

func (a *Account) AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("AttachRolePolicy"); err != nil {
		return nil, err
	}

	r, ok := a.roles[aws.ToString(params.RoleName)]
	if !ok {
		return nil, noSuchRole(aws.ToString(params.RoleName))
	}
	r.policies[aws.ToString(params.PolicyArn)] = true
	return &iam.AttachRolePolicyOutput{}, nil
}

func (a *Account) DetachRolePolicy(ctx context.Context, params *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enter("DetachRolePolicy"); err != nil {
		return nil, err
	}

	r, ok := a.roles[aws.ToString(params.RoleName)]
	if !ok {
		return nil, noSuchRole(aws.ToString(params.RoleName))
	}
	arn := aws.ToString(params.PolicyArn)
	if !r.policies[arn] {
		return nil, &iamtypes.NoSuchEntityException{
			Message: aws.String(fmt.Sprintf("Policy %s was not found.", arn)),
		}
	}
	delete(r.policies, arn)
	return &iam.DetachRolePolicyOutput{}, nil
}

// AddRole creates a role directly, bypassing call accounting.
func (a *Account) AddRole(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := &role{
		name:     name,
		arn:      fmt.Sprintf("arn:aws:iam::%s:role/%s", a.AccountID, name),
		id:       a.nextID("AROA"),
		policies: make(map[string]bool),
	}
	a.roles[name] = r
	return r.arn
}
