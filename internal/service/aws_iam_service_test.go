package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRoleReusesExistingRole(t *testing.T) {
	acct := newAccount()
	existing := acct.AddRole("wanwu_lambda_role")
	svc := newDeploymentService(acct).IAMService

	arn, err := svc.EnsureRole(context.Background(), "wanwu_lambda_role", nil)
	require.NoError(t, err)
	assert.Equal(t, existing, arn)
	assert.Equal(t, 1, acct.Calls("GetRole"))
	assert.Equal(t, []string{BasicExecutionPolicy}, acct.Snapshot().Roles["wanwu_lambda_role"])
}

func TestEnsureRoleAttachesExtraPolicies(t *testing.T) {
	acct := newAccount()
	svc := newDeploymentService(acct).IAMService
	extra := "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess"

	_, err := svc.EnsureRole(context.Background(), "wanwu_lambda_role", []string{extra, BasicExecutionPolicy, ""})
	require.NoError(t, err)
	assert.Equal(t, []string{extra, BasicExecutionPolicy}, acct.Snapshot().Roles["wanwu_lambda_role"])
	assert.Equal(t, 2, acct.Calls("AttachRolePolicy"))
}

func TestEnsureRoleAttachFailureIsFatal(t *testing.T) {
	acct := newAccount()
	acct.FailNext("AttachRolePolicy", throttled())
	svc := newDeploymentService(acct).IAMService

	_, err := svc.EnsureRole(context.Background(), "wanwu_lambda_role", nil)
	assert.ErrorContains(t, err, "AttachPolicy")
}

func TestAttachedPolicies(t *testing.T) {
	assert.Equal(t, []string{BasicExecutionPolicy}, AttachedPolicies(nil))
	assert.Equal(t, []string{BasicExecutionPolicy, "a", "b"}, AttachedPolicies([]string{"a", "b", "a"}))
}
