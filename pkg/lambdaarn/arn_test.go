package lambdaarn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	fn, err := Parse("arn:aws:lambda:us-east-1:541056992659:function:wanwu_lambda")
	require.NoError(t, err)

	assert.Equal(t, "aws", fn.Partition)
	assert.Equal(t, "us-east-1", fn.Region)
	assert.Equal(t, "541056992659", fn.AccountID)
	assert.Equal(t, "wanwu_lambda", fn.FunctionName)
	assert.Empty(t, fn.Qualifier)
}

func TestParseQualified(t *testing.T) {
	fn, err := Parse("arn:aws:lambda:eu-west-1:123456789012:function:wanwu_lambda:live")
	require.NoError(t, err)

	assert.Equal(t, "wanwu_lambda", fn.FunctionName)
	assert.Equal(t, "live", fn.Qualifier)
	assert.Equal(t, "arn:aws:lambda:eu-west-1:123456789012:function:wanwu_lambda", Unqualified(fn))

	fn.Partition = ""
	assert.Equal(t, "arn:aws:lambda:eu-west-1:123456789012:function:wanwu_lambda", Unqualified(fn))
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		arn  string
	}{
		{"empty", ""},
		{"not an arn", "wanwu_lambda"},
		{"too few fields", "arn:aws:lambda:us-east-1:541056992659"},
		{"other service", "arn:aws:iam::541056992659:role/wanwu_lambda_role"},
		{"layer", "arn:aws:lambda:us-east-1:541056992659:layer:deps:3"},
		{"missing name", "arn:aws:lambda:us-east-1:541056992659:function:"},
		{"missing region", "arn:aws:lambda::541056992659:function:wanwu_lambda"},
		{"too many fields", "arn:aws:lambda:us-east-1:541056992659:function:a:b:c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.arn)
			assert.ErrorIs(t, err, ErrMalformedARN)
		})
	}
}
