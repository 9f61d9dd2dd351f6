// Package lambdaarn splits Lambda function ARNs into their labelled parts.
package lambdaarn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"github.com/raywall/wanwu/pkg/types"
)

// ErrMalformedARN is returned for anything that is not
// arn:<partition>:lambda:<region>:<account>:function:<name>[:<qualifier>].
var ErrMalformedARN = errors.New("malformed lambda function arn")

// Parse returns the region, account id and function name of a Lambda ARN,
// e.g. arn:aws:lambda:us-east-1:541056992659:function:wanwu_lambda.
func Parse(s string) (types.FunctionARN, error) {
	parsed, err := arn.Parse(s)
	if err != nil {
		return types.FunctionARN{}, fmt.Errorf("%w %q: %v", ErrMalformedARN, s, err)
	}
	if parsed.Service != "lambda" || parsed.Region == "" || parsed.AccountID == "" {
		return types.FunctionARN{}, fmt.Errorf("%w %q: not a regional lambda arn", ErrMalformedARN, s)
	}

	// Resource is "function:<name>" or "function:<name>:<qualifier>"
	parts := strings.Split(parsed.Resource, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "function" || parts[1] == "" {
		return types.FunctionARN{}, fmt.Errorf("%w %q: unexpected resource %q", ErrMalformedARN, s, parsed.Resource)
	}

	fn := types.FunctionARN{
		Partition:    parsed.Partition,
		Region:       parsed.Region,
		AccountID:    parsed.AccountID,
		FunctionName: parts[1],
	}
	if len(parts) == 3 {
		fn.Qualifier = parts[2]
	}
	return fn, nil
}

// Unqualified rebuilds the ARN of the function itself, dropping any version or alias.
// An empty partition is taken as "aws".
func Unqualified(fn types.FunctionARN) string {
	partition := fn.Partition
	if partition == "" {
		partition = "aws"
	}
	return arn.ARN{
		Partition: partition,
		Service:   "lambda",
		Region:    fn.Region,
		AccountID: fn.AccountID,
		Resource:  "function:" + fn.FunctionName,
	}.String()
}
