package types

// FunctionARN holds the labelled parts of a Lambda function ARN.
type FunctionARN struct {
	Partition    string
	Region       string
	AccountID    string
	FunctionName string
	Qualifier    string // version or alias, usually empty
}
