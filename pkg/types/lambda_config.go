package types

// LambdaConfig DTO holds everything needed to publish the Lambda function.
type LambdaConfig struct {
	FunctionName   string
	RoleName       string
	Runtime        string
	Handler        string
	SourceFile     string // single file packaged into the deployment zip
	ArchiveName    string // zip entry name; empty means <function-name><source-ext>
	MemorySize     int32
	Timeout        int32
	PolicyARNs     []string // extra managed policies for the execution role
	Environment    map[string]string
	ArtifactBucket string // optional; when set, code goes through S3
	LogRetention   int32  // days
}
