// Package fake is an in-memory AWS account that answers the control-plane
// calls used by the provisioning code. It returns the same typed errors as
// the real services so the idempotency branches can be exercised in tests.
package fake

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/raywall/wanwu/internal/client"
)

// Account holds the remote state of one fake account.
type Account struct {
	mu sync.Mutex

	Region    string
	AccountID string

	// RoleAssumeFailures makes that many CreateFunction calls fail the way
	// Lambda does while a freshly created role has not propagated.
	RoleAssumeFailures int
	// PendingPolls is how many GetFunctionConfiguration calls report
	// LastUpdateStatus=InProgress after each function update.
	PendingPolls int

	seq       int
	apis      map[string]*restAPI
	apiOrder  []string
	functions map[string]*function
	roles     map[string]*role
	logGroups map[string]int32
	objects   map[string][]byte
	failNext  map[string]error
	calls     map[string]int

	// LastCodeUpdate is the package carried by the latest UpdateFunctionCode.
	LastCodeUpdate []byte
}

type restAPI struct {
	id          string
	name        string
	resources   map[string]*resource
	order       []string
	deployments []string
	stages      map[string]string
}

type resource struct {
	id       string
	parentID string
	path     string
	pathPart string
	methods  map[string]*method
}

type method struct {
	authorization   string
	integrationType string
	integrationURI  string
	integrationVerb string
}

type function struct {
	name        string
	arn         string
	role        string
	runtime     string
	handler     string
	timeout     int32
	memory      int32
	code        []byte
	sha         string
	env         map[string]string
	pending     int
	permissions map[string]permission
}

type permission struct {
	action    string
	principal string
	sourceArn string
}

type role struct {
	name     string
	arn      string
	id       string
	trust    string
	policies map[string]bool
}

// NewAccount returns an empty account in the given region.
func NewAccount(region, accountID string) *Account {
	return &Account{
		Region:    region,
		AccountID: accountID,
		apis:      make(map[string]*restAPI),
		functions: make(map[string]*function),
		roles:     make(map[string]*role),
		logGroups: make(map[string]int32),
		objects:   make(map[string][]byte),
		failNext:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

// Client wires the account into every slot of an AWSClient.
func (a *Account) Client() *client.AWSClient {
	return &client.AWSClient{
		Config:    aws.Config{Region: a.Region},
		APIGW:     a,
		Lambda:    a,
		IAM:       a,
		CWLogs:    a,
		S3:        a,
		STS:       a,
		Region:    a.Region,
		AccountID: a.AccountID,
	}
}

// FailNext makes the next call to op return err.
func (a *Account) FailNext(op string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext[op] = err
}

// Calls returns how many times op was invoked.
func (a *Account) Calls(op string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[op]
}

// Object returns a stored S3 object.
func (a *Account) Object(bucket, key string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.objects[bucket+"/"+key]
	return b, ok
}

// enter must be called with a.mu held.
func (a *Account) enter(op string) error {
	a.calls[op]++
	if err, ok := a.failNext[op]; ok {
		delete(a.failNext, op)
		return err
	}
	return nil
}

func (a *Account) nextID(prefix string) string {
	a.seq++
	return fmt.Sprintf("%s%05d", prefix, a.seq)
}

func codeSha256(b []byte) string {
	sum := sha256.Sum256(b)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Snapshot is a comparable view of everything the account holds, minus the
// deployment history, which grows on every run.
type Snapshot struct {
	Gateways  map[string]GatewaySnapshot
	Functions map[string]FunctionSnapshot
	Roles     map[string][]string
	LogGroups map[string]int32
	Objects   []string
}

// GatewaySnapshot describes one REST API.
type GatewaySnapshot struct {
	Name      string
	Resources map[string]ResourceSnapshot // keyed by path
	Stages    []string
}

// ResourceSnapshot describes one resource of a REST API.
type ResourceSnapshot struct {
	ID       string
	ParentID string
	Methods  map[string]MethodSnapshot
}

// MethodSnapshot describes one method and its integration.
type MethodSnapshot struct {
	Authorization   string
	IntegrationType string
	IntegrationURI  string
}

// FunctionSnapshot describes one Lambda function.
type FunctionSnapshot struct {
	Arn         string
	Role        string
	Runtime     string
	Handler     string
	Timeout     int32
	CodeSha256  string
	Permissions []string
}

// Snapshot captures the current state.
func (a *Account) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Snapshot{
		Gateways:  make(map[string]GatewaySnapshot),
		Functions: make(map[string]FunctionSnapshot),
		Roles:     make(map[string][]string),
		LogGroups: make(map[string]int32),
	}
	for id, api := range a.apis {
		gs := GatewaySnapshot{Name: api.name, Resources: make(map[string]ResourceSnapshot)}
		for _, res := range api.resources {
			rs := ResourceSnapshot{ID: res.id, ParentID: res.parentID, Methods: make(map[string]MethodSnapshot)}
			for verb, m := range res.methods {
				rs.Methods[verb] = MethodSnapshot{
					Authorization:   m.authorization,
					IntegrationType: m.integrationType,
					IntegrationURI:  m.integrationURI,
				}
			}
			gs.Resources[res.path] = rs
		}
		for stage := range api.stages {
			gs.Stages = append(gs.Stages, stage)
		}
		sort.Strings(gs.Stages)
		s.Gateways[id] = gs
	}
	for name, fn := range a.functions {
		fs := FunctionSnapshot{
			Arn:        fn.arn,
			Role:       fn.role,
			Runtime:    fn.runtime,
			Handler:    fn.handler,
			Timeout:    fn.timeout,
			CodeSha256: fn.sha,
		}
		for sid := range fn.permissions {
			fs.Permissions = append(fs.Permissions, sid)
		}
		sort.Strings(fs.Permissions)
		s.Functions[name] = fs
	}
	for name, r := range a.roles {
		policies := []string{}
		for p := range r.policies {
			policies = append(policies, p)
		}
		sort.Strings(policies)
		s.Roles[name] = policies
	}
	for name, days := range a.logGroups {
		s.LogGroups[name] = days
	}
	for key := range a.objects {
		s.Objects = append(s.Objects, key)
	}
	sort.Strings(s.Objects)
	return s
}

// GatewaysNamed counts REST APIs with the given name.
func (a *Account) GatewaysNamed(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, api := range a.apis {
		if api.name == name {
			n++
		}
	}
	return n
}

// Deployments returns how many deployments a REST API has.
func (a *Account) Deployments(apiID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if api, ok := a.apis[apiID]; ok {
		return len(api.deployments)
	}
	return 0
}

// StageDeployment returns the deployment a stage points at.
func (a *Account) StageDeployment(apiID, stage string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if api, ok := a.apis[apiID]; ok {
		return api.stages[stage]
	}
	return ""
}
