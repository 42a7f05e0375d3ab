package awsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// regionClients lazily builds one typed client per service for a region.
type regionClients struct {
	cfg aws.Config

	once struct {
		sts, iam, ec2, s3, rds, cloudtrail, cloudwatch, ce sync.Once
	}
	sts        *sts.Client
	iam        *iam.Client
	ec2        *ec2.Client
	s3         *s3.Client
	rds        *rds.Client
	cloudtrail *cloudtrail.Client
	cloudwatch *cloudwatch.Client
	ce         *costexplorer.Client
}

func (rc *regionClients) STS() *sts.Client {
	rc.once.sts.Do(func() { rc.sts = sts.NewFromConfig(rc.cfg) })
	return rc.sts
}

func (rc *regionClients) IAM() *iam.Client {
	rc.once.iam.Do(func() { rc.iam = iam.NewFromConfig(rc.cfg) })
	return rc.iam
}

func (rc *regionClients) EC2() *ec2.Client {
	rc.once.ec2.Do(func() { rc.ec2 = ec2.NewFromConfig(rc.cfg) })
	return rc.ec2
}

func (rc *regionClients) S3() *s3.Client {
	rc.once.s3.Do(func() { rc.s3 = s3.NewFromConfig(rc.cfg) })
	return rc.s3
}

func (rc *regionClients) RDS() *rds.Client {
	rc.once.rds.Do(func() { rc.rds = rds.NewFromConfig(rc.cfg) })
	return rc.rds
}

func (rc *regionClients) CloudTrail() *cloudtrail.Client {
	rc.once.cloudtrail.Do(func() { rc.cloudtrail = cloudtrail.NewFromConfig(rc.cfg) })
	return rc.cloudtrail
}

func (rc *regionClients) CloudWatch() *cloudwatch.Client {
	rc.once.cloudwatch.Do(func() { rc.cloudwatch = cloudwatch.NewFromConfig(rc.cfg) })
	return rc.cloudwatch
}

func (rc *regionClients) CostExplorer() *costexplorer.Client {
	rc.once.ce.Do(func() { rc.ce = costexplorer.NewFromConfig(rc.cfg) })
	return rc.ce
}

// Client is the AWS-backed Caller. One instance serves every region of a
// run; typed SDK clients are cached per region.
type Client struct {
	base aws.Config

	mu      sync.Mutex
	regions map[string]*regionClients
}

// NewClient resolves the default credential chain once. Profile may be
// empty to use the ambient credentials.
func NewClient(ctx context.Context, profile string) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewClientFromConfig(cfg), nil
}

// NewClientFromConfig wraps an already resolved SDK config.
func NewClientFromConfig(cfg aws.Config) *Client {
	return &Client{
		base:    cfg,
		regions: make(map[string]*regionClients),
	}
}

func (c *Client) forRegion(region string) *regionClients {
	c.mu.Lock()
	defer c.mu.Unlock()
	rc, ok := c.regions[region]
	if !ok {
		cfg := c.base.Copy()
		cfg.Region = region
		rc = &regionClients{cfg: cfg}
		c.regions[region] = rc
	}
	return rc
}

// Invoke dispatches one page of one operation through the binding table.
func (c *Client) Invoke(ctx context.Context, call Call) (*Page, error) {
	binding, ok := bindings[call.Service+"/"+call.Operation]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", call.Service, call.Operation, ErrUnsupportedOperation)
	}

	out, next, err := binding(ctx, c.forRegion(call.Region), call.Params, call.PageToken)
	if err != nil {
		return nil, err
	}

	body, err := toBody(out)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", call.Service, call.Operation, err)
	}
	return &Page{Body: body, NextToken: next}, nil
}

// toBody flattens an SDK output struct to the JSON shape the raw store
// persists.
func toBody(out any) (map[string]any, error) {
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	delete(body, "ResultMetadata")
	return body, nil
}

func requiredParam(params domain.ParamSet, name string) (string, error) {
	v := params[name]
	if v == "" {
		return "", fmt.Errorf("missing required parameter %q", name)
	}
	return v, nil
}

func optionalToken(token string) *string {
	if token == "" {
		return nil
	}
	return aws.String(token)
}
