package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
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

// bindFunc executes one page of one operation. It returns the raw SDK
// output and the continuation token for the next page, empty when done.
type bindFunc func(ctx context.Context, rc *regionClients, params domain.ParamSet, token string) (any, string, error)

// bindings maps service/operation from the capability registry to a typed
// SDK call. The registry may list more than this table implements; the
// executor records dispatch misses as skipped.
var bindings = map[string]bindFunc{
	"sts/GetCallerIdentity": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, _ string) (any, string, error) {
		out, err := rc.STS().GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		return out, "", err
	},

	"iam/ListRoles": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.IAM().ListRoles(ctx, &iam.ListRolesInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, iamMarker(out.IsTruncated, out.Marker), nil
	},
	"iam/ListUsers": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.IAM().ListUsers(ctx, &iam.ListUsersInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, iamMarker(out.IsTruncated, out.Marker), nil
	},
	"iam/ListPolicies": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.IAM().ListPolicies(ctx, &iam.ListPoliciesInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, iamMarker(out.IsTruncated, out.Marker), nil
	},
	"iam/ListAccountAliases": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.IAM().ListAccountAliases(ctx, &iam.ListAccountAliasesInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, iamMarker(out.IsTruncated, out.Marker), nil
	},
	"iam/ListSAMLProviders": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, _ string) (any, string, error) {
		out, err := rc.IAM().ListSAMLProviders(ctx, &iam.ListSAMLProvidersInput{})
		return out, "", err
	},
	"iam/ListOpenIDConnectProviders": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, _ string) (any, string, error) {
		out, err := rc.IAM().ListOpenIDConnectProviders(ctx, &iam.ListOpenIDConnectProvidersInput{})
		return out, "", err
	},
	"iam/GetAccountSummary": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, _ string) (any, string, error) {
		out, err := rc.IAM().GetAccountSummary(ctx, &iam.GetAccountSummaryInput{})
		return out, "", err
	},
	"iam/GetRole": func(ctx context.Context, rc *regionClients, params domain.ParamSet, _ string) (any, string, error) {
		name, err := requiredParam(params, "RoleName")
		if err != nil {
			return nil, "", err
		}
		out, err := rc.IAM().GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
		return out, "", err
	},

	"ec2/DescribeInstances": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeInstances(ctx, &ec2.DescribeInstancesInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeVpcs": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeVpcs(ctx, &ec2.DescribeVpcsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeSubnets": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeSecurityGroups": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeVolumes": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeVolumes(ctx, &ec2.DescribeVolumesInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeAddresses": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, _ string) (any, string, error) {
		out, err := rc.EC2().DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
		return out, "", err
	},
	"ec2/DescribeNetworkAcls": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeNetworkAcls(ctx, &ec2.DescribeNetworkAclsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeFlowLogs": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeFlowLogs(ctx, &ec2.DescribeFlowLogsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeNatGateways": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"ec2/DescribeRegions": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, _ string) (any, string, error) {
		out, err := rc.EC2().DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
		return out, "", err
	},
	"ec2/DescribeInstanceTypes": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.EC2().DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},

	"s3/ListBuckets": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, _ string) (any, string, error) {
		out, err := rc.S3().ListBuckets(ctx, &s3.ListBucketsInput{})
		return out, "", err
	},
	"s3/GetBucketVersioning": func(ctx context.Context, rc *regionClients, params domain.ParamSet, _ string) (any, string, error) {
		bucket, err := requiredParam(params, "Bucket")
		if err != nil {
			return nil, "", err
		}
		out, err := rc.S3().GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(bucket)})
		return out, "", err
	},
	"s3/GetBucketEncryption": func(ctx context.Context, rc *regionClients, params domain.ParamSet, _ string) (any, string, error) {
		bucket, err := requiredParam(params, "Bucket")
		if err != nil {
			return nil, "", err
		}
		out, err := rc.S3().GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(bucket)})
		return out, "", err
	},

	"rds/DescribeDBInstances": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.RDS().DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.Marker), nil
	},
	"rds/DescribeDBClusters": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.RDS().DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.Marker), nil
	},
	"rds/DescribeDBSnapshots": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.RDS().DescribeDBSnapshots(ctx, &rds.DescribeDBSnapshotsInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.Marker), nil
	},
	"rds/DescribeCertificates": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.RDS().DescribeCertificates(ctx, &rds.DescribeCertificatesInput{Marker: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.Marker), nil
	},

	"cloudtrail/ListTrails": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.CloudTrail().ListTrails(ctx, &cloudtrail.ListTrailsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"cloudtrail/GetTrailStatus": func(ctx context.Context, rc *regionClients, params domain.ParamSet, _ string) (any, string, error) {
		name, err := requiredParam(params, "Name")
		if err != nil {
			return nil, "", err
		}
		out, err := rc.CloudTrail().GetTrailStatus(ctx, &cloudtrail.GetTrailStatusInput{Name: aws.String(name)})
		return out, "", err
	},

	"cloudwatch/DescribeAlarms": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.CloudWatch().DescribeAlarms(ctx, &cloudwatch.DescribeAlarmsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
	"cloudwatch/ListDashboards": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.CloudWatch().ListDashboards(ctx, &cloudwatch.ListDashboardsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},

	"ce/ListCostCategoryDefinitions": func(ctx context.Context, rc *regionClients, _ domain.ParamSet, token string) (any, string, error) {
		out, err := rc.CostExplorer().ListCostCategoryDefinitions(ctx, &costexplorer.ListCostCategoryDefinitionsInput{NextToken: optionalToken(token)})
		if err != nil {
			return nil, "", err
		}
		return out, aws.ToString(out.NextToken), nil
	},
}

func iamMarker(truncated bool, marker *string) string {
	if !truncated {
		return ""
	}
	return aws.ToString(marker)
}
