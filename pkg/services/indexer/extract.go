package indexer

import "fmt"

// extraction describes how to count resources in one operation's payload.
// Field is the principal list field of a page; ID deduplicates items that
// reappear across pages. An empty Field marks a presence-only operation:
// success proves reachability but contributes no resource count.
type extraction struct {
	Field        string
	ID           string
	ResourceType string
	// Attrs maps payload fields of the first page to index attributes.
	Attrs map[string]string
}

// extractions is the explicit per-operation counting table. Operations
// absent from this table index as count=0, presence=false: guessing a
// default list field produces wrong inventories.
var extractions = map[string]extraction{
	"sts/GetCallerIdentity": {},

	"iam/ListRoles":                  {Field: "Roles", ID: "RoleName", ResourceType: "iam_role"},
	"iam/ListUsers":                  {Field: "Users", ID: "UserName", ResourceType: "iam_user"},
	"iam/ListPolicies":               {Field: "Policies", ID: "Arn", ResourceType: "iam_policy"},
	"iam/ListAccountAliases":         {Field: "AccountAliases", ResourceType: "account_alias"},
	"iam/ListSAMLProviders":          {Field: "SAMLProviderList", ID: "Arn", ResourceType: "saml_provider"},
	"iam/ListOpenIDConnectProviders": {Field: "OpenIDConnectProviderList", ID: "Arn", ResourceType: "oidc_provider"},
	"iam/GetAccountSummary":          {},
	"iam/GetRole":                    {},

	// DescribeInstances nests instances inside reservations; handled as
	// a special case by countInstances.
	"ec2/DescribeInstances":      {ResourceType: "ec2_instance"},
	"ec2/DescribeVpcs":           {Field: "Vpcs", ID: "VpcId", ResourceType: "vpc"},
	"ec2/DescribeSubnets":        {Field: "Subnets", ID: "SubnetId", ResourceType: "subnet"},
	"ec2/DescribeSecurityGroups": {Field: "SecurityGroups", ID: "GroupId", ResourceType: "security_group"},
	"ec2/DescribeVolumes":        {Field: "Volumes", ID: "VolumeId", ResourceType: "ebs_volume"},
	"ec2/DescribeAddresses":      {Field: "Addresses", ID: "AllocationId", ResourceType: "elastic_ip"},
	"ec2/DescribeNetworkAcls":    {Field: "NetworkAcls", ID: "NetworkAclId", ResourceType: "network_acl"},
	"ec2/DescribeFlowLogs":       {Field: "FlowLogs", ID: "FlowLogId", ResourceType: "flow_log"},
	"ec2/DescribeNatGateways":    {Field: "NatGateways", ID: "NatGatewayId", ResourceType: "nat_gateway"},
	"ec2/DescribeRegions":        {Field: "Regions", ID: "RegionName", ResourceType: "region"},

	"s3/ListBuckets": {Field: "Buckets", ID: "Name", ResourceType: "s3_bucket"},
	"s3/GetBucketVersioning": {Attrs: map[string]string{
		"Status": "versioning_status",
	}},
	"s3/GetBucketEncryption": {},

	"rds/DescribeDBInstances": {Field: "DBInstances", ID: "DBInstanceIdentifier", ResourceType: "db_instance"},
	"rds/DescribeDBClusters":  {Field: "DBClusters", ID: "DBClusterIdentifier", ResourceType: "db_cluster"},
	"rds/DescribeDBSnapshots": {Field: "DBSnapshots", ID: "DBSnapshotIdentifier", ResourceType: "db_snapshot"},

	"cloudtrail/ListTrails": {Field: "Trails", ID: "TrailARN", ResourceType: "trail"},
	"cloudtrail/GetTrailStatus": {Attrs: map[string]string{
		"IsLogging": "is_logging",
	}},

	"cloudwatch/DescribeAlarms": {Field: "MetricAlarms", ID: "AlarmArn", ResourceType: "alarm"},
	"cloudwatch/ListDashboards": {Field: "DashboardEntries", ID: "DashboardArn", ResourceType: "dashboard"},

	"ce/ListCostCategoryDefinitions": {Field: "CostCategoryReferences", ID: "CostCategoryArn", ResourceType: "cost_category"},
}

// countResources applies the extraction rule across pages, deduplicating
// by the ID field when one is declared.
func countResources(key string, pages []map[string]any) (int, string) {
	if key == "ec2/DescribeInstances" {
		return countInstances(pages), "ec2_instance"
	}

	ex, ok := extractions[key]
	if !ok || ex.Field == "" {
		return 0, ex.ResourceType
	}

	seen := make(map[string]bool)
	count := 0
	for _, page := range pages {
		items, ok := page[ex.Field].([]any)
		if !ok {
			continue
		}
		for _, raw := range items {
			if ex.ID == "" {
				count++
				continue
			}
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id, _ := item[ex.ID].(string)
			if id == "" {
				count++
				continue
			}
			if !seen[id] {
				seen[id] = true
				count++
			}
		}
	}
	return count, ex.ResourceType
}

// countInstances walks Reservations[].Instances[], deduplicating by
// InstanceId across pages.
func countInstances(pages []map[string]any) int {
	seen := make(map[string]bool)
	for _, page := range pages {
		reservations, ok := page["Reservations"].([]any)
		if !ok {
			continue
		}
		for _, rawRes := range reservations {
			res, ok := rawRes.(map[string]any)
			if !ok {
				continue
			}
			instances, ok := res["Instances"].([]any)
			if !ok {
				continue
			}
			for _, rawInst := range instances {
				inst, ok := rawInst.(map[string]any)
				if !ok {
					continue
				}
				if id, _ := inst["InstanceId"].(string); id != "" {
					seen[id] = true
				}
			}
		}
	}
	return len(seen)
}

// extractAttributes pulls declared scalar attributes from the first page.
func extractAttributes(key string, pages []map[string]any) map[string]string {
	ex, ok := extractions[key]
	if !ok || len(ex.Attrs) == 0 || len(pages) == 0 {
		return nil
	}
	attrs := make(map[string]string)
	for field, name := range ex.Attrs {
		switch v := pages[0][field].(type) {
		case string:
			attrs[name] = v
		case bool:
			attrs[name] = fmt.Sprintf("%t", v)
		case float64:
			attrs[name] = fmt.Sprintf("%g", v)
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// mapped reports whether an operation has an extraction rule at all.
func mapped(key string) bool {
	_, ok := extractions[key]
	return ok
}
