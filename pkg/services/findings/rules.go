package findings

import (
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// Rule is one declarative check over the index. Predicate is pure: it
// either fires with supporting evidence or stays silent.
type Rule struct {
	ID             string
	Domain         string
	Severity       domain.Severity
	Title          string
	Description    string
	Impact         string
	Effort         string
	Recommendation string
	Predicate      func(ix *domain.Index) (bool, []domain.EvidenceRef)
}

// rules is evaluated in full on every run; rule IDs are stable and
// unique, and ordering of the output never depends on table order.
var rules = []Rule{
	{
		ID:             "SEC-001",
		Domain:         domain.DomainSecurity,
		Severity:       domain.SeverityHigh,
		Title:          "CloudTrail not detected",
		Description:    "No CloudTrail trail listing succeeded in any collected region. API activity in this account is not being audited, or the auditing service is unreachable for the current credentials.",
		Impact:         "No audit trail of API activity",
		Effort:         "Low",
		Recommendation: "Enable CloudTrail with a multi-region trail and verify the collector credentials can read it.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.OperationSucceeded("cloudtrail", "ListTrails") {
				return false, nil
			}
			return true, absenceEvidence(ix, "cloudtrail", "ListTrails")
		},
	},
	{
		ID:             "SEC-002",
		Domain:         domain.DomainSecurity,
		Severity:       domain.SeverityMedium,
		Title:          "CloudTrail logging disabled",
		Description:    "A trail exists but its status reports logging switched off.",
		Impact:         "Audit trail exists but records nothing",
		Effort:         "Low",
		Recommendation: "Start logging on the existing trail.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			return attributeEquals(ix, "cloudtrail", "GetTrailStatus", "is_logging", "false")
		},
	},
	{
		ID:             "SEC-003",
		Domain:         domain.DomainSecurity,
		Severity:       domain.SeverityMedium,
		Title:          "VPC Flow Logs not detected",
		Description:    "VPCs are in use but no flow logs were found, so network traffic inside them is not being recorded.",
		Impact:         "No visibility into VPC network traffic",
		Effort:         "Medium",
		Recommendation: "Enable VPC Flow Logs for production VPCs.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.ResourceTotal("ec2", "DescribeVpcs") == 0 {
				return false, nil
			}
			if ix.ResourceTotal("ec2", "DescribeFlowLogs") > 0 {
				return false, nil
			}
			return true, entryEvidence(ix, "ec2", "DescribeFlowLogs",
				"VPCs present, zero flow logs counted")
		},
	},
	{
		ID:             "SEC-004",
		Domain:         domain.DomainSecurity,
		Severity:       domain.SeverityMedium,
		Title:          "S3 bucket without default encryption",
		Description:    "At least one bucket reports no server-side encryption configuration.",
		Impact:         "Objects stored without enforced encryption at rest",
		Effort:         "Low",
		Recommendation: "Apply a default bucket encryption configuration (SSE-S3 or SSE-KMS).",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.ResourceTotal("s3", "ListBuckets") == 0 {
				return false, nil
			}
			if ix.ErrorKindFor("s3", "GetBucketEncryption") != string(domain.ErrNotFound) {
				return false, nil
			}
			return true, entryEvidence(ix, "s3", "GetBucketEncryption",
				"encryption configuration lookup returned not-found")
		},
	},
	{
		ID:             "SEC-005",
		Domain:         domain.DomainSecurity,
		Severity:       domain.SeverityLow,
		Title:          "Identity federation not detected",
		Description:    "No SAML or OIDC identity providers are configured; console and API access likely relies on long-lived IAM user credentials.",
		Impact:         "Long-lived credentials instead of federated, temporary ones",
		Effort:         "High",
		Recommendation: "Federate workforce access through an identity provider.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if !ix.OperationSucceeded("iam", "ListSAMLProviders") {
				return false, nil
			}
			if ix.ResourceTotal("iam", "ListSAMLProviders") > 0 ||
				ix.ResourceTotal("iam", "ListOpenIDConnectProviders") > 0 {
				return false, nil
			}
			return true, entryEvidence(ix, "iam", "ListSAMLProviders",
				"zero SAML and zero OIDC providers")
		},
	},

	{
		ID:             "REL-001",
		Domain:         domain.DomainReliability,
		Severity:       domain.SeverityInfo,
		Title:          "RDS detected, verify Multi-AZ configuration",
		Description:    "Database instances are in use. Multi-AZ placement for the critical ones cannot be confirmed from inventory alone.",
		Impact:         "Possible single-AZ databases",
		Effort:         "Medium",
		Recommendation: "Review RDS instances and enable Multi-AZ for production databases.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.ResourceTotal("rds", "DescribeDBInstances") == 0 {
				return false, nil
			}
			return true, entryEvidence(ix, "rds", "DescribeDBInstances", "")
		},
	},
	{
		ID:             "REL-002",
		Domain:         domain.DomainReliability,
		Severity:       domain.SeverityMedium,
		Title:          "Databases without snapshots",
		Description:    "RDS instances exist but no database snapshots were found in any collected region.",
		Impact:         "No point-in-time recovery for databases",
		Effort:         "Low",
		Recommendation: "Enable automated backups or scheduled snapshots for every database instance.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.ResourceTotal("rds", "DescribeDBInstances") == 0 {
				return false, nil
			}
			if !ix.OperationSucceeded("rds", "DescribeDBSnapshots") {
				return false, nil
			}
			if ix.ResourceTotal("rds", "DescribeDBSnapshots") > 0 {
				return false, nil
			}
			return true, entryEvidence(ix, "rds", "DescribeDBSnapshots",
				"databases present, zero snapshots counted")
		},
	},
	{
		ID:             "REL-003",
		Domain:         domain.DomainReliability,
		Severity:       domain.SeverityInfo,
		Title:          "Single-region footprint",
		Description:    "All collected resources live in one region.",
		Impact:         "A regional outage affects the whole workload",
		Effort:         "High",
		Recommendation: "Evaluate multi-region placement for critical workloads.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.TotalResources == 0 || len(ix.Regions) != 1 {
				return false, nil
			}
			return true, []domain.EvidenceRef{{Region: ix.Regions[0], Note: "only collected region with resources"}}
		},
	},

	{
		ID:             "COST-001",
		Domain:         domain.DomainCost,
		Severity:       domain.SeverityLow,
		Title:          "Cost Explorer not accessible",
		Description:    "Cost Explorer queries were denied or the service was unreachable, limiting cost visibility.",
		Impact:         "Reduced cost visibility",
		Effort:         "Low",
		Recommendation: "Grant the audit role Cost Explorer read access and enable the service.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.OperationSucceeded("ce", "ListCostCategoryDefinitions") {
				return false, nil
			}
			return true, absenceEvidence(ix, "ce", "ListCostCategoryDefinitions")
		},
	},
	{
		ID:             "COST-002",
		Domain:         domain.DomainCost,
		Severity:       domain.SeverityInfo,
		Title:          "Many active regions",
		Description:    "Resources were collected from more than five regions, which tends to drive cross-region transfer costs.",
		Impact:         "Potential cross-region data transfer costs",
		Effort:         "High",
		Recommendation: "Review region usage and consolidate where practical.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if len(ix.Regions) <= 5 {
				return false, nil
			}
			return true, []domain.EvidenceRef{{Note: fmt.Sprintf("%d regions collected", len(ix.Regions))}}
		},
	},
	{
		ID:             "COST-003",
		Domain:         domain.DomainCost,
		Severity:       domain.SeverityInfo,
		Title:          "Elastic IPs allocated",
		Description:    "Allocated Elastic IPs were found; unattached ones are billed without serving traffic.",
		Impact:         "Possible charges for idle addresses",
		Effort:         "Low",
		Recommendation: "Release Elastic IPs that are not associated with a running resource.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.ResourceTotal("ec2", "DescribeAddresses") == 0 {
				return false, nil
			}
			return true, entryEvidence(ix, "ec2", "DescribeAddresses", "")
		},
	},

	{
		ID:             "OPS-001",
		Domain:         domain.DomainOperations,
		Severity:       domain.SeverityMedium,
		Title:          "No CloudWatch alarms configured",
		Description:    "Compute resources are running but no metric alarms exist, so failures surface through users instead of monitoring.",
		Impact:         "No automated alerting on workload health",
		Effort:         "Medium",
		Recommendation: "Define CloudWatch alarms for the key metrics of every production workload.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if ix.ResourceTotal("ec2", "DescribeInstances") == 0 {
				return false, nil
			}
			if ix.ResourceTotal("cloudwatch", "DescribeAlarms") > 0 {
				return false, nil
			}
			return true, entryEvidence(ix, "cloudwatch", "DescribeAlarms",
				"instances present, zero alarms counted")
		},
	},
	{
		ID:             "OPS-002",
		Domain:         domain.DomainOperations,
		Severity:       domain.SeverityLow,
		Title:          "No CloudWatch dashboards",
		Description:    "No dashboards were found; operational state is not visualized anywhere shared.",
		Impact:         "Harder incident triage",
		Effort:         "Low",
		Recommendation: "Create dashboards for the main workloads.",
		Predicate: func(ix *domain.Index) (bool, []domain.EvidenceRef) {
			if !ix.OperationSucceeded("cloudwatch", "ListDashboards") {
				return false, nil
			}
			if ix.ResourceTotal("cloudwatch", "ListDashboards") > 0 {
				return false, nil
			}
			return true, entryEvidence(ix, "cloudwatch", "ListDashboards", "zero dashboards counted")
		},
	},
}

// Rules returns a copy of the rule table.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// absenceEvidence cites the recorded error for an operation that never
// succeeded, or an explicit absence note when it was never collected.
func absenceEvidence(ix *domain.Index, service, operation string) []domain.EvidenceRef {
	if kind := ix.ErrorKindFor(service, operation); kind != "" {
		return []domain.EvidenceRef{{
			Service:   service,
			Operation: operation,
			Note:      fmt.Sprintf("recorded error kind %s", kind),
		}}
	}
	return []domain.EvidenceRef{{
		Service:   service,
		Operation: operation,
		Note:      "no successful record in any region",
	}}
}

// entryEvidence cites every region entry for one operation.
func entryEvidence(ix *domain.Index, service, operation, note string) []domain.EvidenceRef {
	svc := ix.Service(service)
	if svc == nil {
		return []domain.EvidenceRef{{Service: service, Operation: operation, Note: note}}
	}
	var refs []domain.EvidenceRef
	for region, rix := range svc.Regions {
		for _, e := range rix.Entries {
			if e.Operation != operation {
				continue
			}
			refs = append(refs, domain.EvidenceRef{
				Service:   service,
				Region:    region,
				Operation: operation,
				Note:      note,
			})
		}
	}
	if len(refs) == 0 {
		refs = []domain.EvidenceRef{{Service: service, Operation: operation, Note: note}}
	}
	return refs
}
