package payroll_fraud

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// IdentityScanInput defines the input parameters for scan-identity-collisions.
type IdentityScanInput struct {
	SampleLimit int `json:"sampleLimit,omitempty" validate:"gte=0,lte=1000" jsonschema:"description=Maximum malformed tax PINs to list. Defaults to scan.sample_limit (10)."`
}

func IdentityScanSpec() mcp.Tool {
	return mcp.NewTool("scan-identity-collisions",
		mcp.WithDescription(`Scan for identity theft and tax identity abuse in the loaded payroll.

Runs three independent checks:
- duplicate identity: one national ID paid under more than one distinct name (names are compared
  case-, accent- and whitespace-insensitively);
- duplicate tax PIN: one tax PIN shared by several records;
- tax PIN format: PINs not matching the letter, nine digits, letter pattern (e.g. A123456789Z).

Each check reports zero when its column is absent from the dataset.`),
		mcp.WithInputSchema[IdentityScanInput](),
		mcp.WithTitleAnnotation("Scan Identity Collisions"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// LivingDeadInput defines the input parameters for scan-living-dead.
type LivingDeadInput struct {
	MaxAge int `json:"maxAge,omitempty" validate:"gte=0,lte=150" jsonschema:"description=Highest plausible age for anyone still on the payroll. Defaults to scan.max_plausible_age (70)."`
}

func LivingDeadSpec() mcp.Tool {
	return mcp.NewTool("scan-living-dead",
		mcp.WithDescription(`Find "living dead" employees: staff on the payroll older than a plausible working age.

Ages come from the age column or are derived from the date of birth. Rows without a usable age are skipped.

When the dataset carries no age information at all, the count is an estimate proportional to the headcount
and "estimated" is true; treat it as a prompt to obtain birth dates, not as a finding.`),
		mcp.WithInputSchema[LivingDeadInput](),
		mcp.WithTitleAnnotation("Scan Living Dead"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func DoubleDippingSpec() mcp.Tool {
	return mcp.NewTool("scan-double-dipping",
		mcp.WithDescription(`Find "double dippers": one person drawing salary from more than one ministry or department.

People are matched by national ID, or by normalised full name when the national ID is missing.
Units are ministries when the dataset has a ministry column, departments otherwise.`),
		mcp.WithTitleAnnotation("Scan Double Dipping"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// CeilingScanInput defines the input parameters for scan-salary-ceilings.
type CeilingScanInput struct {
	Ceilings map[string]float64 `json:"ceilings,omitempty" validate:"dive,gt=0" jsonschema:"description=Basic salary ceiling per job group such as J=56000. Defaults to scan.ceilings."`
}

func SalaryCeilingSpec() mcp.Tool {
	return mcp.NewTool("scan-salary-ceilings",
		mcp.WithDescription(`Detect grade inflation: basic salaries above the ceiling of the employee's job group.

Job groups are compared case-insensitively. Groups without a configured ceiling are not checked.
Returns, per violating group, the ceiling, the number of violations and the highest salary seen.`),
		mcp.WithInputSchema[CeilingScanInput](),
		mcp.WithTitleAnnotation("Scan Salary Ceilings"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// AllowanceScanInput defines the input parameters for scan-allowance-ratio.
type AllowanceScanInput struct {
	Threshold float64 `json:"threshold,omitempty" validate:"gte=0" jsonschema:"description=Maximum ratio of house plus hardship allowance to basic salary. Defaults to scan.allowance_ratio (0.5)."`
}

func AllowanceRatioSpec() mcp.Tool {
	return mcp.NewTool("scan-allowance-ratio",
		mcp.WithDescription(`Find "allowance sharks": records whose allowances are out of proportion to basic pay.

Two rules are applied:
- allowance_ratio: house plus hardship allowance above threshold times basic salary;
- special_exceeds_basic: special allowance larger than the basic salary.

A record breaking both rules is listed once with both reasons.`),
		mcp.WithInputSchema[AllowanceScanInput](),
		mcp.WithTitleAnnotation("Scan Allowance Ratio"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}
