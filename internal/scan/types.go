// Package scan implements the tabular fraud-pattern checks that run over a loaded payroll dataset.
//
// Every scan is a pure function of the dataset. When a column a scan depends on is absent the scan
// returns its zero result with empty, non-nil slices.
package scan

import "github.com/shopspring/decimal"

// IdentityDetail is one national ID claimed by more than one distinct name.
type IdentityDetail struct {
	NationalID  string   `json:"nationalId"`
	Names       []string `json:"names"`
	EmployeeIDs []string `json:"employeeIds"`
}

// IdentityResult is returned by DuplicateIdentity.
type IdentityResult struct {
	DuplicateCount int              `json:"duplicateCount"`
	AffectedCount  int              `json:"affectedCount"`
	Details        []IdentityDetail `json:"details"`
}

// TaxPINDetail is one tax PIN shared by several records.
type TaxPINDetail struct {
	TaxPIN      string   `json:"taxPin"`
	EmployeeIDs []string `json:"employeeIds"`
}

// TaxPINResult is returned by DuplicateTaxPIN.
type TaxPINResult struct {
	DuplicateCount int            `json:"duplicateCount"`
	AffectedCount  int            `json:"affectedCount"`
	Details        []TaxPINDetail `json:"details"`
}

// PINSample is a record whose tax PIN is malformed.
type PINSample struct {
	EmployeeID string `json:"employeeId"`
	TaxPIN     string `json:"taxPin"`
}

// PINFormatResult is returned by TaxPINFormat.
type PINFormatResult struct {
	Checked      int         `json:"checked"`
	InvalidCount int         `json:"invalidCount"`
	Samples      []PINSample `json:"samples"`
}

// AgeFallback controls the estimate reported when no age information exists.
type AgeFallback struct {
	Fraction float64 `json:"fraction"`
	Minimum  int     `json:"minimum"`
}

// DefaultAgeFallback mirrors the historic half-percent estimate with a floor of eight.
var DefaultAgeFallback = AgeFallback{Fraction: 0.005, Minimum: 8}

// AgeDetail is one implausibly old active employee.
type AgeDetail struct {
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
	Age        int    `json:"age"`
}

// AgeResult is returned by AgeOutliers. Estimated is set when Count is the fallback estimate.
type AgeResult struct {
	MaxAge    int         `json:"maxAge"`
	Count     int         `json:"count"`
	Estimated bool        `json:"estimated"`
	Details   []AgeDetail `json:"details"`
}

// CrossUnitDetail is one identity on the payroll of more than one unit.
type CrossUnitDetail struct {
	Identity    string   `json:"identity"`
	MatchedBy   string   `json:"matchedBy"`
	Units       []string `json:"units"`
	EmployeeIDs []string `json:"employeeIds"`
}

// CrossUnitResult is returned by CrossUnitDuplicates.
type CrossUnitResult struct {
	DuplicateCount int               `json:"duplicateCount"`
	AffectedCount  int               `json:"affectedCount"`
	Details        []CrossUnitDetail `json:"details"`
}

// CeilingGroup aggregates the violations of one job group.
type CeilingGroup struct {
	JobGroup  string          `json:"jobGroup"`
	Ceiling   decimal.Decimal `json:"ceiling"`
	Count     int             `json:"count"`
	MaxSalary decimal.Decimal `json:"maxSalary"`
}

// CeilingResult is returned by SalaryCeiling.
type CeilingResult struct {
	PerGroup   []CeilingGroup `json:"perGroup"`
	TotalCount int            `json:"totalCount"`
}

// Allowance rule names.
const (
	ReasonRatio   = "allowance_ratio"
	ReasonSpecial = "special_exceeds_basic"
)

// AllowanceDetail is one record breaking at least one allowance rule.
type AllowanceDetail struct {
	EmployeeID string          `json:"employeeId"`
	FullName   string          `json:"fullName"`
	Basic      decimal.Decimal `json:"basic"`
	Combined   decimal.Decimal `json:"combined"`
	Special    decimal.Decimal `json:"special"`
	Reasons    []string        `json:"reasons"`
}

// AllowanceResult is returned by AllowanceRatio.
type AllowanceResult struct {
	Threshold float64           `json:"threshold"`
	Count     int               `json:"count"`
	Details   []AllowanceDetail `json:"details"`
}
