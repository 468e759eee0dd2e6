package scan

import (
	"github.com/shopspring/decimal"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// DefaultAllowanceRatio is the share of basic salary that house plus hardship allowance may reach.
const DefaultAllowanceRatio = 0.5

// AllowanceRatio flags records whose allowances are out of proportion to basic pay.
//
// The ratio rule fires when house + hardship allowance exceeds threshold x basic salary, for a
// positive basic salary. The strict rule fires when the special allowance exceeds the basic salary and
// only runs when the dataset carries that column. A record matching both is counted once.
func AllowanceRatio(ds *payroll.Dataset, threshold float64) AllowanceResult {
	if threshold <= 0 {
		threshold = DefaultAllowanceRatio
	}
	res := AllowanceResult{Threshold: threshold, Details: []AllowanceDetail{}}
	if !ds.Has(payroll.ColBasicSalary) {
		return res
	}

	ratioRule := ds.Has(payroll.ColHouseAllowance) || ds.Has(payroll.ColHardshipAllowance)
	strictRule := ds.Has(payroll.ColSpecialAllowance)
	if !ratioRule && !strictRule {
		return res
	}

	factor := decimal.NewFromFloat(threshold)
	for _, r := range ds.Records {
		combined := r.HouseAllowance.Add(r.HardshipAllowance)

		var reasons []string
		if ratioRule && r.BasicSalary.IsPositive() && combined.GreaterThan(r.BasicSalary.Mul(factor)) {
			reasons = append(reasons, ReasonRatio)
		}
		if strictRule && r.SpecialAllowance.GreaterThan(r.BasicSalary) {
			reasons = append(reasons, ReasonSpecial)
		}
		if len(reasons) == 0 {
			continue
		}

		res.Count++
		res.Details = append(res.Details, AllowanceDetail{
			EmployeeID: r.EmployeeID,
			FullName:   r.FullName,
			Basic:      r.BasicSalary,
			Combined:   combined,
			Special:    r.SpecialAllowance,
			Reasons:    reasons,
		})
	}
	return res
}
