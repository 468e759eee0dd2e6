package scan

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// Ceilings maps a job group to the highest basic salary it may pay.
type Ceilings map[string]decimal.Decimal

// DefaultCeilings returns the civil service grade table.
func DefaultCeilings() Ceilings {
	return Ceilings{
		"J": decimal.NewFromInt(56000),
		"K": decimal.NewFromInt(78000),
		"L": decimal.NewFromInt(98000),
		"M": decimal.NewFromInt(138000),
		"N": decimal.NewFromInt(190000),
		"P": decimal.NewFromInt(280000),
	}
}

// CeilingsFromFloats converts a configured table. Keys are upper-cased.
func CeilingsFromFloats(table map[string]float64) Ceilings {
	c := make(Ceilings, len(table))
	for k, v := range table {
		c[strings.ToUpper(strings.TrimSpace(k))] = decimal.NewFromFloat(v)
	}
	return c
}

// SalaryCeiling flags basic salaries above their job group's ceiling ("grade inflation").
// Groups are reported in sorted key order and only when they have at least one violation.
// Job groups absent from the table are never flagged.
func SalaryCeiling(ds *payroll.Dataset, ceilings Ceilings) CeilingResult {
	res := CeilingResult{PerGroup: []CeilingGroup{}}
	if !ds.Has(payroll.ColJobGroup) || !ds.Has(payroll.ColBasicSalary) || len(ceilings) == 0 {
		return res
	}

	keys := make([]string, 0, len(ceilings))
	for k := range ceilings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	byGroup := make(map[string][]payroll.Record)
	for _, r := range ds.Records {
		g := strings.ToUpper(strings.TrimSpace(r.JobGroup))
		byGroup[g] = append(byGroup[g], r)
	}

	for _, jg := range keys {
		ceiling := ceilings[jg]
		cg := CeilingGroup{JobGroup: jg, Ceiling: ceiling, MaxSalary: decimal.Zero}
		for _, r := range byGroup[strings.ToUpper(jg)] {
			if !r.BasicSalary.GreaterThan(ceiling) {
				continue
			}
			cg.Count++
			if r.BasicSalary.GreaterThan(cg.MaxSalary) {
				cg.MaxSalary = r.BasicSalary
			}
		}
		if cg.Count > 0 {
			res.PerGroup = append(res.PerGroup, cg)
			res.TotalCount += cg.Count
		}
	}
	return res
}
