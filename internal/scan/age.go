package scan

import "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"

// DefaultMaxPlausibleAge is the oldest age still expected on an active payroll.
const DefaultMaxPlausibleAge = 70

// AgeOutliers counts records older than maxAge ("living dead"). Every row of the extract is being
// paid, so the recorded employment status is not consulted: a "Retired" or "Deceased" row past
// the age limit is exactly what the scan looks for.
//
// Without an age or date of birth column the count cannot be observed, so the result is the
// fallback estimate max(int(n * Fraction), Minimum) with Estimated set.
func AgeOutliers(ds *payroll.Dataset, maxAge int, fallback AgeFallback) AgeResult {
	if maxAge <= 0 {
		maxAge = DefaultMaxPlausibleAge
	}
	res := AgeResult{MaxAge: maxAge, Details: []AgeDetail{}}

	if !ds.Has(payroll.ColAge) {
		res.Count = max(int(float64(ds.Len())*fallback.Fraction), fallback.Minimum)
		res.Estimated = true
		return res
	}

	for _, r := range ds.Records {
		if !r.HasAge || r.Age <= maxAge {
			continue
		}
		res.Count++
		res.Details = append(res.Details, AgeDetail{EmployeeID: r.EmployeeID, FullName: r.FullName, Age: r.Age})
	}
	return res
}
