package scan

import (
	"regexp"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// taxPINPattern is the revenue authority PIN shape: one letter, nine digits, one letter.
var taxPINPattern = regexp.MustCompile(`^[A-Z]\d{9}[A-Z]$`)

// group collects record indexes under a key, remembering first-seen key order.
type group struct {
	order []string
	index map[string][]int
}

func newGroup() *group {
	return &group{index: make(map[string][]int)}
}

func (g *group) add(key string, i int) {
	if _, ok := g.index[key]; !ok {
		g.order = append(g.order, key)
	}
	g.index[key] = append(g.index[key], i)
}

// DuplicateIdentity flags national IDs that appear under more than one distinct name.
// Names are compared after normalization, so case and accents do not count as a difference.
func DuplicateIdentity(ds *payroll.Dataset) IdentityResult {
	res := IdentityResult{Details: []IdentityDetail{}}
	if !ds.Has(payroll.ColNationalID) || !ds.Has(payroll.ColFullName) {
		return res
	}

	byID := newGroup()
	for i, r := range ds.Records {
		if payroll.IsMissing(r.NationalID) {
			continue
		}
		byID.add(r.NationalID, i)
	}

	for _, id := range byID.order {
		rows := byID.index[id]
		if len(rows) < 2 {
			continue
		}

		seen := make(map[string]bool)
		var names []string
		for _, i := range rows {
			name := ds.Records[i].FullName
			if payroll.IsMissing(name) {
				continue
			}
			key := payroll.NormalizeName(name)
			if !seen[key] {
				seen[key] = true
				names = append(names, name)
			}
		}
		if len(names) < 2 {
			continue
		}

		res.DuplicateCount++
		res.AffectedCount += len(rows)
		res.Details = append(res.Details, IdentityDetail{
			NationalID:  id,
			Names:       names,
			EmployeeIDs: employeeIDs(ds, rows),
		})
	}
	return res
}

// DuplicateTaxPIN flags tax PINs carried by more than one record, whatever the names.
func DuplicateTaxPIN(ds *payroll.Dataset) TaxPINResult {
	res := TaxPINResult{Details: []TaxPINDetail{}}
	if !ds.Has(payroll.ColTaxPIN) {
		return res
	}

	byPIN := newGroup()
	for i, r := range ds.Records {
		if payroll.IsMissing(r.TaxPIN) {
			continue
		}
		byPIN.add(r.TaxPIN, i)
	}

	for _, pin := range byPIN.order {
		rows := byPIN.index[pin]
		if len(rows) < 2 {
			continue
		}
		res.DuplicateCount++
		res.AffectedCount += len(rows)
		res.Details = append(res.Details, TaxPINDetail{TaxPIN: pin, EmployeeIDs: employeeIDs(ds, rows)})
	}
	return res
}

// TaxPINFormat counts present tax PINs that do not match the expected shape. At most sampleLimit
// offending records are returned; a negative limit returns them all.
func TaxPINFormat(ds *payroll.Dataset, sampleLimit int) PINFormatResult {
	res := PINFormatResult{Samples: []PINSample{}}
	if !ds.Has(payroll.ColTaxPIN) {
		return res
	}

	for _, r := range ds.Records {
		if payroll.IsMissing(r.TaxPIN) {
			continue
		}
		res.Checked++
		if taxPINPattern.MatchString(r.TaxPIN) {
			continue
		}
		res.InvalidCount++
		if sampleLimit < 0 || len(res.Samples) < sampleLimit {
			res.Samples = append(res.Samples, PINSample{EmployeeID: r.EmployeeID, TaxPIN: r.TaxPIN})
		}
	}
	return res
}

func employeeIDs(ds *payroll.Dataset, rows []int) []string {
	ids := make([]string, 0, len(rows))
	for _, i := range rows {
		ids = append(ids, ds.Records[i].EmployeeID)
	}
	return ids
}
