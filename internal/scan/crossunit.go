package scan

import (
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

const (
	matchedByNationalID = "national_id"
	matchedByName       = "name"
)

// CrossUnitDuplicates flags people drawing pay from more than one ministry ("double dipping").
// A person is identified by national ID when the record has one and by normalized name otherwise.
// The unit is the ministry when that column exists and the department otherwise.
func CrossUnitDuplicates(ds *payroll.Dataset) CrossUnitResult {
	res := CrossUnitResult{Details: []CrossUnitDetail{}}

	hasID, hasName := ds.Has(payroll.ColNationalID), ds.Has(payroll.ColFullName)
	useMinistry := ds.Has(payroll.ColMinistry)
	if (!hasID && !hasName) || (!useMinistry && !ds.Has(payroll.ColDepartment)) {
		return res
	}

	people := newGroup()
	matched := make(map[string]string)
	for i, r := range ds.Records {
		var key, by string
		switch {
		case hasID && !payroll.IsMissing(r.NationalID):
			key, by = "id:"+r.NationalID, matchedByNationalID
		case hasName && !payroll.IsMissing(r.FullName):
			key, by = "name:"+payroll.NormalizeName(r.FullName), matchedByName
		default:
			continue
		}
		if payroll.IsMissing(unitOf(r, useMinistry)) {
			continue
		}
		people.add(key, i)
		matched[key] = by
	}

	for _, key := range people.order {
		rows := people.index[key]
		if len(rows) < 2 {
			continue
		}

		seen := make(map[string]bool)
		var units []string
		for _, i := range rows {
			u := unitOf(ds.Records[i], useMinistry)
			if !seen[u] {
				seen[u] = true
				units = append(units, u)
			}
		}
		if len(units) < 2 {
			continue
		}

		identity := ds.Records[rows[0]].NationalID
		if matched[key] == matchedByName {
			identity = payroll.NormalizeName(ds.Records[rows[0]].FullName)
		}
		res.DuplicateCount++
		res.AffectedCount += len(rows)
		res.Details = append(res.Details, CrossUnitDetail{
			Identity:    identity,
			MatchedBy:   matched[key],
			Units:       units,
			EmployeeIDs: employeeIDs(ds, rows),
		})
	}
	return res
}

func unitOf(r payroll.Record, useMinistry bool) string {
	if useMinistry {
		return r.Ministry
	}
	return r.Department
}
