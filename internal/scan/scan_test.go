package scan

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

func dataset(cols []payroll.Column, records ...payroll.Record) *payroll.Dataset {
	ds := payroll.NewDataset(cols...)
	ds.Records = append(ds.Records, records...)
	return ds
}

var identityCols = []payroll.Column{payroll.ColEmployeeID, payroll.ColNationalID, payroll.ColFullName, payroll.ColTaxPIN}

func person(id, nationalID, name string) payroll.Record {
	return payroll.Record{EmployeeID: id, NationalID: nationalID, FullName: name, TaxPIN: payroll.NotAvailable}
}

func TestDuplicateIdentity(t *testing.T) {
	t.Run("one id under three names", func(t *testing.T) {
		ds := dataset(identityCols,
			person("E1", "12345678", "Jane Wanjiru"),
			person("E2", "12345678", "John Otieno"),
			person("E3", "12345678", "Mary Achieng"),
			person("E4", "87654321", "Peter Kamau"),
		)

		res := DuplicateIdentity(ds)
		assert.GreaterOrEqual(t, res.DuplicateCount, 1)
		assert.Equal(t, 3, res.AffectedCount)
		require.Len(t, res.Details, 1)
		assert.Equal(t, "12345678", res.Details[0].NationalID)
		assert.Equal(t, []string{"E1", "E2", "E3"}, res.Details[0].EmployeeIDs)
	})

	t.Run("no duplicates", func(t *testing.T) {
		ds := dataset(identityCols, person("E1", "1", "A"), person("E2", "2", "B"))
		res := DuplicateIdentity(ds)
		assert.Equal(t, 0, res.DuplicateCount)
		assert.Equal(t, 0, res.AffectedCount)
		assert.NotNil(t, res.Details)
	})

	t.Run("same name in different case is not a collision", func(t *testing.T) {
		ds := dataset(identityCols, person("E1", "1", "José Kamau"), person("E2", "1", "JOSE  kamau"))
		assert.Equal(t, 0, DuplicateIdentity(ds).DuplicateCount)
	})

	t.Run("unavailable ids are ignored", func(t *testing.T) {
		ds := dataset(identityCols, person("E1", payroll.NotAvailable, "A"), person("E2", payroll.NotAvailable, "B"))
		assert.Equal(t, 0, DuplicateIdentity(ds).DuplicateCount)
	})

	t.Run("missing column yields zero", func(t *testing.T) {
		ds := dataset([]payroll.Column{payroll.ColEmployeeID}, person("E1", "1", "A"), person("E2", "1", "B"))
		res := DuplicateIdentity(ds)
		assert.Equal(t, 0, res.DuplicateCount)
		assert.Empty(t, res.Details)
	})
}

func TestDuplicateTaxPIN(t *testing.T) {
	a := person("E1", "1", "A")
	a.TaxPIN = "A123456789B"
	b := person("E2", "2", "B")
	b.TaxPIN = "A123456789B"
	c := person("E3", "3", "C")
	c.TaxPIN = "bad-pin"

	ds := dataset(identityCols, a, b, c)

	res := DuplicateTaxPIN(ds)
	assert.Equal(t, 1, res.DuplicateCount)
	assert.Equal(t, 2, res.AffectedCount)

	// different national IDs, so only the PIN scan sees them
	assert.Equal(t, 0, DuplicateIdentity(ds).DuplicateCount)

	format := TaxPINFormat(ds, 5)
	assert.Equal(t, 3, format.Checked)
	assert.Equal(t, 1, format.InvalidCount)
	assert.Equal(t, []PINSample{{EmployeeID: "E3", TaxPIN: "bad-pin"}}, format.Samples)

	assert.Empty(t, TaxPINFormat(ds, 0).Samples)
}

func TestAgeOutliers(t *testing.T) {
	t.Run("three records at eighty five", func(t *testing.T) {
		var records []payroll.Record
		for i := 0; i < 40; i++ {
			age := 25 + i%36
			if i%13 == 0 && i > 0 {
				age = 85
			}
			records = append(records, payroll.Record{EmployeeID: fmt.Sprintf("E%d", i), Age: age, HasAge: true})
		}
		ds := dataset([]payroll.Column{payroll.ColEmployeeID, payroll.ColAge}, records...)

		res := AgeOutliers(ds, 70, DefaultAgeFallback)
		assert.Equal(t, 3, res.Count)
		assert.False(t, res.Estimated)
		assert.Len(t, res.Details, 3)
	})

	t.Run("boundary is exclusive", func(t *testing.T) {
		ds := dataset([]payroll.Column{payroll.ColAge},
			payroll.Record{EmployeeID: "E1", Age: 70, HasAge: true},
			payroll.Record{EmployeeID: "E2", Age: 71, HasAge: true},
			payroll.Record{EmployeeID: "E3"},
		)
		assert.Equal(t, 1, AgeOutliers(ds, 70, DefaultAgeFallback).Count)
	})

	t.Run("recorded status does not hide a record", func(t *testing.T) {
		ds := dataset([]payroll.Column{payroll.ColAge, payroll.ColEmploymentStatus},
			payroll.Record{EmployeeID: "E1", Age: 88, HasAge: true, EmploymentStatus: "Retired"},
			payroll.Record{EmployeeID: "E2", Age: 91, HasAge: true, EmploymentStatus: "Deceased"},
			payroll.Record{EmployeeID: "E3", Age: 76, HasAge: true, EmploymentStatus: "Active"},
			payroll.Record{EmployeeID: "E4", Age: 40, HasAge: true, EmploymentStatus: "Active"},
		)
		assert.Equal(t, 3, AgeOutliers(ds, 70, DefaultAgeFallback).Count)
	})

	t.Run("fallback estimate without age", func(t *testing.T) {
		small := dataset([]payroll.Column{payroll.ColEmployeeID}, make([]payroll.Record, 100)...)
		res := AgeOutliers(small, 70, DefaultAgeFallback)
		assert.True(t, res.Estimated)
		assert.Equal(t, 8, res.Count)

		large := dataset([]payroll.Column{payroll.ColEmployeeID}, make([]payroll.Record, 5000)...)
		assert.Equal(t, 25, AgeOutliers(large, 70, DefaultAgeFallback).Count)

		custom := AgeOutliers(large, 70, AgeFallback{Fraction: 0.01, Minimum: 0})
		assert.Equal(t, 50, custom.Count)
	})
}

func TestCrossUnitDuplicates(t *testing.T) {
	cols := []payroll.Column{payroll.ColEmployeeID, payroll.ColNationalID, payroll.ColFullName, payroll.ColMinistry, payroll.ColDepartment}

	rec := func(id, nid, name, ministry, dept string) payroll.Record {
		return payroll.Record{EmployeeID: id, NationalID: nid, FullName: name, Ministry: ministry, Department: dept}
	}

	t.Run("by national id across ministries", func(t *testing.T) {
		ds := dataset(cols,
			rec("E1", "111", "Ann", "Health", "Nursing"),
			rec("E2", "111", "Ann", "Education", "Teaching"),
			rec("E3", "222", "Ben", "Health", "Nursing"),
			rec("E4", "222", "Ben", "Health", "Pharmacy"),
		)
		res := CrossUnitDuplicates(ds)
		assert.Equal(t, 1, res.DuplicateCount)
		assert.Equal(t, 2, res.AffectedCount)
		require.Len(t, res.Details, 1)
		assert.Equal(t, matchedByNationalID, res.Details[0].MatchedBy)
		assert.Equal(t, []string{"Health", "Education"}, res.Details[0].Units)
	})

	t.Run("falls back to name and department", func(t *testing.T) {
		ds := dataset([]payroll.Column{payroll.ColEmployeeID, payroll.ColFullName, payroll.ColDepartment},
			rec("E1", payroll.NotAvailable, "Ann Njeri", "", "Nursing"),
			rec("E2", payroll.NotAvailable, "ann  njeri", "", "Pharmacy"),
		)
		res := CrossUnitDuplicates(ds)
		assert.Equal(t, 1, res.DuplicateCount)
		assert.Equal(t, matchedByName, res.Details[0].MatchedBy)
		assert.Equal(t, "ann njeri", res.Details[0].Identity)
	})

	t.Run("no unit column", func(t *testing.T) {
		ds := dataset([]payroll.Column{payroll.ColNationalID}, rec("E1", "1", "A", "X", "Y"), rec("E2", "1", "A", "Z", "W"))
		assert.Equal(t, 0, CrossUnitDuplicates(ds).DuplicateCount)
	})
}

func TestSalaryCeiling(t *testing.T) {
	cols := []payroll.Column{payroll.ColEmployeeID, payroll.ColJobGroup, payroll.ColBasicSalary}
	rec := func(id, jg string, basic int64) payroll.Record {
		return payroll.Record{EmployeeID: id, JobGroup: jg, BasicSalary: decimal.NewFromInt(basic)}
	}

	ds := dataset(cols,
		rec("E1", "K", 90000),
		rec("E2", "K", 78000),
		rec("E3", "J", 60000),
		rec("E4", "k", 100000),
		rec("E5", "Z", 9999999),
		rec("E6", "P", 100000),
	)

	res := SalaryCeiling(ds, DefaultCeilings())
	assert.Equal(t, 3, res.TotalCount)
	require.Len(t, res.PerGroup, 2)

	assert.Equal(t, "J", res.PerGroup[0].JobGroup)
	assert.Equal(t, 1, res.PerGroup[0].Count)

	assert.Equal(t, "K", res.PerGroup[1].JobGroup)
	assert.Equal(t, 2, res.PerGroup[1].Count)
	assert.True(t, decimal.NewFromInt(100000).Equal(res.PerGroup[1].MaxSalary))
	assert.True(t, decimal.NewFromInt(78000).Equal(res.PerGroup[1].Ceiling))

	t.Run("configured table", func(t *testing.T) {
		custom := CeilingsFromFloats(map[string]float64{"k": 95000})
		res := SalaryCeiling(ds, custom)
		assert.Equal(t, 1, res.TotalCount)
	})

	t.Run("missing basic salary", func(t *testing.T) {
		res := SalaryCeiling(dataset([]payroll.Column{payroll.ColJobGroup}, ds.Records...), DefaultCeilings())
		assert.Equal(t, 0, res.TotalCount)
		assert.NotNil(t, res.PerGroup)
	})
}

func TestAllowanceRatio(t *testing.T) {
	cols := []payroll.Column{payroll.ColEmployeeID, payroll.ColBasicSalary, payroll.ColHouseAllowance,
		payroll.ColHardshipAllowance, payroll.ColSpecialAllowance}
	rec := func(id string, basic, house, hardship, special int64) payroll.Record {
		return payroll.Record{
			EmployeeID:        id,
			BasicSalary:       decimal.NewFromInt(basic),
			HouseAllowance:    decimal.NewFromInt(house),
			HardshipAllowance: decimal.NewFromInt(hardship),
			SpecialAllowance:  decimal.NewFromInt(special),
		}
	}

	ds := dataset(cols,
		rec("E1", 50000, 10000, 5000, 0),      // clean
		rec("E2", 50000, 20000, 10000, 0),     // ratio only
		rec("E3", 40000, 5000, 0, 45000),      // special only
		rec("E4", 40000, 20000, 10000, 50000), // both
		rec("E5", 0, 20000, 0, 0),             // zero basic, ratio rule skipped
	)

	res := AllowanceRatio(ds, 0.5)
	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Details, 3)
	assert.Equal(t, []string{ReasonRatio}, res.Details[0].Reasons)
	assert.Equal(t, []string{ReasonSpecial}, res.Details[1].Reasons)
	assert.Equal(t, "E4", res.Details[2].EmployeeID)
	assert.Equal(t, []string{ReasonRatio, ReasonSpecial}, res.Details[2].Reasons)

	t.Run("special column absent", func(t *testing.T) {
		noSpecial := dataset(cols[:4], ds.Records...)
		res := AllowanceRatio(noSpecial, 0.5)
		assert.Equal(t, 2, res.Count)
	})

	t.Run("non-positive threshold uses default", func(t *testing.T) {
		assert.Equal(t, DefaultAllowanceRatio, AllowanceRatio(ds, 0).Threshold)
	})
}

func TestRunAudit(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		_, err := RunAudit(graph.NewStore(), nil, DefaultAuditOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotLoaded))
	})

	t.Run("aggregates findings", func(t *testing.T) {
		cols := []payroll.Column{payroll.ColEmployeeID, payroll.ColNationalID, payroll.ColFullName,
			payroll.ColBankAccount, payroll.ColBankName, payroll.ColDeviceID, payroll.ColAge}
		var records []payroll.Record
		for i := 1; i <= 10; i++ {
			r := payroll.Record{
				EmployeeID:  fmt.Sprintf("E%d", i),
				NationalID:  fmt.Sprintf("%08d", i),
				FullName:    fmt.Sprintf("Person %d", i),
				BankAccount: fmt.Sprintf("ACC-%d", i),
				BankName:    "KCB",
				DeviceID:    fmt.Sprintf("D%d", i),
				Age:         40,
				HasAge:      true,
			}
			if i <= 3 {
				r.BankAccount = "ACC-999"
			}
			if i == 4 {
				r.NationalID = "00000005"
			}
			if i == 10 {
				r.Age = 90
			}
			records = append(records, r)
		}
		ds := dataset(cols, records...)

		store := graph.NewStore()
		_, err := store.Build(ds)
		require.NoError(t, err)

		report, err := RunAudit(store, nil, DefaultAuditOptions())
		require.NoError(t, err)

		assert.NotEmpty(t, report.AuditID)
		assert.Equal(t, 10, report.ETL.RecordsLoaded)
		assert.Equal(t, 1, report.GhostFamilies)
		assert.Equal(t, 1, report.IdentityTheft)
		assert.Equal(t, 1, report.LivingDead)
		assert.False(t, report.LivingDeadEstimated)
		assert.Equal(t, 3, report.TotalFlags)
		assert.True(t, decimal.NewFromInt(85000+120000+95000).Equal(report.AtRiskAmount), report.AtRiskAmount.String())
		require.Len(t, report.TopSuspects, 1)
		assert.Equal(t, 3, report.TopSuspects[0].SharerCount)
	})
}
