package scan

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// AtRiskAmounts is the estimated loss attributed to a single finding of each kind.
type AtRiskAmounts struct {
	Ghost      decimal.Decimal `json:"ghost"`
	Identity   decimal.Decimal `json:"identity"`
	LivingDead decimal.Decimal `json:"livingDead"`
}

// AuditOptions parameterises RunAudit.
type AuditOptions struct {
	MinSharers     int
	MaxAge         int
	AgeFallback    AgeFallback
	Ceilings       Ceilings
	AllowanceRatio float64
	AtRisk         AtRiskAmounts
	TopSuspects    int
	SampleLimit    int
}

// DefaultAuditOptions returns the options used when nothing is configured.
func DefaultAuditOptions() AuditOptions {
	return AuditOptions{
		MinSharers:     graph.DefaultMinSharers,
		MaxAge:         DefaultMaxPlausibleAge,
		AgeFallback:    DefaultAgeFallback,
		Ceilings:       DefaultCeilings(),
		AllowanceRatio: DefaultAllowanceRatio,
		AtRisk: AtRiskAmounts{
			Ghost:      decimal.NewFromInt(85000),
			Identity:   decimal.NewFromInt(120000),
			LivingDead: decimal.NewFromInt(95000),
		},
		TopSuspects: 5,
		SampleLimit: 10,
	}
}

// ETLSummary describes what was ingested.
type ETLSummary struct {
	RecordsLoaded int `json:"recordsLoaded"`
	Employees     int `json:"employees"`
	BankAccounts  int `json:"bankAccounts"`
	Devices       int `json:"devices"`
	Warnings      int `json:"warnings"`
}

// AuditReport aggregates every scan over one dataset snapshot.
type AuditReport struct {
	AuditID    string    `json:"auditId"`
	BuildID    string    `json:"buildId"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`

	ETL ETLSummary `json:"etlSummary"`

	GhostFamilies       int  `json:"ghostFamiliesDetected"`
	DeviceRings         int  `json:"deviceRingsDetected"`
	IdentityTheft       int  `json:"identityTheftDetected"`
	DuplicateTaxPINs    int  `json:"duplicateTaxPinsDetected"`
	InvalidTaxPINs      int  `json:"invalidTaxPinsDetected"`
	LivingDead          int  `json:"livingDeadDetected"`
	LivingDeadEstimated bool `json:"livingDeadEstimated"`
	DoubleDippers       int  `json:"doubleDippersDetected"`
	CeilingViolations   int  `json:"ceilingViolationsDetected"`
	AllowanceViolations int  `json:"allowanceViolationsDetected"`

	// TotalFlags and AtRiskAmount cover ghost families, identity theft and living dead only.
	TotalFlags   int             `json:"totalFlags"`
	AtRiskAmount decimal.Decimal `json:"atRiskAmount"`

	TopSuspects []graph.AccountRing `json:"topSuspects"`
}

// RunAudit runs the account ring query and every tabular scan against the store's current snapshot.
// ds must be the dataset the store was built from; a nil ds uses the store's own snapshot.
func RunAudit(store *graph.Store, ds *payroll.Dataset, opts AuditOptions) (AuditReport, error) {
	if store == nil || !store.Loaded() {
		return AuditReport{}, apperrors.ErrDatasetNotLoaded
	}
	if ds == nil {
		ds, _ = store.Dataset()
	}

	start := time.Now()
	stats := store.Stats()
	report := AuditReport{
		AuditID:   uuid.NewString(),
		BuildID:   stats.BuildID,
		StartedAt: start.UTC(),
		ETL: ETLSummary{
			RecordsLoaded: ds.Len(),
			Employees:     stats.Employees,
			BankAccounts:  stats.Banks,
			Devices:       stats.Devices,
			Warnings:      len(ds.Warnings),
		},
	}

	rings := store.FindSharedAccountRings(opts.MinSharers)
	identity := DuplicateIdentity(ds)
	age := AgeOutliers(ds, opts.MaxAge, opts.AgeFallback)

	report.GhostFamilies = len(rings)
	report.DeviceRings = len(store.FindSharedDeviceRings(opts.MinSharers))
	report.IdentityTheft = identity.DuplicateCount
	report.DuplicateTaxPINs = DuplicateTaxPIN(ds).DuplicateCount
	report.InvalidTaxPINs = TaxPINFormat(ds, opts.SampleLimit).InvalidCount
	report.LivingDead = age.Count
	report.LivingDeadEstimated = age.Estimated
	report.DoubleDippers = CrossUnitDuplicates(ds).DuplicateCount
	report.CeilingViolations = SalaryCeiling(ds, opts.Ceilings).TotalCount
	report.AllowanceViolations = AllowanceRatio(ds, opts.AllowanceRatio).Count

	report.TotalFlags = report.GhostFamilies + report.IdentityTheft + report.LivingDead
	report.AtRiskAmount = opts.AtRisk.Ghost.Mul(decimal.NewFromInt(int64(report.GhostFamilies))).
		Add(opts.AtRisk.Identity.Mul(decimal.NewFromInt(int64(report.IdentityTheft)))).
		Add(opts.AtRisk.LivingDead.Mul(decimal.NewFromInt(int64(report.LivingDead))))

	top := opts.TopSuspects
	if top <= 0 || top > len(rings) {
		top = len(rings)
	}
	report.TopSuspects = rings[:top]
	report.DurationMs = time.Since(start).Milliseconds()

	recordFindings(report)
	slog.Info("payroll audit complete",
		"auditId", report.AuditID,
		"ghostFamilies", report.GhostFamilies,
		"identityTheft", report.IdentityTheft,
		"livingDead", report.LivingDead,
		"atRisk", report.AtRiskAmount.String())

	return report, nil
}

func recordFindings(r AuditReport) {
	metrics.RecordScanFindings("ghost_families", r.GhostFamilies)
	metrics.RecordScanFindings("device_rings", r.DeviceRings)
	metrics.RecordScanFindings("identity_theft", r.IdentityTheft)
	metrics.RecordScanFindings("duplicate_tax_pin", r.DuplicateTaxPINs)
	metrics.RecordScanFindings("invalid_tax_pin", r.InvalidTaxPINs)
	metrics.RecordScanFindings("living_dead", r.LivingDead)
	metrics.RecordScanFindings("double_dipping", r.DoubleDippers)
	metrics.RecordScanFindings("salary_ceiling", r.CeilingViolations)
	metrics.RecordScanFindings("allowance_ratio", r.AllowanceViolations)
}
