package payroll_fraud

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/scan"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/tools"
)

type identityScanResult struct {
	DuplicateIdentity scan.IdentityResult  `json:"duplicateIdentity"`
	DuplicateTaxPIN   scan.TaxPINResult    `json:"duplicateTaxPin"`
	TaxPINFormat      scan.PINFormatResult `json:"taxPinFormat"`
}

// IdentityScanHandler returns the handler for scan-identity-collisions.
func IdentityScanHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := requireStore(deps); res != nil {
			return res, nil
		}
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("scan-identity-collisions"))

		var args IdentityScanInput
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		ds, res := loadedDataset(deps)
		if res != nil {
			return res, nil
		}

		limit := args.SampleLimit
		if limit == 0 {
			limit = auditOptions(deps).SampleLimit
		}

		result := identityScanResult{
			DuplicateIdentity: scan.DuplicateIdentity(ds),
			DuplicateTaxPIN:   scan.DuplicateTaxPIN(ds),
			TaxPINFormat:      scan.TaxPINFormat(ds, limit),
		}
		metrics.RecordScanFindings("identity_theft", result.DuplicateIdentity.DuplicateCount)
		metrics.RecordScanFindings("duplicate_tax_pin", result.DuplicateTaxPIN.DuplicateCount)
		metrics.RecordScanFindings("invalid_tax_pin", result.TaxPINFormat.InvalidCount)

		slog.Info("identity scan completed",
			"duplicateIdentities", result.DuplicateIdentity.DuplicateCount,
			"duplicateTaxPins", result.DuplicateTaxPIN.DuplicateCount,
			"invalidTaxPins", result.TaxPINFormat.InvalidCount)
		return jsonResult(result)
	}
}

// LivingDeadHandler returns the handler for scan-living-dead.
func LivingDeadHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := requireStore(deps); res != nil {
			return res, nil
		}
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("scan-living-dead"))

		var args LivingDeadInput
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		ds, res := loadedDataset(deps)
		if res != nil {
			return res, nil
		}

		opts := auditOptions(deps)
		maxAge := args.MaxAge
		if maxAge == 0 {
			maxAge = opts.MaxAge
		}

		result := scan.AgeOutliers(ds, maxAge, opts.AgeFallback)
		metrics.RecordScanFindings("living_dead", result.Count)

		slog.Info("living dead scan completed", "maxAge", maxAge, "count", result.Count, "estimated", result.Estimated)
		return jsonResult(result)
	}
}

// DoubleDippingHandler returns the handler for scan-double-dipping.
func DoubleDippingHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := requireStore(deps); res != nil {
			return res, nil
		}
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("scan-double-dipping"))

		ds, res := loadedDataset(deps)
		if res != nil {
			return res, nil
		}

		result := scan.CrossUnitDuplicates(ds)
		metrics.RecordScanFindings("double_dipping", result.DuplicateCount)

		slog.Info("double dipping scan completed", "duplicates", result.DuplicateCount, "affected", result.AffectedCount)
		return jsonResult(result)
	}
}

// SalaryCeilingHandler returns the handler for scan-salary-ceilings.
func SalaryCeilingHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := requireStore(deps); res != nil {
			return res, nil
		}
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("scan-salary-ceilings"))

		var args CeilingScanInput
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		ds, res := loadedDataset(deps)
		if res != nil {
			return res, nil
		}

		ceilings := auditOptions(deps).Ceilings
		if len(args.Ceilings) > 0 {
			ceilings = scan.CeilingsFromFloats(args.Ceilings)
		}

		result := scan.SalaryCeiling(ds, ceilings)
		metrics.RecordScanFindings("salary_ceiling", result.TotalCount)

		slog.Info("salary ceiling scan completed", "groups", len(result.PerGroup), "violations", result.TotalCount)
		return jsonResult(result)
	}
}

// AllowanceRatioHandler returns the handler for scan-allowance-ratio.
func AllowanceRatioHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := requireStore(deps); res != nil {
			return res, nil
		}
		deps.AnalyticsService.EmitEvent(deps.AnalyticsService.NewToolsEvent("scan-allowance-ratio"))

		var args AllowanceScanInput
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		ds, res := loadedDataset(deps)
		if res != nil {
			return res, nil
		}

		threshold := args.Threshold
		if threshold == 0 {
			threshold = auditOptions(deps).AllowanceRatio
		}

		result := scan.AllowanceRatio(ds, threshold)
		metrics.RecordScanFindings("allowance_ratio", result.Count)

		slog.Info("allowance ratio scan completed", "threshold", threshold, "count", result.Count)
		return jsonResult(result)
	}
}
