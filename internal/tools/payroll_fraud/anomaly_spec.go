package payroll_fraud

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ScoreAnomaliesInput defines the input parameters for score-salary-anomalies.
type ScoreAnomaliesInput struct {
	Contamination float64 `json:"contamination,omitempty" validate:"gte=0,lte=0.5" jsonschema:"description=Expected share of anomalous records between 0 and 0.5. Defaults to anomaly.contamination (0.05)."`
	TopN          int     `json:"topN,omitempty" validate:"gte=0,lte=10000" jsonschema:"description=Number of most anomalous records to return. Defaults to anomaly.top_n (50)."`
}

func ScoreAnomaliesSpec() mcp.Tool {
	return mcp.NewTool("score-salary-anomalies",
		mcp.WithDescription(`Score every employee's pay with an isolation forest and return the most anomalous records.

The model is trained on each call over two features: gross salary and the job group (encoded as an ordinal).
Records are ranked by the forest's decision score; rank 1 is the most isolated record.

Each anomaly carries:
- riskScore: the rank mapped onto 55-99 (99 = most anomalous);
- anomalyScore: riskScore / 100;
- rawScore: the forest decision score (lower is more anomalous);
- groupMean and sigma: how far the salary sits from its job group mean in standard deviations.

Status is "success", "no_data" when the dataset has no usable rows, or "model_fit_failed" when the
features cannot be modelled (for example non-finite salaries). Runs are seeded and repeatable.`),
		mcp.WithInputSchema[ScoreAnomaliesInput](),
		mcp.WithTitleAnnotation("Score Salary Anomalies"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func RunAuditSpec() mcp.Tool {
	return mcp.NewTool("run-payroll-audit",
		mcp.WithDescription(`Run every payroll fraud check against the loaded snapshot and return one aggregate report.

Includes ghost families (shared accounts), device rings, identity theft, duplicate and malformed tax PINs,
living dead, double dippers, salary ceiling and allowance violations, plus:
- totalFlags: ghost families + identity theft + living dead;
- atRiskAmount: those three counts multiplied by their configured per-case loss estimates;
- topSuspects: the largest shared-account rings.

Use this for an executive summary, then drill into the individual scan tools.`),
		mcp.WithTitleAnnotation("Run Payroll Audit"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}
