package complexity

import (
	"strings"

	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

// Calculation kinds that never need expression scanning.
var simpleCalculationKinds = []string{"case_expression", "if_expression", "aggregate_function", "function"}

const embeddedCalculation = "embeddedcalculation"

// Function names whose presence makes an expression hard to port.
var criticalTerms = []string{
	"prefilter", "quartile", "quantile", "power",
	"position_regex", "substring_regex", "period",
	"lookup", "running-maximum", "running-minimum",
	"moving-average", "standard-deviation",
	"regression-average", "tanhyp", "variance",
	"_ymdint_between", "_ymdint_to_date", "_ymdint_to_time",
}

var mediumTerms = []string{
	"cast", "moving-total",
	"_add_months", "_add_years", "_add_days", "_add_weeks",
	"_first_of_month", "_days_between", "_first_of_year",
	"_months_between", "_years_between",
}

var expressionKeys = []string{"expression", "formula", "calculation"}

// Expression rates a calculation by its kind and, failing that, by the
// functions used in its expression text.
func Expression(kind string, expression any) Level {
	k := strings.ToLower(strings.TrimSpace(kind))
	if k == embeddedCalculation {
		return Medium
	}
	for _, s := range simpleCalculationKinds {
		if k == s {
			return Low
		}
	}

	text := strings.ToLower(model.Stringify(expression))
	for _, term := range criticalTerms {
		if strings.Contains(text, term) {
			return Critical
		}
	}
	for _, term := range mediumTerms {
		if strings.Contains(text, term) {
			return Medium
		}
	}
	return Low
}

// CalculationKind reads calculation_type, defaulting to "expression".
func CalculationKind(props model.Properties) string {
	v, _ := props.GetFold("calculation_type")
	if s := strings.TrimSpace(model.Stringify(v)); s != "" {
		return s
	}
	return "expression"
}

// ExpressionText returns the first of expression, formula or calculation.
func ExpressionText(props model.Properties) any {
	v, _ := props.GetFold(expressionKeys...)
	return v
}

func CalculatedField(props model.Properties) Level {
	return Expression(CalculationKind(props), ExpressionText(props))
}

func Measure(props model.Properties) Level {
	return Expression("expression", ExpressionText(props))
}

func Dimension(props model.Properties) Level {
	return Expression("expression", ExpressionText(props))
}

func Filter(props model.Properties) Level {
	if props.Bool("is_complex") {
		return Medium
	}
	return Low
}

// QuerySourceType reads source_type, defaulting to "unknown".
func QuerySourceType(props model.Properties) string {
	if v, ok := props.FirstTruthy("source_type"); ok {
		return model.Stringify(v)
	}
	return "unknown"
}

// QueryIsSimple is true for queries straight off a model or SQL.
func QueryIsSimple(sourceType string) bool {
	return sourceType == "model" || sourceType == "sql"
}

// QueryIsComplex is true for queries built on another query.
func QueryIsComplex(sourceType string) bool {
	return sourceType == "query_ref"
}

func Query(props model.Properties) Level {
	if QueryIsComplex(QuerySourceType(props)) {
		return Medium
	}
	return Low
}

func Parameter(model.Properties) Level  { return Medium }
func Prompt(model.Properties) Level     { return Medium }
func DataModule(model.Properties) Level { return Medium }
func Connection(model.Properties) Level { return Medium }
func Sort(model.Properties) Level       { return Low }

// Package is Medium once it owns more than two data modules.
func Package(dataModules int) Level {
	if dataModules > 2 {
		return Medium
	}
	return Low
}

// Container rates a dashboard or report from the visualizations it holds.
func Container(forceCritical bool, visualizations ...Level) Level {
	if forceCritical {
		return Critical
	}
	return Worst(visualizations...)
}

// IsInteractiveReport matches the report type that always rates Critical.
func IsInteractiveReport(reportType string) bool {
	return strings.ToLower(strings.TrimSpace(reportType)) == "interactivereport"
}
