package report

import (
	"github.com/goccy/go-json"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

// Report is the complete assessment output. It is rebuilt from scratch on
// every generation and identical snapshots produce identical reports.
type Report struct {
	AssessmentID    string          `json:"assessment_id"`
	Sections        Sections        `json:"sections"`
	ComplexAnalysis ComplexAnalysis `json:"complex_analysis"`
	Summary         Summary         `json:"summary"`
	Challenges      Challenges      `json:"challenges"`
	Appendix        Appendix        `json:"appendix"`
	UsageStats      json.RawMessage `json:"usage_stats"`
}

// Sections groups the per-category breakdowns of a report.
type Sections struct {
	Visualizations   VisualizationDetails  `json:"visualization_details"`
	Dashboards       DashboardsBreakdown   `json:"dashboards_breakdown"`
	Reports          ReportsBreakdown      `json:"reports_breakdown"`
	Packages         PackagesBreakdown     `json:"packages_breakdown"`
	Connections      ConnectionsBreakdown  `json:"data_source_connections_breakdown"`
	CalculatedFields Breakdown[Item]       `json:"calculated_fields_breakdown"`
	Filters          Breakdown[FilterItem] `json:"filters_breakdown"`
	Parameters       Breakdown[Item]       `json:"parameters_breakdown"`
	Sorts            Breakdown[Item]       `json:"sorts_breakdown"`
	Prompts          Breakdown[Item]       `json:"prompts_breakdown"`
	DataModules      DataModulesBreakdown  `json:"data_modules_breakdown"`
	Queries          Breakdown[QueryItem]  `json:"queries_breakdown"`
	Measures         Breakdown[FieldItem]  `json:"measures_breakdown"`
	Dimensions       Breakdown[FieldItem]  `json:"dimensions_breakdown"`
}

// LevelCounts tallies items per rated level. Unknown is never counted.
type LevelCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Add increments level l by n. Unknown is ignored.
func (c *LevelCounts) Add(l complexity.Level, n int) {
	switch l {
	case complexity.Low:
		c.Low += n
	case complexity.Medium:
		c.Medium += n
	case complexity.High:
		c.High += n
	case complexity.Critical:
		c.Critical += n
	}
}

func (c LevelCounts) Get(l complexity.Level) int {
	switch l {
	case complexity.Low:
		return c.Low
	case complexity.Medium:
		return c.Medium
	case complexity.High:
		return c.High
	case complexity.Critical:
		return c.Critical
	}
	return 0
}

// LevelStat is one level of a by_complexity block: how many items rate at
// the level and how many distinct dashboards and reports contain one.
type LevelStat struct {
	Complexity                string `json:"complexity"`
	Count                     int    `json:"count"`
	DashboardsContainingCount int    `json:"dashboards_containing_count"`
	ReportsContainingCount    int    `json:"reports_containing_count"`
}

// ByComplexity holds one LevelStat per rated level.
type ByComplexity struct {
	Low      LevelStat `json:"low"`
	Medium   LevelStat `json:"medium"`
	High     LevelStat `json:"high"`
	Critical LevelStat `json:"critical"`
}

func (b ByComplexity) Get(l complexity.Level) LevelStat {
	switch l {
	case complexity.Low:
		return b.Low
	case complexity.Medium:
		return b.Medium
	case complexity.High:
		return b.High
	case complexity.Critical:
		return b.Critical
	}
	return LevelStat{Complexity: l.Key()}
}

// Breakdown is the common section shape for per-object categories.
type Breakdown[T any] struct {
	Total        int          `json:"total"`
	Stats        LevelCounts  `json:"stats"`
	Items        []T          `json:"items"`
	ByComplexity ByComplexity `json:"by_complexity"`
}

// Item is one object of a per-object category.
type Item struct {
	ID                        string           `json:"id"`
	Name                      string           `json:"name"`
	Complexity                complexity.Level `json:"complexity"`
	DashboardsContainingCount int              `json:"dashboards_containing_count"`
	ReportsContainingCount    int              `json:"reports_containing_count"`
	Properties                model.Properties `json:"properties"`
}

type FilterItem struct {
	Item
	ParentID                *string `json:"parent_id"`
	ParentName              *string `json:"parent_name"`
	AssociatedContainerType *string `json:"associated_container_type"`
}

type QueryItem struct {
	Item
	SourceType string  `json:"source_type"`
	IsSimple   bool    `json:"is_simple"`
	IsComplex  bool    `json:"is_complex"`
	ReportID   *string `json:"report_id"`
	ReportName *string `json:"report_name"`
}

// FieldItem describes a measure or dimension. Qualifier holds the
// aggregation of a measure or the usage of a dimension.
type FieldItem struct {
	Item
	Qualifier        *string `json:"qualifier"`
	IsSimple         bool    `json:"is_simple"`
	IsComplex        bool    `json:"is_complex"`
	ParentModuleID   *string `json:"parent_module_id"`
	ParentModuleName *string `json:"parent_module_name"`
}

type VisualizationDetails struct {
	Total        int                 `json:"total"`
	Stats        LevelCounts         `json:"stats"`
	ByComplexity ByComplexity        `json:"by_complexity"`
	Breakdown    []VisualizationType `json:"breakdown"`
}

// VisualizationType aggregates every visualization of one chart type.
type VisualizationType struct {
	Visualization             string           `json:"visualization"`
	Count                     int              `json:"count"`
	Complexity                complexity.Level `json:"complexity"`
	Feasibility               *string          `json:"feasibility"`
	Description               *string          `json:"description"`
	Recommended               *string          `json:"recommended"`
	DashboardsContainingCount int              `json:"dashboards_containing_count"`
	ReportsContainingCount    int              `json:"reports_containing_count"`
	QueriesUsingCount         int              `json:"queries_using_count"`
}

type DashboardsBreakdown struct {
	Total      int             `json:"total"`
	Stats      LevelCounts     `json:"stats"`
	Dashboards []DashboardItem `json:"dashboards"`
}

// DashboardItem summarises one deduplicated dashboard and what it contains.
type DashboardItem struct {
	ID                         string           `json:"dashboard_id"`
	Name                       string           `json:"dashboard_name"`
	Complexity                 complexity.Level `json:"complexity"`
	TotalVisualizations        int              `json:"total_visualizations"`
	VisualizationsByComplexity LevelCounts      `json:"visualizations_by_complexity"`
	TotalTabs                  int              `json:"total_tabs"`
	TotalMeasures              int              `json:"total_measures"`
	TotalDimensions            int              `json:"total_dimensions"`
	TotalCalculatedFields      int              `json:"total_calculated_fields"`
	TotalDataModules           int              `json:"total_data_modules"`
	TotalPackages              int              `json:"total_packages"`
	TotalDataSources           int              `json:"total_data_sources"`
}

type ReportsBreakdown struct {
	Total   int          `json:"total"`
	Stats   LevelCounts  `json:"stats"`
	Reports []ReportItem `json:"reports"`
}

// ReportItem is the report counterpart of DashboardItem. Data modules,
// packages and data sources include everything its contents use.
type ReportItem struct {
	ID                           string           `json:"report_id"`
	Name                         string           `json:"report_name"`
	ReportType                   string           `json:"report_type"`
	Complexity                   complexity.Level `json:"complexity"`
	TotalVisualizations          int              `json:"total_visualizations"`
	VisualizationsByComplexity   LevelCounts      `json:"visualizations_by_complexity"`
	CalculatedFieldsByComplexity LevelCounts      `json:"calculated_fields_by_complexity"`
	TotalPages                   int              `json:"total_pages"`
	TotalDataModules             int              `json:"total_data_modules"`
	TotalPackages                int              `json:"total_packages"`
	TotalDataSources             int              `json:"total_data_sources"`
	TotalTables                  int              `json:"total_tables"`
	TotalColumns                 int              `json:"total_columns"`
	TotalFilters                 int              `json:"total_filters"`
	TotalParameters              int              `json:"total_parameters"`
	TotalSorts                   int              `json:"total_sorts"`
	TotalPrompts                 int              `json:"total_prompts"`
	TotalCalculatedFields        int              `json:"total_calculated_fields"`
	TotalMeasures                int              `json:"total_measures"`
	TotalDimensions              int              `json:"total_dimensions"`
}

type PackagesBreakdown struct {
	Total    int           `json:"total"`
	Stats    LevelCounts   `json:"stats"`
	Packages []PackageItem `json:"packages"`
}

// PackageItem counts a merged package and how many roots reach it.
type PackageItem struct {
	ID                   string           `json:"package_id"`
	Name                 string           `json:"package_name"`
	Complexity           complexity.Level `json:"complexity"`
	TotalDataModules     int              `json:"total_data_modules"`
	MainDataModules      int              `json:"main_data_modules"`
	DataModulesByType    map[string]int   `json:"data_modules_by_type"`
	TotalTables          int              `json:"total_tables"`
	TotalColumns         int              `json:"total_columns"`
	DashboardsUsingCount int              `json:"dashboards_using_count"`
	ReportsUsingCount    int              `json:"reports_using_count"`
}

type ConnectionsBreakdown struct {
	TotalDataSources           int              `json:"total_data_sources"`
	TotalDataSourceConnections int              `json:"total_data_source_connections"`
	TotalUniqueConnections     int              `json:"total_unique_connections"`
	TotalDataModules           int              `json:"total_data_modules"`
	TotalPackages              int              `json:"total_packages"`
	Stats                      LevelCounts      `json:"stats"`
	Connections                []ConnectionItem `json:"connections"`
}

// ConnectionItem is one deduplicated data source or connection.
type ConnectionItem struct {
	ID                      string           `json:"connection_id"`
	Name                    string           `json:"connection_name"`
	ObjectType              string           `json:"object_type"`
	Complexity              complexity.Level `json:"complexity"`
	DashboardsUsingCount    int              `json:"dashboards_using_count"`
	ReportsUsingCount       int              `json:"reports_using_count"`
	Identifier              string           `json:"identifier,omitempty"`
	ConnectionType          string           `json:"connection_type,omitempty"`
	CognosClass             string           `json:"cognos_class,omitempty"`
	ConnectionStringPreview string           `json:"connection_string_preview,omitempty"`
}

type DataModulesBreakdown struct {
	Total           int              `json:"total"`
	TotalMain       int              `json:"total_main_data_modules"`
	TotalUnique     int              `json:"total_unique_modules"`
	Stats           LevelCounts      `json:"stats"`
	DataModules     []DataModuleItem `json:"data_modules"`
	MainDataModules []DataModuleItem `json:"main_data_modules"`
}

// DataModuleItem carries a whitelisted subset of the module properties.
type DataModuleItem struct {
	ID                   string           `json:"data_module_id"`
	Name                 string           `json:"name"`
	ModuleType           string           `json:"module_type"`
	IsMain               bool             `json:"is_main"`
	Complexity           complexity.Level `json:"complexity"`
	DashboardsUsingCount int              `json:"dashboards_using_count"`
	ReportsUsingCount    int              `json:"reports_using_count"`
	Properties           model.Properties `json:"properties"`
}

// AnalysisEntry is one cell of the category by level matrix.
type AnalysisEntry struct {
	Complexity                string  `json:"complexity"`
	Count                     int     `json:"count"`
	DashboardsContainingCount int     `json:"dashboards_containing_count"`
	ReportsContainingCount    int     `json:"reports_containing_count"`
	Feature                   *string `json:"feature"`
}

// ComplexAnalysis is the feature area by level matrix.
type ComplexAnalysis struct {
	Visualization   []AnalysisEntry `json:"visualization"`
	Dashboard       []AnalysisEntry `json:"dashboard"`
	Report          []AnalysisEntry `json:"report"`
	CalculatedField []AnalysisEntry `json:"calculated_field"`
	Filter          []AnalysisEntry `json:"filter"`
	Measure         []AnalysisEntry `json:"measure"`
	Dimension       []AnalysisEntry `json:"dimension"`
	Parameter       []AnalysisEntry `json:"parameter"`
	Sort            []AnalysisEntry `json:"sort"`
	Prompt          []AnalysisEntry `json:"prompt"`
	Query           []AnalysisEntry `json:"query"`
}

// CategoryEntries pairs a matrix row with its feature-area key.
type CategoryEntries struct {
	Area    string
	Entries []AnalysisEntry
}

// Categories returns the matrix rows in report order.
func (c ComplexAnalysis) Categories() []CategoryEntries {
	return []CategoryEntries{
		{"visualization", c.Visualization},
		{"dashboard", c.Dashboard},
		{"report", c.Report},
		{"calculated_field", c.CalculatedField},
		{"filter", c.Filter},
		{"measure", c.Measure},
		{"dimension", c.Dimension},
		{"parameter", c.Parameter},
		{"sort", c.Sort},
		{"prompt", c.Prompt},
		{"query", c.Query},
	}
}

// Summary is the executive section.
type Summary struct {
	KeyFindings []KeyFinding    `json:"key_findings"`
	Overview    []OverviewEntry `json:"high_level_complexity_overview"`
	Inventory   []InventoryItem `json:"inventory"`
}

// KeyFinding names the most severe populated level of a feature area.
type KeyFinding struct {
	FeatureArea       string           `json:"feature_area"`
	Complexity        complexity.Level `json:"complexity"`
	Count             int              `json:"count"`
	DashboardsSummary string           `json:"dashboards_summary"`
	ReportsSummary    string           `json:"reports_summary"`
	DashboardsPercent float64          `json:"dashboards_percent"`
	ReportsPercent    float64          `json:"reports_percent"`
}

// OverviewEntry counts one level. Summary.Overview lists them from low to critical.
type OverviewEntry struct {
	Complexity         complexity.Level `json:"complexity"`
	VisualizationCount int              `json:"visualization_count"`
	DashboardCount     int              `json:"dashboard_count"`
	ReportCount        int              `json:"report_count"`
}

type InventoryItem struct {
	AssetType string `json:"asset_type"`
	Count     int    `json:"count"`
}

type Challenges struct {
	Visualization []Challenge `json:"visualization"`
}

// Challenge is a visualization rated medium or worse, with its migration notes.
type Challenge struct {
	Visualization         string           `json:"visualization"`
	VisualizationType     string           `json:"visualization_type"`
	Complexity            complexity.Level `json:"complexity"`
	Description           *string          `json:"description"`
	Recommended           *string          `json:"recommended"`
	DashboardOrReportName *string          `json:"dashboard_or_report_name"`
}

type Appendix struct {
	Dashboards []AppendixEntry `json:"dashboards"`
	Reports    []AppendixEntry `json:"reports"`
}

type AppendixEntry struct {
	Name       string   `json:"name"`
	Package    []string `json:"package"`
	DataModule []string `json:"data_module"`
	Owner      string   `json:"owner"`
}
