package model

import (
	"strings"

	"github.com/goccy/go-json"
)

// Object categories as stored by the extractors.
const (
	TypeDashboard            = "dashboard"
	TypeReport               = "report"
	TypeVisualization        = "visualization"
	TypePackage              = "package"
	TypeDataModule           = "data_module"
	TypeCalculatedField      = "calculated_field"
	TypeFilter               = "filter"
	TypeParameter            = "parameter"
	TypeSort                 = "sort"
	TypePrompt               = "prompt"
	TypeQuery                = "query"
	TypeMeasure              = "measure"
	TypeDimension            = "dimension"
	TypeDataSource           = "data_source"
	TypeDataSourceConnection = "data_source_connection"
	TypeTable                = "table"
	TypeColumn               = "column"
	TypeTab                  = "tab"
	TypePage                 = "page"
	TypeFolder               = "folder"
)

// Relationship categories.
const (
	RelContains    = "contains"
	RelParentChild = "parent_child"
	RelUses        = "uses"
	RelReferences  = "references"
	RelConnectsTo  = "connects_to"
	RelHasColumn   = "has_column"
)

// Object is one extracted BI artifact.
type Object struct {
	ID         string     `json:"id"`
	FileID     string     `json:"file_id,omitempty"`
	Type       string     `json:"object_type"`
	Name       string     `json:"name"`
	Path       string     `json:"path,omitempty"`
	Properties Properties `json:"properties"`
}

// Kind is the normalized category.
func (o Object) Kind() string {
	return Normalize(o.Type)
}

// DisplayName is the trimmed name or fallback when it is blank.
func (o Object) DisplayName(fallback string) string {
	if n := strings.TrimSpace(o.Name); n != "" {
		return n
	}
	return fallback
}

// IsRootKind reports whether the object is a dashboard or report.
func (o Object) IsRootKind() bool {
	k := o.Kind()
	return k == TypeDashboard || k == TypeReport
}

// IsConnection matches data sources and connections, with or without underscores.
func (o Object) IsConnection() bool {
	return IsDataSource(o.Type) || IsDataSourceConnection(o.Type)
}

func IsDataSource(t string) bool {
	return strings.ReplaceAll(Normalize(t), "_", "") == "datasource"
}

func IsDataSourceConnection(t string) bool {
	return strings.ReplaceAll(Normalize(t), "_", "") == "datasourceconnection"
}

// Relationship is a directed typed edge between two objects.
type Relationship struct {
	ID       string     `json:"id,omitempty"`
	SourceID string     `json:"source_object_id"`
	TargetID string     `json:"target_object_id"`
	Type     string     `json:"relationship_type"`
	Details  Properties `json:"details"`
}

func (r Relationship) Kind() string {
	return Normalize(r.Type)
}

func IsContainment(kind string) bool {
	return kind == RelContains || kind == RelParentChild
}

func IsUsage(kind string) bool {
	return kind == RelUses || kind == RelReferences || kind == RelConnectsTo
}

// Snapshot is the read-only input of one report generation.
type Snapshot struct {
	AssessmentID  string          `json:"assessment_id"`
	Name          string          `json:"name,omitempty"`
	Objects       []Object        `json:"objects"`
	Relationships []Relationship  `json:"relationships"`
	UsageStats    json.RawMessage `json:"usage_stats,omitempty"`
}

// Normalize trims and lowercases a category name.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
