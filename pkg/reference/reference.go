package reference

import (
	"context"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
)

// Feature is a row of the feature table: how a source feature rates and
// how it can be rebuilt on the target platform.
type Feature struct {
	Area        string `json:"feature_area"`
	Name        string `json:"feature"`
	Complexity  string `json:"complexity"`
	Feasibility string `json:"feasibility"`
	Description string `json:"description"`
	Recommended string `json:"recommended"`
}

// Rule is a row of the complex-rules table, labelling a feature area at a
// given complexity level.
type Rule struct {
	Area       string `json:"feature_area"`
	Feature    string `json:"feature"`
	Complexity string `json:"complexity"`
	Order      int    `json:"order"`
}

// Source supplies the reference tables.
type Source interface {
	Features(ctx context.Context) ([]Feature, error)
	Rules(ctx context.Context) ([]Rule, error)
}

// Catalog indexes the reference tables. Each table is fetched at most once
// per catalog; a failing or missing source leaves the table empty.
type Catalog struct {
	source Source

	featuresOnce sync.Once
	visuals      map[string]Feature

	rulesOnce sync.Once
	rules     map[ruleKey]string
}

type ruleKey struct {
	area  string
	level string
}

// NewCatalog accepts a nil source, which behaves like empty tables.
func NewCatalog(source Source) *Catalog {
	return &Catalog{source: source}
}

// Load fetches both tables now instead of on first lookup.
func (c *Catalog) Load(ctx context.Context) {
	c.loadFeatures(ctx)
	c.loadRules(ctx)
}

func (c *Catalog) loadFeatures(ctx context.Context) {
	c.featuresOnce.Do(func() {
		c.visuals = make(map[string]Feature)
		if c.source == nil {
			return
		}
		rows, err := c.source.Features(ctx)
		if err != nil {
			logger.Warn("[Reference] Feature table unavailable, visualizations rate Unknown", "err", err)
			return
		}
		for _, r := range rows {
			if strings.TrimSpace(r.Area) != complexity.VisualizationArea {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(r.Name))
			if key == "" {
				continue
			}
			if _, dup := c.visuals[key]; !dup {
				c.visuals[key] = r
			}
		}
		logger.Debug("[Reference] Loaded feature table", "rows", len(rows), "visualizations", len(c.visuals))
	})
}

func (c *Catalog) loadRules(ctx context.Context) {
	c.rulesOnce.Do(func() {
		c.rules = make(map[ruleKey]string)
		if c.source == nil {
			return
		}
		rows, err := c.source.Rules(ctx)
		if err != nil {
			logger.Warn("[Reference] Complex rules table unavailable, features left empty", "err", err)
			return
		}
		for _, r := range rows {
			area := AreaKey(r.Area)
			level := strings.ToLower(strings.TrimSpace(r.Complexity))
			if area == "" || level == "" {
				continue
			}
			k := ruleKey{area: area, level: level}
			if _, dup := c.rules[k]; !dup {
				c.rules[k] = strings.TrimSpace(r.Feature)
			}
		}
		logger.Debug("[Reference] Loaded complex rules", "rows", len(rows))
	})
}

// Visualization returns the feature row for a chart type, matched case-insensitively.
func (c *Catalog) Visualization(typeName string) (Feature, bool) {
	c.loadFeatures(context.Background())
	f, ok := c.visuals[strings.ToLower(strings.TrimSpace(typeName))]
	return f, ok
}

// VisualizationLevel implements complexity.VisualizationLookup.
func (c *Catalog) VisualizationLevel(typeName string) (complexity.Level, bool) {
	f, ok := c.Visualization(typeName)
	if !ok {
		return complexity.Unknown, false
	}
	return complexity.ParseLevel(f.Complexity), true
}

// RuleFeature returns the label for an area ("calculated_field") at a level.
func (c *Catalog) RuleFeature(area string, level complexity.Level) (string, bool) {
	c.loadRules(context.Background())
	f, ok := c.rules[ruleKey{area: AreaKey(area), level: level.Key()}]
	return f, ok
}

// AreaKey turns "Calculated Field" into "calculated_field".
func AreaKey(area string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(area)), " ", "_")
}
