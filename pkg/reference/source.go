package reference

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/OFFIS-RIT/migrascope/pkg/loader"
	"github.com/OFFIS-RIT/migrascope/pkg/loader/csv"

	"golang.org/x/sync/singleflight"
)

// CSVSource reads both tables from CSV exports, in the column layout of the
// feature-list spreadsheet ("Feature Area", "Feature", "Complexity", ...).
// Snake-case headers work as well. An empty location yields an empty table.
type CSVSource struct {
	Loader           loader.BlobLoader
	FeaturesLocation string
	RulesLocation    string
}

func (s CSVSource) Features(ctx context.Context) ([]Feature, error) {
	records, err := s.records(ctx, s.FeaturesLocation)
	if err != nil {
		return nil, err
	}
	out := make([]Feature, 0, len(records))
	for _, r := range records {
		f := Feature{
			Area:        r.Get("Feature Area", "feature_area"),
			Name:        r.Get("Feature", "feature"),
			Complexity:  r.Get("Complexity", "complexity"),
			Feasibility: r.Get("Feasibility", "feasibility"),
			Description: r.Get("Description", "description"),
			Recommended: r.Get("Recommended Approach", "recommended"),
		}
		if f.Name == "" {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s CSVSource) Rules(ctx context.Context) ([]Rule, error) {
	records, err := s.records(ctx, s.RulesLocation)
	if err != nil {
		return nil, err
	}
	out := make([]Rule, 0, len(records))
	for _, r := range records {
		order, _ := strconv.Atoi(r.Get("Order", "order"))
		out = append(out, Rule{
			Area:       r.Get("Feature Area", "feature_area"),
			Feature:    r.Get("Feature", "feature"),
			Complexity: r.Get("Complexity", "complexity"),
			Order:      order,
		})
	}
	return out, nil
}

func (s CSVSource) records(ctx context.Context, location string) ([]csv.Record, error) {
	if location == "" {
		return nil, nil
	}
	if s.Loader == nil {
		return nil, fmt.Errorf("no loader configured for %s", location)
	}
	content, err := s.Loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	records, err := csv.ParseRecords(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}
	return records, nil
}

// StaticSource serves fixed rows.
type StaticSource struct {
	FeatureRows []Feature
	RuleRows    []Rule
}

func (s StaticSource) Features(context.Context) ([]Feature, error) { return s.FeatureRows, nil }
func (s StaticSource) Rules(context.Context) ([]Rule, error)       { return s.RuleRows, nil }

// CachedSource shares one fetch of each table between concurrent callers
// and keeps successful results for TTL. Failures are not cached.
type CachedSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	features cacheEntry[[]Feature]
	rules    cacheEntry[[]Rule]
	group    singleflight.Group
}

type cacheEntry[T any] struct {
	rows    T
	fetched time.Time
	ok      bool
}

func NewCachedSource(source Source, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, ttl: ttl, now: time.Now}
}

func (c *CachedSource) Features(ctx context.Context) ([]Feature, error) {
	return cached(c, ctx, "features", &c.features, c.source.Features)
}

func (c *CachedSource) Rules(ctx context.Context) ([]Rule, error) {
	return cached(c, ctx, "rules", &c.rules, c.source.Rules)
}

// Invalidate drops both cached tables.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features = cacheEntry[[]Feature]{}
	c.rules = cacheEntry[[]Rule]{}
}

func cached[T any](c *CachedSource, ctx context.Context, key string, entry *cacheEntry[T], fetch func(context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	if entry.ok && c.now().Sub(entry.fetched) < c.ttl {
		rows := entry.rows
		c.mu.RUnlock()
		return rows, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do(key, func() (any, error) {
		rows, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		*entry = cacheEntry[T]{rows: rows, fetched: c.now(), ok: true}
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
