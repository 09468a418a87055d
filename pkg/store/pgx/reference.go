package pgx

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/migrascope/pkg/reference"

	pgxv5 "github.com/jackc/pgx/v5"
)

func (s *Store) Features(ctx context.Context) ([]reference.Feature, error) {
	rows, err := s.conn.Query(ctx, selectFeaturesSQL)
	if err != nil {
		return nil, fmt.Errorf("load reference features: %w", err)
	}
	return pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (reference.Feature, error) {
		var f reference.Feature
		err := row.Scan(&f.Area, &f.Name, &f.Complexity, &f.Feasibility, &f.Description, &f.Recommended)
		return f, err
	})
}

func (s *Store) Rules(ctx context.Context) ([]reference.Rule, error) {
	rows, err := s.conn.Query(ctx, selectRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("load reference rules: %w", err)
	}
	return pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (reference.Rule, error) {
		var r reference.Rule
		err := row.Scan(&r.Area, &r.Feature, &r.Complexity, &r.Order)
		return r, err
	})
}

const selectFeaturesSQL = `
SELECT feature_area, feature, complexity,
       COALESCE(feasibility, ''), COALESCE(description, ''), COALESCE(recommended_approach, '')
FROM reference_features
ORDER BY sort_order, id;
`

const selectRulesSQL = `
SELECT feature_area, feature, complexity, sort_order
FROM reference_complex_rules
ORDER BY sort_order, id;
`
