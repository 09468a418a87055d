package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/migrascope/internal/util"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/goccy/go-json"
	pgxv5 "github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

// LoadSnapshot reads the assessment row, its objects and its relationships
// concurrently. Unknown assessments yield store.ErrAssessmentNotFound.
func (s *Store) LoadSnapshot(ctx context.Context, assessmentID string) (model.Snapshot, error) {
	snap := model.Snapshot{AssessmentID: assessmentID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var name string
		var usage []byte
		err := s.conn.QueryRow(gctx, selectAssessmentSQL, assessmentID).Scan(&name, &usage)
		if errors.Is(err, pgxv5.ErrNoRows) {
			return store.ErrAssessmentNotFound
		}
		if err != nil {
			return fmt.Errorf("load assessment: %w", err)
		}
		snap.Name = name
		if len(usage) > 0 {
			snap.UsageStats = json.RawMessage(usage)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.conn.Query(gctx, selectObjectsSQL, assessmentID)
		if err != nil {
			return fmt.Errorf("load objects: %w", err)
		}
		objs, err := pgxv5.CollectRows(rows, scanObject)
		if err != nil {
			return fmt.Errorf("load objects: %w", err)
		}
		snap.Objects = objs
		return nil
	})
	g.Go(func() error {
		rows, err := s.conn.Query(gctx, selectRelationshipsSQL, assessmentID)
		if err != nil {
			return fmt.Errorf("load relationships: %w", err)
		}
		rels, err := pgxv5.CollectRows(rows, scanRelationship)
		if err != nil {
			return fmt.Errorf("load relationships: %w", err)
		}
		snap.Relationships = rels
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Snapshot{}, err
	}

	logger.Debug("[Store] Loaded snapshot", "assessment", assessmentID, "objects", len(snap.Objects), "relationships", len(snap.Relationships))
	return snap, nil
}

func scanObject(row pgxv5.CollectableRow) (model.Object, error) {
	var obj model.Object
	var props []byte
	if err := row.Scan(&obj.ID, &obj.FileID, &obj.Type, &obj.Name, &obj.Path, &props); err != nil {
		return model.Object{}, err
	}
	obj.Properties = decodeProperties(props, obj.ID)
	return obj, nil
}

func scanRelationship(row pgxv5.CollectableRow) (model.Relationship, error) {
	var rel model.Relationship
	var details []byte
	if err := row.Scan(&rel.ID, &rel.SourceID, &rel.TargetID, &rel.Type, &details); err != nil {
		return model.Relationship{}, err
	}
	rel.Details = decodeProperties(details, rel.ID)
	return rel, nil
}

// decodeProperties treats unreadable documents as empty.
func decodeProperties(data []byte, owner string) model.Properties {
	var props model.Properties
	if len(data) == 0 {
		return props
	}
	if err := json.Unmarshal(data, &props); err != nil {
		logger.Debug("[Store] Ignoring malformed properties", "owner", owner, "err", err)
		return model.Properties{}
	}
	return props
}

// SaveSnapshot replaces the assessment's objects and relationships in one
// transaction. Rows are inserted in chunks and keep their snapshot order.
func (s *Store) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	if snap.AssessmentID == "" {
		return errors.New("snapshot has no assessment id")
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var usage any
	if len(snap.UsageStats) > 0 {
		usage = string(snap.UsageStats)
	}
	if _, err := tx.Exec(ctx, upsertAssessmentSQL, snap.AssessmentID, util.SanitizePostgresText(snap.Name), usage); err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	if _, err := tx.Exec(ctx, deleteRelationshipsSQL, snap.AssessmentID); err != nil {
		return fmt.Errorf("clear relationships: %w", err)
	}
	if _, err := tx.Exec(ctx, deleteObjectsSQL, snap.AssessmentID); err != nil {
		return fmt.Errorf("clear objects: %w", err)
	}

	err = store.ChunkRange(len(snap.Objects), s.chunkSize, func(start, end int) error {
		count := end - start
		ids := make([]string, 0, count)
		fileIDs := make([]string, 0, count)
		types := make([]string, 0, count)
		names := make([]string, 0, count)
		paths := make([]string, 0, count)
		props := make([]string, 0, count)
		positions := make([]int32, 0, count)
		for i, obj := range snap.Objects[start:end] {
			encoded, err := json.Marshal(obj.Properties)
			if err != nil {
				return fmt.Errorf("object %s: %w", obj.ID, err)
			}
			ids = append(ids, obj.ID)
			fileIDs = append(fileIDs, obj.FileID)
			types = append(types, util.SanitizePostgresText(obj.Type))
			names = append(names, util.SanitizePostgresText(obj.Name))
			paths = append(paths, util.SanitizePostgresText(obj.Path))
			props = append(props, util.SanitizePostgresText(string(encoded)))
			positions = append(positions, int32(start+i))
		}
		_, err := tx.Exec(ctx, insertObjectsSQL, snap.AssessmentID, ids, fileIDs, types, names, paths, props, positions)
		return err
	})
	if err != nil {
		return fmt.Errorf("save objects: %w", err)
	}

	err = store.ChunkRange(len(snap.Relationships), s.chunkSize, func(start, end int) error {
		count := end - start
		ids := make([]string, 0, count)
		sources := make([]string, 0, count)
		targets := make([]string, 0, count)
		types := make([]string, 0, count)
		details := make([]string, 0, count)
		positions := make([]int32, 0, count)
		for i, rel := range snap.Relationships[start:end] {
			encoded, err := json.Marshal(rel.Details)
			if err != nil {
				return fmt.Errorf("relationship %s: %w", rel.ID, err)
			}
			ids = append(ids, rel.ID)
			sources = append(sources, rel.SourceID)
			targets = append(targets, rel.TargetID)
			types = append(types, util.SanitizePostgresText(rel.Type))
			details = append(details, util.SanitizePostgresText(string(encoded)))
			positions = append(positions, int32(start+i))
		}
		_, err := tx.Exec(ctx, insertRelationshipsSQL, snap.AssessmentID, ids, sources, targets, types, details, positions)
		return err
	})
	if err != nil {
		return fmt.Errorf("save relationships: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	logger.Info("[Store] Imported snapshot", "assessment", snap.AssessmentID, "objects", len(snap.Objects), "relationships", len(snap.Relationships))
	return nil
}

const selectAssessmentSQL = `
SELECT name, usage_stats
FROM assessments
WHERE id = $1;
`

const selectObjectsSQL = `
SELECT id, COALESCE(file_id, ''), object_type, name, COALESCE(path, ''), properties
FROM extracted_objects
WHERE assessment_id = $1
ORDER BY position;
`

const selectRelationshipsSQL = `
SELECT COALESCE(relationship_id, ''), source_object_id, target_object_id, relationship_type, details
FROM object_relationships
WHERE assessment_id = $1
ORDER BY position;
`

const upsertAssessmentSQL = `
INSERT INTO assessments (id, name, usage_stats)
VALUES ($1, $2, $3::json)
ON CONFLICT (id) DO UPDATE
SET name        = EXCLUDED.name,
    usage_stats = EXCLUDED.usage_stats,
    updated_at  = now();
`

const deleteObjectsSQL = `DELETE FROM extracted_objects WHERE assessment_id = $1;`

const deleteRelationshipsSQL = `DELETE FROM object_relationships WHERE assessment_id = $1;`

const insertObjectsSQL = `
INSERT INTO extracted_objects (assessment_id, id, file_id, object_type, name, path, properties, position)
SELECT $1, o.id, NULLIF(o.file_id, ''), o.object_type, o.name, NULLIF(o.path, ''), o.properties::json, o.position
FROM unnest($2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::text[], $8::int[])
    AS o(id, file_id, object_type, name, path, properties, position)
ON CONFLICT (assessment_id, id) DO NOTHING;
`

const insertRelationshipsSQL = `
INSERT INTO object_relationships (assessment_id, relationship_id, source_object_id, target_object_id, relationship_type, details, position)
SELECT $1, NULLIF(r.id, ''), r.source_id, r.target_id, r.relationship_type, r.details::json, r.position
FROM unnest($2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::int[])
    AS r(id, source_id, target_id, relationship_type, details, position);
`
