// Package file reads assessment snapshots from JSON documents as written by
// the extractors. Property bags may arrive as objects, as JSON-encoded
// strings or slightly broken; they are repaired where possible and read as
// empty otherwise.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/OFFIS-RIT/migrascope/pkg/loader"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/goccy/go-json"
	"github.com/kaptinlin/jsonrepair"
)

// Store serves snapshots stored as <dir>/<assessment>.json.
type Store struct {
	loader loader.BlobLoader
	dir    string
}

func NewStore(l loader.BlobLoader, dir string) *Store {
	return &Store{loader: l, dir: dir}
}

func (s *Store) LoadSnapshot(ctx context.Context, assessmentID string) (model.Snapshot, error) {
	if assessmentID == "" || strings.ContainsAny(assessmentID, `/\`) {
		return model.Snapshot{}, store.ErrAssessmentNotFound
	}
	location := assessmentID + ".json"
	if s.dir != "" {
		location = strings.TrimSuffix(s.dir, "/") + "/" + location
	}
	snap, err := Read(ctx, s.loader, location)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Snapshot{}, store.ErrAssessmentNotFound
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	if snap.AssessmentID == "" {
		snap.AssessmentID = assessmentID
	}
	return snap, nil
}

// Read loads and decodes one snapshot document. A document without an
// assessment id is named after its file.
func Read(ctx context.Context, l loader.BlobLoader, location string) (model.Snapshot, error) {
	content, err := l.Load(ctx, location)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read snapshot %s: %w", location, err)
	}
	snap, err := Decode(content)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", location, err)
	}
	if snap.AssessmentID == "" {
		_, rest := loader.SplitLocation(location)
		snap.AssessmentID = strings.TrimSuffix(path.Base(rest), path.Ext(rest))
	}
	return snap, nil
}

type document struct {
	AssessmentID  string          `json:"assessment_id"`
	Name          string          `json:"name"`
	Objects       []object        `json:"objects"`
	Relationships []relationship  `json:"relationships"`
	UsageStats    json.RawMessage `json:"usage_stats"`
}

type object struct {
	ID         string          `json:"id"`
	FileID     string          `json:"file_id"`
	Type       string          `json:"object_type"`
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	ParentID   string          `json:"parent_id"`
	Properties json.RawMessage `json:"properties"`
}

type relationship struct {
	ID             string          `json:"id"`
	SourceObjectID string          `json:"source_object_id"`
	TargetObjectID string          `json:"target_object_id"`
	SourceID       string          `json:"source_id"`
	TargetID       string          `json:"target_id"`
	Type           string          `json:"relationship_type"`
	Details        json.RawMessage `json:"details"`
}

// Decode parses a snapshot document, repairing it first when it is not
// valid JSON. Objects without an id and relationships without both
// endpoints are dropped.
func Decode(content []byte) (model.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(content, &doc); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(content))
		if rerr != nil {
			return model.Snapshot{}, fmt.Errorf("json repair failed: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
			return model.Snapshot{}, fmt.Errorf("unmarshal failed after repair: %w", err)
		}
		logger.Warn("[Snapshot] Repaired malformed snapshot document")
	}

	snap := model.Snapshot{
		AssessmentID:  doc.AssessmentID,
		Name:          doc.Name,
		Objects:       make([]model.Object, 0, len(doc.Objects)),
		Relationships: make([]model.Relationship, 0, len(doc.Relationships)),
	}
	if usage := strings.TrimSpace(string(doc.UsageStats)); usage != "" && usage != "null" {
		snap.UsageStats = doc.UsageStats
	}

	for _, o := range doc.Objects {
		if o.ID == "" {
			continue
		}
		props := decodeProperties(o.Properties)
		if o.ParentID != "" {
			if _, ok := props.Get("parent_id"); !ok {
				props.Set("parent_id", o.ParentID)
			}
		}
		snap.Objects = append(snap.Objects, model.Object{
			ID:         o.ID,
			FileID:     o.FileID,
			Type:       o.Type,
			Name:       o.Name,
			Path:       o.Path,
			Properties: props,
		})
	}

	for _, r := range doc.Relationships {
		source := firstNonEmpty(r.SourceObjectID, r.SourceID)
		target := firstNonEmpty(r.TargetObjectID, r.TargetID)
		if source == "" || target == "" {
			continue
		}
		snap.Relationships = append(snap.Relationships, model.Relationship{
			ID:       r.ID,
			SourceID: source,
			TargetID: target,
			Type:     r.Type,
			Details:  decodeProperties(r.Details),
		})
	}
	return snap, nil
}

// decodeProperties accepts an object, a string holding an object, or
// something jsonrepair can turn into one.
func decodeProperties(raw json.RawMessage) model.Properties {
	input := strings.TrimSpace(string(raw))
	if input == "" || input == "null" {
		return model.Properties{}
	}

	var props model.Properties
	if err := json.Unmarshal([]byte(input), &props); err == nil {
		return props
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		input = strings.TrimSpace(asString)
		if input == "" {
			return model.Properties{}
		}
		if err := json.Unmarshal([]byte(input), &props); err == nil {
			return props
		}
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err == nil {
		if err := json.Unmarshal([]byte(repaired), &props); err == nil {
			return props
		}
	}
	logger.Debug("[Snapshot] Ignoring unreadable properties", "input", input)
	return model.Properties{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
