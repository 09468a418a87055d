package report

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

const ellipsis = "…"

// pick copies the allowlisted keys in allowlist order. String values longer
// than preview runes are cut and marked with an ellipsis.
func pick(props model.Properties, keys []string, preview int) model.Properties {
	var out model.Properties
	for _, key := range keys {
		v, ok := props.Get(key)
		if !ok {
			continue
		}
		if s, isString := v.(string); isString {
			v = truncate(s, preview)
		}
		out.Set(key, v)
	}
	return out
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + ellipsis
}

func ptr[T any](v T) *T {
	return &v
}

// optional turns blank text into nil.
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// entity is one logical reference object, possibly extracted from several
// source files.
type entity struct {
	first model.Object
	ids   []string
}

// dedupe groups objects by storeID, then normalized name, then id, keeping
// first-seen order.
func dedupe(objs []model.Object) []*entity {
	var out []*entity
	byKey := make(map[string]*entity)
	for _, obj := range objs {
		key := identityKey(obj)
		e, ok := byKey[key]
		if !ok {
			e = &entity{first: obj}
			byKey[key] = e
			out = append(out, e)
		}
		e.ids = appendUnique(e.ids, obj.ID)
	}
	return out
}

func identityKey(obj model.Object) string {
	if id := strings.TrimSpace(obj.Properties.String("storeID")); id != "" {
		return "storeid:" + strings.ToLower(id)
	}
	if name := strings.TrimSpace(obj.Name); name != "" {
		return "name:" + strings.ToLower(name)
	}
	return "id:" + obj.ID
}

func appendUnique(list []string, ids ...string) []string {
	for _, id := range ids {
		if !slices.Contains(list, id) {
			list = append(list, id)
		}
	}
	return list
}

// orderedSet keeps first insertion order.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *orderedSet) add(id string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.items = append(s.items, id)
	return true
}

// titleCase turns "calculated_field" into "Calculated Field".
func titleCase(area string) string {
	words := strings.Fields(strings.ReplaceAll(area, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
