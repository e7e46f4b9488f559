package usecases

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

const defaultRecordName = "scene_info"

// EncodeRecord serializes a scene record the way it is written to disk.
func EncodeRecord(cfg *domain.SceneConfig) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode scene record: %w", err)
	}
	return data, nil
}

// DecodeRecord reads a full record, filling keys it lacks from a fresh record.
func DecodeRecord(data []byte) (*domain.SceneConfig, error) {
	return MergeRecord(domain.NewSceneConfig(), data)
}

// MergeRecord returns a copy of base with every top-level key present in data
// replacing the corresponding key of base. Keys absent from data keep their
// value; unknown keys are ignored. base is never modified.
func MergeRecord(base *domain.SceneConfig, data []byte) (*domain.SceneConfig, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: record is not an object", domain.ErrMalformedRecord)
	}

	out := base.Clone()
	keys := []struct {
		name  string
		apply func(json.RawMessage) error
	}{
		{"title", func(raw json.RawMessage) error { return replace(raw, &out.Title) }},
		{"savedAt", func(raw json.RawMessage) error { return replace(raw, &out.SavedAt) }},
		{"area", func(raw json.RawMessage) error { return replace(raw, &out.Area) }},
		{"origin", func(raw json.RawMessage) error { return replace(raw, &out.Origin) }},
		{"importFlags", func(raw json.RawMessage) error { return replace(raw, &out.ImportFlags) }},
		{"status", func(raw json.RawMessage) error { return replace(raw, &out.Status) }},
	}
	for _, k := range keys {
		raw, ok := fields[k.name]
		if !ok {
			continue
		}
		if err := k.apply(raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedRecord, k.name, err)
		}
	}
	return &out, nil
}

// replace decodes raw into a zero T and stores it in dst, so a key is swapped
// wholesale instead of merged field by field.
func replace[T any](raw json.RawMessage, dst *T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// RecordFilename names the download for a record title.
func RecordFilename(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = defaultRecordName
	}
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return name + ".json"
}
