package domain

import (
	"encoding/json"
	"time"
)

// Artifact kinds written into Status.GeneratedArtifactPaths by the import pipeline.
const (
	ArtifactBlender = "blender"
	ArtifactMitsuba = "mitsuba"
)

// SceneConfig is the canonical scene record: the captured area and origin plus
// the import pipeline toggles. Unset values are nil and encode as JSON null.
type SceneConfig struct {
	Title       string      `json:"title"`
	SavedAt     *time.Time  `json:"savedAt"`
	Area        Area        `json:"area"`
	Origin      Corner      `json:"origin"`
	ImportFlags ImportFlags `json:"importFlags"`
	Status      Status      `json:"status"`
}

// Area is the captured rectangle. AreaSqMeters is always derived from the corners.
type Area struct {
	SouthWest    Corner   `json:"southWest"`
	NorthEast    Corner   `json:"northEast"`
	AreaSqMeters *float64 `json:"areaSqMeters"`
}

// Corner is a coordinate whose components can be unset independently, since
// form edits arrive one field at a time.
type Corner struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// ImportFlags toggles the stages of the downstream import pipeline.
type ImportFlags struct {
	Terrain           bool `json:"terrain"`
	Buildings         bool `json:"buildings"`
	Trees             bool `json:"trees"`
	ReplaceExisting   bool `json:"replaceExisting"`
	CleanIntermediate bool `json:"cleanIntermediate"`
}

// Status is written by the import pipeline and only round-tripped here.
type Status struct {
	LastRunAt              *time.Time        `json:"lastRunAt"`
	GeneratedArtifactPaths map[string]string `json:"generatedArtifactPaths"`
}

// NewSceneConfig returns an empty record with the default import flags.
func NewSceneConfig() *SceneConfig {
	return &SceneConfig{
		ImportFlags: ImportFlags{
			Terrain:           true,
			Buildings:         true,
			Trees:             true,
			ReplaceExisting:   false,
			CleanIntermediate: true,
		},
	}
}

// CornerAt returns a fully set corner.
func CornerAt(p LatLng) Corner {
	lat, lng := p.Lat, p.Lng
	return Corner{Lat: &lat, Lng: &lng}
}

// LatLng returns the corner as a coordinate if both components are set.
func (c Corner) LatLng() (LatLng, bool) {
	if c.Lat == nil || c.Lng == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *c.Lat, Lng: *c.Lng}, true
}

// Bounds returns the normalized rectangle if both corners are present.
func (a Area) Bounds() (Bounds, bool) {
	sw, ok := a.SouthWest.LatLng()
	if !ok {
		return Bounds{}, false
	}
	ne, ok := a.NorthEast.LatLng()
	if !ok {
		return Bounds{}, false
	}
	return BoundsOf(sw, ne), true
}

// Clone returns a deep copy of the record.
func (c *SceneConfig) Clone() SceneConfig {
	out := *c
	out.SavedAt = cloneTime(c.SavedAt)
	out.Area = Area{
		SouthWest:    c.Area.SouthWest.clone(),
		NorthEast:    c.Area.NorthEast.clone(),
		AreaSqMeters: cloneFloat(c.Area.AreaSqMeters),
	}
	out.Origin = c.Origin.clone()
	out.Status = c.Status.Clone()
	return out
}

// Clone returns a deep copy of the status.
func (s Status) Clone() Status {
	out := Status{LastRunAt: cloneTime(s.LastRunAt)}
	if s.GeneratedArtifactPaths != nil {
		out.GeneratedArtifactPaths = make(map[string]string, len(s.GeneratedArtifactPaths))
		for k, v := range s.GeneratedArtifactPaths {
			out.GeneratedArtifactPaths[k] = v
		}
	}
	return out
}

func (c Corner) clone() Corner {
	return Corner{Lat: cloneFloat(c.Lat), Lng: cloneFloat(c.Lng)}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	t := *v
	return &t
}

// StoredScene is a saved record as kept by a SceneRepository.
type StoredScene struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	SavedAt time.Time       `json:"saved_at"`
	Record  json.RawMessage `json:"record"`
}

// SavedScene is the downloadable artifact produced by a save.
type SavedScene struct {
	Title    string
	Filename string
	Data     []byte
}
