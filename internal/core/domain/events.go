package domain

// PointerKind is the phase of a pointer event on the map surface.
type PointerKind string

const (
	PointerPress   PointerKind = "press"
	PointerMove    PointerKind = "move"
	PointerRelease PointerKind = "release"
)

// Valid reports whether k is a known pointer phase.
func (k PointerKind) Valid() bool {
	switch k {
	case PointerPress, PointerMove, PointerRelease:
		return true
	}
	return false
}

// PointerEvent is a pointer position already resolved to a coordinate by the
// map widget. Transport layers decode into a pointer-typed position first so a
// missing one can be rejected.
type PointerEvent struct {
	Kind PointerKind `json:"kind"`
	At   LatLng      `json:"at"`
}

// RunStatusReport is sent by the import pipeline after it processed a scene.
type RunStatusReport struct {
	SceneID string `json:"scene_id"`
	Status  Status `json:"status"`
}

// ImportRequest is handed to the import pipeline once a saved scene validated.
type ImportRequest struct {
	SceneID string      `json:"scene_id"`
	Title   string      `json:"title"`
	Area    Bounds      `json:"area"`
	EWKT    string      `json:"ewkt"`
	Origin  LatLng      `json:"origin"`
	Flags   ImportFlags `json:"import_flags"`
}
