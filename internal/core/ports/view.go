package ports

import "github.com/samirrijal/scenedraw/internal/core/domain"

// MapSurface is the part of the map widget the drawers operate on.
type MapSurface interface {
	AddRectangle(b domain.Bounds) RectangleLayer
	AddMarker(p domain.LatLng) MarkerLayer
	EnableDragging()
	DisableDragging()
	// SetDrawMode applies or removes the draw-mode marker on the map container.
	SetDrawMode(active bool)
}

// RectangleLayer is a rectangle overlay on the map.
type RectangleLayer interface {
	Bounds() domain.Bounds
	SetBounds(b domain.Bounds)
	Remove()
}

// MarkerLayer is a point overlay on the map.
type MarkerLayer interface {
	LatLng() domain.LatLng
	SetLatLng(p domain.LatLng)
	Remove()
}

// Field names a form control.
type Field string

const (
	FieldTitle     Field = "title"
	FieldSWLat     Field = "swLat"
	FieldSWLng     Field = "swLng"
	FieldNELat     Field = "neLat"
	FieldNELng     Field = "neLng"
	FieldOriginLat Field = "originLat"
	FieldOriginLng Field = "originLng"

	FieldTerrain           Field = "terrain"
	FieldBuildings         Field = "buildings"
	FieldTrees             Field = "trees"
	FieldReplaceExisting   Field = "replaceExisting"
	FieldCleanIntermediate Field = "cleanIntermediate"

	// Read-only displays.
	FieldArea        Field = "area"
	FieldLastRunAt   Field = "lastRunAt"
	FieldBlenderPath Field = "blenderPath"
	FieldMitsubaPath Field = "mitsubaPath"
	FieldArtifacts   Field = "artifacts"
)

// TextFields are the editable text inputs.
var TextFields = []Field{
	FieldTitle, FieldSWLat, FieldSWLng, FieldNELat, FieldNELng, FieldOriginLat, FieldOriginLng,
}

// CheckboxFields are the import flag checkboxes.
var CheckboxFields = []Field{
	FieldTerrain, FieldBuildings, FieldTrees, FieldReplaceExisting, FieldCleanIntermediate,
}

// IsText reports whether f is an editable text input.
func (f Field) IsText() bool {
	for _, t := range TextFields {
		if f == t {
			return true
		}
	}
	return false
}

// IsCheckbox reports whether f is an import flag checkbox.
func (f Field) IsCheckbox() bool {
	for _, c := range CheckboxFields {
		if f == c {
			return true
		}
	}
	return false
}

// Form is the host page's form as seen by the core.
type Form interface {
	Value(f Field) string
	SetValue(f Field, v string)
	Checked(f Field) bool
	SetChecked(f Field, v bool)
}

// View is the map and form of one editing session.
type View interface {
	MapSurface
	Form
}
