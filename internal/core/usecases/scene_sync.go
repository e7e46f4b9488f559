package usecases

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
	"github.com/samirrijal/scenedraw/internal/pkg/geospatial"
)

const (
	notAvailable   = "N/A"
	lastRunLayout  = "2006-01-02 15:04:05 MST"
	coordPrecision = 6
)

// RectangleRenderer draws the persisted area on the map.
type RectangleRenderer interface {
	Render(b domain.Bounds)
	Clear()
}

// PointRenderer draws the persisted origin on the map.
type PointRenderer interface {
	Render(p domain.LatLng)
	Clear()
}

// SceneSync keeps the record, the map and the form consistent. The record is
// authoritative: every entry point writes it first and then re-renders the
// map and the form from it.
type SceneSync struct {
	cfg   *domain.SceneConfig
	form  ports.Form
	rect  RectangleRenderer
	point PointRenderer
	loc   *time.Location

	// shown holds the coordinate text last written to the form, so untouched
	// fields keep their full precision when the form is read back.
	shown map[ports.Field]string
}

// NewSceneSync binds a record to its form and drawers. loc is used to display
// timestamps and defaults to UTC.
func NewSceneSync(cfg *domain.SceneConfig, form ports.Form, rect RectangleRenderer, point PointRenderer, loc *time.Location) *SceneSync {
	if loc == nil {
		loc = time.UTC
	}
	return &SceneSync{
		cfg:   cfg,
		form:  form,
		rect:  rect,
		point: point,
		loc:   loc,
		shown: make(map[ports.Field]string),
	}
}

// ApplyRectangleCapture stores captured bounds as the scene area.
func (s *SceneSync) ApplyRectangleCapture(b domain.Bounds) {
	s.cfg.Area.SouthWest = domain.CornerAt(b.SouthWest)
	s.cfg.Area.NorthEast = domain.CornerAt(b.NorthEast)
	s.recomputeArea()
	s.Render()
}

// ApplyPointCapture stores a captured point as the scene origin.
func (s *SceneSync) ApplyPointCapture(p domain.LatLng) {
	s.cfg.Origin = domain.CornerAt(p)
	s.Render()
}

// ApplyFormEdit reads every form field into the record. Coordinates that are
// empty or not a finite number become unset. The area is only recomputed when
// both corners are complete.
func (s *SceneSync) ApplyFormEdit() {
	s.cfg.Title = s.form.Value(ports.FieldTitle)

	s.readCoord(ports.FieldSWLat, &s.cfg.Area.SouthWest.Lat)
	s.readCoord(ports.FieldSWLng, &s.cfg.Area.SouthWest.Lng)
	s.readCoord(ports.FieldNELat, &s.cfg.Area.NorthEast.Lat)
	s.readCoord(ports.FieldNELng, &s.cfg.Area.NorthEast.Lng)
	s.readCoord(ports.FieldOriginLat, &s.cfg.Origin.Lat)
	s.readCoord(ports.FieldOriginLng, &s.cfg.Origin.Lng)

	flags := &s.cfg.ImportFlags
	flags.Terrain = s.form.Checked(ports.FieldTerrain)
	flags.Buildings = s.form.Checked(ports.FieldBuildings)
	flags.Trees = s.form.Checked(ports.FieldTrees)
	flags.ReplaceExisting = s.form.Checked(ports.FieldReplaceExisting)
	flags.CleanIntermediate = s.form.Checked(ports.FieldCleanIntermediate)

	s.recomputeArea()
	s.Render()
}

func (s *SceneSync) readCoord(f ports.Field, dst **float64) {
	text := s.form.Value(f)
	if shown, ok := s.shown[f]; ok && text == shown {
		return
	}
	*dst = parseCoord(text)
}

func (s *SceneSync) recomputeArea() {
	b, ok := s.cfg.Area.Bounds()
	if !ok {
		return
	}
	area := geospatial.RectangleArea(b.SouthWest.Lat, b.SouthWest.Lng, b.NorthEast.Lat, b.NorthEast.Lng)
	s.cfg.Area.AreaSqMeters = &area
}

// Render projects the record onto the form and the map.
func (s *SceneSync) Render() {
	c := s.cfg

	s.form.SetValue(ports.FieldTitle, c.Title)

	s.setCoord(ports.FieldSWLat, c.Area.SouthWest.Lat)
	s.setCoord(ports.FieldSWLng, c.Area.SouthWest.Lng)
	s.setCoord(ports.FieldNELat, c.Area.NorthEast.Lat)
	s.setCoord(ports.FieldNELng, c.Area.NorthEast.Lng)
	s.setCoord(ports.FieldOriginLat, c.Origin.Lat)
	s.setCoord(ports.FieldOriginLng, c.Origin.Lng)
	s.form.SetValue(ports.FieldArea, FormatArea(c.Area.AreaSqMeters))

	s.form.SetChecked(ports.FieldTerrain, c.ImportFlags.Terrain)
	s.form.SetChecked(ports.FieldBuildings, c.ImportFlags.Buildings)
	s.form.SetChecked(ports.FieldTrees, c.ImportFlags.Trees)
	s.form.SetChecked(ports.FieldReplaceExisting, c.ImportFlags.ReplaceExisting)
	s.form.SetChecked(ports.FieldCleanIntermediate, c.ImportFlags.CleanIntermediate)

	s.form.SetValue(ports.FieldLastRunAt, s.formatTime(c.Status.LastRunAt))
	s.form.SetValue(ports.FieldBlenderPath, artifactPath(c.Status, domain.ArtifactBlender))
	s.form.SetValue(ports.FieldMitsubaPath, artifactPath(c.Status, domain.ArtifactMitsuba))
	s.form.SetValue(ports.FieldArtifacts, artifactListing(c.Status))

	if b, ok := c.Area.Bounds(); ok {
		s.rect.Render(b)
	} else {
		s.rect.Clear()
	}
	if p, ok := c.Origin.LatLng(); ok {
		s.point.Render(p)
	} else {
		s.point.Clear()
	}
}

func (s *SceneSync) setCoord(f ports.Field, v *float64) {
	text := FormatCoord(v)
	s.shown[f] = text
	s.form.SetValue(f, text)
}

func (s *SceneSync) formatTime(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.In(s.loc).Format(lastRunLayout)
}

// parseCoord is the form's numeric policy: anything that is not a finite
// number means unset. It never fails.
func parseCoord(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatCoord renders a coordinate component for a form field.
func FormatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', coordPrecision, 64)
}

// FormatArea renders square meters as square kilometers with two decimals.
func FormatArea(sqm *float64) string {
	if sqm == nil {
		return ""
	}
	return fmt.Sprintf("%.2f km²", *sqm/1e6)
}

func artifactPath(st domain.Status, kind string) string {
	if p, ok := st.GeneratedArtifactPaths[kind]; ok && p != "" {
		return p
	}
	return notAvailable
}

func artifactListing(st domain.Status) string {
	if len(st.GeneratedArtifactPaths) == 0 {
		return notAvailable
	}
	kinds := make([]string, 0, len(st.GeneratedArtifactPaths))
	for k := range st.GeneratedArtifactPaths {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	lines := make([]string, 0, len(kinds))
	for _, k := range kinds {
		lines = append(lines, k+": "+st.GeneratedArtifactPaths[k])
	}
	return strings.Join(lines, "\n")
}
