// Package scene manages prepared acquisitions on disk. Each scene is a
// directory holding the three detection grids plus a metadata
// document.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"sar-watermap/internal/raster"
	"sar-watermap/pkg/geometry"
)

const (
	metadataFile  = "scene.json"
	primaryFile   = "vv_db.grid"
	secondaryFile = "vh_db.grid"
	slopeFile     = "slope.grid"
)

// PassAscending is the only acquisition geometry served to the
// pipeline; mixing pass directions changes viewing geometry between
// requests.
const PassAscending = "ASCENDING"

// ErrNoScene is returned when no stored acquisition satisfies a
// lookup.
var ErrNoScene = errors.New("scene: no eligible acquisition")

// Metadata describes one prepared acquisition.
type Metadata struct {
	ID         string              `json:"id"`
	AcquiredAt time.Time           `json:"acquired_at"`
	Pass       string              `json:"pass"`
	Platform   string              `json:"platform,omitempty"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Transform  raster.Geotransform `json:"geotransform"`
}

// Bounds returns the geographic bounding box of the scene.
func (m *Metadata) Bounds() geometry.Rect {
	a := m.Transform.PixelToGeo(0, 0)
	b := m.Transform.PixelToGeo(float64(m.Width), float64(m.Height))
	return geometry.BoundingBox([]geometry.Point2D{a, b})
}

// Store is a directory of prepared scenes.
type Store struct {
	dir string
}

// NewStore opens a scene store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns metadata for every stored scene, newest first. Scenes
// with the same timestamp sort by ID so repeated lookups are stable.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan scene store: %w", err)
	}

	var scenes []Metadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.readMetadata(e.Name())
		if err != nil {
			// Skip unreadable entries rather than failing the whole
			// store; the caller only cares about usable scenes.
			continue
		}
		scenes = append(scenes, meta)
	}

	sort.Slice(scenes, func(i, j int) bool {
		if !scenes[i].AcquiredAt.Equal(scenes[j].AcquiredAt) {
			return scenes[i].AcquiredAt.After(scenes[j].AcquiredAt)
		}
		return scenes[i].ID < scenes[j].ID
	})
	return scenes, nil
}

// MostRecent finds the newest ascending-pass scene intersecting the
// given bounds, acquired on or before the optional cutoff date.
func (s *Store) MostRecent(bounds geometry.Rect, cutoff *time.Time) (*Metadata, error) {
	scenes, err := s.List()
	if err != nil {
		return nil, err
	}

	for i := range scenes {
		m := &scenes[i]
		if m.Pass != PassAscending {
			continue
		}
		if cutoff != nil && m.AcquiredAt.After(*cutoff) {
			continue
		}
		if !m.Bounds().Intersects(bounds) {
			continue
		}
		return m, nil
	}
	return nil, ErrNoScene
}

// Load reads the full layer set of a scene by ID.
func (s *Store) Load(id string) (*raster.LayerSet, error) {
	meta, err := s.readMetadata(id)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.dir, id)
	primary, err := raster.LoadGrid(filepath.Join(dir, primaryFile))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", id, err)
	}
	secondary, err := raster.LoadGrid(filepath.Join(dir, secondaryFile))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", id, err)
	}
	slope, err := raster.LoadGrid(filepath.Join(dir, slopeFile))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", id, err)
	}

	set := &raster.LayerSet{
		Primary:     primary,
		Secondary:   secondary,
		Slope:       slope,
		Transform:   meta.Transform,
		Acquisition: meta.ID,
		AcquiredAt:  meta.AcquiredAt,
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", id, err)
	}
	return set, nil
}

// Save writes a scene directory: three grids plus metadata.
func (s *Store) Save(meta Metadata, set *raster.LayerSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	meta.Width = set.Width()
	meta.Height = set.Height()
	meta.Transform = set.Transform

	dir := filepath.Join(s.dir, meta.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scene dir: %w", err)
	}

	grids := map[string]*raster.Grid{
		primaryFile:   set.Primary,
		secondaryFile: set.Secondary,
		slopeFile:     set.Slope,
	}
	for name, g := range grids {
		if err := raster.SaveGrid(filepath.Join(dir, name), g); err != nil {
			return err
		}
	}

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), raw, 0o644); err != nil {
		return fmt.Errorf("write scene metadata: %w", err)
	}
	return nil
}

func (s *Store) readMetadata(id string) (Metadata, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, id, metadataFile))
	if err != nil {
		return Metadata{}, fmt.Errorf("read scene metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("decode scene metadata: %w", err)
	}
	if meta.ID == "" {
		meta.ID = id
	}
	return meta, nil
}
