// Command detect runs the water-detection pipeline on a stored scene
// and writes the result as GeoJSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"sar-watermap/internal/aoi"
	"sar-watermap/internal/geojson"
	"sar-watermap/internal/pipeline"
	"sar-watermap/internal/scene"
)

func main() {
	sceneDir := flag.String("scenes", "./scenes", "Scene store directory")
	sceneID := flag.String("scene", "", "Scene ID (default: newest ascending scene covering the AOI)")
	aoiPath := flag.String("aoi", "", "Path to a GeoJSON polygon describing the area of interest")
	out := flag.String("o", "", "Output GeoJSON path (default: stdout)")
	vvThr := flag.Float64("vv", 0, "Manual VV threshold in dB (0 = automatic)")
	minArea := flag.Int("minpix", 0, "Minimum water feature size in pixels (0 = default)")
	flag.Parse()

	if *aoiPath == "" {
		fmt.Println("Usage: detect -aoi <polygon.geojson> [-scenes <dir>] [-scene <id>] [-o <out.geojson>]")
		os.Exit(1)
	}

	area, err := loadAOI(*aoiPath)
	if err != nil {
		fmt.Printf("AOI: %v\n", err)
		os.Exit(1)
	}
	if err := area.Validate(); err != nil {
		fmt.Printf("AOI: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("=== AOI: %.2f km2 ===\n", area.AreaKM2())

	store := scene.NewStore(*sceneDir)
	id := *sceneID
	if id == "" {
		meta, err := store.MostRecent(area.Bounds(), nil)
		if err != nil {
			fmt.Printf("Scene lookup: %v\n", err)
			os.Exit(1)
		}
		id = meta.ID
	}

	set, err := store.Load(id)
	if err != nil {
		fmt.Printf("Load scene: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("=== Scene %s (%dx%d, acquired %s) ===\n",
		id, set.Width(), set.Height(), set.AcquiredAt.Format("2006-01-02"))

	var params pipeline.Parameters
	if *vvThr != 0 {
		params.PrimaryThresholdDB = vvThr
	}
	if *minArea > 0 {
		params.MinFeaturePixels = minArea
	}

	progress := func(s pipeline.Stage) {
		fmt.Printf("  stage complete: %s\n", s)
	}

	result, err := pipeline.Run(set, area, params, progress)
	if err != nil {
		fmt.Printf("Detection: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Result ===\n")
	fmt.Printf("  threshold:   %.2f dB (%s)\n", result.Threshold.Value, result.Threshold.Provenance)
	fmt.Printf("  polygons:    %d\n", len(result.Polygons))
	fmt.Printf("  water area:  %.4f km2 (%.2f%% of AOI)\n", result.WaterAreaKM2, result.WaterPercentage)
	fmt.Printf("  elapsed:     %.2fs\n", result.ProcessingSeconds)
	if result.Warning != "" {
		fmt.Printf("  warning:     %s\n", result.Warning)
	}

	fc, err := result.FeatureCollection()
	if err != nil {
		fmt.Printf("Encode: %v\n", err)
		os.Exit(1)
	}
	raw, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		fmt.Printf("Encode: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		fmt.Println(string(raw))
		return
	}
	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		fmt.Printf("Write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}

// loadAOI reads either a bare GeoJSON geometry or a single-feature
// document and builds the area of interest from it.
func loadAOI(path string) (*aoi.AreaOfInterest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var geom geojson.Geometry
	if err := json.Unmarshal(raw, &geom); err != nil || geom.Type == "" {
		var feature geojson.Feature
		if err := json.Unmarshal(raw, &feature); err != nil || feature.Geometry == nil {
			return nil, fmt.Errorf("%s: not a GeoJSON geometry or feature", path)
		}
		geom = *feature.Geometry
	}

	rings, err := geojson.DecodePolygon(&geom)
	if err != nil {
		return nil, err
	}
	return aoi.New(rings[0], rings[1:]...)
}
