// Command prepscene converts raw acquisition imagery into a stored
// scene: speckle-filtered dB backscatter bands plus a terrain slope
// layer derived from an elevation model.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"sar-watermap/internal/ingest"
	"sar-watermap/internal/raster"
	"sar-watermap/internal/scene"
)

func main() {
	vv := flag.String("vv", "", "Path to VV amplitude image")
	vh := flag.String("vh", "", "Path to VH amplitude image")
	dem := flag.String("dem", "", "Path to elevation raster (meters)")
	sceneDir := flag.String("scenes", "./scenes", "Scene store directory")
	id := flag.String("id", "", "Scene ID")
	date := flag.String("date", "", "Acquisition date (YYYY-MM-DD)")
	pass := flag.String("pass", scene.PassAscending, "Orbit pass direction")
	platform := flag.String("platform", "SENTINEL-1", "Acquiring platform")
	originX := flag.Float64("ox", 0, "Longitude of the upper-left corner")
	originY := flag.Float64("oy", 0, "Latitude of the upper-left corner")
	pxW := flag.Float64("pxw", 0, "Pixel width in degrees")
	pxH := flag.Float64("pxh", 0, "Pixel height in degrees (negative for north-up)")
	res := flag.Float64("res", 10, "Ground resolution in meters per pixel")
	window := flag.Int("speckle", ingest.DefaultSpeckleWindow, "Speckle median window (3 or 5)")
	flag.Parse()

	if *vv == "" || *vh == "" || *dem == "" || *id == "" || *date == "" || *pxW == 0 || *pxH == 0 {
		fmt.Println("Usage: prepscene -vv <img> -vh <img> -dem <img> -id <scene-id> -date <YYYY-MM-DD> -ox <lon> -oy <lat> -pxw <deg> -pxh <deg> [-res <m>] [-scenes <dir>]")
		os.Exit(1)
	}

	acquired, err := time.Parse("2006-01-02", *date)
	if err != nil {
		fmt.Printf("Date: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Preparing %s ===\n", *id)
	set, err := ingest.PrepareLayers(ingest.Options{
		PrimaryPath:   *vv,
		SecondaryPath: *vh,
		DEMPath:       *dem,
		SpeckleWindow: *window,
		Transform: raster.Geotransform{
			OriginX:          *originX,
			OriginY:          *originY,
			PixelWidth:       *pxW,
			PixelHeight:      *pxH,
			GroundResolution: *res,
			CRS:              "EPSG:4326",
		},
	})
	if err != nil {
		fmt.Printf("Prepare: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  layers: %dx%d\n", set.Width(), set.Height())

	store := scene.NewStore(*sceneDir)
	meta := scene.Metadata{
		ID:         *id,
		AcquiredAt: acquired,
		Pass:       *pass,
		Platform:   *platform,
	}
	if err := store.Save(meta, set); err != nil {
		fmt.Printf("Save: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved scene %s to %s\n", *id, *sceneDir)
}
