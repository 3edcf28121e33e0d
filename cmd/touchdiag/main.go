// Command touchdiag renders offline diagnostic charts from a touchcored
// session database: a sensor's learned background profile, and a scatter
// of the touch events recorded on a screen.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/lumentouch/touchcore/internal/touch/diag"
	"github.com/lumentouch/touchcore/internal/touch/l2background"
	"github.com/lumentouch/touchcore/internal/touchstore"
)

var (
	dbFile      = flag.String("db", "touch.db", "path to the touchcored SQLite database")
	sensorID    = flag.String("sensor", "", "sensor id whose background profile to render")
	angleCount  = flag.Int("angles", 1080, "angular step count the sensor was configured with")
	screenID    = flag.Int("screen", 0, "screen id whose recent touch events to render")
	eventLimit  = flag.Int("limit", 500, "max recent touch events to pull for the scatter plot")
	outDir      = flag.String("out", ".", "output directory for rendered HTML files")
)

func main() {
	flag.Parse()
	if *sensorID == "" {
		log.Fatal("touchdiag: -sensor is required")
	}

	db, err := touchstore.Open(*dbFile)
	if err != nil {
		log.Fatalf("touchdiag: open %s: %v", *dbFile, err)
	}
	defer db.Close()

	if err := renderBackground(db, *sensorID, *angleCount, *outDir); err != nil {
		log.Fatalf("touchdiag: background chart: %v", err)
	}
	if err := renderEvents(db, *screenID, *eventLimit, *outDir); err != nil {
		log.Fatalf("touchdiag: event scatter: %v", err)
	}
}

func renderBackground(db *touchstore.DB, sensorID string, angleCount int, outDir string) error {
	cfg := *l2background.DefaultConfig()
	model, err := l2background.NewModel(angleCount, cfg)
	if err != nil {
		return err
	}
	if err := db.LoadLatestBackgroundSnapshot(sensorID, model); err != nil {
		return err
	}

	refDistance, _, _, _ := model.Snapshot()
	f, err := os.Create(filepath.Join(outDir, "background_"+sensorID+".html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return diag.RenderBackgroundProfile(f, sensorID, refDistance)
}

func renderEvents(db *touchstore.DB, screenID, limit int, outDir string) error {
	records, err := db.RecentTouchEvents(screenID, limit)
	if err != nil {
		return err
	}

	points := make([]diag.ClusterPoint, 0, len(records))
	for _, r := range records {
		if r.Kind != "ADD" {
			continue
		}
		points = append(points, diag.ClusterPoint{X: r.U, Y: r.V, PointCount: 1})
	}

	f, err := os.Create(filepath.Join(outDir, "touch_events.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return diag.RenderClusterScatter(f, "screen", points)
}
