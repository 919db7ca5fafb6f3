package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ekstremedia/raspilapse-sub000/internal/camera"
	"github.com/ekstremedia/raspilapse-sub000/internal/config"
	"github.com/ekstremedia/raspilapse-sub000/internal/db"
	"github.com/ekstremedia/raspilapse-sub000/internal/exposure"
	"github.com/ekstremedia/raspilapse-sub000/internal/monitor"
	"github.com/ekstremedia/raspilapse-sub000/internal/monitoring"
)

var (
	configPath = flag.String("config", "", "Path to tuning config JSON (built-in defaults when empty)")
	dbPath     = flag.String("db", "raspilapse.db", "Path to the sqlite cycle database")
	listen     = flag.String("listen", ":8080", "Listen address for the monitor web server")
	interval   = flag.Duration("interval", 30*time.Second, "Capture cycle interval")
	devMode    = flag.Bool("dev", false, "Use the synthetic camera instead of rpicam-still")
	verbose    = flag.Bool("verbose", false, "Log per-cycle decision detail")
)

// retrainWindow bounds how far back the retrainer reads good samples. Scenes
// drift with the season, so month-old exposures stop being representative.
const retrainWindow = 30 * 24 * time.Hour

func main() {
	flag.Parse()
	monitoring.Verbose = *verbose

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
		cfg = loaded
	}

	params, err := exposure.NewParams(cfg)
	if err != nil {
		log.Fatalf("Invalid tuning config: %v", err)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", *dbPath, err)
	}
	defer database.Close()
	if err := database.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	kind := "rpicam"
	if *devMode {
		kind = "synthetic"
	}
	cam, err := camera.New(kind, params)
	if err != nil {
		log.Fatalf("Failed to create camera: %v", err)
	}

	engine := exposure.NewEngine(params, cam)
	seedLearnedModel(engine, database, params)

	ws := monitor.NewWebServer(monitor.Config{
		Address: *listen,
		DB:      database,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			monitoring.Logf("Monitor web server error: %v", err)
			stop()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		retrainLoop(ctx, engine, database, params, cfg.GetRetrainInterval())
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		cycleLoop(ctx, engine, database, ws, *interval)
	}()

	monitoring.Logf("raspilapse started (camera=%s, interval=%s, listen=%s)", kind, *interval, *listen)
	wg.Wait()
	monitoring.Logf("raspilapse stopped")
}

// cycleLoop drives the capture cadence. A cycle already underway when the
// context is cancelled runs to completion, so shutdown never leaves a frame
// half captured or the database row unwritten.
func cycleLoop(ctx context.Context, engine *exposure.Engine, database *db.DB, ws *monitor.WebServer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		runCycle(engine, database, ws)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runCycle(engine *exposure.Engine, database *db.DB, ws *monitor.WebServer) {
	diag, err := engine.RunCycle(context.Background())
	if err != nil {
		monitoring.Logf("Cycle failed: %v", err)
		return
	}

	ws.Observe(diag)
	if err := database.RecordCycle(db.NewCycleRecord(ws.RunID(), diag)); err != nil {
		monitoring.Logf("Failed to record cycle: %v", err)
	}

	monitoring.Logf("Cycle %s mode=%s lux=%.3f exp=%.4fs gain=%.2f mean=%.1f",
		diag.Timestamp.Format(time.RFC3339), diag.Mode, diag.SmoothedLux,
		diag.AppliedExposure, diag.AppliedGain, diag.Brightness.Mean)
}

// retrainLoop periodically rebuilds the learned lux-to-settings table from
// recorded good samples and swaps it into the engine.
func retrainLoop(ctx context.Context, engine *exposure.Engine, database *db.DB, params exposure.Params, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			retrain(engine, database, params)
		}
	}
}

func retrain(engine *exposure.Engine, database *db.DB, params exposure.Params) {
	samples, err := database.GoodSamples(db.GoodSampleFilter{
		Since: time.Now().Add(-retrainWindow),
	})
	if err != nil {
		monitoring.Logf("Retrain query failed: %v", err)
		return
	}
	table := params.Retrain(samples)
	engine.SetBucketTable(table)
	monitoring.Logf("Retrained learned model from %d samples", len(samples))
}

// seedLearnedModel trains the initial bucket table from history at startup so
// a restart does not lose what previous runs learned.
func seedLearnedModel(engine *exposure.Engine, database *db.DB, params exposure.Params) {
	samples, err := database.GoodSamples(db.GoodSampleFilter{
		Since: time.Now().Add(-retrainWindow),
	})
	if err != nil {
		monitoring.Logf("Could not seed learned model: %v", err)
		return
	}
	if len(samples) == 0 {
		return
	}
	engine.SetBucketTable(params.Retrain(samples))
	monitoring.Logf("Seeded learned model from %d historical samples", len(samples))
}
