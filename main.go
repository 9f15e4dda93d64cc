// main.go - Entry point and dependency injection
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/sstent/garminbulk-go/internal/bulk"
	"github.com/sstent/garminbulk-go/internal/config"
	"github.com/sstent/garminbulk-go/internal/database"
	"github.com/sstent/garminbulk-go/internal/fitindex"
	"github.com/sstent/garminbulk-go/internal/garmin"
	"github.com/sstent/garminbulk-go/internal/importer"
	"github.com/sstent/garminbulk-go/internal/web"

	_ "github.com/mattn/go-sqlite3"
)

type App struct {
	cfg      config.Config
	source   garmin.Source
	writer   *database.SQLiteWriter
	importer *importer.Importer
	cron     *cron.Cron
	server   *http.Server
	shutdown chan os.Signal
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	flag.StringVar(&cfg.ExportRoot, "bulk-data-path", cfg.ExportRoot, "path to the Garmin bulk export directory")
	flag.StringVar(&cfg.StartDate, "start-date", cfg.StartDate, "start date (YYYY-MM-DD)")
	flag.StringVar(&cfg.EndDate, "end-date", cfg.EndDate, "end date (YYYY-MM-DD), defaults to today")
	flag.BoolVar(&cfg.IgnoreErrors, "ignore-errors", cfg.IgnoreErrors, "continue past per-day import failures")
	fitFile := flag.String("fit-file", "", "import a single .fit file and exit")
	serve := flag.Bool("serve", false, "keep running after the import: serve the query API and re-import on a schedule")
	flag.Parse()

	app := &App{
		cfg:      cfg,
		shutdown: make(chan os.Signal, 1),
	}

	if err := app.init(*fitFile != ""); err != nil {
		log.Fatal("Failed to initialize app: ", err)
	}
	defer app.writer.Close()

	// Standalone single-recording import mode.
	if *fitFile != "" {
		if err := importer.ImportFitFile(*fitFile, fitindex.NewFITDecoder(), app.writer); err != nil {
			log.Fatal("FIT import failed: ", err)
		}
		return
	}

	if cfg.StartDate == "" {
		log.Fatal("start date must be set using --start-date or MANUAL_START_DATE")
	}

	if err := app.importer.Run(context.Background(), cfg.StartDate, cfg.EndDate); err != nil {
		log.Fatal("Import failed: ", err)
	}
	log.Printf("Bulk import success: fetched all available health metrics for %s to %s", cfg.StartDate, cfg.EndDate)

	if !*serve {
		return
	}

	app.start()

	// Wait for shutdown signal
	signal.Notify(app.shutdown, os.Interrupt, syscall.SIGTERM)
	<-app.shutdown

	app.stop()
}

func (app *App) init(fitFileMode bool) error {
	if err := os.MkdirAll(filepath.Dir(app.cfg.DBPath), 0755); err != nil {
		return err
	}

	writer, err := database.NewSQLiteWriter(app.cfg.DBPath)
	if err != nil {
		return err
	}
	app.writer = writer

	// Single-file mode needs no data source.
	if fitFileMode {
		return nil
	}

	switch app.cfg.DataSource {
	case "api":
		app.source = garmin.NewClient(app.cfg.APIBaseURL)
	default:
		export, err := bulk.NewBulkExport(app.cfg.ExportRoot, bulk.Options{
			MatchTolerance: time.Duration(app.cfg.MatchToleranceSeconds) * time.Second,
		})
		if err != nil {
			return err
		}
		app.source = export
	}

	app.importer = importer.New(app.source, app.writer, app.cfg.IgnoreErrors)

	app.cron = cron.New()

	router := gin.Default()
	web.NewHandler(app.source).RegisterRoutes(router)
	app.server = &http.Server{
		Addr:    app.cfg.HTTPAddress,
		Handler: router,
	}

	return nil
}

func (app *App) start() {
	app.cron.AddFunc(app.cfg.CronSchedule, func() {
		log.Println("Starting scheduled import...")
		if err := app.importer.Run(context.Background(), app.cfg.StartDate, app.cfg.EndDate); err != nil {
			log.Printf("Scheduled import failed: %v", err)
		}
	})
	app.cron.Start()

	go func() {
		log.Printf("Server starting on %s", app.cfg.HTTPAddress)
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()
}

func (app *App) stop() {
	log.Println("Shutting down...")

	app.cron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
