package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/config"
	"github.com/dbarry-dev/stationtrack/internal/repository/mongodb"
	"github.com/dbarry-dev/stationtrack/internal/repository/registry"
	"github.com/dbarry-dev/stationtrack/internal/repository/sheets"
	"github.com/dbarry-dev/stationtrack/internal/scheduler"
	"github.com/dbarry-dev/stationtrack/internal/server"
	"github.com/dbarry-dev/stationtrack/internal/server/handlers"
	"github.com/dbarry-dev/stationtrack/internal/server/router"
	"github.com/dbarry-dev/stationtrack/internal/service/assistant"
	"github.com/dbarry-dev/stationtrack/internal/service/capture"
	"github.com/dbarry-dev/stationtrack/internal/service/extraction"
	speechclient "github.com/dbarry-dev/stationtrack/pkg/clients/speech"
	visionclient "github.com/dbarry-dev/stationtrack/pkg/clients/vision"
	"github.com/dbarry-dev/stationtrack/pkg/logger"
)

const templatesGlob = "web/templates/*.html"

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Debug))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store := registry.NewCSVStore(cfg.Registry.Path, cfg.Registry.StationLabel, baseLogger.Named("repo.registry"))

	var archive mongodb.Archive
	if cfg.Archive.Enabled() {
		mongoArchive, err := mongodb.NewMongoArchive(context.Background(), cfg.Archive.URI, cfg.Archive.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init sighting archive", zap.Error(err))
		}
		defer func() {
			if err := mongoArchive.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archive = mongoArchive
		baseLogger.Info("sighting archive enabled")
	}

	var exporter sheets.Exporter
	if cfg.Export.Enabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Export, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheet exporter", zap.Error(err))
		}
		baseLogger.Info("sheet export enabled")
	}

	sched := scheduler.NewScheduler(*cfg, store, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	dashboardHandler := handlers.NewDashboardHandler(store, baseLogger.Named("handlers.dashboard"))
	engine := router.New(dashboardHandler, baseLogger.Named("router"), templatesGlob)
	dashboard := server.NewDashboard(cfg.Server.Port, engine, baseLogger.Named("dashboard"))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := dashboard.Stop(shutdownCtx); err != nil {
			baseLogger.Error("graceful dashboard shutdown failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runMenu(ctx, cfg, store, archive, dashboard, baseLogger)
}

func runMenu(ctx context.Context, cfg *config.Config, store registry.Store, archive mongodb.Archive, dashboard *server.Dashboard, log *zap.Logger) {
	fmt.Println("1. Run QR/Barcode Scanner")
	fmt.Println("2. Run Voice Assistant")
	fmt.Println("3. Run Web Dashboard")
	fmt.Println("4. OCR Scan From Image")
	fmt.Println("5. Exit")

	input := readLines(ctx)

	for {
		fmt.Print("Choose option: ")

		choice, ok := nextLine(ctx, input)
		if !ok {
			fmt.Println()
			log.Info("input closed, exiting")
			return
		}

		switch strings.TrimSpace(choice) {
		case "1":
			runCapture(ctx, cfg, store, archive, log)
		case "2":
			runAssistant(ctx, cfg, store, log)
		case "3":
			if dashboard.Start() {
				fmt.Printf("Dashboard running at http://127.0.0.1:%s\n", cfg.Server.Port)
			} else {
				fmt.Println("Dashboard is already running.")
			}
		case "4":
			fmt.Print("Enter image path: ")
			path, ok := nextLine(ctx, input)
			if !ok {
				return
			}
			runExtraction(ctx, cfg, store, strings.TrimSpace(path), log)
		case "5":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Invalid option.")
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func runCapture(ctx context.Context, cfg *config.Config, store registry.Store, archive mongodb.Archive, log *zap.Logger) {
	if cfg.Vision.BaseURL == "" {
		fmt.Println("VISION_GATEWAY_URL is not configured.")
		return
	}

	feed := capture.NewGatewayFeed(visionclient.NewClient(cfg.Vision))
	session := capture.NewSession(feed, feed, feed, store, archive, cfg.Registry.StationLabel, log.Named("svc.capture"))

	fmt.Println("Camera started. Use the scanner stop control to quit scanning.")
	if err := session.Run(ctx); err != nil {
		log.Error("capture session failed", zap.Error(err))
	}
	fmt.Println("Camera scanner stopped.")
}

func runAssistant(ctx context.Context, cfg *config.Config, store registry.Store, log *zap.Logger) {
	if cfg.Speech.BaseURL == "" {
		fmt.Println("SPEECH_GATEWAY_URL is not configured.")
		return
	}

	client := speechclient.NewClient(cfg.Speech)
	asst := assistant.New(client, client, store, log.Named("svc.assistant"))

	if err := asst.Run(ctx); err != nil {
		log.Error("voice assistant failed", zap.Error(err))
	}
}

func runExtraction(ctx context.Context, cfg *config.Config, store registry.Store, path string, log *zap.Logger) {
	if cfg.Vision.BaseURL == "" {
		fmt.Println("VISION_GATEWAY_URL is not configured.")
		return
	}

	extractor := extraction.NewExtractor(visionclient.NewClient(cfg.Vision), store, cfg.Registry.StationLabel, log.Named("svc.extraction"))

	text, err := extractor.FromImage(ctx, path)
	if err != nil {
		fmt.Println("OCR failed:", err)
		return
	}
	fmt.Println("Extracted text:", text)
}

// readLines pumps stdin lines into a channel so the menu can still react
// to context cancellation while blocked on input.
func readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func nextLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case line, ok := <-lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}
