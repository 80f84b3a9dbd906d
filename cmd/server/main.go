package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"mesaplan/internal/config"
	"mesaplan/internal/floorplan/application/handler"
	"mesaplan/internal/floorplan/application/port"
	"mesaplan/internal/floorplan/application/usecase"
	"mesaplan/internal/floorplan/domain"
	"mesaplan/internal/floorplan/infrastructure"
	"mesaplan/internal/floorplan/transport"
	"mesaplan/internal/platform/broker"
	"mesaplan/internal/shared/auth"
	"mesaplan/internal/shared/logging"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	repo, err := openRepository(cfg)
	if err != nil {
		slog.Error("repository setup failed", slog.String("driver", cfg.Repository.Driver), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("repository ready", slog.String("driver", cfg.Repository.Driver))

	model := usecase.NewLayoutModel()
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := model.Load(loadCtx, repo); err != nil {
		loadCancel()
		slog.Error("floor plan load failed", slog.Any("error", err))
		os.Exit(1)
	}
	loadCancel()

	if layout := model.Layout(); layout.CanvasWidth != cfg.Canvas.Width || layout.CanvasHeight != cfg.Canvas.Height {
		layout.CanvasWidth = cfg.Canvas.Width
		layout.CanvasHeight = cfg.Canvas.Height
		model.SetLayout(layout)
	}

	hub := infrastructure.NewHub()
	registry := infrastructure.NewHandlerRegistry()

	broadcastUC := usecase.NewBroadcastUseCase(hub)
	floorSvc := usecase.NewFloorService(model, repo, broadcastUC)
	statusUC := usecase.NewStatusChanger(model, repo, broadcastUC)
	reservationSvc := usecase.NewReservationService(model, repo, repo, broadcastUC)
	detailUC := usecase.NewDetailPanel(model, repo, repo, statusUC)

	for _, topic := range cfg.Kafka.OrderTopics {
		registry.Register(handler.NewOrderEventHandler(topic, statusUC))
	}
	for _, topic := range cfg.Kafka.ReservationTopics {
		registry.Register(handler.NewReservationEventHandler(topic, model, statusUC))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.KafkaEnabled() {
		broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.KafkaTopics())
		slog.Info("kafka consumers started", slog.Any("brokers", cfg.Kafka.Brokers), slog.Any("topics", cfg.KafkaTopics()))
	} else {
		slog.Info("kafka disabled, no brokers configured")
	}

	e := echo.New()
	e.Logger.SetOutput(log.Writer())

	transport.NewHTTPHandler(floorSvc, statusUC, reservationSvc, detailUC).Register(e)

	validator := auth.NewJWTValidator(cfg.Security.JWTSecret)
	wsHandler := transport.NewFloorWebsocketHandler(hub, validator, model, repo, broadcastUC)
	e.GET("/ws/floor/:token", wsHandler)
	e.GET("/ws/floor", wsHandler)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	e.Close()
}

// openRepository picks the backing store from config. The memory driver
// seeds a demo floor so a fresh server renders something.
func openRepository(cfg *config.Config) (port.Repository, error) {
	switch cfg.Repository.Driver {
	case "mysql":
		db, err := infrastructure.OpenMySQL(cfg.Repository.MySQL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
		}
		return infrastructure.NewMySQLRepository(db), nil
	default:
		repo := infrastructure.NewMemoryRepository()
		repo.SeedDemoFloor()
		return repo, nil
	}
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
