package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/linkface/linkface/internal/config"
	"github.com/linkface/linkface/internal/handlers"
	"github.com/linkface/linkface/internal/imaging"
	"github.com/linkface/linkface/internal/logging"
	"github.com/linkface/linkface/internal/notify"
	"github.com/linkface/linkface/internal/ratelimit"
	"github.com/linkface/linkface/internal/repo"
	"github.com/linkface/linkface/internal/search"
	"github.com/linkface/linkface/internal/session"
	"github.com/linkface/linkface/internal/storage"
	httpserver "github.com/linkface/linkface/internal/transport/http"
)

const version = "1.0.0"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	for _, problem := range configuration.Validate() {
		logger.Warn("configuration problem", "detail", problem)
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	kind, err := storage.ParseKind(configuration.STORAGE_TYPE)
	if err != nil {
		log.Fatal(err)
	}
	provider, err := storage.New(kind, storage.Options{
		DataDir:            configuration.DATA_DIR,
		AWSRegion:          configuration.AWS_REGION,
		AWSAccessKeyID:     configuration.AWS_ACCESS_KEY_ID,
		AWSSecretAccessKey: configuration.AWS_SECRET_ACCESS_KEY,
		S3Bucket:           configuration.AWS_S3_BUCKET_NAME,
		BlobToken:          configuration.BLOB_READ_WRITE_TOKEN,
		GoogleCredentials:  configuration.GOOGLE_APPLICATION_CREDENTIALS,
		DriveFolderID:      configuration.GOOGLE_DRIVE_FOLDER_ID,
	})
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	limiter := ratelimit.New(configuration.RATE_LIMIT_MAX_REQUESTS, configuration.RATE_LIMIT_WINDOW)
	sessions := session.NewStore(configuration.SESSION_TTL)

	var producer *notify.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = notify.NewProducer(strings.Split(configuration.KAFKA_ADDRESS, ","), configuration.KAFKA_TOPIC)
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = search.NewClient(configuration.ES_URL, configuration.ES_USER, configuration.ES_PASSWORD)
		if err != nil {
			logger.Error("elasticsearch unavailable, search falls back to sql", "error", err)
			esClient = nil
		}
	}

	store := repo.New(db)
	codec := imaging.StdCodec{}

	validator := imaging.NewValidator(codec)
	validator.MaxBase64Size = configuration.MAX_BASE64_SIZE
	validator.MaxImageSize = configuration.MAX_IMAGE_SIZE
	validator.MinDimension = configuration.MIN_IMAGE_DIMENSION
	validator.AllowedTypes = configuration.ALLOWED_IMAGE_TYPES

	compressor := imaging.NewCompressor(codec)
	compressor.MaxWidth = configuration.MAX_IMAGE_WIDTH
	compressor.MaxHeight = configuration.MAX_IMAGE_HEIGHT
	compressor.Quality = configuration.IMAGE_QUALITY

	notifier := &notify.Notifier{
		Producer: producer,
		Log:      logger,
		SMTP: notify.SMTPConfig{
			Host:     configuration.SMTP_HOST,
			Port:     configuration.SMTP_PORT,
			User:     configuration.SMTP_USER,
			Password: configuration.SMTP_PASSWORD,
			From:     configuration.SMTP_FROM,
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		SubmissionHandler: &handlers.SubmissionHandler{
			Store:      store,
			Limiter:    limiter,
			Storage:    provider,
			Validator:  validator,
			Compressor: compressor,
			Notifier:   notifier,
			ES:         esClient,
			ESIndex:    configuration.ES_INDEX,
			Log:        logger,
		},
		AdminHandler: &handlers.AdminHandler{
			Store:    store,
			Sessions: sessions,
			Creds: session.Credentials{
				Password:     configuration.ADMIN_PASSWORD,
				PasswordHash: configuration.ADMIN_PASSWORD_HASH,
				Token:        configuration.ADMIN_TOKEN,
			},
			Storage: provider,
			AppURL:  configuration.APP_URL,
			ES:      esClient,
			ESIndex: configuration.ES_INDEX,
			Log:     logger,
		},
		HealthHandler: &handlers.HealthHandler{
			DB:          db,
			StorageKind: string(kind),
			Version:     version,
		},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "storage", string(kind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	limiter.Close()
	sessions.Close()

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	logger.Info("shutdown complete")
}
