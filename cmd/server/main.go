package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "path/filepath"
    "strconv"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"

    "github.com/iliyamo/activity-tracker/internal/config"
    "github.com/iliyamo/activity-tracker/internal/database"
    "github.com/iliyamo/activity-tracker/internal/handler"
    "github.com/iliyamo/activity-tracker/internal/logger"
    "github.com/iliyamo/activity-tracker/internal/middleware"
    "github.com/iliyamo/activity-tracker/internal/queue"
    "github.com/iliyamo/activity-tracker/internal/repository"
    "github.com/iliyamo/activity-tracker/internal/router"
    "github.com/iliyamo/activity-tracker/internal/service"
    "github.com/iliyamo/activity-tracker/internal/storage"
)

func main() {
    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        log.Printf("load .env: %v", err)
    }
    cfg := config.Load()

    lg := logger.NewLogger(cfg.LogLevel)
    defer func() { _ = lg.Sync() }()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        lg.Fatal("open database", zap.Error(err))
    }
    defer db.Close()

    if cfg.DBAutoMigrate {
        ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
        err := database.Migrate(ctx, db)
        cancel()
        if err != nil {
            lg.Fatal("apply schema", zap.Error(err))
        }
        lg.Info("schema applied")
    }

    rdb, err := config.NewRedisClient(config.LoadRedisConfig())
    if err != nil {
        lg.Warn("redis unavailable, rate limiting and caching disabled", zap.Error(err))
    } else {
        defer rdb.Close()
    }

    files, err := storage.NewLocal(cfg.DocumentsDir)
    if err != nil {
        lg.Fatal("document storage", zap.String("dir", cfg.DocumentsDir), zap.Error(err))
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    publisher := queue.NewPublisher(cfg.RabbitURL, lg)
    if publisher.Enabled() {
        consumer := queue.NewConsumer(cfg.RabbitURL, filepath.Join(cfg.DocumentsDir, "eventos"), lg)
        go func() {
            if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                lg.Error("event consumer stopped", zap.Error(err))
            }
        }()
    } else {
        lg.Info("RABBITMQ_URL not set, events disabled")
    }

    // query layer
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    activities := repository.NewActivityRepo(db)
    projects := repository.NewProjectRepo(db)
    assignments := repository.NewAssignmentRepo(db)
    comments := repository.NewCommentRepo(db)
    documents := repository.NewDocumentRepo(db)

    // services
    activitySvc := service.NewActivityService(activities, projects, users, publisher, lg)
    userSvc := service.NewUserService(users, cfg.BcryptCost)
    projectSvc := service.NewProjectService(projects, assignments, users)
    commentSvc := service.NewCommentService(comments, activitySvc, publisher, lg)
    documentSvc := service.NewDocumentService(documents, files, activitySvc, cfg.MaxUploadBytes, lg)
    statsSvc := service.NewStatsService(activities, projects, users, assignments)
    reportSvc := service.NewReportService(activities, projects, users, comments, cfg.ReportAuthor)

    dev := cfg.IsDev()
    h := router.Handlers{
        Auth:       handler.NewAuthHandler(cfg, userSvc, tokens, lg),
        Activities: handler.NewActivityHandler(activitySvc, lg, dev),
        Comments:   handler.NewCommentHandler(commentSvc, lg, dev),
        Documents:  handler.NewDocumentHandler(documentSvc, lg, dev),
        Projects:   handler.NewProjectHandler(projectSvc, lg, dev),
        Stats:      handler.NewStatsHandler(statsSvc, lg, dev),
        Reports:    handler.NewReportHandler(reportSvc, lg, dev),
        Users:      handler.NewUserHandler(userSvc, lg, dev),
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(middleware.Metrics())
    e.Use(middleware.RequestLogger(lg))
    e.Use(echomw.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))

    rl := config.LoadRateLimitConfig()
    router.Register(e, h, db, router.Options{
        JWTSecret:   cfg.JWTSecret,
        RateLimit:   middleware.NewTokenBucket(rl, rdb, lg),
        ReportLimit: middleware.NewTokenBucket(rl.ForReports(), rdb, lg),
        Cache:       middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
    })

    addr := ":" + cfg.Port
    go func() {
        lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            lg.Fatal("http server", zap.Error(err))
        }
    }()

    <-ctx.Done()
    lg.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        lg.Error("graceful shutdown", zap.Error(err))
    }
}

// bodyLimit leaves room for multipart framing around the largest upload.
func bodyLimit(maxUpload int64) string {
    return strconv.FormatInt(maxUpload/(1<<20)+1, 10) + "M"
}
