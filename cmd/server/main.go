package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskmarket-backend/internal/config"
	"github.com/ignatzorin/taskmarket-backend/internal/db"
	httpHandlers "github.com/ignatzorin/taskmarket-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/taskmarket-backend/internal/http/router"
	"github.com/ignatzorin/taskmarket-backend/internal/logger"
	"github.com/ignatzorin/taskmarket-backend/internal/repository"
	"github.com/ignatzorin/taskmarket-backend/internal/service"
	"github.com/ignatzorin/taskmarket-backend/internal/storage"
	"github.com/ignatzorin/taskmarket-backend/internal/wechat"
	"github.com/ignatzorin/taskmarket-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	wechatClient := wechat.NewClient(cfg.WechatAppID, cfg.WechatSecret, cfg.WechatAPIURL)

	attachmentStorage, err := storage.NewAttachmentStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	profileRepo := repository.NewProfileRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	transactionRepo := repository.NewTransactionRepository(dbConn)

	// Вебсокеты: хаб доставляет события сделок обеим сторонам.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, wechatClient, tokenManager, cfg.OwnerOpenID)
	enterpriseService := service.NewEnterpriseService(taskRepo, orderRepo, profileRepo, transactionRepo, hub)
	workerService := service.NewWorkerService(taskRepo, orderRepo, profileRepo, transactionRepo, hub)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, taskRepo, profileRepo)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	enterpriseHandler := httpHandlers.NewEnterpriseHandler(enterpriseService)
	workerHandler := httpHandlers.NewWorkerHandler(workerService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	mediaHandler := httpHandlers.NewMediaHandler(attachmentStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, enterpriseHandler, workerHandler, reviewHandler, mediaHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
