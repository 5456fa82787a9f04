package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/team-hub/config"
	"github.com/Dosada05/team-hub/db"
	"github.com/Dosada05/team-hub/handlers"
	"github.com/Dosada05/team-hub/logger"
	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/realtime"
	"github.com/Dosada05/team-hub/repositories"
	api "github.com/Dosada05/team-hub/routes"
	"github.com/Dosada05/team-hub/services"
	"github.com/Dosada05/team-hub/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title Team Hub API
// @version 1.0
// @description Команды, события, голосование за участие, платежи и чат.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("application failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("application exited")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("configuration loaded", zap.Int("port", cfg.ServerPort), zap.String("env", cfg.AppEnv))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		} else {
			log.Info("database connection closed")
		}
	}()
	log.Info("database connection established", zap.String("driver", dbConn.DriverName()))

	if err := db.Migrate(dbConn); err != nil {
		return err
	}
	log.Info("migrations applied")

	// Realtime: без Redis комнаты живут только в этом процессе.
	hub := realtime.NewHub(log.Named("hub"))
	var broker realtime.Broker = hub
	var redisBroker *realtime.RedisBroker
	denylist := repositories.NewMemoryTokenDenylist()
	if cfg.Redis.Enabled() {
		redisClient, err := realtime.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		redisBroker = realtime.NewRedisBroker(redisClient, hub, log.Named("redis"))
		broker = redisBroker
		denylist = repositories.NewRedisTokenDenylist(redisClient)
		log.Info("redis enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var events notify.EventPublisher = notify.NewLogPublisher(log.Named("events"))
	if cfg.Kafka.Enabled() {
		kafkaPublisher := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("failed to close kafka writer", zap.Error(err))
			}
		}()
		events = kafkaPublisher
		log.Info("kafka enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	var mailer notify.Mailer = notify.NewLogMailer(log.Named("mail"))
	if cfg.SMTP.Enabled() {
		mailer = notify.NewGomailMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		log.Info("smtp enabled", zap.String("host", cfg.SMTP.Host))
	}

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		}, log.Named("r2"))
		if err != nil {
			return err
		}
		log.Info("Cloudflare R2 uploader initialized")
	} else {
		log.Warn("R2 is not configured, team logo uploads are disabled")
	}

	// Инициализация репозиториев
	txManager := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	inviteRepo := repositories.NewAdminInviteRepository(dbConn)
	teamRepo := repositories.NewTeamRepository(dbConn)
	memberRepo := repositories.NewTeamMemberRepository(dbConn)
	eventRepo := repositories.NewEventRepository(dbConn)
	attendanceRepo := repositories.NewAttendanceRepository(dbConn)
	commentRepo := repositories.NewCommentRepository(dbConn)
	paymentRepo := repositories.NewPaymentRepository(dbConn)
	chatRepo := repositories.NewChatRepository(dbConn)

	// Инициализация сервисов
	tokens := services.NewTokenIssuer(cfg.JWTSecretKey, cfg.JWTTTL)
	authService := services.NewAuthService(userRepo, inviteRepo, txManager, denylist, tokens, mailer, cfg.AdminInviteTTL, log)
	teamService := services.NewTeamService(teamRepo, memberRepo, txManager, uploader, events, log)
	eventService := services.NewEventService(teamRepo, memberRepo, eventRepo, attendanceRepo, broker, events, log)
	attendanceService := services.NewAttendanceService(teamRepo, memberRepo, eventRepo, attendanceRepo, broker, log)
	commentService := services.NewCommentService(teamRepo, memberRepo, eventRepo, commentRepo, log)
	paymentService := services.NewPaymentService(teamRepo, memberRepo, eventRepo, paymentRepo, log)
	chatService := services.NewChatService(teamRepo, memberRepo, chatRepo, broker, log)
	dashboardService := services.NewDashboardService(userRepo, teamRepo, memberRepo, eventRepo, paymentRepo, chatRepo)
	reminderService := services.NewReminderService(teamRepo, memberRepo, eventRepo, mailer, events, cfg.ReminderLeadTime, log)
	log.Info("services initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Admin:      handlers.NewAdminHandler(authService),
		Dashboard:  handlers.NewDashboardHandler(dashboardService),
		Team:       handlers.NewTeamHandler(teamService),
		Event:      handlers.NewEventHandler(eventService),
		Attendance: handlers.NewAttendanceHandler(attendanceService),
		Comment:    handlers.NewCommentHandler(commentService),
		Payment:    handlers.NewPaymentHandler(paymentService),
		Chat:       handlers.NewChatHandler(chatService),
		WebSocket:  handlers.NewWebSocketHandler(chatService, cfg.CORSAllowedOrigins),
	}, authService, log, cfg.CORSAllowedOrigins)

	// WriteTimeout не ставим: websocket соединения живут долго.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(log.Named("http")),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server", zap.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("failed to force close server", zap.Error(closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server shutdown complete")
		return nil
	})

	// Планировщик напоминаний о подтверждённых событиях
	g.Go(func() error {
		return reminderService.Run(gctx, cfg.ReminderInterval)
	})

	if redisBroker != nil {
		g.Go(func() error {
			return redisBroker.Run(gctx)
		})
	}

	return g.Wait()
}
