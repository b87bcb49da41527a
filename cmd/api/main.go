package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/laundry-service/internal/config"
	"github.com/laundry-service/internal/events"
	grpcapi "github.com/laundry-service/internal/grpc"
	handler "github.com/laundry-service/internal/http"
	"github.com/laundry-service/internal/logger"
	"github.com/laundry-service/internal/repo"
	"github.com/laundry-service/internal/service"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const kafkaGroupID = "laundry-dashboard"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// corsOptions allows the bearer-token API from the configured origins. No
// cookies are used, so credentials stay off.
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	log.Info("connected to database")

	if err := repo.RunMigrations(db); err != nil {
		return err
	}
	log.Info("migrations applied")

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	redisClient := redis.NewClient(opt)
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	log.Info("connected to redis")

	orderRepo := repo.NewPostgresOrderRepository(db)
	customerRepo := repo.NewPostgresCustomerRepository(db)
	driverRepo := repo.NewPostgresDriverRepository(db)
	storeRepo := repo.NewPostgresStoreRepository(db)
	userRepo := repo.NewPostgresUserRepository(db)
	dashboardRepo := repo.NewPostgresDashboardRepository(db)

	dashboardService := service.NewDashboardService(dashboardRepo, redisClient, cfg.DashboardCacheTTL)

	var (
		publisher events.Publisher
		consumer  events.Consumer
	)
	switch cfg.Events.Backend {
	case config.EventsKafka:
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic))
		defer kp.Close()
		publisher = kp
		reader := events.NewKafkaReader(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, kafkaGroupID)
		consumer = events.NewKafkaConsumer(reader, dashboardService, log)
	default:
		publisher = events.NewRedisPublisher(redisClient)
		consumer = events.NewRedisConsumer(redisClient, dashboardService, log)
	}
	log.Info("event backend selected", zap.String("backend", cfg.Events.Backend))

	orderService := service.NewOrderService(orderRepo, customerRepo, driverRepo, storeRepo, publisher)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)

	h := handler.NewHandler(handler.Services{
		Orders:    orderService,
		Customers: service.NewCustomerService(customerRepo),
		Drivers:   service.NewDriverService(driverRepo),
		Stores:    service.NewStoreService(storeRepo, publisher),
		Auth:      authService,
		Dashboard: dashboardService,
		Notify:    service.NewNotifyService(orderRepo, storeRepo),
		Print:     service.NewPrintService(orderRepo, storeRepo, service.DefaultQRGenerator{BaseURL: cfg.HTTP.PublicBaseURL}),
		Export:    service.NewExportService(orderRepo),
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log))
	h.RegisterRoutes(r)

	corsHandler := cors.New(corsOptions(cfg.HTTP.CORSOrigins)).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer()
	grpcapi.Register(grpcServer, grpcapi.NewServer(orderService, authService, log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		consumer.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("starting http server", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		log.Info("starting grpc server", zap.String("port", cfg.GRPC.Port))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}
	log.Info("server exiting")
	return nil
}
