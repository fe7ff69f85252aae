package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DRSN-tech/shop-backend/db"
	config "github.com/DRSN-tech/shop-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/shop-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/shop-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/shop-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/shop-backend/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/shop-backend/internal/repository/minio"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/shop-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/auth"
	"github.com/DRSN-tech/shop-backend/pkg/clients"
	"github.com/DRSN-tech/shop-backend/pkg/closer"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/DRSN-tech/shop-backend/pkg/postgres"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	initTimeout     = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	cleanupTimeout  = 5 * time.Second
	topicTimeout    = 10 * time.Second
)

// App собирает зависимости и управляет жизненным циклом серверов и фоновых воркеров.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	outboxWorker *kafka.OutboxWorker
	closer       *closer.Closer
}

func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	cl := closer.NewCloser(0)
	a := &App{cfg: cfg, logger: logger, closer: cl}

	if err := a.init(ctx); err != nil {
		// то, что успело открыться, закрываем сразу
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if cerr := cl.Close(closeCtx); cerr != nil {
			logger.Warnf("partial init cleanup: %v", cerr)
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	pg, err := initPGDB(ctx, logger, cfg)
	if err != nil {
		return err
	}
	a.closer.AddFunc("postgres", pg.Close)

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		logger.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.BucketName); err != nil {
		logger.Errorf(err, "failed to initialize MinIO bucket")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// брокер может подняться позже, события дождутся его в outbox
		logger.Warnf("kafka topic %s is not ready: %v", cfg.Kafka.Topic, err)
	}

	// REPOSITORIES
	userRepo := pgdb.NewUserRepo(pg.Pool, pgdbConv.UserConv{})
	categoryRepo := pgdb.NewCategoryRepo(pg.Pool, pgdbConv.CategoryConv{})
	productRepo := pgdb.NewProductRepo(pg.Pool, pgdbConv.ProductConv{})
	cartRepo := pgdb.NewCartRepo(pg.Pool, pgdbConv.CartItemConv{})
	orderRepo := pgdb.NewOrderRepo(pg.Pool, pgdbConv.OrderConv{})
	outboxRepo := pgdb.NewOutboxEventRepo(pg.Pool, pgdbConv.OutboxEventConv{})
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.ProductConv{}, redisConv.CategoryConv{}, cfg.Redis, logger)
	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio.BucketName)

	// отменяется при остановке, фоновые задачи MinIO завершаются по нему
	bgCtx, bgCancel := context.WithCancel(context.Background())
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, logger, bgCtx)
	a.closer.Add("minio cleanup", func(ctx context.Context) error {
		bgCancel()
		ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
		defer cancel()
		if err := imagesInfra.WaitForCleanup(ctx); err != nil {
			logger.Warnf("MinIO cleanup did not finish, some orphaned objects may remain: %v", err)
		}
		return nil
	})

	// USECASES
	trManager := tr.NewManager(pg.Pool)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	useCases := v1Http.UseCases{
		Auth:    usecase.NewAuthUC(userRepo, auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, logger),
		Catalog: usecase.NewCatalogUC(categoryRepo, productRepo, cacheRepo, imagesInfra, logger),
		Cart:    usecase.NewCartUC(cartRepo, productRepo, trManager, logger),
		Order:   usecase.NewOrderUC(orderRepo, cartRepo, productRepo, outboxRepo, cacheRepo, trManager, logger),
	}

	a.outboxWorker = kafka.NewOutboxWorker(
		outboxRepo,
		logger,
		producer,
		cfg.Db.DSN(),
		pgdb.OutboxChannel,
		cfg.Kafka.BatchSize,
		cfg.Kafka.PollInterval,
	)
	a.closer.AddFunc("outbox worker", a.outboxWorker.Stop)

	// TRANSPORT
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger, tokens, v1Http.NewMetrics(registry), registry, pg)
	router.Init(useCases, cfg.Minio.MaxImageSize)

	a.httpSrv = v1Http.NewServer(r, cfg.Http)
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, logger)
	a.grpcSrv.RegisterServices()

	a.closer.Add("grpc server", a.grpcSrv.Stop)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// Run запускает серверы и outbox-воркер и блокирует до сигнала остановки или падения сервера.
func (a *App) Run() error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.outboxWorker.Start(runCtx)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("grpc server", err)
		}
	}()
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("http server", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("received %s, stopping gracefully...", sig)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		appErr = errors.Join(appErr, err)
	} else {
		a.logger.Infof("application shutdown complete")
	}

	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	pg, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := pg.RunMigrations(db.Migrations, logger); err != nil {
		pg.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return pg, nil
}
