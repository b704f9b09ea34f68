// StocksService 主程序
// 功能：提供同步股票买入接口，取行情、归一化价格、落库并发布下单通知
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/stocktrading/internal/stocks/application"
	"github.com/wyfcoding/stocktrading/internal/stocks/infrastructure/messaging"
	"github.com/wyfcoding/stocktrading/internal/stocks/infrastructure/persistence"
	"github.com/wyfcoding/stocktrading/internal/stocks/infrastructure/quote/nasdaq"
	stockshttp "github.com/wyfcoding/stocktrading/internal/stocks/interfaces/http"
	"github.com/wyfcoding/stocktrading/pkg/config"
	"github.com/wyfcoding/stocktrading/pkg/db"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
	"github.com/wyfcoding/stocktrading/pkg/middleware"
	"github.com/wyfcoding/stocktrading/pkg/mq"
)

var configPath = flag.String("config", "configs/stocks/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting StocksService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化指标
	metricsInstance := metrics.New("stocks")
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if cfg.Environment == "dev" {
		if err := database.AutoMigrate(&persistence.StockOrderModel{}); err != nil {
			logger.Error(ctx, "Failed to migrate database", "error", err)
		}
	}

	// 5. 初始化 Kafka 生产者（下单通知）
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to create Kafka producer", "error", err)
	}
	defer producer.Close()

	// 6. 组装流水线
	quoteClient := nasdaq.NewClient(
		time.Duration(cfg.Quote.Timeout)*time.Second,
		nasdaq.WithBaseURL(cfg.Quote.BaseURL),
	)
	orderRepo := persistence.NewOrderRepository(database.DB)
	notifier := messaging.NewKafkaOrderNotifier(producer, cfg.Kafka.NotificationsTopic, metricsInstance)
	commandService := application.NewStockCommandService(quoteClient, orderRepo, notifier, metricsInstance)
	queryService := application.NewStockQueryService(orderRepo)

	// 7. HTTP 服务器
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())

	handler := stockshttp.NewStockHandler(commandService, queryService)
	handler.RegisterRoutes(router.Group(""))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 8. 启动与优雅关停
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(gctx, "Shutting down StocksService")
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server exited with error", "error", err)
	}
	logger.Info(ctx, "StocksService stopped")
}
