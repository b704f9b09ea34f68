// Consumer 主程序
// 功能：消费买入指令队列，解码逗号分隔的消息并驱动买入流水线
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wyfcoding/stocktrading/internal/stocks/application"
	"github.com/wyfcoding/stocktrading/internal/stocks/infrastructure/messaging"
	"github.com/wyfcoding/stocktrading/internal/stocks/infrastructure/persistence"
	"github.com/wyfcoding/stocktrading/internal/stocks/infrastructure/quote/nasdaq"
	"github.com/wyfcoding/stocktrading/internal/stocks/interfaces/consumer"
	"github.com/wyfcoding/stocktrading/pkg/config"
	"github.com/wyfcoding/stocktrading/pkg/db"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
	"github.com/wyfcoding/stocktrading/pkg/mq"
)

var configPath = flag.String("config", "configs/consumer/config.toml", "config file path")

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
	logger.Info(ctx, "Starting buy order consumer",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"group_id", cfg.Kafka.GroupID,
		"topic", cfg.Kafka.OrdersTopic,
	)

	// 3. 初始化指标
	metricsInstance := metrics.New("consumer")
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

	// 5. 初始化 Kafka 生产者（通知与死信）与消费者
	kafkaCfg := mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxRetries:     cfg.Kafka.MaxRetries,
		RetryBackoff:   cfg.Kafka.RetryBackoff,
	}

	producer, err := mq.NewProducer(kafkaCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to create Kafka producer", "error", err)
	}
	defer producer.Close()

	kafkaConsumer, err := mq.NewConsumer(kafkaCfg, cfg.Kafka.OrdersTopic)
	if err != nil {
		logger.Fatal(ctx, "Failed to create Kafka consumer", "error", err)
	}
	defer kafkaConsumer.Close()

	var deadLetter *mq.DeadLetterQueue
	if cfg.Kafka.DeadLetterTopic != "" {
		deadLetter = mq.NewDeadLetterQueue(producer, cfg.Kafka.DeadLetterTopic)
		logger.Info(ctx, "Dead letter topic enabled", "topic", cfg.Kafka.DeadLetterTopic)
	}

	// 6. 组装流水线
	quoteClient := nasdaq.NewClient(
		time.Duration(cfg.Quote.Timeout)*time.Second,
		nasdaq.WithBaseURL(cfg.Quote.BaseURL),
	)
	orderRepo := persistence.NewOrderRepository(database.DB)
	notifier := messaging.NewKafkaOrderNotifier(producer, cfg.Kafka.NotificationsTopic, metricsInstance)
	commandService := application.NewStockCommandService(quoteClient, orderRepo, notifier, metricsInstance)

	handler := consumer.NewBuyOrderHandler(commandService, cfg.Consumer.DefaultUserID, deadLetter, metricsInstance)

	// 7. 消费循环，收到信号后退出
	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	batchSize := cfg.Kafka.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	pollTimeout := time.Duration(cfg.Kafka.PollTimeout) * time.Second
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}

	if err := handler.Run(runCtx, kafkaConsumer, batchSize, pollTimeout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "Consumer loop exited with error", "error", err)
	}

	logger.Info(ctx, "Buy order consumer stopped")
}
