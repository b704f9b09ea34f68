// Package consumer 提供买入指令队列的消费循环
package consumer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wyfcoding/stocktrading/internal/stocks/application"
	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
	"github.com/wyfcoding/stocktrading/pkg/mq"
)

// 消息格式：UTF-8 文本，逗号分隔的 3 个字段：代码,股数,动作
// 分隔符不支持转义，字段内出现逗号属于非法输入
const (
	fieldDelimiter = ","
	fieldCount     = 3
)

// OrderPlacer 下单接口，由 application.StockCommandService 实现
type OrderPlacer interface {
	BuyStock(ctx context.Context, cmd application.BuyStockCommand) (*domain.StockOrder, error)
}

// BuyOrderHandler 队列买入指令处理器
// 无法解码的消息记录日志后丢弃（可选投递死信），处理失败的消息不重试不回队
type BuyOrderHandler struct {
	placer        OrderPlacer
	defaultUserID int64
	deadLetter    *mq.DeadLetterQueue
	metrics       *metrics.Metrics
}

// NewBuyOrderHandler 创建队列处理器，deadLetter 为 nil 时关闭死信投递
func NewBuyOrderHandler(placer OrderPlacer, defaultUserID int64, deadLetter *mq.DeadLetterQueue, m *metrics.Metrics) *BuyOrderHandler {
	return &BuyOrderHandler{
		placer:        placer,
		defaultUserID: defaultUserID,
		deadLetter:    deadLetter,
		metrics:       m,
	}
}

// Run 消费循环：拉取一批消息，逐条顺序处理，处理完成后提交整批位点
// 崩溃发生在处理与提交之间时已处理消息可能被重投（至少一次语义）
func (h *BuyOrderHandler) Run(ctx context.Context, kc *mq.KafkaConsumer, batchSize int, pollTimeout time.Duration) error {
	for {
		batch, err := kc.FetchMessages(ctx, batchSize, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error(ctx, "Failed to fetch messages", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(batch) == 0 {
			continue
		}

		for _, msg := range batch {
			h.handleMessage(ctx, msg)
		}

		if err := kc.CommitMessages(ctx, batch...); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error(ctx, "Failed to commit offsets", "error", err)
		}
	}
}

// handleMessage 处理单条消息，任何失败都不会中断消费循环
func (h *BuyOrderHandler) handleMessage(ctx context.Context, msg *mq.Message) {
	h.metrics.MessagesConsumedTotal.Inc()

	intent, err := decodeBuyOrder(string(msg.Value))
	if err != nil {
		h.drop(ctx, msg, "undecodable payload", err)
		return
	}

	order, err := h.placer.BuyStock(ctx, application.BuyStockCommand{
		Symbol: intent.symbol,
		Shares: intent.shares,
		UserID: h.defaultUserID,
	})
	if err != nil {
		// 处理失败的消息不回队，仅记录（至多一次尝试）
		logger.Error(ctx, "Failed to process buy order message",
			"symbol", intent.symbol,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	logger.Info(ctx, "Buy order message processed",
		"order_id", order.ID,
		"symbol", order.Symbol,
		"offset", msg.Offset,
	)
}

// drop 丢弃无法处理的消息，配置了死信 topic 时同时投递死信
func (h *BuyOrderHandler) drop(ctx context.Context, msg *mq.Message, reason string, err error) {
	h.metrics.MessagesDroppedTotal.Inc()
	logger.Warn(ctx, "Dropping unprocessable message",
		"reason", reason,
		"offset", msg.Offset,
		"payload", string(msg.Value),
		"error", err,
	)

	if h.deadLetter != nil {
		if dlqErr := h.deadLetter.Send(ctx, msg, reason, err); dlqErr != nil {
			logger.Error(ctx, "Failed to send message to dead letter topic", "error", dlqErr)
		}
	}
}

var errMalformedMessage = errors.New("malformed buy order message")

type buyOrderIntent struct {
	symbol string
	shares int32
	action string
}

// decodeBuyOrder 解析逗号分隔的买入指令
func decodeBuyOrder(payload string) (buyOrderIntent, error) {
	parts := strings.Split(payload, fieldDelimiter)
	if len(parts) != fieldCount {
		return buyOrderIntent{}, fmt.Errorf("%w: expected %d fields, got %d", errMalformedMessage, fieldCount, len(parts))
	}

	symbol := strings.TrimSpace(parts[0])
	if symbol == "" {
		return buyOrderIntent{}, fmt.Errorf("%w: empty symbol", errMalformedMessage)
	}

	shares, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return buyOrderIntent{}, fmt.Errorf("%w: invalid share count %q", errMalformedMessage, parts[1])
	}
	if shares <= 0 {
		return buyOrderIntent{}, fmt.Errorf("%w: share count must be positive, got %d", errMalformedMessage, shares)
	}

	return buyOrderIntent{
		symbol: symbol,
		shares: int32(shares),
		action: strings.TrimSpace(parts[2]),
	}, nil
}
