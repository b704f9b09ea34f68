// Package messaging 提供下单成功通知的 Kafka 实现
package messaging

import (
	"context"

	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
	"github.com/wyfcoding/stocktrading/pkg/mq"
)

// orderPlacedEvent 发布到下游 topic 的订单确认消息
type orderPlacedEvent struct {
	ID               uint   `json:"id"`
	Symbol           string `json:"symbol"`
	Shares           int32  `json:"shares"`
	Price            string `json:"price"`
	PercentageChange string `json:"percentage_change"`
	Action           string `json:"action_type"`
	UserID           int64  `json:"user_id"`
}

// KafkaOrderNotifier 实现 domain.OrderNotifier，发布失败只记录日志和指标
type KafkaOrderNotifier struct {
	producer *mq.KafkaProducer
	topic    string
	metrics  *metrics.Metrics
}

// NewKafkaOrderNotifier 创建订单通知器
func NewKafkaOrderNotifier(producer *mq.KafkaProducer, topic string, m *metrics.Metrics) *KafkaOrderNotifier {
	return &KafkaOrderNotifier{producer: producer, topic: topic, metrics: m}
}

// NotifyPlaced 实现 domain.OrderNotifier.NotifyPlaced
func (n *KafkaOrderNotifier) NotifyPlaced(ctx context.Context, order *domain.StockOrder) {
	event := orderPlacedEvent{
		ID:               order.ID,
		Symbol:           order.Symbol,
		Shares:           order.Shares,
		Price:            order.Price.String(),
		PercentageChange: order.PercentageChange.String(),
		Action:           string(order.Action),
		UserID:           order.UserID,
	}

	if err := n.producer.SendMessage(ctx, n.topic, order.Symbol, event); err != nil {
		n.metrics.NotifyFailuresTotal.Inc()
		logger.Warn(ctx, "Failed to publish order notification",
			"order_id", order.ID,
			"symbol", order.Symbol,
			"error", err,
		)
		return
	}

	logger.Debug(ctx, "Order notification published", "order_id", order.ID, "topic", n.topic)
}
