// Package application 编排股票买入流水线：取行情、归一化、落库、通知
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
)

// BuyStockCommand 买入命令
type BuyStockCommand struct {
	Symbol string
	Shares int32
	UserID int64
}

// StockCommandService 处理买入命令，是流水线的编排核心
// 各步骤严格串行，任一步失败立即终止且不产生部分写入
type StockCommandService struct {
	quotes   domain.QuoteProvider
	repo     domain.OrderRepository
	notifier domain.OrderNotifier
	metrics  *metrics.Metrics
}

// NewStockCommandService 创建买入命令服务
func NewStockCommandService(quotes domain.QuoteProvider, repo domain.OrderRepository, notifier domain.OrderNotifier, m *metrics.Metrics) *StockCommandService {
	return &StockCommandService{
		quotes:   quotes,
		repo:     repo,
		notifier: notifier,
		metrics:  m,
	}
}

// BuyStock 处理一条买入意图
// 行情失败或归一化失败时不落库；落库失败时订单视为未创建；
// 通知为尽力而为，失败不回滚订单
func (s *StockCommandService) BuyStock(ctx context.Context, cmd BuyStockCommand) (*domain.StockOrder, error) {
	if cmd.Symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", domain.ErrInvalidIntent)
	}
	if cmd.Shares <= 0 {
		return nil, fmt.Errorf("%w: shares must be positive, got %d", domain.ErrInvalidIntent, cmd.Shares)
	}

	start := time.Now()
	quote, err := s.quotes.GetQuote(ctx, cmd.Symbol)
	s.metrics.QuoteLookupsTotal.Inc()
	s.metrics.QuoteLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.OrdersFailedTotal.Inc()
		return nil, fmt.Errorf("fetch quote for %s: %w", cmd.Symbol, err)
	}

	price, err := domain.Normalize(quote)
	if err != nil {
		s.metrics.OrdersFailedTotal.Inc()
		return nil, fmt.Errorf("normalize quote for %s: %w", cmd.Symbol, err)
	}

	order := domain.NewBuyOrder(cmd.Symbol, cmd.Shares, cmd.UserID, price)
	if err := s.repo.Insert(ctx, order); err != nil {
		s.metrics.OrdersFailedTotal.Inc()
		return nil, fmt.Errorf("persist order for %s: %w", cmd.Symbol, err)
	}

	s.metrics.OrdersPlacedTotal.Inc()
	logger.Info(ctx, "Buy order placed",
		"order_id", order.ID,
		"symbol", order.Symbol,
		"shares", order.Shares,
		"price", order.Price.String(),
		"user_id", order.UserID,
	)

	if s.notifier != nil {
		s.notifier.NotifyPlaced(ctx, order)
	}

	return order, nil
}

// StockQueryService 处理订单查询
type StockQueryService struct {
	repo domain.OrderRepository
}

// NewStockQueryService 创建查询服务
func NewStockQueryService(repo domain.OrderRepository) *StockQueryService {
	return &StockQueryService{repo: repo}
}

// GetBySymbol 按股票代码查询最先匹配的订单
func (s *StockQueryService) GetBySymbol(ctx context.Context, symbol string) (*domain.StockOrder, error) {
	order, err := s.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, symbol)
	}
	return order, nil
}

// ListByUser 查询某个用户的全部订单
func (s *StockQueryService) ListByUser(ctx context.Context, userID int64) ([]*domain.StockOrder, error) {
	return s.repo.ListByUser(ctx, userID)
}
