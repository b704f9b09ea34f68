package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ActionType 订单动作
type ActionType string

const (
	// ActionBuy 买入，当前唯一支持的动作
	ActionBuy ActionType = "buy"
)

// StockOrder 股票买入订单实体
// 一次成功处理的买入意图对应一条记录，落库后不可变更
type StockOrder struct {
	gorm.Model
	// 股票代码
	Symbol string
	// 买入股数
	Shares int32
	// 成交价（归一化后的十进制价格）
	Price decimal.Decimal
	// 涨跌幅绝对值（去除符号后的百分比数值）
	PercentageChange decimal.Decimal
	// 订单动作
	Action ActionType
	// 所属用户 ID，用户生命周期由外部用户服务管理
	UserID int64
}

// NewBuyOrder 根据买入意图和归一化报价构造买入订单，ID 由存储层分配
func NewBuyOrder(symbol string, shares int32, userID int64, price NormalizedPrice) *StockOrder {
	return &StockOrder{
		Symbol:           symbol,
		Shares:           shares,
		Price:            price.Price,
		PercentageChange: price.PercentageChange,
		Action:           ActionBuy,
		UserID:           userID,
	}
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Insert 在单个事务内写入一条订单，存储层回填自增 ID
	Insert(ctx context.Context, order *StockOrder) error
	// FindBySymbol 按股票代码返回最先匹配的一条订单，不存在时返回 (nil, nil)
	FindBySymbol(ctx context.Context, symbol string) (*StockOrder, error)
	// ListByUser 返回某个用户的全部订单
	ListByUser(ctx context.Context, userID int64) ([]*StockOrder, error)
}

// OrderNotifier 下单成功通知接口，发布失败不影响订单结果
type OrderNotifier interface {
	NotifyPlaced(ctx context.Context, order *StockOrder)
}
