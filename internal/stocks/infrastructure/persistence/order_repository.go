// Package persistence 提供订单仓储接口的 GORM 实现
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
)

// StockOrderModel 订单数据库模型，直接映射 stock_orders 表
type StockOrderModel struct {
	gorm.Model
	Symbol           string `gorm:"column:symbol;type:varchar(20);index;not null"`
	Shares           int32  `gorm:"column:shares;not null"`
	Price            string `gorm:"column:price;type:decimal(20,8);not null"`
	PercentageChange string `gorm:"column:percentage_change;type:decimal(20,8);not null;default:'0'"`
	Action           string `gorm:"column:action_type;type:varchar(10);not null"`
	UserID           int64  `gorm:"column:user_id;index;not null"`
}

// TableName 指定表名
func (StockOrderModel) TableName() string {
	return "stock_orders"
}

type orderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: db}
}

// Insert 实现 domain.OrderRepository.Insert
// 单条写入在独立事务内完成，自增 ID 由数据库分配并回填到实体
func (r *orderRepositoryImpl) Insert(ctx context.Context, order *domain.StockOrder) error {
	model := toModel(order)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		logger.Error(ctx, "order_repository.insert failed", "symbol", order.Symbol, "error", err)
		return fmt.Errorf("failed to insert order: %w", err)
	}

	order.Model = model.Model
	return nil
}

// FindBySymbol 实现 domain.OrderRepository.FindBySymbol
// 同一代码存在多条订单时返回哪一条由查询顺序决定，调用方不可依赖
func (r *orderRepositoryImpl) FindBySymbol(ctx context.Context, symbol string) (*domain.StockOrder, error) {
	var model StockOrderModel
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "order_repository.find_by_symbol failed", "symbol", symbol, "error", err)
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return toDomain(&model), nil
}

// ListByUser 实现 domain.OrderRepository.ListByUser
func (r *orderRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]*domain.StockOrder, error) {
	var models []StockOrderModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		logger.Error(ctx, "order_repository.list_by_user failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*domain.StockOrder, len(models))
	for i, m := range models {
		orders[i] = toDomain(&m)
	}
	return orders, nil
}

func toModel(order *domain.StockOrder) *StockOrderModel {
	return &StockOrderModel{
		Model:            order.Model,
		Symbol:           order.Symbol,
		Shares:           order.Shares,
		Price:            order.Price.String(),
		PercentageChange: order.PercentageChange.String(),
		Action:           string(order.Action),
		UserID:           order.UserID,
	}
}

func toDomain(m *StockOrderModel) *domain.StockOrder {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		price = decimal.Zero
	}
	change, err := decimal.NewFromString(m.PercentageChange)
	if err != nil {
		change = decimal.Zero
	}

	return &domain.StockOrder{
		Model:            m.Model,
		Symbol:           m.Symbol,
		Shares:           m.Shares,
		Price:            price,
		PercentageChange: change,
		Action:           domain.ActionType(m.Action),
		UserID:           m.UserID,
	}
}
