// Package http 提供同步买入与订单查询的 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/stocktrading/internal/stocks/application"
	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
	"github.com/wyfcoding/stocktrading/pkg/logger"
)

// StockHandler HTTP 处理器
type StockHandler struct {
	cmd   *application.StockCommandService
	query *application.StockQueryService
}

// NewStockHandler 创建 HTTP 处理器实例
func NewStockHandler(cmd *application.StockCommandService, query *application.StockQueryService) *StockHandler {
	return &StockHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由
func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1")
	{
		api.POST("/stocks/buy", h.BuyStock)          // 同步买入
		api.GET("/stocks/:symbol", h.GetStock)       // 按代码查询订单
		api.GET("/users/:id/stocks", h.ListByUser)   // 查询用户订单
	}
}

// BuyStockRequest 买入请求
type BuyStockRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Shares int32  `json:"shares" binding:"required,gt=0"`
	UserID int64  `json:"user_id" binding:"required"`
}

// BuyStock 同步买入
// 一次请求对应一次处理，结果直接返回给调用方
func (h *StockHandler) BuyStock(c *gin.Context) {
	var req BuyStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.cmd.BuyStock(c.Request.Context(), application.BuyStockCommand{
		Symbol: req.Symbol,
		Shares: req.Shares,
		UserID: req.UserID,
	})
	if err != nil {
		h.writeBuyError(c, req.Symbol, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(order)})
}

// writeBuyError 将流水线错误映射为调用方可见的状态码
func (h *StockHandler) writeBuyError(c *gin.Context, symbol string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, domain.ErrInvalidIntent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSymbolNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Symbol not exists"})
	case errors.Is(err, domain.ErrQuoteUnavailable), errors.Is(err, domain.ErrMalformedQuote):
		logger.Error(ctx, "Quote lookup failed", "symbol", symbol, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "quote provider unavailable"})
	case errors.Is(err, domain.ErrInvalidPrice):
		logger.Error(ctx, "Quote contained invalid market data", "symbol", symbol, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid market data"})
	default:
		logger.Error(ctx, "Failed to place buy order", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place order"})
	}
}

// GetStock 按股票代码查询订单
func (h *StockHandler) GetStock(c *gin.Context) {
	symbol := c.Param("symbol")

	order, err := h.query.GetBySymbol(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		logger.Error(c.Request.Context(), "Failed to get order", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(order)})
}

// ListByUser 查询用户订单
func (h *StockHandler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	orders, err := h.query.ListByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list orders", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	out := make([]gin.H, len(orders))
	for i, order := range orders {
		out[i] = toOrderResponse(order)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func toOrderResponse(order *domain.StockOrder) gin.H {
	return gin.H{
		"id":                order.ID,
		"symbol":            order.Symbol,
		"shares":            order.Shares,
		"price":             order.Price.String(),
		"percentage_change": order.PercentageChange.String(),
		"action_type":       string(order.Action),
		"user_id":           order.UserID,
	}
}
