// Package domain 包含股票买入服务的领域模型
package domain

import "errors"

var (
	// ErrInvalidIntent 买入意图非法（空代码或非正股数）
	ErrInvalidIntent = errors.New("invalid buy intent")
	// ErrSymbolNotFound 行情方确认该股票代码不存在
	ErrSymbolNotFound = errors.New("symbol not exists")
	// ErrQuoteUnavailable 行情获取失败（网络错误或非 200 的 HTTP 状态）
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrMalformedQuote 行情响应缺少必要字段或无法解析
	ErrMalformedQuote = errors.New("malformed quote response")
	// ErrInvalidPrice 选中的报价字段无法解析为非负十进制数
	ErrInvalidPrice = errors.New("invalid price in quote")
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
)
