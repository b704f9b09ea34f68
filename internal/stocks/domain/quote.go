package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable 行情方表示"该字段当前不适用"的哨兵值
const NotAvailable = "N/A"

// StockQuote 行情方返回的原始报价快照
// 价格字段均为行情方原样字符串，可能带 $ 前缀、% 后缀、正负号或 N/A 哨兵
type StockQuote struct {
	// 股票代码
	Symbol string
	// 公司名称
	CompanyName string
	// 交易所
	Exchange string
	// 市场状态
	MarketStatus string
	// 资产类别
	AssetClass string
	// 主报价块
	PrimaryData PriceBlock
	// 行情方响应内嵌的状态码，200 表示有效报价
	StatusCode int
}

// PriceBlock 报价块，字段为行情方原样字符串
type PriceBlock struct {
	LastSalePrice    string
	NetChange        string
	PercentageChange string
	DeltaIndicator   string
	BidPrice         string
	AskPrice         string
	BidSize          string
	AskSize          string
	Volume           string
}

// NormalizedPrice 归一化后的报价
type NormalizedPrice struct {
	// 成交价，无货币符号的非负十进制数
	Price decimal.Decimal
	// 涨跌幅绝对值，去除 %、+、- 之后的十进制数
	PercentageChange decimal.Decimal
}

// QuoteProvider 行情获取接口
type QuoteProvider interface {
	// GetQuote 单次获取报价，不做内部重试
	GetQuote(ctx context.Context, symbol string) (*StockQuote, error)
}

var percentStripper = strings.NewReplacer("%", "", "+", "", "-", "")

// Normalize 将原始报价归一化为可落库的十进制价格
// 优先取买价（N/A 时回退到最近成交价），去除 $ 前缀后解析；
// 涨跌幅去除 %、+、- 后解析，方向被有意丢弃，无法解析时按 0 处理
func Normalize(q *StockQuote) (NormalizedPrice, error) {
	selected := q.PrimaryData.BidPrice
	if selected == "" || selected == NotAvailable {
		selected = q.PrimaryData.LastSalePrice
	}

	raw := strings.TrimPrefix(selected, "$")
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return NormalizedPrice{}, fmt.Errorf("%w: %q", ErrInvalidPrice, selected)
	}
	if price.IsNegative() {
		return NormalizedPrice{}, fmt.Errorf("%w: negative price %q", ErrInvalidPrice, selected)
	}

	change := decimal.Zero
	stripped := percentStripper.Replace(q.PrimaryData.PercentageChange)
	if parsed, err := decimal.NewFromString(stripped); err == nil {
		change = parsed
	}

	return NormalizedPrice{Price: price, PercentageChange: change}, nil
}
