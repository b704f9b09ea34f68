// Package nasdaq 提供 Nasdaq 行情接口的 HTTP 客户端实现
package nasdaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
)

const defaultBaseURL = "https://api.nasdaq.com"

// HTTPDoer 描述发起 HTTP 请求的客户端
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client Nasdaq 行情客户端，单次请求语义，不做缓存与重试
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// Option 客户端配置选项
type Option func(*Client)

// WithBaseURL 设置行情接口基础地址
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient 设置 HTTP 客户端
func WithHTTPClient(httpClient HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient 创建行情客户端
func NewClient(timeout time.Duration, options ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// quoteResponse Nasdaq 接口的响应结构
type quoteResponse struct {
	Data *struct {
		Symbol       string `json:"symbol"`
		CompanyName  string `json:"companyName"`
		Exchange     string `json:"exchange"`
		MarketStatus string `json:"marketStatus"`
		AssetClass   string `json:"assetClass"`
		PrimaryData  *struct {
			LastSalePrice    string `json:"lastSalePrice"`
			NetChange        string `json:"netChange"`
			PercentageChange string `json:"percentageChange"`
			DeltaIndicator   string `json:"deltaIndicator"`
			BidPrice         string `json:"bidPrice"`
			AskPrice         string `json:"askPrice"`
			BidSize          string `json:"bidSize"`
			AskSize          string `json:"askSize"`
			Volume           string `json:"volume"`
		} `json:"primaryData"`
	} `json:"data"`
	Status *struct {
		RCode int `json:"rCode"`
	} `json:"status"`
}

// GetQuote 实现 domain.QuoteProvider
// HTTP 状态非 200 或网络错误归为 ErrQuoteUnavailable，
// 响应体内状态码非 200 归为 ErrSymbolNotFound，结构缺失归为 ErrMalformedQuote
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.StockQuote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", domain.ErrInvalidIntent)
	}

	endpoint := fmt.Sprintf("%s/api/quote/%s/info?assetclass=stocks", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected http status %d", domain.ErrQuoteUnavailable, res.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedQuote, err)
	}

	if body.Status == nil {
		return nil, fmt.Errorf("%w: missing status block", domain.ErrMalformedQuote)
	}
	if body.Status.RCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
	}
	if body.Data == nil || body.Data.PrimaryData == nil {
		return nil, fmt.Errorf("%w: missing primary data", domain.ErrMalformedQuote)
	}

	primary := body.Data.PrimaryData
	return &domain.StockQuote{
		Symbol:       body.Data.Symbol,
		CompanyName:  body.Data.CompanyName,
		Exchange:     body.Data.Exchange,
		MarketStatus: body.Data.MarketStatus,
		AssetClass:   body.Data.AssetClass,
		PrimaryData: domain.PriceBlock{
			LastSalePrice:    primary.LastSalePrice,
			NetChange:        primary.NetChange,
			PercentageChange: primary.PercentageChange,
			DeltaIndicator:   primary.DeltaIndicator,
			BidPrice:         primary.BidPrice,
			AskPrice:         primary.AskPrice,
			BidSize:          primary.BidSize,
			AskSize:          primary.AskSize,
			Volume:           primary.Volume,
		},
		StatusCode: body.Status.RCode,
	}, nil
}
