package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/stocks/application"
	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
	stockhttp "github.com/wyfcoding/stocktrading/internal/stocks/interfaces/http"
	"github.com/wyfcoding/stocktrading/pkg/metrics"
)

type stubQuoteProvider struct {
	quote *domain.StockQuote
	err   error
}

func (s *stubQuoteProvider) GetQuote(ctx context.Context, symbol string) (*domain.StockQuote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

type memoryOrderRepository struct {
	orders []*domain.StockOrder
}

func (m *memoryOrderRepository) Insert(ctx context.Context, order *domain.StockOrder) error {
	order.ID = uint(len(m.orders) + 1)
	m.orders = append(m.orders, order)
	return nil
}

func (m *memoryOrderRepository) FindBySymbol(ctx context.Context, symbol string) (*domain.StockOrder, error) {
	for _, o := range m.orders {
		if o.Symbol == symbol {
			return o, nil
		}
	}
	return nil, nil
}

func (m *memoryOrderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.StockOrder, error) {
	var out []*domain.StockOrder
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func newTestRouter(quotes domain.QuoteProvider, repo domain.OrderRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cmd := application.NewStockCommandService(quotes, repo, nil, metrics.New("test"))
	query := application.NewStockQueryService(repo)

	router := gin.New()
	stockhttp.NewStockHandler(cmd, query).RegisterRoutes(&router.RouterGroup)
	return router
}

func goodQuote() *domain.StockQuote {
	return &domain.StockQuote{
		Symbol: "AAPL",
		PrimaryData: domain.PriceBlock{
			BidPrice:         "$101.50",
			LastSalePrice:    "$100.00",
			PercentageChange: "+1.5%",
		},
		StatusCode: 200,
	}
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuyStock_Success(t *testing.T) {
	repo := &memoryOrderRepository{}
	router := newTestRouter(&stubQuoteProvider{quote: goodQuote()}, repo)

	rec := doRequest(router, http.MethodPost, "/api/v1/stocks/buy", `{"symbol":"AAPL","shares":10,"user_id":1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"symbol":"AAPL"`)
	require.Contains(t, rec.Body.String(), `"price":"101.5"`)
	require.Len(t, repo.orders, 1)
}

func TestBuyStock_BadRequestBody(t *testing.T) {
	router := newTestRouter(&stubQuoteProvider{quote: goodQuote()}, &memoryOrderRepository{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"missing symbol", `{"shares":10,"user_id":1}`},
		{"zero shares", `{"symbol":"AAPL","shares":0,"user_id":1}`},
		{"negative shares", `{"symbol":"AAPL","shares":-1,"user_id":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPost, "/api/v1/stocks/buy", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestBuyStock_SymbolNotFound(t *testing.T) {
	provider := &stubQuoteProvider{err: fmt.Errorf("%w: NOSUCH", domain.ErrSymbolNotFound)}
	router := newTestRouter(provider, &memoryOrderRepository{})

	rec := doRequest(router, http.MethodPost, "/api/v1/stocks/buy", `{"symbol":"NOSUCH","shares":1,"user_id":1}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Symbol not exists")
}

func TestBuyStock_QuoteProviderDown(t *testing.T) {
	provider := &stubQuoteProvider{err: fmt.Errorf("%w: timeout", domain.ErrQuoteUnavailable)}
	router := newTestRouter(provider, &memoryOrderRepository{})

	rec := doRequest(router, http.MethodPost, "/api/v1/stocks/buy", `{"symbol":"AAPL","shares":1,"user_id":1}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestBuyStock_InvalidMarketData(t *testing.T) {
	quote := goodQuote()
	quote.PrimaryData.BidPrice = "N/A"
	quote.PrimaryData.LastSalePrice = "N/A"
	router := newTestRouter(&stubQuoteProvider{quote: quote}, &memoryOrderRepository{})

	rec := doRequest(router, http.MethodPost, "/api/v1/stocks/buy", `{"symbol":"AAPL","shares":1,"user_id":1}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetStock(t *testing.T) {
	repo := &memoryOrderRepository{}
	router := newTestRouter(&stubQuoteProvider{quote: goodQuote()}, repo)

	rec := doRequest(router, http.MethodGet, "/api/v1/stocks/AAPL", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	doRequest(router, http.MethodPost, "/api/v1/stocks/buy", `{"symbol":"AAPL","shares":10,"user_id":1}`)

	rec = doRequest(router, http.MethodGet, "/api/v1/stocks/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"symbol":"AAPL"`)
}

func TestListByUser(t *testing.T) {
	repo := &memoryOrderRepository{}
	router := newTestRouter(&stubQuoteProvider{quote: goodQuote()}, repo)

	doRequest(router, http.MethodPost, "/api/v1/stocks/buy", `{"symbol":"AAPL","shares":10,"user_id":7}`)
	doRequest(router, http.MethodPost, "/api/v1/stocks/buy", `{"symbol":"MSFT","shares":5,"user_id":7}`)

	rec := doRequest(router, http.MethodGet, "/api/v1/users/7/stocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "AAPL")
	require.Contains(t, rec.Body.String(), "MSFT")

	rec = doRequest(router, http.MethodGet, "/api/v1/users/notanumber/stocks", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
