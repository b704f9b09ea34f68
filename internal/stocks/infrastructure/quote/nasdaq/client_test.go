package nasdaq_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
	"github.com/wyfcoding/stocktrading/internal/stocks/infrastructure/quote/nasdaq"
)

const validBody = `{
	"data": {
		"symbol": "AAPL",
		"companyName": "Apple Inc. Common Stock",
		"exchange": "NASDAQ-GS",
		"marketStatus": "Open",
		"assetClass": "STOCKS",
		"primaryData": {
			"lastSalePrice": "$100.00",
			"netChange": "1.48",
			"percentageChange": "+1.5%",
			"deltaIndicator": "up",
			"bidPrice": "$101.50",
			"askPrice": "$101.55",
			"bidSize": "100",
			"askSize": "200",
			"volume": "55,123,456"
		}
	},
	"status": {"rCode": 200}
}`

func newTestClient(handler http.HandlerFunc) (*nasdaq.Client, func()) {
	server := httptest.NewServer(handler)
	client := nasdaq.NewClient(5*time.Second,
		nasdaq.WithBaseURL(server.URL),
		nasdaq.WithHTTPClient(server.Client()),
	)
	return client, server.Close
}

func TestGetQuote_Success(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validBody))
	})
	defer cleanup()

	quote, err := client.GetQuote(t.Context(), "AAPL")
	require.NoError(t, err)

	require.Equal(t, "/api/quote/AAPL/info", gotPath)
	require.Equal(t, "assetclass=stocks", gotQuery)

	require.Equal(t, "AAPL", quote.Symbol)
	require.Equal(t, "Apple Inc. Common Stock", quote.CompanyName)
	require.Equal(t, "$101.50", quote.PrimaryData.BidPrice)
	require.Equal(t, "$100.00", quote.PrimaryData.LastSalePrice)
	require.Equal(t, "+1.5%", quote.PrimaryData.PercentageChange)
	require.Equal(t, 200, quote.StatusCode)
}

func TestGetQuote_SymbolNotFound(t *testing.T) {
	t.Parallel()

	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": null, "status": {"rCode": 400}}`))
	})
	defer cleanup()

	_, err := client.GetQuote(t.Context(), "NOSUCH")
	require.ErrorIs(t, err, domain.ErrSymbolNotFound)
}

func TestGetQuote_HTTPErrorStatus(t *testing.T) {
	t.Parallel()

	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer cleanup()

	_, err := client.GetQuote(t.Context(), "AAPL")
	require.ErrorIs(t, err, domain.ErrQuoteUnavailable)
}

func TestGetQuote_MalformedBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"data": `},
		{"missing status", `{"data": {"symbol": "AAPL"}}`},
		{"missing primary data", `{"data": {"symbol": "AAPL"}, "status": {"rCode": 200}}`},
		{"missing data", `{"status": {"rCode": 200}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			defer cleanup()

			_, err := client.GetQuote(t.Context(), "AAPL")
			require.ErrorIs(t, err, domain.ErrMalformedQuote)
		})
	}
}

func TestGetQuote_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := nasdaq.NewClient(time.Second, nasdaq.WithBaseURL(server.URL))
	_, err := client.GetQuote(t.Context(), "AAPL")
	require.ErrorIs(t, err, domain.ErrQuoteUnavailable)
}

func TestGetQuote_EmptySymbol(t *testing.T) {
	t.Parallel()

	client := nasdaq.NewClient(time.Second, nasdaq.WithHTTPClient(&failingDoer{}))
	_, err := client.GetQuote(t.Context(), "")
	require.ErrorIs(t, err, domain.ErrInvalidIntent)
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("should not be called")
}
