package marketdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Fundamentals holds one ticker's current financials as reported by the
// market data provider
type Fundamentals struct {
	Ticker          string
	EnterpriseValue float64
	Revenue         float64
	EBITDA          float64
	MarketCap       float64
	RevenueGrowth   float64
}

// Client fetches comparable-company fundamentals over HTTP
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new market data client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "marketdata").Logger(),
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// GetFundamentals fetches current fundamentals for a single ticker.
// Returns an error when the ticker is unknown or not currently quoted.
func (c *Client) GetFundamentals(ticker string) (*Fundamentals, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(ticker))

	resp, err := c.client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s returned status %d", ticker, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response: %w", err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if len(quote.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	info := quote.QuoteResponse.Result[0]
	if _, ok := info["regularMarketPrice"]; !ok {
		return nil, fmt.Errorf("ticker %s is not currently quoted", ticker)
	}

	return &Fundamentals{
		Ticker:          ticker,
		EnterpriseValue: getFloat64(info, "enterpriseValue"),
		Revenue:         getFloat64(info, "totalRevenue"),
		EBITDA:          getFloat64(info, "ebitda"),
		MarketCap:       getFloat64(info, "marketCap"),
		RevenueGrowth:   getFloat64(info, "revenueGrowth"),
	}, nil
}

func getFloat64(info map[string]interface{}, key string) float64 {
	if value, ok := info[key]; ok {
		if f, ok := value.(float64); ok {
			return f
		}
	}
	return 0
}
