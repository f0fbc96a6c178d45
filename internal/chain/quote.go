package chain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agent-arena/internal/store"
)

type QuoteRequest struct {
	SellToken   string `json:"sell_token"`
	BuyToken    string `json:"buy_token"`
	SellAmount  string `json:"sell_amount"`
	ChainID     int64  `json:"chain_id"`
	SlippageBps int    `json:"slippage_bps"`
}

type quoteResponse struct {
	BuyAmount string `json:"buy_amount"`
	Route     string `json:"route"`
	Hops      int    `json:"hops"`
}

// QuoteClient talks to the price/route quote provider.
type QuoteClient struct {
	http *httpClient
}

func NewQuoteClient(baseURL, apiKey string, timeout time.Duration) *QuoteClient {
	headers := map[string]string{}
	if apiKey != "" {
		headers["X-API-Key"] = apiKey
	}
	return &QuoteClient{http: newHTTPClient(baseURL, timeout, headers)}
}

// Quote returns the provider's answer; the full response body is kept as
// Quote.Raw and forwarded untouched to the transaction builder.
func (c *QuoteClient) Quote(ctx context.Context, req QuoteRequest) (store.Quote, error) {
	var raw json.RawMessage
	if err := c.http.postJSON(ctx, "/quote", req, &raw); err != nil {
		return store.Quote{}, err
	}
	var parsed quoteResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return store.Quote{}, err
	}
	if parsed.BuyAmount == "" {
		return store.Quote{}, errors.New("quote response missing buy_amount")
	}
	return store.Quote{
		BuyAmount: parsed.BuyAmount,
		Route:     parsed.Route,
		Hops:      parsed.Hops,
		Raw:       raw,
	}, nil
}
