package chain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agent-arena/internal/store"
)

// TxBuilderClient turns a raw quote into an unsigned transaction.
type TxBuilderClient struct {
	http *httpClient
}

func NewTxBuilderClient(baseURL string, timeout time.Duration) *TxBuilderClient {
	return &TxBuilderClient{http: newHTTPClient(baseURL, timeout, nil)}
}

func (c *TxBuilderClient) Build(ctx context.Context, rawQuote json.RawMessage) (store.UnsignedTx, error) {
	var tx store.UnsignedTx
	if err := c.http.postJSON(ctx, "/build", map[string]any{"quote": rawQuote}, &tx); err != nil {
		return store.UnsignedTx{}, err
	}
	if NormalizeAddress(tx.To) == "" {
		return store.UnsignedTx{}, errors.New("builder returned invalid destination address")
	}
	tx.To = NormalizeAddress(tx.To)
	return tx, nil
}
