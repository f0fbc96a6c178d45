package chain

import (
	"context"
	"errors"
	"time"

	"agent-arena/internal/store"
)

type Confirmation struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
	Status      string `json:"status"`
}

// BroadcasterClient submits unsigned transactions to a signing relay and
// waits for their receipts.
type BroadcasterClient struct {
	send    *httpClient
	confirm *httpClient
}

func NewBroadcasterClient(baseURL string, timeout, confirmTimeout time.Duration) *BroadcasterClient {
	return &BroadcasterClient{
		send:    newHTTPClient(baseURL, timeout, nil),
		confirm: newHTTPClient(baseURL, confirmTimeout, nil),
	}
}

func (c *BroadcasterClient) Send(ctx context.Context, tx store.UnsignedTx) (string, error) {
	var resp struct {
		TxHash string `json:"tx_hash"`
	}
	if err := c.send.postJSON(ctx, "/send", tx, &resp); err != nil {
		return "", err
	}
	if !IsTxHash(resp.TxHash) {
		return "", errors.New("relay returned malformed tx hash")
	}
	return NormalizeTxHash(resp.TxHash), nil
}

func (c *BroadcasterClient) AwaitConfirmation(ctx context.Context, txHash string) (Confirmation, error) {
	var conf Confirmation
	if err := c.confirm.postJSON(ctx, "/confirm", map[string]string{"tx_hash": txHash}, &conf); err != nil {
		return Confirmation{}, err
	}
	if conf.TxHash == "" {
		conf.TxHash = txHash
	}
	conf.TxHash = NormalizeTxHash(conf.TxHash)
	conf.Status = NormalizeEVMStatus(conf.Status)
	return conf, nil
}

// NormalizeEVMStatus folds the receipt status encodings seen in the wild
// ("0x1", "1", "success", ...) into "success" or "reverted".
func NormalizeEVMStatus(s string) string {
	switch s {
	case "success", "0x1", "1", "SUCCESS", "Success":
		return "success"
	case "":
		return ""
	}
	return "reverted"
}
