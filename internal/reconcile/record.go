package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agent-arena/internal/chain"
	"agent-arena/internal/store"
)

var (
	ErrEmptyPayload = errors.New("empty_payload")
	ErrMissingHash  = errors.New("missing_tx_hash")
)

// Quantity accepts a JSON number, a decimal string or a 0x hex string.
type Quantity uint64

func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*q = 0
		return nil
	}
	if b[0] != '"' {
		v, err := strconv.ParseUint(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("quantity %s: %w", b, err)
		}
		*q = Quantity(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*q = 0
		return nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return fmt.Errorf("quantity %q: %w", s, err)
		}
		*q = Quantity(v)
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("quantity %q: %w", s, err)
	}
	*q = Quantity(v)
	return nil
}

// Record is one confirmation as delivered by the stream webhook.
type Record struct {
	TxHash      string   `json:"tx_hash"`
	LogIndex    Quantity `json:"log_index"`
	BlockNumber Quantity `json:"block_number"`
	GasUsed     Quantity `json:"gas_used"`
	Status      string   `json:"status"`
	Contract    string   `json:"contract"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Topic       string   `json:"topic"`
	Timestamp   Quantity `json:"timestamp"`
	Source      string   `json:"source"`
}

type webhookBody struct {
	Events []Record `json:"events"`
}

// DecodeRecords accepts either {"events":[...]} or a bare array of records.
func DecodeRecords(body []byte) ([]Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyPayload
	}
	if body[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(body, &recs); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return recs, nil
	}
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return wb.Events, nil
}

// Normalize canonicalises hashes and addresses and derives the composite id.
func Normalize(r Record, now time.Time) (store.StreamEvent, error) {
	hash := chain.NormalizeTxHash(r.TxHash)
	if hash == "" {
		return store.StreamEvent{}, ErrMissingHash
	}
	ts := now.UTC()
	if r.Timestamp > 0 {
		ts = time.Unix(int64(r.Timestamp), 0).UTC()
	}
	source := strings.ToLower(strings.TrimSpace(r.Source))
	if source != store.SourceSynthetic {
		source = store.SourceLive
	}
	return store.StreamEvent{
		ID:          fmt.Sprintf("%s:%d", hash, uint64(r.LogIndex)),
		TxHash:      hash,
		LogIndex:    uint64(r.LogIndex),
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
		Status:      chain.NormalizeEVMStatus(strings.TrimSpace(r.Status)),
		Contract:    chain.NormalizeAddress(r.Contract),
		From:        chain.NormalizeAddress(r.From),
		To:          chain.NormalizeAddress(r.To),
		Topic:       strings.ToLower(strings.TrimSpace(r.Topic)),
		Timestamp:   ts,
		Source:      source,
	}, nil
}
