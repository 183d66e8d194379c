package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aq2208/gstore-api/internal/usecase"
)

// RazorpayClient creates provider-side orders over the provider's REST API.
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret string, timeout time.Duration) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: timeout},
	}
}

type createOrderReq struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type providerError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderReq{Amount: amountMinor, Currency: currency, Receipt: receipt, PaymentCapture: 1})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe providerError
		if json.Unmarshal(raw, &pe) == nil && pe.Error.Description != "" {
			return "", fmt.Errorf("provider status %d: %s: %s", resp.StatusCode, pe.Error.Code, pe.Error.Description)
		}
		return "", fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var out createOrderResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode provider order: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("provider returned no order id")
	}
	return out.ID, nil
}

var _ usecase.PaymentGateway = (*RazorpayClient)(nil)
