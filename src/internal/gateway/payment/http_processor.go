package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"repair-service/src/pkg/log"

	"github.com/spf13/viper"
)

// HTTPProcessor talks to the external payment processor over its REST API.
type HTTPProcessor struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Timeout time.Duration
	Log     log.Log
}

func NewHTTPProcessor(v *viper.Viper, logger log.Log) *HTTPProcessor {
	timeout := v.GetDuration("payment.timeout")
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProcessor{
		BaseURL: v.GetString("payment.base_url"),
		APIKey:  v.GetString("payment.api_key"),
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
		Log:     logger,
	}
}

type createChargeRequest struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	IdempotencyKey string  `json:"idempotencyKey"`
}

type chargeResponse struct {
	ChargeID string `json:"chargeId"`
	Status   string `json:"status"`
	Captured bool   `json:"captured"`
	Message  string `json:"message"`
}

func (p *HTTPProcessor) CreateCharge(ctx context.Context, amount float64, currency, idempotencyKey string) (*Charge, error) {
	body, err := json.Marshal(createChargeRequest{
		Amount:         amount,
		Currency:       currency,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, p.BaseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Log.Error("payment-gateway", fmt.Sprintf("create charge failed: %v", err), "CreateCharge", idempotencyKey)
		return nil, err
	}
	defer resp.Body.Close()

	return decodeCharge(resp, amount, currency)
}

func (p *HTTPProcessor) GetCharge(ctx context.Context, idempotencyKey string) (*Charge, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1/charges/by-key/%s", p.BaseURL, idempotencyKey)
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Log.Error("payment-gateway", fmt.Sprintf("get charge failed: %v", err), "GetCharge", idempotencyKey)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	return decodeCharge(resp, 0, "")
}

func decodeCharge(resp *http.Response, amount float64, currency string) (*Charge, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var decoded chargeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("payment processor returned invalid response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("payment processor rejected charge (status %d): %s", resp.StatusCode, decoded.Message)
	}

	return &Charge{
		ChargeID: decoded.ChargeID,
		Status:   decoded.Status,
		Amount:   amount,
		Currency: currency,
		Captured: decoded.Captured,
	}, nil
}
