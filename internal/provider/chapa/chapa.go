package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"album-bot/config"
	"album-bot/internal/domain"
	"album-bot/internal/provider"
)

// Provider talks to the Chapa hosted-checkout API.
type Provider struct {
	cfg        config.ChapaConfig
	httpClient *http.Client
}

func NewProvider(cfg config.ChapaConfig) *Provider {
	return &Provider{
		cfg: cfg,
		// Chapa gives no transport guarantees; bound the call so a stuck
		// gateway surfaces as a failed attempt instead of a hung session.
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *Provider) GetName() string {
	return "chapa"
}

// initializeRequest represents the Chapa transaction initialization request.
type initializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
	CustomTitle string `json:"customization[title]"`
	CustomDesc  string `json:"customization[description]"`
}

// initializeResponse represents the Chapa transaction initialization response.
type initializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// InitializePayment performs one POST to /v1/transaction/initialize and
// returns the checkout URL on success.
func (p *Provider) InitializePayment(ctx context.Context, req *domain.PaymentRequest) (*provider.InitResult, error) {
	payload := initializeRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		CustomTitle: req.Title,
		CustomDesc:  req.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/transaction/initialize", p.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transaction initialize request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("transaction initialize returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var response initializeResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Status != "success" {
		return nil, fmt.Errorf("transaction initialize unsuccessful: status=%q message=%q", response.Status, response.Message)
	}
	if response.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("transaction initialize returned no checkout url")
	}

	return &provider.InitResult{
		CheckoutURL: response.Data.CheckoutURL,
		Message:     response.Message,
	}, nil
}

// callbackPayload represents the Chapa webhook body. Only status and tx_ref
// drive any behavior; everything else is kept raw for logging.
type callbackPayload struct {
	Status string `json:"status"`
	TxRef  string `json:"tx_ref"`
}

// ParseCallback parses an inbound Chapa webhook body.
func (p *Provider) ParseCallback(payload []byte) (*provider.CallbackResult, error) {
	var cb callbackPayload
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, fmt.Errorf("failed to parse callback: %w", err)
	}

	raw := make(map[string]interface{})
	// Already known to be valid JSON; keep the full payload for diagnostics.
	_ = json.Unmarshal(payload, &raw)

	return &provider.CallbackResult{
		Status:  cb.Status,
		TxRef:   cb.TxRef,
		Success: strings.EqualFold(cb.Status, "success"),
		RawData: raw,
	}, nil
}
