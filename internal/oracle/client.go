// Package oracle is the HTTP client of the pricing oracle, the backend that
// validates coupons, computes authoritative totals and creates payments.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"popup-checkout/internal/domain"
)

const maxBodyBytes = 1 << 20

// Config holds connection settings for the oracle.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client. A nil httpClient gets one with the configured timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  logger.Named("oracle"),
	}
}

// ValidateCoupon checks a promo code for a popup city.
func (c *Client) ValidateCoupon(ctx context.Context, code string, popupCityID int64) (Coupon, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("popup_city_id", strconv.FormatInt(popupCityID, 10))

	var resp couponResponse
	if err := c.do(ctx, "coupon", http.MethodGet, "/coupon-codes?"+q.Encode(), nil, &resp); err != nil {
		return Coupon{}, err
	}
	return Coupon{Code: code, DiscountCents: ToCents(resp.DiscountValue), Message: resp.Message}, nil
}

// Preview asks the oracle for the authoritative price of a selection.
func (c *Client) Preview(ctx context.Context, req PaymentRequest) (domain.Quote, error) {
	var resp wirePreviewResponse
	if err := c.do(ctx, "preview", http.MethodPost, "/payments/preview", toWireRequest(req, false), &resp); err != nil {
		return domain.Quote{}, err
	}
	return resp.quote(), nil
}

// CreatePayment creates a payment for the agreed amount.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (Payment, error) {
	var resp wirePaymentResponse
	if err := c.do(ctx, "payment", http.MethodPost, "/payments", toWireRequest(req, true), &resp); err != nil {
		return Payment{}, err
	}
	return Payment{
		ID:          resp.ID,
		Status:      strings.ToLower(strings.TrimSpace(resp.Status)),
		CheckoutURL: resp.CheckoutURL,
		AmountCents: ToCents(resp.Amount),
	}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("marshal %s request: %w", op, mErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("oracle request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		c.logger.Warn("oracle server error", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	case resp.StatusCode >= 400:
		msg := errorMessage(raw)
		c.logger.Info("oracle rejected request", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return &RejectedError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
