package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api-m.sandbox.paypal.com"

	// OrderStatusCompleted is PayPal's terminal status for a captured order.
	OrderStatusCompleted = "COMPLETED"

	tokenExpirySlack = 60 * time.Second
)

// AuthError means we could not obtain credentials from PayPal at all (missing
// config, bad client id/secret, token endpoint unreachable). It is distinct
// from APIError so callers can tell a broken deployment from a declined order.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paypal auth: %s: %v", e.Reason, e.Err)
	}
	return "paypal auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from a PayPal business endpoint.
type APIError struct {
	Status  int
	Name    string
	Message string
	Issue   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal API %d %s: %s", e.Status, e.Name, e.Message)
}

// Config for the PayPal REST client, normally read from the environment.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// ConfigFromEnv reads PAYPAL_* variables. Missing credentials surface as an
// AuthError at call time, not at startup, so a deployment without PayPal
// verification enabled still boots.
func ConfigFromEnv() Config {
	base := strings.TrimRight(os.Getenv("PAYPAL_BASE_URL"), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return Config{
		BaseURL:      base,
		ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		Timeout:      20 * time.Second,
	}
}

// Client talks to the PayPal Orders v2 API using client-credentials OAuth.
// The access token is cached until shortly before expiry.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// CaptureResult is the normalized view of a captured order.
type CaptureResult struct {
	OrderID    string
	CaptureID  string
	Status     string
	Amount     decimal.Decimal
	Currency   string
	PayerEmail string
	PayerName  string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Payer struct {
		EmailAddress string `json:"email_address"`
		Name         struct {
			GivenName string `json:"given_name"`
			Surname   string `json:"surname"`
		} `json:"name"`
	} `json:"payer"`
	Links []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

type apiErrorBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", &AuthError{Reason: "PAYPAL_CLIENT_ID / PAYPAL_CLIENT_SECRET not configured"}
	}

	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/oauth2/token", body)
	if err != nil {
		return "", &AuthError{Reason: "build token request", Err: err}
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &AuthError{Reason: "token request", Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Reason: fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, string(respBody))}
	}
	var tok tokenResponse
	if err := json.Unmarshal(respBody, &tok); err != nil {
		return "", &AuthError{Reason: "parse token response", Err: err}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Reason: "empty access token"}
	}

	c.token = tok.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpirySlack)
	return c.token, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}) (int, []byte, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("paypal request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, nil
}

func apiErrorFrom(status int, body []byte) *APIError {
	var parsed apiErrorBody
	_ = json.Unmarshal(body, &parsed)
	apiErr := &APIError{Status: status, Name: parsed.Name, Message: parsed.Message}
	if len(parsed.Details) > 0 {
		apiErr.Issue = parsed.Details[0].Issue
	}
	if apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	return apiErr
}

// CreateOrder registers a new order with PayPal before the client approves the
// payment. This runs during checkout, not in the commit path.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, description, referenceID string) (orderID, approveURL string, err error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": referenceID,
			"description":  description,
			"amount": map[string]string{
				"currency_code": currency,
				"value":         amount.StringFixed(2),
			},
		}},
	}
	status, body, err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", payload)
	if err != nil {
		return "", "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", "", apiErrorFrom(status, body)
	}
	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return "", "", fmt.Errorf("parse create-order response: %w", err)
	}
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
		}
	}
	return order.ID, approveURL, nil
}

// CaptureOrder finalizes an approved order. Capturing an order that was
// already captured is success, not an error: PayPal answers 422 with issue
// ORDER_ALREADY_CAPTURED and we read the original capture back instead.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", map[string]string{})
	if err != nil {
		return nil, err
	}
	if status == http.StatusCreated || status == http.StatusOK {
		return normalizeOrder(body, orderID)
	}

	apiErr := apiErrorFrom(status, body)
	if status == http.StatusUnprocessableEntity && apiErr.Issue == "ORDER_ALREADY_CAPTURED" {
		if c.logger != nil {
			c.logger.Info("order already captured, reading it back", zap.String("order_id", orderID))
		}
		return c.GetOrder(ctx, orderID)
	}
	return nil, apiErr
}

// GetOrder reads the authoritative state of an order, normalizing its capture
// if one exists.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	status, body, err := c.doJSON(ctx, http.MethodGet, "/v2/checkout/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiErrorFrom(status, body)
	}
	return normalizeOrder(body, orderID)
}

func normalizeOrder(body []byte, orderID string) (*CaptureResult, error) {
	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("parse order response: %w", err)
	}
	res := &CaptureResult{
		OrderID:    orderID,
		Status:     order.Status,
		PayerEmail: order.Payer.EmailAddress,
		PayerName:  strings.TrimSpace(order.Payer.Name.GivenName + " " + order.Payer.Name.Surname),
	}
	if order.ID != "" {
		res.OrderID = order.ID
	}
	for _, pu := range order.PurchaseUnits {
		if len(pu.Payments.Captures) == 0 {
			continue
		}
		capture := pu.Payments.Captures[0]
		res.CaptureID = capture.ID
		res.Currency = capture.Amount.CurrencyCode
		if capture.Amount.Value != "" {
			amount, err := decimal.NewFromString(capture.Amount.Value)
			if err != nil {
				return nil, fmt.Errorf("parse capture amount %q: %w", capture.Amount.Value, err)
			}
			res.Amount = amount
		}
		// A completed capture outranks a stale top-level order status.
		if capture.Status == OrderStatusCompleted {
			res.Status = OrderStatusCompleted
		}
		break
	}
	return res, nil
}

// IsAuthError reports whether err came from credential acquisition rather than
// the order itself.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
