package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saifulmridha/boighor-backend/pkg/config"
	"github.com/saifulmridha/boighor-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	sandboxInitURL = "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"
	liveInitURL    = "https://securepay.sslcommerz.com/gwprocess/v4/api.php"

	defaultTimeout = 10 * time.Second

	// StatusValid marks an authentic successful callback post.
	StatusValid = "VALID"
)

var (
	errStoreIDRequired  = errors.New("sslcommerz store id is required")
	errStorePassword    = errors.New("sslcommerz store password is required")
	errSessionRejected  = errors.New("sslcommerz session rejected")
	errEmptyGatewayPage = errors.New("sslcommerz session missing gateway page url")
)

// Client talks to the SSLCommerz session API.
type Client struct {
	httpClient *http.Client
	initURL    string
	storeID    string
	storePass  string
}

// InitParams carries everything the gateway needs to open a payment session.
type InitParams struct {
	Amount        decimal.Decimal
	Currency      string
	TranID        string
	CorrelationID string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	SuccessURL string
	FailURL    string
	CancelURL  string

	ProductName     string
	ProductCategory string
}

// Session is the gateway's accepted-session response.
type Session struct {
	SessionKey     string
	GatewayPageURL string
}

// CallbackPayload mirrors the fields the gateway posts back on IPN/redirect.
type CallbackPayload struct {
	Status            string
	TranID            string
	ValID             string
	Amount            string
	CardType          string
	CardIssuer        string
	CardBrand         string
	CardIssuerCountry string
	CorrelationID     string
	Raw               map[string]string
}

// Valid reports whether the callback carries the gateway's success marker.
func (p CallbackPayload) Valid() bool {
	return p.Status == StatusValid
}

// ParseCallback extracts the typed payload from a posted form.
func ParseCallback(form url.Values) CallbackPayload {
	raw := make(map[string]string, len(form))
	for key := range form {
		raw[key] = form.Get(key)
	}
	return CallbackPayload{
		Status:            form.Get("status"),
		TranID:            form.Get("tran_id"),
		ValID:             form.Get("val_id"),
		Amount:            form.Get("amount"),
		CardType:          form.Get("card_type"),
		CardIssuer:        form.Get("card_issuer"),
		CardBrand:         form.Get("card_brand"),
		CardIssuerCountry: form.Get("card_issuer_country"),
		CorrelationID:     form.Get("value_a"),
		Raw:               raw,
	}
}

// NewClient builds a gateway client from configuration.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	storeID := strings.TrimSpace(cfg.StoreID)
	if storeID == "" {
		return nil, errStoreIDRequired
	}
	storePass := strings.TrimSpace(cfg.StorePassword)
	if storePass == "" {
		return nil, errStorePassword
	}

	initURL := liveInitURL
	if cfg.Sandbox {
		initURL = sandboxInitURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("sslcommerz client initialized (sandbox=%t)", cfg.Sandbox))
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		initURL:    initURL,
		storeID:    storeID,
		storePass:  storePass,
	}, nil
}

type initResponse struct {
	Status         string `json:"status"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
	FailedReason   string `json:"failedreason"`
}

// InitPayment opens a payment session and returns the redirect target.
// The request honors the context deadline; callers treat timeouts as a
// retryable initiation failure.
func (c *Client) InitPayment(ctx context.Context, params InitParams) (*Session, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePass)
	form.Set("total_amount", params.Amount.StringFixed(2))
	form.Set("currency", params.Currency)
	form.Set("tran_id", params.TranID)
	form.Set("success_url", params.SuccessURL)
	form.Set("fail_url", params.FailURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("cus_name", params.CustomerName)
	form.Set("cus_email", params.CustomerEmail)
	form.Set("cus_phone", params.CustomerPhone)
	form.Set("product_name", params.ProductName)
	form.Set("product_category", params.ProductCategory)
	form.Set("product_profile", "general")
	form.Set("shipping_method", "NO")
	form.Set("value_a", params.CorrelationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.initURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build init request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post init request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected init response status %d", resp.StatusCode)
	}

	var parsed initResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode init response: %w", err)
	}

	if !strings.EqualFold(parsed.Status, "SUCCESS") {
		reason := strings.TrimSpace(parsed.FailedReason)
		if reason == "" {
			return nil, errSessionRejected
		}
		return nil, fmt.Errorf("%w: %s", errSessionRejected, reason)
	}
	if parsed.GatewayPageURL == "" {
		return nil, errEmptyGatewayPage
	}

	return &Session{
		SessionKey:     parsed.SessionKey,
		GatewayPageURL: parsed.GatewayPageURL,
	}, nil
}
