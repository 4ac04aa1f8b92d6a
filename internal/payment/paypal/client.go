package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmcampos/tienda/internal/orders/ports"
)

// Config holds processor credentials and the redirect URLs stamped on each
// intent.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	ReturnURL    string
	CancelURL    string
	Timeout      time.Duration
	MaxRetries   uint64
}

// Client implements ports.PaymentGateway against the PayPal Orders v2 API.
// It caches the client-credentials token until shortly before expiry and
// retries transient failures with exponential backoff. Declines are never
// retried.
type Client struct {
	cfg  Config
	http *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// tokenExpirySkew renews tokens slightly early so an in-flight request does
// not ride an expiring credential.
const tokenExpirySkew = 30 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp.Add(-tokenExpirySkew)) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ports.GatewayError{Op: "authenticate", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ports.GatewayError{
			Op:        "authenticate",
			Status:    resp.StatusCode,
			Retryable: resp.StatusCode >= 500,
			Err:       fmt.Errorf("token endpoint returned %d", resp.StatusCode),
		}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.token = token.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return c.token, nil
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type intentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

type captureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateIntent submits an authorization for the amount and returns the
// processor intent id plus the approval redirect. The approval link is
// selected by its declared relation, not by position in the links array.
func (c *Client) CreateIntent(ctx context.Context, amountCents int64, currency string) (*ports.PaymentIntent, error) {
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{"amount": map[string]string{
				"currency_code": currency,
				"value":         formatAmount(amountCents),
			}},
		},
		"application_context": map[string]string{
			"return_url": c.cfg.ReturnURL,
			"cancel_url": c.cfg.CancelURL,
		},
	}

	var intent *ports.PaymentIntent
	err := c.withRetry(ctx, func() error {
		body, status, err := c.post(ctx, "/v2/checkout/orders", payload)
		if err != nil {
			return gatewayErr("create intent", err)
		}
		if status != http.StatusCreated {
			return &ports.GatewayError{
				Op:        "create intent",
				Status:    status,
				Retryable: status >= 500,
				Err:       fmt.Errorf("expected 201, got %d", status),
			}
		}

		var decoded intentResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return backoff.Permanent(fmt.Errorf("decode intent response: %w", err))
		}

		approval := ""
		for _, l := range decoded.Links {
			if l.Rel == "approve" {
				approval = l.Href
				break
			}
		}
		if approval == "" {
			return backoff.Permanent(fmt.Errorf("intent %s has no approve link", decoded.ID))
		}

		intent = &ports.PaymentIntent{ID: decoded.ID, ApprovalURL: approval}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return intent, nil
}

// CaptureIntent finalizes a previously approved intent. The outcome comes
// from the response body status: only COMPLETED counts as captured. A
// processor rejection (4xx) is a definitive decline, not an error.
func (c *Client) CaptureIntent(ctx context.Context, intentID string) (*ports.CaptureResult, error) {
	var result *ports.CaptureResult
	err := c.withRetry(ctx, func() error {
		body, status, err := c.post(ctx, "/v2/checkout/orders/"+intentID+"/capture", nil)
		if err != nil {
			return gatewayErr("capture", err)
		}

		switch {
		case status == http.StatusOK || status == http.StatusCreated:
			var decoded captureResponse
			if err := json.Unmarshal(body, &decoded); err != nil {
				return backoff.Permanent(fmt.Errorf("decode capture response: %w", err))
			}
			result = &ports.CaptureResult{
				Captured: decoded.Status == "COMPLETED",
				Status:   decoded.Status,
			}
			return nil
		case status >= 500:
			return &ports.GatewayError{
				Op:        "capture",
				Status:    status,
				Retryable: true,
				Err:       fmt.Errorf("capture endpoint returned %d", status),
			}
		default:
			// The processor rejected the capture outright.
			result = &ports.CaptureResult{Captured: false, Status: declineStatus(body)}
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, 0, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// withRetry runs fn with bounded exponential backoff. GatewayErrors marked
// non-retryable stop immediately.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	wrapped := func() error {
		err := fn()
		if gwErr, ok := err.(*ports.GatewayError); ok && !gwErr.Retryable {
			return backoff.Permanent(gwErr)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries),
		ctx,
	)
	return backoff.Retry(wrapped, policy)
}

// gatewayErr wraps a transport failure as retryable, keeping an existing
// GatewayError (for example a token rejection) intact.
func gatewayErr(op string, err error) error {
	var gwErr *ports.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}
	return &ports.GatewayError{Op: op, Retryable: true, Err: err}
}

func declineStatus(body []byte) string {
	var decoded struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Name != "" {
		return decoded.Name
	}
	return "DECLINED"
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
