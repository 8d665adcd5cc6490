package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/safestreets/safestreets-backend/internal/pkg/httpx"
	"github.com/safestreets/safestreets-backend/internal/platform/envutil"
	"github.com/safestreets/safestreets-backend/internal/platform/logger"
)

type Client interface {
	SendSMS(ctx context.Context, req SendSMSRequest) (*SendSMSResult, error)
}

type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("TWILIO_TIMEOUT_SECONDS", 15)
	maxRetries := envutil.Int("TWILIO_MAX_RETRIES", 3)

	return Config{
		AccountSID: strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		FromNumber: strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER")),
		BaseURL:    strings.TrimSpace(os.Getenv("TWILIO_BASE_URL")),
		Timeout:    time.Duration(timeoutSec) * time.Second,
		MaxRetries: maxRetries,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("missing TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("missing TWILIO_AUTH_TOKEN")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &client{
		log:        log.With("client", "TwilioClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

type SendSMSRequest struct {
	To   string
	Body string
	From string
}

type SendSMSResult struct {
	StatusCode int
	MessageSID string
	SMSStatus  string
}

type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type HTTPError struct {
	StatusCode int
	Code       int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "twilio: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("twilio http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) SendSMS(ctx context.Context, req SendSMSRequest) (*SendSMSResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("twilio client unavailable")
	}

	req.To = strings.TrimSpace(req.To)
	req.From = strings.TrimSpace(req.From)
	req.Body = strings.TrimSpace(req.Body)
	if req.From == "" {
		req.From = c.cfg.FromNumber
	}
	if req.To == "" {
		return nil, fmt.Errorf("twilio: To required")
	}
	if req.From == "" {
		return nil, fmt.Errorf("twilio: From required (or set TWILIO_FROM_NUMBER)")
	}
	if req.Body == "" {
		return nil, fmt.Errorf("twilio: Body required")
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Body", req.Body)

	path := fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.cfg.AccountSID)
	resp, raw, err := c.do(ctx, path, form)
	if err != nil {
		return nil, err
	}

	var msg messageResponse
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &msg)
	}
	return &SendSMSResult{
		StatusCode: resp.StatusCode,
		MessageSID: msg.SID,
		SMSStatus:  msg.Status,
	}, nil
}

func (c *client) do(ctx context.Context, path string, form url.Values) (*http.Response, []byte, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path, form)
		if err == nil {
			return resp, raw, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Twilio request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
	return nil, nil, fmt.Errorf("twilio: retries exhausted")
}

func (c *client) doOnce(ctx context.Context, path string, form url.Values) (*http.Response, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, err
	}
	httpReq.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp, nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, raw, nil
	}

	httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	var parsed errorResponse
	if json.Unmarshal(raw, &parsed) == nil {
		httpErr.Code = parsed.Code
	}
	return resp, raw, httpErr
}
