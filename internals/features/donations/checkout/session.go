package checkout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Session is a payment session opened for one amount. Token is what the
// payment widget binds to.
type Session struct {
	Token       string
	SessionID   string
	RedirectURL string
	Amount      int64
}

type SessionCreator interface {
	CreateSession(ctx context.Context, amount int64) (Session, error)
}

type SessionCreatorFunc func(ctx context.Context, amount int64) (Session, error)

func (f SessionCreatorFunc) CreateSession(ctx context.Context, amount int64) (Session, error) {
	return f(ctx, amount)
}

// Verification is the server's view of a finished session.
type Verification struct {
	Status      string  `json:"status"`
	AmountTotal *int64  `json:"amount_total"`
	Currency    *string `json:"currency"`
}

// APIError is a non-2xx answer from the checkout API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkout api: %d %s", e.StatusCode, e.Message)
}

const maxResponseBytes = 1 << 20

// Client talks to the donation backend's public checkout endpoints.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type createSessionBody struct {
	Amount int64 `json:"amount"`
}

type createSessionReply struct {
	ClientSecret string `json:"clientSecret"`
	SessionID    string `json:"sessionId"`
	RedirectURL  string `json:"redirectUrl"`
}

type configReply struct {
	Currency  string  `json:"currency"`
	MinAmount int64   `json:"min_amount"`
	MaxAmount int64   `json:"max_amount"`
	Presets   []int64 `json:"presets"`
}

func (c *Client) CreateSession(ctx context.Context, amount int64) (Session, error) {
	var reply createSessionReply
	if err := c.do(ctx, http.MethodPost, "/api/public/checkout/sessions", createSessionBody{Amount: amount}, &reply); err != nil {
		return Session{}, err
	}
	if reply.ClientSecret == "" {
		return Session{}, &APIError{StatusCode: http.StatusOK, Message: "payment session has no client secret"}
	}
	return Session{
		Token:       reply.ClientSecret,
		SessionID:   reply.SessionID,
		RedirectURL: reply.RedirectURL,
		Amount:      amount,
	}, nil
}

func (c *Client) VerifySession(ctx context.Context, sessionID string) (Verification, error) {
	var v Verification
	err := c.do(ctx, http.MethodGet, "/api/public/checkout/sessions/verify?session_id="+url.QueryEscape(sessionID), nil, &v)
	return v, err
}

// AmountConfig fetches presets and bounds from the server.
func (c *Client) AmountConfig(ctx context.Context) (AmountConfig, error) {
	var reply configReply
	if err := c.do(ctx, http.MethodGet, "/api/public/checkout/config", nil, &reply); err != nil {
		return AmountConfig{}, err
	}
	return AmountConfig{
		Presets:  reply.Presets,
		Min:      reply.MinAmount,
		Max:      reply.MaxAmount,
		Currency: reply.Currency,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = sonic.Unmarshal(raw, &e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
