package placetopay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

const (
	processPath     = "/gateway/process"
	transactionPath = "/gateway/transaction"
	queryPath       = "/gateway/query"

	maxBodyBytes = 1 << 20
)

var errNoStatus = errors.New("response carries no status block")

// Client talks to the PlacetoPay gateway API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       authenticator
	locale     string
	currency   string
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock replaces time.Now when seeding request credentials.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.auth.now = now
	}
}

func NewClient(cfg config.PlaceToPayConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		auth: authenticator{
			login:     cfg.Login,
			secretKey: cfg.SecretKey,
			now:       time.Now,
		},
		locale:   cfg.Locale,
		currency: cfg.DefaultCurrency,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Purchase charges card. Approved and declined purchases both return a
// Response; check Status or Message for the decision.
func (c *Client) Purchase(ctx context.Context, amount int64, card domain.Card, opts domain.PurchaseOptions) (*domain.Response, error) {
	if err := domain.ValidatePurchase(amount, card, opts); err != nil {
		return nil, err
	}

	auth, err := c.auth.generate()
	if err != nil {
		return nil, err
	}

	req := ProcessRequest{
		Auth:   auth,
		Locale: c.locale,
		Payer: PayerDTO{
			Name:         opts.Payer.Name,
			Surname:      opts.Payer.Surname,
			Email:        opts.Payer.Email,
			DocumentType: strings.ToUpper(opts.Payer.DocumentType),
			Document:     opts.Payer.Document,
			Mobile:       opts.Payer.Mobile,
		},
		Payment: PaymentDTO{
			Reference:   opts.Payment.Reference,
			Description: opts.Payment.Description,
			Amount: AmountDTO{
				Currency: c.currencyOr(opts.Payment.Currency),
				Total:    amount,
			},
		},
		Instrument: InstrumentDTO{
			Card: CardDTO{
				Number:       card.Number,
				Expiration:   card.Expiration(),
				CVV:          card.VerificationValue,
				Installments: card.InstallmentCount(),
			},
		},
	}
	if opts.ThreeDS.Enabled {
		req.Use3DS = true
		req.ReturnURL = opts.ThreeDS.ReturnURL
	}

	logger := c.logger.With(
		"op", "purchase",
		"reference", opts.Payment.Reference,
		"franchise", card.Franchise(),
		"last_digits", card.LastDigits(),
		"use3ds", opts.ThreeDS.Enabled,
	)

	tr, err := postJSON(c, ctx, logger, "purchase", processPath, req)
	if err != nil {
		return nil, err
	}
	return toResponse(tr), nil
}

// Refund reverses the purchase identified by authorization and
// opts.InternalReference. An unknown reference or a repeated reversal comes
// back as a Response with the processor's message.
func (c *Client) Refund(ctx context.Context, amount int64, authorization string, opts domain.RefundOptions) (*domain.Response, error) {
	if err := domain.ValidateRefund(amount, authorization, opts); err != nil {
		return nil, err
	}

	auth, err := c.auth.generate()
	if err != nil {
		return nil, err
	}

	req := TransactionRequest{
		Auth:              auth,
		Locale:            c.locale,
		InternalReference: opts.InternalReference,
		Authorization:     authorization,
		Action:            ActionReverse,
		Amount: &AmountDTO{
			Currency: c.currencyOr(opts.Currency),
			Total:    amount,
		},
	}

	logger := c.logger.With(
		"op", "refund",
		"internal_reference", opts.InternalReference,
		"authorization", authorization,
	)

	tr, err := postJSON(c, ctx, logger, "refund", transactionPath, req)
	if err != nil {
		return nil, err
	}
	return toResponse(tr), nil
}

// Query fetches the current state of a transaction. It has no side effects
// and is safe to retry.
func (c *Client) Query(ctx context.Context, internalReference int64) (*domain.Response, error) {
	auth, err := c.auth.generate()
	if err != nil {
		return nil, err
	}

	req := QueryRequest{
		Auth:              auth,
		InternalReference: internalReference,
	}

	logger := c.logger.With("op", "query", "internal_reference", internalReference)

	tr, err := postJSON(c, ctx, logger, "query", queryPath, req)
	if err != nil {
		return nil, err
	}
	return toResponse(tr), nil
}

func (c *Client) currencyOr(currency string) string {
	if currency != "" {
		return strings.ToUpper(currency)
	}
	return c.currency
}

// postJSON sends req and decodes a processor answer. Any reply carrying a
// status block is an answer, whatever the HTTP status.
func postJSON[Req any](c *Client, ctx context.Context, logger *slog.Logger, op, path string, req Req) (*TransactionResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("processor request", "body", Scrub(string(jsonData)))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn("processor unreachable", "error", err, "latency_ms", time.Since(start).Milliseconds())
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("processor response", "status_code", resp.StatusCode, "body", Scrub(string(body)))
	}

	var tr TransactionResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		logger.Warn("processor answer not understood", "status_code", resp.StatusCode, "error", err)
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Body: snippet(body), Err: fmt.Errorf("decode body: %w", err)}
	}
	if tr.Status == nil || tr.Status.Status == "" {
		logger.Warn("processor answer not understood", "status_code", resp.StatusCode, "error", errNoStatus)
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Body: snippet(body), Err: errNoStatus}
	}

	logger.Info("processor answered",
		"status_code", resp.StatusCode,
		"status", tr.Status.Status,
		"reason", tr.Status.Reason,
		"internal_reference", tr.InternalReference,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &tr, nil
}

func toResponse(tr *TransactionResponse) *domain.Response {
	resp := &domain.Response{
		Success:              true,
		Status:               domain.DecisionStatus(strings.ToUpper(tr.Status.Status)),
		Reason:               tr.Status.Reason,
		Message:              tr.Status.Message,
		Authorization:        string(tr.Authorization),
		NetworkTransactionID: tr.InternalReference,
		Reference:            tr.Reference,
		Franchise:            tr.Franchise,
		Receipt:              string(tr.Receipt),
		LastDigits:           tr.LastDigits,
		Refunded:             tr.Refunded,
	}

	date := tr.Status.Date
	if date == "" {
		date = tr.Date
	}
	if parsed, err := time.Parse(time.RFC3339, date); err == nil {
		resp.Date = parsed
	}
	return resp
}

func snippet(body []byte) string {
	const limit = 256
	s := Scrub(string(body))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
