package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/handler"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/tests/e2e/testdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestClient wraps HTTP calls to gateway
type TestClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// APIFailure is a non-2xx answer from the gateway.
type APIFailure struct {
	StatusCode int
	Error      handler.APIError
}

func (f *APIFailure) String() string {
	return fmt.Sprintf("status %d: %s %s", f.StatusCode, f.Error.Code, f.Error.Message)
}

func (c *TestClient) do(t *testing.T, method, path string, body interface{}, out interface{}) (*APIFailure, error) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", "e2e-"+uuid.New().String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var envelope handler.APIResponse
		require.NoError(t, json.Unmarshal(bodyBytes, &envelope), string(bodyBytes))
		failure := &APIFailure{StatusCode: resp.StatusCode}
		if envelope.Error != nil {
			failure.Error = *envelope.Error
		}
		return failure, nil
	}

	envelope := handler.APIResponse{Data: out}
	require.NoError(t, json.Unmarshal(bodyBytes, &envelope), string(bodyBytes))
	return nil, nil
}

// Purchase calls POST /purchases
func (c *TestClient) Purchase(t *testing.T, req handler.PurchaseRequest) (*domain.Response, *APIFailure, error) {
	var out domain.Response
	failure, err := c.do(t, http.MethodPost, "/purchases", req, &out)
	if err != nil || failure != nil {
		return nil, failure, err
	}
	return &out, nil, nil
}

// Refund calls POST /refunds
func (c *TestClient) Refund(t *testing.T, req handler.RefundRequest) (*domain.Response, *APIFailure, error) {
	var out domain.Response
	failure, err := c.do(t, http.MethodPost, "/refunds", req, &out)
	if err != nil || failure != nil {
		return nil, failure, err
	}
	return &out, nil, nil
}

// Transactions lists the journal entries for a reference
func (c *TestClient) Transactions(t *testing.T, reference string) ([]handler.TransactionResponse, *APIFailure, error) {
	var out []handler.TransactionResponse
	failure, err := c.do(t, http.MethodGet, "/transactions/"+reference, nil, &out)
	if err != nil || failure != nil {
		return nil, failure, err
	}
	return out, nil, nil
}

// Query asks the processor for the current state of a transaction
func (c *TestClient) Query(t *testing.T, internalReference int64) (*domain.Response, *APIFailure, error) {
	var out domain.Response
	path := "/processor/transactions/" + strconv.FormatInt(internalReference, 10)
	failure, err := c.do(t, http.MethodGet, path, nil, &out)
	if err != nil || failure != nil {
		return nil, failure, err
	}
	return &out, nil, nil
}

// Healthy reports whether GET /health answers 200
func (c *TestClient) Healthy() bool {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// NewPurchaseRequest builds a request for card with a fresh reference.
func NewPurchaseRequest(card testdata.TestCard, use3DS bool) handler.PurchaseRequest {
	payer := testdata.Payer()
	req := handler.PurchaseRequest{
		Reference:   testdata.Reference(),
		Description: testdata.Description,
		Amount:      testdata.Amount,
		Payer: handler.PayerRequest{
			Name:         payer.Name,
			Surname:      payer.Surname,
			Email:        payer.Email,
			DocumentType: payer.DocumentType,
			Document:     payer.Document,
			Mobile:       payer.Mobile,
		},
		Card: handler.CardRequest{
			Number:       card.CardNumber,
			ExpiryMonth:  card.ExpiryMonth,
			ExpiryYear:   card.ExpiryYear,
			CVV:          card.CVV,
			Installments: 1,
		},
	}
	if use3DS {
		req.ThreeDS = handler.ThreeDSRequest{Enabled: true, ReturnURL: testdata.ReturnURL}
	}
	return req
}
