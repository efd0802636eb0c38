package placetopay_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay/placetopaytest"
	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/tests/e2e/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL, login, secret string) *placetopay.Client {
	return placetopay.NewClient(config.PlaceToPayConfig{
		BaseURL:         baseURL,
		Login:           login,
		SecretKey:       secret,
		Timeout:         5 * time.Second,
		Locale:          "es_CO",
		DefaultCurrency: "COP",
	}, discardLogger())
}

func setup(t *testing.T) (*placetopay.Client, *placetopaytest.Server) {
	t.Helper()
	server := placetopaytest.NewServer()
	t.Cleanup(server.Close)
	return newTestClient(server.URL, placetopaytest.Login, placetopaytest.SecretKey), server
}

func TestClient_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("approved diners without 3DS", func(t *testing.T) {
		client, _ := setup(t)

		resp, err := client.Purchase(ctx, testdata.Amount, testdata.DinersApproved.Card(), testdata.PurchaseOptions(false))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, domain.MessageApproved, resp.Message)
		assert.True(t, resp.Approved())
		assert.NotEmpty(t, resp.Authorization)
		assert.NotZero(t, resp.NetworkTransactionID)
		assert.Equal(t, "0008", resp.LastDigits)
	})

	t.Run("rejected diners is still a successful call", func(t *testing.T) {
		client, _ := setup(t)

		resp, err := client.Purchase(ctx, testdata.Amount, testdata.DinersRejected.Card(), testdata.PurchaseOptions(false))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, domain.MessageRejected, resp.Message)
		assert.True(t, resp.Rejected())
	})

	t.Run("approved visa with 3DS", func(t *testing.T) {
		client, _ := setup(t)

		resp, err := client.Purchase(ctx, testdata.Amount, testdata.VisaApproved.Card(), testdata.PurchaseOptions(true))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, domain.MessageApproved, resp.Message)
	})

	t.Run("rejected visa with 3DS", func(t *testing.T) {
		client, _ := setup(t)

		resp, err := client.Purchase(ctx, testdata.Amount, testdata.VisaRejected.Card(), testdata.PurchaseOptions(true))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, domain.MessageRejected, resp.Message)
	})

	t.Run("3DS challenge card completes when 3DS is requested", func(t *testing.T) {
		client, _ := setup(t)

		resp, err := client.Purchase(ctx, testdata.Amount, testdata.VisaApproved3DS.Card(), testdata.PurchaseOptions(true))

		require.NoError(t, err)
		assert.Equal(t, domain.MessageApproved, resp.Message)
	})

	t.Run("validation errors never reach the processor", func(t *testing.T) {
		client, server := setup(t)
		opts := testdata.PurchaseOptions(true)
		opts.ThreeDS.ReturnURL = ""

		resp, err := client.Purchase(ctx, 0, testdata.VisaApproved.Card(), opts)

		require.Error(t, err)
		assert.Nil(t, resp)
		verr, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.True(t, verr.Has("amount"))
		assert.True(t, verr.Has("ThreeDS.ReturnURL"))
		assert.Zero(t, server.Calls("/gateway/process"))
	})

	t.Run("wrong credentials come back as a failed decision", func(t *testing.T) {
		server := placetopaytest.NewServer()
		t.Cleanup(server.Close)
		client := newTestClient(server.URL, placetopaytest.Login, "wrong-secret")

		resp, err := client.Purchase(ctx, testdata.Amount, testdata.VisaApproved.Card(), testdata.PurchaseOptions(false))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, domain.StatusFailed, resp.Status)
		assert.Equal(t, placetopaytest.MessageAuthFailed, resp.Message)
	})
}

func TestClient_Purchase_WireFormat(t *testing.T) {
	var captured map[string]json.RawMessage
	var request placetopay.ProcessRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gateway/process", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		require.NoError(t, json.Unmarshal(body, &request))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"status":"APPROVED","reason":"00","message":"Aprobada","date":"2026-10-16T10:04:05-05:00"},` +
			`"internalReference":1234567,"reference":"REF","authorization":999999,"receipt":"5555","franchise":"diners","lastDigits":"0008"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL+"/", "login-1", "secret-1")
	opts := testdata.PurchaseOptions(false)
	opts.ThreeDS.ReturnURL = "https://ignored.example.com"

	resp, err := client.Purchase(context.Background(), 100, testdata.DinersApproved.Card(), opts)

	require.NoError(t, err)
	assert.Equal(t, "999999", resp.Authorization)
	assert.Equal(t, "5555", resp.Receipt)
	assert.Equal(t, int64(1234567), resp.NetworkTransactionID)
	assert.False(t, resp.Date.IsZero())

	assert.NotContains(t, captured, "returnUrl")
	assert.NotContains(t, captured, "use3ds")
	assert.True(t, placetopay.Verify(request.Auth, "login-1", "secret-1"))
	assert.Equal(t, "12/30", request.Instrument.Card.Expiration)
	assert.Equal(t, 1, request.Instrument.Card.Installments)
	assert.Equal(t, "COP", request.Payment.Amount.Currency)
	assert.Equal(t, int64(100), request.Payment.Amount.Total)
	assert.Equal(t, opts.Payment.Reference, request.Payment.Reference)
	assert.Equal(t, "es_CO", request.Locale)
}

func TestClient_Refund(t *testing.T) {
	ctx := context.Background()

	purchase := func(t *testing.T, client *placetopay.Client) *domain.Response {
		t.Helper()
		resp, err := client.Purchase(ctx, testdata.Amount, testdata.VisaApproved.Card(), testdata.PurchaseOptions(true))
		require.NoError(t, err)
		require.Equal(t, domain.MessageApproved, resp.Message)
		return resp
	}

	t.Run("refund then repeated refund", func(t *testing.T) {
		client, _ := setup(t)
		bought := purchase(t, client)
		opts := domain.RefundOptions{InternalReference: bought.NetworkTransactionID}

		refund, err := client.Refund(ctx, testdata.Amount, bought.Authorization, opts)
		require.NoError(t, err)
		assert.True(t, refund.Success)
		assert.Equal(t, domain.MessageApproved, refund.Message)

		again, err := client.Refund(ctx, testdata.Amount, bought.Authorization, opts)
		require.NoError(t, err)
		assert.True(t, again.Success)
		assert.Equal(t, domain.MessageAlreadyReversed, again.Message)
	})

	t.Run("invalid internal reference is a response, not an error", func(t *testing.T) {
		client, _ := setup(t)
		bought := purchase(t, client)

		refund, err := client.Refund(ctx, testdata.Amount, bought.Authorization, domain.RefundOptions{InternalReference: -1})

		require.NoError(t, err)
		assert.True(t, refund.Success)
		assert.Equal(t, domain.StatusFailed, refund.Status)
		assert.Equal(t, domain.MessageInvalidInternalReference, refund.Message)
	})

	t.Run("missing authorization fails locally", func(t *testing.T) {
		client, server := setup(t)

		_, err := client.Refund(ctx, testdata.Amount, "", domain.RefundOptions{InternalReference: 1})

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeValidation))
		assert.Zero(t, server.Calls("/gateway/transaction"))
	})

	t.Run("query reflects the reversal", func(t *testing.T) {
		client, _ := setup(t)
		bought := purchase(t, client)
		_, err := client.Refund(ctx, testdata.Amount, bought.Authorization, domain.RefundOptions{InternalReference: bought.NetworkTransactionID})
		require.NoError(t, err)

		state, err := client.Query(ctx, bought.NetworkTransactionID)

		require.NoError(t, err)
		assert.True(t, state.Refunded)
		assert.Equal(t, bought.Authorization, state.Authorization)
	})
}

func TestClient_TransportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("non 2xx without a parseable body", func(t *testing.T) {
		client, server := setup(t)
		server.InjectRaw(http.StatusBadGateway, "<html>502 Bad Gateway</html>")

		resp, err := client.Purchase(ctx, testdata.Amount, testdata.VisaApproved.Card(), testdata.PurchaseOptions(false))

		assert.Nil(t, resp)
		tErr, ok := domain.AsTransportError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, tErr.StatusCode)
		assert.Equal(t, "purchase", tErr.Op)
	})

	t.Run("json body without a status block", func(t *testing.T) {
		client, server := setup(t)
		server.InjectRaw(http.StatusOK, `{"message":"maintenance"}`)

		_, err := client.Refund(ctx, testdata.Amount, "999999", domain.RefundOptions{InternalReference: 1})

		tErr, ok := domain.AsTransportError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusOK, tErr.StatusCode)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := placetopaytest.NewServer()
		url := server.URL
		server.Close()
		client := newTestClient(url, placetopaytest.Login, placetopaytest.SecretKey)

		_, err := client.Query(ctx, 1)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransport))
	})

	t.Run("context deadline", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer slow.Close()
		client := newTestClient(slow.URL, "l", "s")

		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := client.Query(ctx, 1)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestFlexString(t *testing.T) {
	var tr placetopay.TransactionResponse

	require.NoError(t, json.Unmarshal([]byte(`{"authorization":"000000","receipt":12345}`), &tr))
	assert.Equal(t, placetopay.FlexString("000000"), tr.Authorization)
	assert.Equal(t, placetopay.FlexString("12345"), tr.Receipt)

	require.NoError(t, json.Unmarshal([]byte(`{"authorization":null}`), &tr))
	assert.Equal(t, placetopay.FlexString(""), tr.Authorization)
}
