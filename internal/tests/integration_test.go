package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/handler"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/handler/middleware"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay/placetopaytest"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/postgres"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/redis"
	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/service"
	"github.com/DanielPopoola/placetopay-gateway/internal/tests/e2e/testdata"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type stack struct {
	server    *httptest.Server
	processor *placetopaytest.Server
	db        *postgres.DB
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return host, mapped.Port()
}

func setupIntegration(t *testing.T) *stack {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pgHost, pgPort := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "placetopay_gateway",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432")

	redisHost, redisPort := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	processor := placetopaytest.NewServer()
	t.Cleanup(processor.Close)

	// Nested keys use a double underscore
	t.Setenv("GATEWAY_PRIMARY__ENV", "test")
	t.Setenv("GATEWAY_SERVER__PORT", "0")
	t.Setenv("GATEWAY_SERVER__READ_TIMEOUT", "15s")
	t.Setenv("GATEWAY_SERVER__WRITE_TIMEOUT", "15s")
	t.Setenv("GATEWAY_SERVER__IDLE_TIMEOUT", "60s")

	t.Setenv("GATEWAY_DATABASE__HOST", pgHost)
	t.Setenv("GATEWAY_DATABASE__PORT", pgPort)
	t.Setenv("GATEWAY_DATABASE__USER", "postgres")
	t.Setenv("GATEWAY_DATABASE__PASSWORD", "postgres")
	t.Setenv("GATEWAY_DATABASE__NAME", "placetopay_gateway")
	t.Setenv("GATEWAY_DATABASE__SSL_MODE", "disable")
	t.Setenv("GATEWAY_DATABASE__MAX_OPEN_CONNS", "10")
	t.Setenv("GATEWAY_DATABASE__MAX_IDLE_CONNS", "2")
	t.Setenv("GATEWAY_DATABASE__CONN_MAX_LIFETIME", "5m")
	t.Setenv("GATEWAY_DATABASE__CONN_MAX_IDLE_TIME", "5m")

	t.Setenv("GATEWAY_REDIS__ADDR", fmt.Sprintf("%s:%s", redisHost, redisPort))

	t.Setenv("GATEWAY_PLACETOPAY__BASE_URL", processor.URL)
	t.Setenv("GATEWAY_PLACETOPAY__LOGIN", placetopaytest.Login)
	t.Setenv("GATEWAY_PLACETOPAY__SECRET_KEY", placetopaytest.SecretKey)

	t.Setenv("GATEWAY_RETRY__BASE_DELAY", "10ms")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	migrate(t, db)

	rdb, err := redis.Connect(ctx, cfg.Redis, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	guard := redis.NewReferenceGuard(rdb, logger)

	client := placetopay.NewRetryClient(placetopay.NewClient(cfg.PlaceToPay, logger), cfg.Retry, logger)
	svc := service.NewPaymentService(client, postgres.NewTransactionRepository(db), guard, service.Options{
		DefaultCurrency: cfg.PlaceToPay.DefaultCurrency,
		ReferenceTTL:    cfg.Redis.ReferenceTTL,
	}, logger)

	mux := http.NewServeMux()
	handler.NewPaymentHandler(svc, map[string]handler.Pinger{"postgres": db, "redis": guard}, logger).RegisterRoutes(mux)

	doc, err := handler.LoadOpenAPI()
	require.NoError(t, err)
	validate, err := handler.RequestValidator(doc, logger)
	require.NoError(t, err)

	router := validate(mux)
	router = middleware.Recovery(logger)(router)
	router = middleware.Logging(logger)(router)
	router = middleware.Timeout(cfg.Server.WriteTimeout)(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &stack{server: server, processor: processor, db: db}
}

func migrate(t *testing.T, db *postgres.DB) {
	t.Helper()
	migrationSQL, err := os.ReadFile(filepath.Join("..", "..", "db", "migrations", "001_init.up.sql"))
	require.NoError(t, err)
	_, err = db.Pool.Exec(context.Background(), string(migrationSQL))
	require.NoError(t, err)
}

func (s *stack) post(t *testing.T, path string, body interface{}) (int, handler.APIResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, decode(t, resp.Body)
}

func (s *stack) get(t *testing.T, path string) (int, handler.APIResponse) {
	t.Helper()
	resp, err := http.Get(s.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, decode(t, resp.Body)
}

func decode(t *testing.T, r io.Reader) handler.APIResponse {
	t.Helper()
	var out handler.APIResponse
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func purchaseRequest(card testdata.TestCard, use3DS bool) handler.PurchaseRequest {
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
			Number:      card.CardNumber,
			ExpiryMonth: card.ExpiryMonth,
			ExpiryYear:  card.ExpiryYear,
			CVV:         card.CVV,
		},
	}
	if use3DS {
		req.ThreeDS = handler.ThreeDSRequest{Enabled: true, ReturnURL: testdata.ReturnURL}
	}
	return req
}

func data(t *testing.T, resp handler.APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "unexpected data %#v", resp.Data)
	return m
}

func TestIntegration_PurchaseRefundJournal(t *testing.T) {
	s := setupIntegration(t)
	req := purchaseRequest(testdata.VisaApproved, true)

	status, resp := s.post(t, "/purchases", req)
	require.Equal(t, http.StatusCreated, status, resp.Error)
	assert.Equal(t, domain.MessageApproved, data(t, resp)["message"])
	internalRef := int64(data(t, resp)["network_transaction_id"].(float64))

	status, resp = s.post(t, "/refunds", handler.RefundRequest{Reference: req.Reference})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.MessageApproved, data(t, resp)["message"])

	status, resp = s.post(t, "/refunds", handler.RefundRequest{Reference: req.Reference})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.MessageAlreadyReversed, data(t, resp)["message"])

	status, resp = s.get(t, "/transactions/"+req.Reference)
	require.Equal(t, http.StatusOK, status)
	entries := resp.Data.([]interface{})
	require.Len(t, entries, 3)
	assert.Equal(t, string(domain.KindPurchase), entries[0].(map[string]interface{})["kind"])

	status, resp = s.get(t, "/processor/transactions/"+strconv.FormatInt(internalRef, 10))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, resp)["refunded"])
}

func TestIntegration_DeclinesAndValidation(t *testing.T) {
	s := setupIntegration(t)

	status, resp := s.post(t, "/purchases", purchaseRequest(testdata.DinersRejected, false))
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.MessageRejected, data(t, resp)["message"])

	bad := purchaseRequest(testdata.VisaApproved, true)
	bad.ThreeDS.ReturnURL = "not-a-url"
	status, resp = s.post(t, "/purchases", bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.ErrCodeValidation, resp.Error.Code)

	status, resp = s.post(t, "/refunds", handler.RefundRequest{Reference: "UNKNOWN_REF"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, domain.ErrCodeTransactionNotFound, resp.Error.Code)

	status, _ = s.get(t, "/health")
	assert.Equal(t, http.StatusOK, status)
}

func TestIntegration_ConcurrentDuplicateReference(t *testing.T) {
	s := setupIntegration(t)
	req := purchaseRequest(testdata.DinersApproved, false)

	const attempts = 5
	var wg sync.WaitGroup
	statuses := make(chan int, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(req)
			resp, err := http.Post(s.server.URL+"/purchases", "application/json", bytes.NewReader(raw))
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	created, conflicts := 0, 0
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, s.processor.Calls("/gateway/process"))
}

func TestIntegration_ProcessorOutage(t *testing.T) {
	s := setupIntegration(t)
	req := purchaseRequest(testdata.DinersApproved, false)

	s.processor.InjectRaw(http.StatusBadGateway, "<html>bad gateway</html>")
	status, resp := s.post(t, "/purchases", req)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, domain.ErrCodeTransport, resp.Error.Code)

	// the reservation was released, so the same reference can be sent again
	status, resp = s.post(t, "/purchases", req)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.MessageApproved, data(t, resp)["message"])
}
