package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/ledger-transaction-cache/internal/cache"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/ledger"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/storage/memory"
)

func newTestServer(t *testing.T) (http.Handler, *ledger.Ledger, *cache.Cache) {
	t.Helper()

	logger, _ := test.NewNullLogger()
	l := ledger.NewLedger(memory.NewMemoryLedgerStore(), ledger.WithLogger(logger))
	c := cache.New(l, cache.WithFlushInterval(time.Hour), cache.WithLogger(logger))
	t.Cleanup(c.Shutdown)

	return NewHandler(l, c, logger), l, c
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Health(t *testing.T) {
	h, _, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_SubmittedTransfersAreMergedOnFlush(t *testing.T) {
	h, l, c := newTestServer(t)
	ctx := context.Background()

	rec := do(t, h, http.MethodPost, "/accounts", `{"name":"world","system":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var world models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &world))

	rec = do(t, h, http.MethodPost, "/accounts", `{"name":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var alice models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alice))

	body := `{"from_account":` + jsonInt(world.ID) + `,"to_account":` + jsonInt(alice.ID) + `,"amount":"10","message":"tip"}`
	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/transactions", body).Code)
	body = `{"from_account":` + jsonInt(world.ID) + `,"to_account":` + jsonInt(alice.ID) + `,"amount":15,"message":"tip"}`
	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/transactions", body).Code)
	assert.Equal(t, 2, c.Pending())

	rec = do(t, h, http.MethodPost, "/transactions/flush", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats cache.FlushStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, cache.FlushStats{Drained: 2, Aggregated: 1, Transferred: 1}, stats)

	balance, err := l.GetBalance(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(25)))

	rec = do(t, h, http.MethodGet, "/accounts/balance?account_id="+jsonInt(alice.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account_id":`+jsonInt(alice.ID)+`,"balance":"25"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/ledgerEntries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.LedgerEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "2 tips", entries[0].Message)
}

func TestHandler_RejectsBadRequests(t *testing.T) {
	h, _, _ := newTestServer(t)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/transactions", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/transactions", "{").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/transactions", `{"from_account":1,"to_account":2,"amount":"0"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/accounts", `{"name":" "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/accounts/balance", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/accounts/balance?account_id=abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/accounts/balance?account_id=77", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/transactions/flush", "").Code)
}

func TestHandler_FlushAfterShutdown(t *testing.T) {
	h, _, c := newTestServer(t)
	c.Shutdown()

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/transactions/flush", "").Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestHandler_FlushSurvivesClientDisconnect(t *testing.T) {
	h, l, c := newTestServer(t)
	ctx := context.Background()

	world, err := l.OpenAccount(ctx, "world", true)
	require.NoError(t, err)
	bob, err := l.OpenAccount(ctx, "bob", false)
	require.NoError(t, err)
	c.Submit(world.ID, bob.ID, decimal.NewFromInt(10), "tip", models.OptionNone)

	reqCtx, cancel := context.WithCancel(ctx)
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/transactions/flush", nil).WithContext(reqCtx)
	h.ServeHTTP(httptest.NewRecorder(), req)

	balance, err := l.GetBalance(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(10)), balance.String())
}
