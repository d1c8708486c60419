package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestfin/gestfin/internal/server"
	"github.com/gestfin/gestfin/pkg/engine"
	"github.com/gestfin/gestfin/pkg/ledger"
	"github.com/gestfin/gestfin/pkg/model"
	"github.com/gestfin/gestfin/pkg/storage"
)

func setupServer(t *testing.T) *server.Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Now().UTC()

	// Seed one overdue payable and one low-balance account.
	require.NoError(t, store.CreatePayable(t.Context(), &model.Payable{
		ID:          "p1",
		Description: "Rent",
		Amount:      decimal.NewFromInt(1200),
		DueDate:     now.AddDate(0, 0, -2),
		Status:      model.PayableOverdue,
	}))
	require.NoError(t, store.CreateAccount(t.Context(), &model.Account{
		ID:      "a1",
		Name:    "Checking",
		Balance: decimal.NewFromInt(300),
	}))
	require.NoError(t, store.SetBudget(t.Context(), &model.Budget{
		Name:        "groceries",
		LimitAmount: decimal.NewFromInt(500),
		Period:      model.PeriodMonthly,
	}))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	eng := engine.New(store, nil, nil, logger)
	require.NoError(t, eng.Regenerate(t.Context()))

	return server.NewServer(eng, store, ledger.New(store, logger), logger)
}

func doRequest(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_Alerts(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "GET", "/api/v1/alerts", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	require.Len(t, alerts, 2)
	assert.Equal(t, "overdue-p1", alerts[0].ID)
	assert.Equal(t, "balance-a1", alerts[1].ID)
}

func TestServer_Alerts_Filters(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "GET", "/api/v1/alerts?type=payable_overdue", "")
	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertPayableOverdue, alerts[0].Type)

	w = doRequest(t, srv, "GET", "/api/v1/alerts?severity=critical", "")
	alerts = nil
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	assert.Len(t, alerts, 2)

	w = doRequest(t, srv, "GET", "/api/v1/alerts?severity=low", "")
	alerts = nil
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	assert.Empty(t, alerts)
}

func TestServer_Alerts_UnreadFilter(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "POST", "/api/v1/alerts/overdue-p1/read", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, srv, "GET", "/api/v1/alerts?unread=true", "")
	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "balance-a1", alerts[0].ID)
}

func TestServer_AlertCount(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "GET", "/api/v1/alerts/count", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp["unread"])

	w = doRequest(t, srv, "POST", "/api/v1/alerts/read-all", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, srv, "GET", "/api/v1/alerts/count", "")
	resp = nil
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0, resp["unread"])
}

func TestServer_AlertRefresh_ResetsReadState(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "POST", "/api/v1/alerts/read-all", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, srv, "POST", "/api/v1/alerts/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, "GET", "/api/v1/alerts/count", "")
	var resp map[string]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp["unread"])
}

func TestServer_AlertDelete(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "DELETE", "/api/v1/alerts/overdue-p1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, srv, "GET", "/api/v1/alerts", "")
	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	assert.Len(t, alerts, 1)

	// Deleting an unknown id still returns 204.
	w = doRequest(t, srv, "DELETE", "/api/v1/alerts/nope", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServer_Settings(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "GET", "/api/v1/settings", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var settings model.NotificationSettings
	require.NoError(t, json.NewDecoder(w.Body).Decode(&settings))
	assert.Equal(t, 3, settings.PayableDueDays)

	w = doRequest(t, srv, "PATCH", "/api/v1/settings", `{"payable_due_days": 7, "push_notifications": true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&settings))
	assert.Equal(t, 7, settings.PayableDueDays)
	assert.True(t, settings.PushNotifications)
}

func TestServer_Settings_ValidationError(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "PATCH", "/api/v1/settings", `{"payable_due_days": 0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "payable_due_days", resp["field"])
	assert.Contains(t, resp["error"], "payable_due_days")

	// The record is unchanged.
	w = doRequest(t, srv, "GET", "/api/v1/settings", "")
	var settings model.NotificationSettings
	require.NoError(t, json.NewDecoder(w.Body).Decode(&settings))
	assert.Equal(t, 3, settings.PayableDueDays)
}

func TestServer_Settings_BadBody(t *testing.T) {
	srv := setupServer(t)
	w := doRequest(t, srv, "PATCH", "/api/v1/settings", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Payables_List(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "GET", "/api/v1/payables", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var payables []model.Payable
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payables))
	require.Len(t, payables, 1)
	assert.Equal(t, "Rent", payables[0].Description)

	w = doRequest(t, srv, "GET", "/api/v1/payables?status=paid", "")
	payables = nil
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payables))
	assert.Empty(t, payables)
}

func TestServer_Payables_CreateTriggersAlert(t *testing.T) {
	srv := setupServer(t)

	due := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	body := `{"description": "Power", "amount": "80", "due_date": "` + due + `"}`
	w := doRequest(t, srv, "POST", "/api/v1/payables", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created model.Payable
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.PayablePending, created.Status)

	// The mutation regenerated the collection; a due-soon alert now exists.
	w = doRequest(t, srv, "GET", "/api/v1/alerts?type=payable_due", "")
	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "due-"+created.ID, alerts[0].ID)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
}

func TestServer_Payables_CreateValidation(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "POST", "/api/v1/payables", `{"amount": "80"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, "POST", "/api/v1/payables", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_PayablePay(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "POST", "/api/v1/payables/p1/pay", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Paying cleared the overdue alert on the follow-up regeneration.
	w = doRequest(t, srv, "GET", "/api/v1/alerts?type=payable_overdue", "")
	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	assert.Empty(t, alerts)

	w = doRequest(t, srv, "POST", "/api/v1/payables/nope/pay", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Transactions_Create(t *testing.T) {
	srv := setupServer(t)

	body := `{"kind": "expense", "description": "Groceries", "category": "groceries", "amount": "420"}`
	w := doRequest(t, srv, "POST", "/api/v1/transactions", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	// The expense pushed the groceries budget to 84%, so a budget alert
	// appeared on the follow-up regeneration.
	w = doRequest(t, srv, "GET", "/api/v1/alerts?type=budget_limit", "")
	var alerts []model.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
}

func TestServer_Transactions_StorageError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(store, nil, nil, logger)
	srv := server.NewServer(eng, store, ledger.New(store, logger), logger)

	// A dead store makes Record fail inside storage, not validation.
	require.NoError(t, store.Close())

	body := `{"kind": "expense", "description": "x", "amount": "10"}`
	w := doRequest(t, srv, "POST", "/api/v1/transactions", body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal error")
	assert.NotContains(t, w.Body.String(), "store transaction")
}

func TestServer_Transactions_CreateInvalid(t *testing.T) {
	srv := setupServer(t)

	w := doRequest(t, srv, "POST", "/api/v1/transactions", `{"kind": "transfer", "description": "x", "amount": "10"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, "POST", "/api/v1/transactions", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Summary(t *testing.T) {
	srv := setupServer(t)

	body := `{"kind": "income", "description": "Salary", "amount": "3000"}`
	w := doRequest(t, srv, "POST", "/api/v1/transactions", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, srv, "GET", "/api/v1/summary?period=monthly", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var summary model.TransactionSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, int64(1), summary.RecordCount)
	assert.True(t, summary.TotalIncome.Equal(decimal.NewFromInt(3000)))
}
