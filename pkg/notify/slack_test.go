package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestfin/gestfin/pkg/model"
	"github.com/gestfin/gestfin/pkg/notify"
)

func TestSlackNotifier_Name(t *testing.T) {
	n := notify.NewSlackNotifier("https://hooks.slack.com/services/x", "#gestfin")
	assert.Equal(t, "slack", n.Name())
}

func TestSlackNotifier_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := notify.NewSlackNotifier(server.URL, "#gestfin")
	err := n.Send(context.Background(), testAlert())
	require.NoError(t, err)

	assert.Equal(t, "#gestfin", received["channel"])

	attachments, ok := received["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)

	attachment := attachments[0].(map[string]any)
	assert.Equal(t, "#cc0000", attachment["color"])
	assert.Equal(t, "Gestfin: Payable overdue", attachment["title"])
	assert.Equal(t, "Gestfin", attachment["footer"])
}

func TestSlackNotifier_Send_SeverityColors(t *testing.T) {
	tests := []struct {
		severity model.Severity
		color    string
	}{
		{model.SeverityLow, "#36a64f"},
		{model.SeverityMedium, "#ff9900"},
		{model.SeverityHigh, "#ff0000"},
		{model.SeverityCritical, "#cc0000"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			var received map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			alert := testAlert()
			alert.Severity = tt.severity

			n := notify.NewSlackNotifier(server.URL, "")
			require.NoError(t, n.Send(context.Background(), alert))

			attachment := received["attachments"].([]any)[0].(map[string]any)
			assert.Equal(t, tt.color, attachment["color"])
		})
	}
}

func TestSlackNotifier_Send_DueDateField(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	alert := testAlert()
	alert.DueDate = &due

	n := notify.NewSlackNotifier(server.URL, "")
	require.NoError(t, n.Send(context.Background(), alert))

	attachment := received["attachments"].([]any)[0].(map[string]any)
	fields := attachment["fields"].([]any)
	require.Len(t, fields, 4)

	last := fields[3].(map[string]any)
	assert.Equal(t, "Due", last["title"])
	assert.Equal(t, "2026-03-15", last["value"])
}

func TestSlackNotifier_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := notify.NewSlackNotifier(server.URL, "")
	err := n.Send(context.Background(), testAlert())
	assert.Error(t, err)
}
