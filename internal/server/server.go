package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gestfin/gestfin/pkg/engine"
	"github.com/gestfin/gestfin/pkg/ledger"
	"github.com/gestfin/gestfin/pkg/model"
	"github.com/gestfin/gestfin/pkg/storage"
)

// Server exposes the alert engine and domain data over a JSON API.
type Server struct {
	engine *engine.Engine
	store  storage.Store
	ledger *ledger.Ledger
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer creates an API server.
func NewServer(eng *engine.Engine, store storage.Store, led *ledger.Ledger, logger *slog.Logger) *Server {
	s := &Server{
		engine: eng,
		store:  store,
		ledger: led,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
	s.mux.HandleFunc("GET /api/v1/alerts/count", s.handleAlertCount)
	s.mux.HandleFunc("POST /api/v1/alerts/refresh", s.handleAlertRefresh)
	s.mux.HandleFunc("POST /api/v1/alerts/read-all", s.handleAlertReadAll)
	s.mux.HandleFunc("POST /api/v1/alerts/{id}/read", s.handleAlertRead)
	s.mux.HandleFunc("DELETE /api/v1/alerts/{id}", s.handleAlertDelete)

	s.mux.HandleFunc("GET /api/v1/settings", s.handleSettingsGet)
	s.mux.HandleFunc("PATCH /api/v1/settings", s.handleSettingsPatch)

	s.mux.HandleFunc("GET /api/v1/payables", s.handlePayablesList)
	s.mux.HandleFunc("POST /api/v1/payables", s.handlePayablesCreate)
	s.mux.HandleFunc("POST /api/v1/payables/{id}/pay", s.handlePayablePay)

	s.mux.HandleFunc("POST /api/v1/transactions", s.handleTransactionsCreate)
	s.mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.engine.Alerts()

	q := r.URL.Query()
	alertType := model.AlertType(q.Get("type"))
	severity := model.Severity(q.Get("severity"))
	unreadOnly := q.Get("unread") == "true"

	filtered := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if alertType != "" && a.Type != alertType {
			continue
		}
		if severity != "" && a.Severity != severity {
			continue
		}
		if unreadOnly && a.IsRead {
			continue
		}
		filtered = append(filtered, a)
	}

	writeJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleAlertCount(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"unread": s.engine.UnreadCount()})
}

func (s *Server) handleAlertRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.engine.Regenerate(ctx); err != nil {
		s.logger.Error("regenerate alerts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Alerts())
}

func (s *Server) handleAlertRead(w http.ResponseWriter, r *http.Request) {
	s.engine.MarkAsRead(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlertReadAll(w http.ResponseWriter, _ *http.Request) {
	s.engine.MarkAllAsRead()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlertDelete(w http.ResponseWriter, r *http.Request) {
	s.engine.DeleteAlert(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Settings())
}

func (s *Server) handleSettingsPatch(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := s.engine.UpdateSettings(patch)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": verr.Error(),
				"field": verr.Field,
			})
			return
		}
		s.logger.Error("update settings", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePayablesList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := model.PayableStatus(r.URL.Query().Get("status"))
	payables, err := s.store.ListPayables(ctx, status)
	if err != nil {
		s.logger.Error("list payables", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if payables == nil {
		payables = []model.Payable{}
	}
	writeJSON(w, http.StatusOK, payables)
}

func (s *Server) handlePayablesCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var p model.Payable
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Description == "" || p.DueDate.IsZero() {
		http.Error(w, "description and due_date are required", http.StatusBadRequest)
		return
	}

	if err := s.store.CreatePayable(ctx, &p); err != nil {
		s.logger.Error("create payable", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.regenerate(ctx)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePayablePay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := r.PathValue("id")
	if err := s.store.MarkPayablePaid(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "payable not found", http.StatusNotFound)
			return
		}
		s.logger.Error("mark payable paid", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.regenerate(ctx)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransactionsCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var t model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.ledger.Record(ctx, &t); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("record transaction", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.regenerate(ctx)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	period := model.BudgetPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = model.PeriodMonthly
	}

	start, end := model.PeriodBounds(period)
	summary, err := s.ledger.Summary(ctx, model.TransactionFilter{
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		s.logger.Error("summarize transactions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// regenerate re-runs the rules after a source-data mutation; a failed pass
// only costs freshness, so it is logged rather than surfaced.
func (s *Server) regenerate(ctx context.Context) {
	if err := s.engine.Regenerate(ctx); err != nil {
		s.logger.Error("regenerate alerts", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
