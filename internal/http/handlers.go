package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expenseiq/internal/core"
	"expenseiq/internal/log"
	"expenseiq/internal/services"
)

// expenseDTO is the wire form of a record. Amounts travel as decimal
// currency units, dates as YYYY-MM-DD.
type expenseDTO struct {
	ID          string  `json:"id"`
	ExpenseDate string  `json:"expenseDate"`
	Amount      float64 `json:"amount"`
	VendorName  string  `json:"vendorName"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Anomaly     bool    `json:"anomaly"`
}

type createExpenseRequest struct {
	ExpenseDate string  `json:"expenseDate"`
	Amount      float64 `json:"amount"`
	VendorName  string  `json:"vendorName"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

type totalDTO struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type dashboardDTO struct {
	Month        string       `json:"month"`
	TotalSpend   float64      `json:"totalSpend"`
	Transactions int          `json:"transactions"`
	Categories   []totalDTO   `json:"categories"`
	TopVendors   []totalDTO   `json:"topVendors"`
	Anomalies    []expenseDTO `json:"anomalies"`
	Months       []string     `json:"months"`
}

type importResultDTO struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

func toDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		ExpenseDate: e.Date.String(),
		Amount:      e.Amount.Float(),
		VendorName:  e.Vendor,
		Description: e.Description,
		Category:    string(e.Category),
		Anomaly:     e.Anomaly,
	}
}

func toDTOs(records []core.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(records))
	for _, e := range records {
		out = append(out, toDTO(e))
	}
	return out
}

func toDashboardDTO(d services.Dashboard) dashboardDTO {
	out := dashboardDTO{
		Month:        d.Month,
		TotalSpend:   d.TotalSpend.Float(),
		Transactions: d.Transactions,
		Categories:   make([]totalDTO, 0, len(d.Categories)),
		TopVendors:   make([]totalDTO, 0, len(d.TopVendors)),
		Anomalies:    toDTOs(d.Anomalies),
		Months:       d.Months,
	}
	if out.Months == nil {
		out.Months = []string{}
	}
	for _, c := range d.Categories {
		out.Categories = append(out.Categories, totalDTO{Label: string(c.Category), Total: c.Total.Float()})
	}
	for _, v := range d.TopVendors {
		out.TopVendors = append(out.TopVendors, totalDTO{Label: v.Vendor, Total: v.Total.Float()})
	}
	return out
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReady verifies the storage dependency with a lightweight list.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	if _, err := s.svc.ListExpenses(ctx); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed",
			log.FieldError, err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleExpenses routes the collection endpoint: GET lists the working
// set, POST creates a record.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListExpenses(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListExpenses(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List expenses failed",
			log.FieldError, err.Error(), log.FieldOperation, log.OpList)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	writeJSON(w, http.StatusOK, toDTOs(records))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e := core.Expense{
		Amount:      core.MoneyFromFloat(req.Amount),
		Vendor:      sanitizeInput(req.VendorName),
		Description: sanitizeInput(req.Description),
		Category:    core.Category(strings.TrimSpace(req.Category)),
	}
	if strings.TrimSpace(req.ExpenseDate) != "" {
		date, err := core.ParseDate(req.ExpenseDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid expense date, want YYYY-MM-DD")
			return
		}
		e.Date = date
	}

	saved, err := s.svc.AddExpense(r.Context(), e)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidDate) ||
			errors.Is(err, core.ErrInvalidCategory) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Create expense failed",
			log.FieldError, err.Error(), log.FieldOperation, log.OpCreate)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateDashboards()
	s.structured.LogExpenseCreated(r.Context(), saved.Vendor, saved.Amount.Cents, string(saved.Category), saved.ID)

	writeJSON(w, http.StatusCreated, toDTO(saved))
}

// handleExpenseByID handles DELETE /api/expenses/{id}.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	if err := s.svc.DeleteExpense(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "expense not found")
		case errors.Is(err, strconv.ErrSyntax), errors.Is(err, strconv.ErrRange):
			writeError(w, http.StatusBadRequest, "invalid expense id")
		default:
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Delete expense failed",
				log.FieldError, err.Error(),
				log.FieldExpenseID, id,
				log.FieldOperation, log.OpDelete)
			writeError(w, http.StatusInternalServerError, "failed to delete expense")
		}
		return
	}

	s.invalidateDashboards()
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload ingests a CSV file from a multipart form. Rows that fail
// the amount invariant are dropped, not errors; the response reports
// counts only.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// 10 MB is plenty for expense exports.
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	summary, err := s.svc.ImportCSV(r.Context(), file)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV import failed",
			log.FieldError, err.Error(), log.FieldOperation, log.OpImport)
		writeError(w, http.StatusUnprocessableEntity, "could not parse CSV file")
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusOK, importResultDTO{
		Accepted: summary.Accepted,
		Dropped:  summary.Dropped,
	})
}

// handleDashboard serves the aggregated month view, cached per filter.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	month := monthParam(r)

	if cached, found := s.dashCache.Get(month); found {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Dashboard cache hit",
			log.FieldMonth, month)
		writeJSON(w, http.StatusOK, toDashboardDTO(cached))
		return
	}

	dash, err := s.svc.MonthDashboard(r.Context(), month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard failed",
			log.FieldError, err.Error(),
			log.FieldMonth, month,
			log.FieldOperation, log.OpDashboard)
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	s.dashCache.Set(month, dash)
	writeJSON(w, http.StatusOK, toDashboardDTO(dash))
}
