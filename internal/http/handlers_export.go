package http

import (
	"log/slog"
	"net/http"
	"strings"

	"soyte/internal/core"
	"soyte/internal/excel"
	"soyte/internal/log"
)

// handleExport builds the month's workbook on the fly and streams it as
// a download. ?strategy=static swaps the formula-linked money cells for
// precomputed values; ?price= overrides the configured unit price for
// this download only.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)

	proj := s.projector
	proj.Price = s.requestPrice(r)
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("strategy"))) {
	case "static":
		proj.Strategy = excel.StaticValues
	case "formula":
		proj.Strategy = excel.FormulaLinked
	}

	entries, err := s.store.ListEntries(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Entry list error", log.FieldError, err, log.FieldUserID, userID, log.FieldMonth, month.Key())
		InternalServerError("Lỗi khi tải dữ liệu tháng").Write(w)
		return
	}
	employees, err := s.store.ListEmployees(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Employee list error", log.FieldError, err, log.FieldUserID, userID)
		InternalServerError("Lỗi khi tải danh sách nhân viên").Write(w)
		return
	}

	f, err := proj.Build(month, excel.Aggregates{
		GrandTotal:  core.Aggregate(entries, ""),
		PerEmployee: core.EmployeeSummaries(entries, employees),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Workbook build error", log.FieldError, err, log.FieldMonth, month.Key())
		InternalServerError("Lỗi khi tạo file Excel").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+excel.Filename(month)+`"`)
	if err := f.Write(w); err != nil {
		// Headers are gone by now; the broken download is all we can log.
		slog.ErrorContext(r.Context(), "Workbook write error", log.FieldError, err, log.FieldMonth, month.Key())
	}

	slog.InfoContext(r.Context(), "Workbook exported",
		log.FieldUserID, userID,
		log.FieldMonth, month.Key(),
		"strategy", string(proj.Strategy),
		"entries", len(entries))
}
