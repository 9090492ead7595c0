package http

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"soyte/internal/core"
	"soyte/internal/log"
)

type (
	dayCell struct {
		Day   int
		Books int
	}

	summaryRowView struct {
		School string
		Class  string
		Cells  []dayCell
		Total  int
		Money  string
	}

	summaryTableView struct {
		Title      string
		Rows       []summaryRowView
		TotalBooks int
		TotalMoney string
	}

	summaryView struct {
		Month    string
		Filter   string
		Days     []int
		LeadCols int // school + class + day columns, for the footer colspan
		Tables   []summaryTableView
	}
)

// handleSummary renders the aggregated month view: the grand table over
// all entries plus one table per employee with entries. With an
// ?employee= filter only that employee's table is rendered.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)
	filter := sanitizeInput(r.URL.Query().Get("employee"))
	price := s.requestPrice(r)

	entries, err := s.store.ListEntries(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Entry list error", log.FieldError, err, log.FieldUserID, userID, log.FieldMonth, month.Key())
		InternalServerError("Lỗi khi tải dữ liệu tháng").Write(w)
		return
	}

	days := make([]int, month.DaysInMonth())
	for i := range days {
		days[i] = i + 1
	}
	view := summaryView{Month: month.Key(), Filter: filter, Days: days, LeadCols: len(days) + 2}

	if filter != "" {
		if t := s.tableView(filter, core.Aggregate(entries, filter), month, price); len(t.Rows) > 0 {
			view.Tables = append(view.Tables, t)
		}
	} else {
		key := summaryCacheKey(userID, month)
		rows, found := s.summaryCache.Get(key)
		if !found {
			rows = core.Aggregate(entries, "")
			s.summaryCache.Set(key, rows)
		}
		if t := s.tableView("Tổng chung", rows, month, price); len(t.Rows) > 0 {
			view.Tables = append(view.Tables, t)
		}

		employees, err := s.store.ListEmployees(r.Context(), userID)
		if err != nil {
			slog.ErrorContext(r.Context(), "Employee list error", log.FieldError, err, log.FieldUserID, userID)
		}
		perEmployee := core.EmployeeSummaries(entries, employees)
		names := make([]string, 0, len(perEmployee))
		for name := range perEmployee {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			view.Tables = append(view.Tables, s.tableView(name, perEmployee[name], month, price))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "summary.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", log.FieldError, err, "template", "summary.html", log.FieldMonth, month.Key())
		_, _ = w.Write([]byte(`<div class="placeholder">Lỗi hiển thị bảng tổng hợp</div>`))
	}
}

// tableView flattens summary rows for the template: one cell per day of
// the month, a book total and the money value at the configured price.
func (s *Server) tableView(title string, rows []core.SummaryRow, month core.Month, price float64) summaryTableView {
	days := month.DaysInMonth()
	table := summaryTableView{Title: title}
	for _, row := range rows {
		v := summaryRowView{School: row.School, Class: row.Class}
		for d := 0; d < days; d++ {
			v.Cells = append(v.Cells, dayCell{Day: d + 1, Books: row.Days[d]})
			v.Total += row.Days[d]
		}
		v.Money = core.FormatVND(core.ComputeMoney(v.Total, price))
		table.Rows = append(table.Rows, v)
		table.TotalBooks += v.Total
	}
	table.TotalMoney = core.FormatVND(core.ComputeMoney(table.TotalBooks, price))
	return table
}

// handleDetails renders the drill-down modal for one (day, school) cell.
func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)
	school := sanitizeInput(r.URL.Query().Get("school"))
	day := formInt(r, "day", 0)

	if school == "" || strings.TrimSpace(r.URL.Query().Get("day")) == "" {
		BadRequestError("Thiếu ngày hoặc trường").Write(w)
		return
	}
	if day < 1 || day > month.DaysInMonth() {
		BadRequestError("Ngày không nằm trong tháng báo cáo").Write(w)
		return
	}

	entries, err := s.store.ListEntries(r.Context(), userID, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Entry list error", log.FieldError, err, log.FieldUserID, userID, log.FieldMonth, month.Key())
		InternalServerError("Lỗi khi tải chi tiết").Write(w)
		return
	}

	detail := core.DetailsFor(entries, day, school)
	data := struct {
		core.DayDetail
		Month string
		Money string
	}{
		DayDetail: detail,
		Month:     month.Key(),
		Money:     core.FormatVND(core.ComputeMoney(detail.TotalBooks, s.requestPrice(r))),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "details.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", log.FieldError, err, "template", "details.html", log.FieldDay, day, log.FieldSchool, school)
		_, _ = w.Write([]byte(`<div class="placeholder">Lỗi hiển thị chi tiết</div>`))
	}
}
