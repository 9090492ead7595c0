package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"soyte/internal/core"
	"soyte/internal/ledger"
	"soyte/internal/log"
)

// handleEntries dispatches the entry collection: POST submits a
// candidate, DELETE removes a single entry by id.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.submitEntry(w, r)
	case http.MethodDelete:
		s.deleteEntry(w, r)
	default:
		MethodNotAllowedError("POST, DELETE").Write(w)
	}
}

// submitEntry runs a candidate through the reconciler. An identity-key
// collision with no "confirm" field comes back as 409; the client
// re-posts the same form with confirm=yes to merge or confirm=no to
// discard.
func (s *Server) submitEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", log.FieldError, err, "url", r.URL.Path)
		BadRequestError("Dữ liệu gửi lên không hợp lệ").Write(w)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)

	cand := ledger.Candidate{
		Employee: sanitizeInput(r.Form.Get("employee")),
		Day:      formInt(r, "day", 0),
		School:   sanitizeInput(r.Form.Get("school")),
		Class:    sanitizeInput(r.Form.Get("class")),
		Books:    strings.TrimSpace(r.Form.Get("books")),
		Note:     sanitizeInput(r.Form.Get("note")),
	}

	var decide ledger.DecisionFunc
	switch strings.ToLower(strings.TrimSpace(r.Form.Get("confirm"))) {
	case "yes":
		decide = func(core.Entry) bool { return true }
	case "no":
		decide = func(core.Entry) bool { return false }
	}

	res, err := s.reconciler.Submit(r.Context(), userID, month, cand, decide)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			UnprocessableEntityError(msg).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Entry submit error", log.FieldError, err, log.FieldUserID, userID, log.FieldMonth, month.Key())
		InternalServerError("Lỗi khi lưu bản ghi").Write(w)
		return
	}

	switch res.Outcome {
	case ledger.Created:
		s.invalidateSummary(userID, month)
		NewHTMXResponse().
			Status(http.StatusCreated).
			TriggerEntryCreated(month.Key()).
			TriggerFormReset().
			BodyHTML(`<div class="success">Đã ghi ` + template.HTMLEscapeString(cand.Books) +
				` quyển cho ` + template.HTMLEscapeString(cand.Employee) +
				` (` + template.HTMLEscapeString(cand.School) + ` / ` + template.HTMLEscapeString(cand.Class) + `)</div>`).
			Write(w)
	case ledger.Updated:
		s.invalidateSummary(userID, month)
		NewHTMXResponse().
			TriggerEntryUpdated(month.Key()).
			TriggerFormReset().
			BodyHTML(`<div class="success">Đã sửa bản ghi từ ` +
				fmt.Sprintf("%d", res.Existing.Books) + ` thành ` +
				template.HTMLEscapeString(cand.Books) + ` quyển</div>`).
			Write(w)
	case ledger.Unchanged:
		NewHTMXResponse().
			BodyHTML(`<div class="info">Đã giữ nguyên bản ghi cũ (` +
				fmt.Sprintf("%d", res.Existing.Books) + ` quyển)</div>`).
			Write(w)
	case ledger.CollisionPending:
		NewHTMXResponse().
			Status(http.StatusConflict).
			TriggerEntryCollision(res.Existing.Books).
			BodyHTML(`<div class="warning">Đã có bản ghi ` + fmt.Sprintf("%d", res.Existing.Books) +
				` quyển cho nhân viên, ngày, trường và lớp này. Gửi lại với confirm=yes để sửa thành số mới hoặc confirm=no để giữ bản ghi cũ.</div>`).
			Write(w)
	default:
		slog.ErrorContext(r.Context(), "Unknown reconcile outcome", "outcome", string(res.Outcome))
		InternalServerError("Kết quả không xác định").Write(w)
	}
}

// deleteEntry removes one entry by id.
func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	userID := s.requestUser(r)
	month := requestMonth(r)
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		BadRequestError("Thiếu mã bản ghi").Write(w)
		return
	}

	if err := s.reconciler.DeleteEntries(r.Context(), userID, month, []string{id}); err != nil {
		slog.ErrorContext(r.Context(), "Entry delete error", log.FieldError, err, log.FieldEntryID, id)
		InternalServerError("Lỗi khi xoá bản ghi").Write(w)
		return
	}

	s.invalidateSummary(userID, month)
	NewHTMXResponse().
		TriggerEntryDeleted(month.Key()).
		BodyHTML(`<div class="success">Đã xoá bản ghi</div>`).
		Write(w)
}

// handleEditEntry replaces the quantity (and note) of an entry in place.
func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Dữ liệu gửi lên không hợp lệ").Write(w)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)
	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Thiếu mã bản ghi").Write(w)
		return
	}

	books := strings.TrimSpace(r.Form.Get("books"))
	note := sanitizeInput(r.Form.Get("note"))
	if err := s.reconciler.EditQuantity(r.Context(), userID, month, id, books, note); err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidQuantity):
			UnprocessableEntityError("Số quyển không hợp lệ").Write(w)
		case strings.Contains(err.Error(), "not found"):
			NotFoundError("Không tìm thấy bản ghi").Write(w)
		default:
			slog.ErrorContext(r.Context(), "Entry edit error", log.FieldError, err, log.FieldEntryID, id)
			InternalServerError("Lỗi khi sửa bản ghi").Write(w)
		}
		return
	}

	s.invalidateSummary(userID, month)
	NewHTMXResponse().
		TriggerEntryUpdated(month.Key()).
		BodyHTML(`<div class="success">Đã cập nhật bản ghi</div>`).
		Write(w)
}

// handleBatchDelete removes a set of entries in one shot. IDs arrive as
// repeated "id" fields or one comma-separated "ids" field.
func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Dữ liệu gửi lên không hợp lệ").Write(w)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)

	ids := r.Form["id"]
	if joined := strings.TrimSpace(r.Form.Get("ids")); joined != "" {
		for _, id := range strings.Split(joined, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		BadRequestError("Chưa chọn bản ghi nào").Write(w)
		return
	}

	if err := s.reconciler.DeleteEntries(r.Context(), userID, month, ids); err != nil {
		slog.ErrorContext(r.Context(), "Batch delete error", log.FieldError, err, "count", len(ids))
		InternalServerError("Lỗi khi xoá bản ghi").Write(w)
		return
	}

	s.invalidateSummary(userID, month)
	NewHTMXResponse().
		TriggerEntryDeleted(month.Key()).
		BodyHTML(`<div class="success">Đã xoá ` + fmt.Sprintf("%d", len(ids)) + ` bản ghi</div>`).
		Write(w)
}

// validationMessage maps domain validation errors to user-facing text.
func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrMissingField):
		return "Thiếu trường bắt buộc", true
	case errors.Is(err, core.ErrDayOutOfRange):
		return "Ngày không nằm trong tháng báo cáo", true
	case errors.Is(err, core.ErrInvalidQuantity):
		return "Số quyển không hợp lệ", true
	case errors.Is(err, core.ErrEmptyName):
		return "Tên không được để trống", true
	}
	return "", false
}
