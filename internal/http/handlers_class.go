package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"soyte/internal/core"
	"soyte/internal/log"
)

// handleClasses manages the month-scoped class list. Schools are not a
// collection of their own; they exist as the distinct School values of
// the month's classes.
func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createClass(w, r)
	case http.MethodDelete:
		s.deleteClass(w, r)
	default:
		MethodNotAllowedError("POST, DELETE").Write(w)
	}
}

func (s *Server) createClass(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Dữ liệu gửi lên không hợp lệ").Write(w)
		return
	}

	userID := s.requestUser(r)
	month := requestMonth(r)
	c := core.Class{
		School: sanitizeInput(r.Form.Get("school")),
		Name:   sanitizeInput(r.Form.Get("name")),
	}

	id, err := s.store.CreateClass(r.Context(), userID, month, c)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			UnprocessableEntityError(msg).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Class create error", log.FieldError, err, log.FieldUserID, userID, log.FieldMonth, month.Key())
		InternalServerError("Lỗi khi thêm lớp").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Class created", "class_id", id, log.FieldSchool, c.School, log.FieldMonth, month.Key())
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerClassChanged(month.Key()).
		TriggerFormReset().
		BodyHTML(`<div class="success">Đã thêm lớp ` + template.HTMLEscapeString(c.Name) +
			` (` + template.HTMLEscapeString(c.School) + `)</div>`).
		Write(w)
}

func (s *Server) deleteClass(w http.ResponseWriter, r *http.Request) {
	userID := s.requestUser(r)
	month := requestMonth(r)
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		BadRequestError("Thiếu mã lớp").Write(w)
		return
	}

	if err := s.store.DeleteClass(r.Context(), userID, month, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			NotFoundError("Không tìm thấy lớp").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Class delete error", log.FieldError, err, "class_id", id, log.FieldMonth, month.Key())
		InternalServerError("Lỗi khi xoá lớp").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerClassChanged(month.Key()).
		BodyHTML(`<div class="success">Đã xoá lớp</div>`).
		Write(w)
}
