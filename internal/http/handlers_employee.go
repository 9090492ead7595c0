package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"soyte/internal/core"
	"soyte/internal/log"
)

// handleEmployees manages the employee roster. Deleting an employee
// never touches the entries they produced; history keeps the name.
func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createEmployee(w, r)
	case http.MethodDelete:
		s.deleteEmployee(w, r)
	default:
		MethodNotAllowedError("POST, DELETE").Write(w)
	}
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Dữ liệu gửi lên không hợp lệ").Write(w)
		return
	}

	userID := s.requestUser(r)
	name := sanitizeInput(r.Form.Get("name"))

	id, err := s.store.CreateEmployee(r.Context(), userID, core.Employee{Name: name})
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			UnprocessableEntityError(msg).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Employee create error", log.FieldError, err, log.FieldUserID, userID)
		InternalServerError("Lỗi khi thêm nhân viên").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Employee created", "employee_id", id, log.FieldUserID, userID)
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerEmployeeChanged().
		TriggerFormReset().
		BodyHTML(`<div class="success">Đã thêm nhân viên ` + template.HTMLEscapeString(name) + `</div>`).
		Write(w)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	userID := s.requestUser(r)
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		BadRequestError("Thiếu mã nhân viên").Write(w)
		return
	}

	if err := s.store.DeleteEmployee(r.Context(), userID, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			NotFoundError("Không tìm thấy nhân viên").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Employee delete error", log.FieldError, err, "employee_id", id)
		InternalServerError("Lỗi khi xoá nhân viên").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerEmployeeChanged().
		BodyHTML(`<div class="success">Đã xoá nhân viên</div>`).
		Write(w)
}
