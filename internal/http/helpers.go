package http

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"soyte/internal/core"
)

// requestUser resolves the acting user: the X-User-ID header when set,
// otherwise the configured single-tenant default.
func (s *Server) requestUser(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-User-ID")); v != "" {
		return sanitizeInput(v)
	}
	return s.defaultUser
}

// requestMonth reads the "month" parameter (YYYY-MM) from the query or
// form, falling back to the current month on absence or bad input.
func requestMonth(r *http.Request) core.Month {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		v = strings.TrimSpace(r.FormValue("month"))
	}
	if v == "" {
		return core.CurrentMonth()
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return core.CurrentMonth()
	}
	return m
}

// requestPrice reads the "price" query override (thousands of đồng per
// book), falling back to the configured price. The override is
// per-request; nothing is persisted.
func (s *Server) requestPrice(r *http.Request) float64 {
	v := strings.TrimSpace(r.URL.Query().Get("price"))
	if v == "" {
		return s.projector.Price
	}
	p, err := strconv.ParseFloat(v, 64)
	if err != nil || p <= 0 {
		return s.projector.Price
	}
	return p
}

// formInt parses an integer form field, returning fallback on absence
// or garbage. Range checks belong to the domain validation, not here.
func formInt(r *http.Request, field string, fallback int) int {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// schoolNames returns the distinct school names across a month's
// classes, sorted. Schools have no table of their own.
func schoolNames(classes []core.Class) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range classes {
		if _, ok := seen[c.School]; ok {
			continue
		}
		seen[c.School] = struct{}{}
		names = append(names, c.School)
	}
	sort.Strings(names)
	return names
}
