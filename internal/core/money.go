// Package core holds the domain model: employees, classes, dated ledger
// entries, the month-scoped aggregation engine, and the pricing rule that
// turns book counts into VND.
//
// This file covers the pricing side. Prices are quoted in nghìn VND
// (thousands of đồng) per book, so money = round(books * price * 1000).
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// DefaultPricePerBook is the price used when no configuration overrides
// it, in nghìn VND per book.
const DefaultPricePerBook = 3.5

// ParsePrice parses a price-per-book value from user input. It accepts
// both dot (3.5) and comma (3,5) decimal separators and rejects negative
// or malformed values. An empty string is not a price; callers decide the
// fallback.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidQuantity
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidQuantity
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, ErrInvalidQuantity
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidQuantity
	}
	return v, nil
}

// ComputeMoney converts a book total into đồng: round half away from zero
// on totalBooks * pricePerBook * 1000. The product is non-negative for
// all valid inputs, so this matches plain rounding.
func ComputeMoney(totalBooks int, pricePerBook float64) int64 {
	return int64(math.Round(float64(totalBooks) * pricePerBook * 1000))
}

// FormatVND renders an amount of đồng with dot thousands grouping and the
// currency suffix, e.g. 700000 -> "700.000 ₫".
func FormatVND(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out + " ₫"
}
