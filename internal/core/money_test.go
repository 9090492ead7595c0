package core

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"3.5", 3.5, false},
		{"3,5", 3.5, false},
		{" 10 ", 10, false},
		{"0", 0, false},
		{"", 0, true},
		{"-1", 0, true},
		{"+2", 0, true},
		{"abc", 0, true},
		{"3.5x", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePrice(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePrice(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeMoney(t *testing.T) {
	tests := []struct {
		books int
		price float64
		want  int64
	}{
		{100, 3.5, 350000},
		{200, 3.5, 700000},
		{0, 3.5, 0},
		{1, 0.3333, 333}, // 333.3 rounds down
		{3, 0.0005, 2},   // 1.5 rounds half away from zero
	}
	for _, tt := range tests {
		if got := ComputeMoney(tt.books, tt.price); got != tt.want {
			t.Errorf("ComputeMoney(%d, %v) = %d, want %d", tt.books, tt.price, got, tt.want)
		}
	}
}

func TestFormatVND(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 ₫"},
		{700, "700 ₫"},
		{700000, "700.000 ₫"},
		{1234567, "1.234.567 ₫"},
		{-5000, "-5.000 ₫"},
	}
	for _, tt := range tests {
		if got := FormatVND(tt.in); got != tt.want {
			t.Errorf("FormatVND(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
