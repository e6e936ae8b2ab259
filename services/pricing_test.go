package services

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"plain number", "129.00", 129.00, true},
		{"currency prefix", "$129.00", 129.00, true},
		{"thousands separator", "$1,299.50", 1299.50, true},
		{"whitespace", "  $45.00  ", 45.00, true},
		{"integer", "99", 99, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"text", "POA", 0, false},
		{"zero", "0.00", 0, false},
		{"negative", "-10.00", 0, false},
		{"trailing garbage", "12.00ea", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		quantity int
		want     float64
	}{
		{"single unit", 10.00, 1, 10.00},
		{"multiple units", 10.00, 2, 20.00},
		{"fractional price", 15.50, 3, 46.50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineTotal(tt.price, tt.quantity); got != tt.want {
				t.Errorf("LineTotal(%v, %d) = %v, want %v", tt.price, tt.quantity, got, tt.want)
			}
		})
	}
}
