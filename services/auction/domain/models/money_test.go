package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0.00", false},
		{"125", "125.00", false},
		{"125.5", "125.50", false},
		{"125.50", "125.50", false},
		{"125.500", "125.50", false},
		{"-3.25", "-3.25", false},
		{"999999999999.99", "999999999999.99", false},
		{"1000000000000", "", true},
		{"1.234", "", true},
		{"1.2e1", "12.00", false},
		{"1500e-3", "1.50", false},
		{"0e10000000", "0.00", false},
		{"1e10000000", "", true},
		{"1e-10000000", "", true},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMoney(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %s", tt.in, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.String() != tt.want {
				t.Fatalf("got %s, want %s", m, tt.want)
			}
		})
	}
}

func TestParseMoney_HugeExponentsRejectedCheaply(t *testing.T) {
	inputs := []string{
		"1e10000000",
		"-1e10000000",
		"1e-10000000",
		"123456789e2147483647",
		strings.Repeat("9", 10000),
	}
	for _, in := range inputs {
		name := in
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			_, err := ParseMoneyJSON(json.RawMessage(in))
			if err == nil {
				t.Fatal("expected error")
			}
			if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
				t.Errorf("took %s", elapsed)
			}
			if len(err.Error()) > 100 {
				t.Errorf("error message is %d bytes", len(err.Error()))
			}
		})
	}
}

func TestParseMoneyJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"number", `150.5`, "150.50", false},
		{"string", `"150.50"`, "150.50", false},
		{"padded", ` 42 `, "42.00", false},
		{"null", `null`, "", true},
		{"empty", ``, "", true},
		{"word", `"lots"`, "", true},
		{"bool", `true`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMoneyJSON(json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.String() != tt.want {
				t.Fatalf("got %s, want %s", m, tt.want)
			}
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MustParseMoney("7.5")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":7.50}` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var out struct {
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Amount.Equal(MustParseMoney("7.50")) {
		t.Fatalf("got %s", out.Amount)
	}
}

func TestMoney_Compare(t *testing.T) {
	a, b := MustParseMoney("10"), MustParseMoney("10.01")
	if !b.GreaterThan(a) || a.GreaterThan(b) {
		t.Fatal("10.01 must be greater than 10")
	}
	if a.GreaterThan(MustParseMoney("10.00")) {
		t.Fatal("equal amounts are not greater")
	}
	if !a.IsPositive() || MustParseMoney("0").IsPositive() || !MustParseMoney("-1").IsNegative() {
		t.Fatal("sign helpers disagree")
	}
}
