package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-12.5", -1250, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, c := range cases {
		m, err := ParseMoney(c.in)
		if c.ok {
			if err != nil {
				t.Fatalf("ParseMoney(%q) unexpected error: %v", c.in, err)
			}
			if m.Cents() != c.cents {
				t.Fatalf("ParseMoney(%q) = %d cents, want %d", c.in, m.Cents(), c.cents)
			}
		} else if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseMoney(%q) expected ErrInvalidAmount, got %v", c.in, err)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12.5, "b": "1250"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.A.Cents() != 1250 || in.B.Cents() != 125000 {
		t.Fatalf("got %d and %d cents", in.A.Cents(), in.B.Cents())
	}

	out, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":"12.50","b":"1250.00"}` {
		t.Fatalf("unexpected JSON %s", out)
	}

	var bad struct {
		A Money `json:"a"`
	}
	for _, body := range []string{`{"a": "twelve"}`, `{"a": null}`, `{"a": true}`} {
		if err := json.Unmarshal([]byte(body), &bad); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: expected ErrInvalidAmount, got %v", body, err)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyFromCents(1050)
	b := NewMoneyFromCents(250)
	if got := a.Add(b).Cents(); got != 1300 {
		t.Fatalf("Add = %d", got)
	}
	if got := b.Sub(a).Cents(); got != -800 {
		t.Fatalf("Sub = %d", got)
	}
	if b.Sub(a).IsPositive() {
		t.Fatalf("negative amount reported positive")
	}
	if a.String() != "10.50" {
		t.Fatalf("String = %q", a.String())
	}
}
