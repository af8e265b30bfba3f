package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"INR", INR(18000), 18000, "inr", "₹180.00"},
		{"Rupees", Rupees(250), 25000, "inr", "₹250.00"},
		{"Lakh grouping", INR(12345600), 12345600, "inr", "₹1,23,456.00"},
		{"Crore grouping", Rupees(12345678), 1234567800, "inr", "₹1,23,45,678.00"},
		{"Negative", INR(-5050), -5050, "inr", "-₹50.50"},
		{"Zero INR", Zero("INR"), 0, "inr", "₹0.00"},
		{"USD grouping", Money{Amount: 123456789, Currency: "usd"}, 123456789, "usd", "$1,234,567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"180", 18000, false},
		{"180.5", 18050, false},
		{"0.01", 1, false},
		{"1,250.75", 125075, false},
		{"  42 ", 4200, false},
		{"10.005", 1001, false},
		{"-3.2", -320, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseINR(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseINR(%q): %v", tt.in, err)
			}
			if got.Amount != tt.want || got.Currency != "inr" {
				t.Errorf("ParseINR(%q) = %+v, want %d paise", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return INR(100).Add(INR(200)) }, INR(300)},
		{"Subtract", func() Money { return INR(500).Subtract(INR(200)) }, INR(300)},
		{"Multiply", func() Money { return INR(10000).Multiply(2) }, INR(20000)},
		{"Negate", func() Money { return INR(100).Negate() }, INR(-100)},
		{"FloorZero negative", func() Money { return INR(-100).FloorZero() }, INR(0)},
		{"FloorZero positive", func() Money { return INR(100).FloorZero() }, INR(100)},
		{"Zero value adds", func() Money { return Money{}.Add(INR(700)) }, INR(700)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.op(); !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	_ = INR(100).Add(Money{Amount: 100, Currency: "usd"})
}

func TestMoneyMinMax(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Money
		min, max Money
	}{
		{"First smaller", INR(50), INR(100), INR(50), INR(100)},
		{"Second smaller", INR(100), INR(50), INR(50), INR(100)},
		{"Equal", INR(100), INR(100), INR(100), INR(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if minVal := tt.a.Min(tt.b); !minVal.Equal(tt.min) {
				t.Errorf("Min: got %v, want %v", minVal, tt.min)
			}
			if maxVal := tt.a.Max(tt.b); !maxVal.Equal(tt.max) {
				t.Errorf("Max: got %v, want %v", maxVal, tt.max)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(INR(18000))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	expected := `{"amount":18000,"currency":"inr","display":"₹180.00"}`
	if string(data) != expected {
		t.Errorf("JSON: got %s, want %s", string(data), expected)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !back.Equal(INR(18000)) {
		t.Errorf("round trip: got %v", back)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"99.50"`), &fromString); err != nil {
		t.Fatalf("Unmarshal string error: %v", err)
	}
	if !fromString.Equal(INR(9950)) {
		t.Errorf("string form: got %v, want ₹99.50", fromString)
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []Money
		expected Money
	}{
		{"Empty", nil, Zero("inr")},
		{"Single", []Money{INR(100)}, INR(100)},
		{"Multiple", []Money{INR(100), INR(200), INR(300)}, INR(600)},
		{"With negatives", []Money{INR(100), INR(-50), INR(200)}, INR(250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Sum(tt.values...); !result.Equal(tt.expected) {
				t.Errorf("Sum: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func BenchmarkMoneyString(b *testing.B) {
	m := INR(12345600)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.String()
	}
}

func TestCheckedArithmetic(t *testing.T) {
	if got, err := INR(3).MultiplyChecked(4); err != nil || !got.Equal(INR(12)) {
		t.Errorf("MultiplyChecked(4) = %v, %v", got, err)
	}
	if _, err := INR(3).MultiplyChecked(1 << 62); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("wrapping product: err = %v", err)
	}
	if _, err := INR(-MaxAmount).MultiplyChecked(2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative product: err = %v", err)
	}
	if got, err := INR(MaxAmount - 1).AddChecked(INR(1)); err != nil || got.Amount != MaxAmount {
		t.Errorf("AddChecked at the cap = %v, %v", got, err)
	}
	if _, err := INR(MaxAmount).AddChecked(INR(1)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AddChecked past the cap: err = %v", err)
	}
}
