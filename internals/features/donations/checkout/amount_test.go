package checkout

import (
	"errors"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cfg := DefaultAmountConfig()
	tests := []struct {
		in      string
		want    int64
		wantErr string
	}{
		{"25", 2500, ""},
		{"25.5", 2550, ""},
		{" 10.005 ", 1001, ""},
		{"1", 100, ""},
		{"10000", 1000000, ""},
		{"0.99", 0, "Please enter an amount between $1.00 and $10000.00"},
		{"10000.01", 0, "Please enter an amount between $1.00 and $10000.00"},
		{"-5", 0, "Please enter an amount between $1.00 and $10000.00"},
		{"", 0, msgInvalidAmount},
		{"ten", 0, msgInvalidAmount},
		{"NaN", 0, msgInvalidAmount},
		// no prefix parsing: a browser's parseFloat would read 25 here
		{"25abc", 0, msgInvalidAmount},
		{"1e10000000", 0, msgInvalidAmount},
	}
	for _, tt := range tests {
		got, err := cfg.ParseAmount(tt.in)
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ParseAmount(%q) error = %v, want %q", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseAmount(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestAmountSelector(t *testing.T) {
	s := NewAmountSelector(DefaultAmountConfig())

	if s.Enter("oops") {
		t.Fatal("invalid input must not commit")
	}
	if s.Amount() != 0 || s.FieldError() == "" || s.Input() != "oops" {
		t.Fatalf("after invalid input: amount=%d err=%q", s.Amount(), s.FieldError())
	}

	changed, err := s.SelectPreset(5000)
	if err != nil || !changed {
		t.Fatalf("SelectPreset() = %v, %v", changed, err)
	}
	if s.FieldError() != "" || s.Input() != "" || s.Preset() != 5000 {
		t.Errorf("preset did not clear free-form state")
	}

	if changed, _ := s.SelectPreset(5000); changed {
		t.Error("re-selecting the same preset reported a change")
	}
	if _, err := s.SelectPreset(4200); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("SelectPreset(4200) error = %v", err)
	}

	if !s.Enter("42") || s.Amount() != 4200 || s.Preset() != 0 {
		t.Errorf("Enter(42): amount=%d preset=%d", s.Amount(), s.Preset())
	}
	if s.Enter("0") || s.Amount() != 4200 {
		t.Errorf("out-of-range input changed amount to %d", s.Amount())
	}

	s.Reset()
	if s.Amount() != 0 || s.Preset() != 0 || s.Input() != "" || s.FieldError() != "" {
		t.Error("Reset() left state behind")
	}
}

func TestEnterHugeExponentDoesNotStall(t *testing.T) {
	s := NewAmountSelector(DefaultAmountConfig())
	start := time.Now()
	if s.Enter("1e10000000") {
		t.Fatal("huge input must not commit")
	}
	if d := time.Since(start); d > 50*time.Millisecond {
		t.Errorf("Enter() took %s", d)
	}
	if s.FieldError() != msgInvalidAmount {
		t.Errorf("FieldError() = %q", s.FieldError())
	}
}
