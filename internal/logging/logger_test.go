package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestFieldHelpers tests the Field constructor functions.
func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name      string
		field     Field
		wantKey   string
		wantValue any
	}{
		{"String", String("model", "hyperbolic"), "model", "hyperbolic"},
		{"Int", Int("points", 42), "points", 42},
		{"Uint64", Uint64("evals", 800), "evals", uint64(800)},
		{"Float64", Float64("rmse", 0.0125), "rmse", 0.0125},
		{"Duration", Duration("elapsed", time.Second), "elapsed", time.Second},
		{"Err nil", Err(nil), "error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.field.Key, tt.wantKey)
			}
			if tt.field.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", tt.field.Value, tt.wantValue)
			}
		})
	}

	t.Run("Err keeps the error value", func(t *testing.T) {
		testErr := errors.New("diverged")
		if f := Err(testErr); f.Value != testErr {
			t.Errorf("Err().Value = %v, want %v", f.Value, testErr)
		}
	})
}

// TestNewLogger tests the component-tagged logger constructor.
func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "orchestration")

	logger.Info("fit finished", String("model", "harmonic"))
	output := buf.String()

	for _, want := range []string{"orchestration", "fit finished", "harmonic", "info"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}
}

func TestZerologAdapter_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")
	logger.Error("fit failed", errors.New("singular matrix"), String("model", "hyperbolic"))

	output := buf.String()
	for _, want := range []string{"fit failed", "singular matrix", "hyperbolic", "error"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}
}

func TestZerologAdapter_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logger.Debug("iteration", Int("evals", 12))

	if !strings.Contains(buf.String(), "iteration") || !strings.Contains(buf.String(), "debug") {
		t.Errorf("Debug output missing message or level, got: %s", buf.String())
	}
}

func TestZerologAdapter_PrintfPrintln(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")

	logger.Printf("fitted %s in %d evaluations", "exponential", 17)
	logger.Println("window", 7)

	output := buf.String()
	if !strings.Contains(output, "fitted exponential in 17 evaluations") {
		t.Errorf("Printf should format message, got: %s", output)
	}
	if !strings.Contains(output, "window 7") {
		t.Errorf("Println should join arguments, got: %s", output)
	}
}

func TestZerologAdapter_applyFields(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		contains string
	}{
		{"string field", Field{Key: "str", Value: "hello"}, "hello"},
		{"int field", Field{Key: "num", Value: 42}, "42"},
		{"int64 field", Field{Key: "big", Value: int64(9223372036854775807)}, "9223372036854775807"},
		{"uint64 field", Field{Key: "huge", Value: uint64(18446744073709551615)}, "18446744073709551615"},
		{"float64 field", Field{Key: "qi", Value: 3.14}, "3.14"},
		{"error field", Field{Key: "err", Value: errors.New("oops")}, "oops"},
		{"bool field", Field{Key: "trim", Value: true}, "true"},
		{"interface field", Field{Key: "data", Value: struct{ X int }{X: 1}}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLogger(&buf, "test").Info("test", tt.field)
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("applyFields should handle %s, output: %s", tt.name, buf.String())
			}
		})
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("ignored")
	logger.Error("ignored", errors.New("x"))
}

func TestStdLoggerAdapter(t *testing.T) {
	tests := []struct {
		name     string
		log      func(Logger)
		contains []string
	}{
		{
			name:     "info with fields",
			log:      func(l Logger) { l.Info("smoothed", Int("dropped", 3)) },
			contains: []string{"[INFO]", "smoothed", "dropped=3"},
		},
		{
			name:     "error with cause",
			log:      func(l Logger) { l.Error("fit failed", errors.New("boom"), String("model", "hp")) },
			contains: []string{"[ERROR]", "fit failed", "boom", "model=hp"},
		},
		{
			name:     "debug",
			log:      func(l Logger) { l.Debug("trace") },
			contains: []string{"[DEBUG]", "trace"},
		},
		{
			name:     "printf",
			log:      func(l Logger) { l.Printf("value is %d", 123) },
			contains: []string{"value is 123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			adapter := NewStdLoggerAdapter(log.New(&buf, "", 0))
			tt.log(adapter)
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output should contain %q, got: %s", want, buf.String())
				}
			}
		})
	}
}

// TestLoggerInterface verifies both adapters implement the Logger interface.
func TestLoggerInterface(t *testing.T) {
	var buf bytes.Buffer
	var _ Logger = NewLogger(&buf, "test")
	var _ Logger = NewStdLoggerAdapter(log.New(&buf, "", 0))
}
