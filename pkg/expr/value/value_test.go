package value

import (
	"math"
	"testing"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected bool
	}{
		{"no-value", NoValue(), false},
		{"null", Null(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), false},
		{"NaN", Number(math.NaN()), false},
		{"nonzero", Number(0.5), true},
		{"empty string", String(""), false},
		{"string", String("x"), true},
		{"empty array", Array(nil), true},
		{"empty object", Object(map[string]Value{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Truthy(); got != tt.expected {
				t.Errorf("Truthy() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestAsNumber(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected float64
		ok       bool
	}{
		{"number", Number(2.5), 2.5, true},
		{"true", Bool(true), 1, true},
		{"false", Bool(false), 0, true},
		{"null", Null(), 0, true},
		{"numeric string", String(" 42 "), 42, true},
		{"non-numeric string", String("abc"), 0, false},
		{"no-value", NoValue(), 0, false},
		{"array", Array(nil), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.AsNumber()
			if ok != tt.ok {
				t.Fatalf("AsNumber() ok = %v, expected %v", ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("AsNumber() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"no-value", NoValue(), ""},
		{"null", Null(), ""},
		{"true", Bool(true), "true"},
		{"integer", Number(42), "42"},
		{"decimal", Number(2.5), "2.5"},
		{"NaN", Number(math.NaN()), "NaN"},
		{"string", String("hi"), "hi"},
		{"array", Array([]Value{Number(1), String("a"), Null()}), "1,a,"},
		{"object", Object(map[string]Value{"b": Number(2), "a": Number(1)}), "{a:1,b:2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Render(); got != tt.expected {
				t.Errorf("Render() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal(NoValue(), NoValue()) {
		t.Error("Expected no-value to equal no-value")
	}
	if !Equal(Null(), Null()) {
		t.Error("Expected null to equal null")
	}
	if Equal(Null(), NoValue()) {
		t.Error("Expected null to differ from no-value under strict equality")
	}
	if Equal(Number(math.NaN()), Number(math.NaN())) {
		t.Error("Expected NaN to differ from NaN")
	}
	if !Equal(
		Array([]Value{Number(1), Number(2)}),
		Array([]Value{Number(1), Number(2)}),
	) {
		t.Error("Expected equal arrays to compare equal")
	}
	if Equal(
		Object(map[string]Value{"a": Number(1)}),
		Object(map[string]Value{"a": Number(2)}),
	) {
		t.Error("Expected objects with different fields to differ")
	}
}

func TestZeroValueIsNoValue(t *testing.T) {
	var v Value
	if !v.IsNoValue() {
		t.Error("Expected the zero Value to be the no-value sentinel")
	}
}
