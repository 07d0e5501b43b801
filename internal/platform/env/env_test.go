package env

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestString_Default(t *testing.T) {
	got := String("BASELINE_ENV_STRING_DOES_NOT_EXIST", "fallback")
	if got != "fallback" {
		t.Fatalf("String()=%q, want fallback", got)
	}
}

func TestString_Override(t *testing.T) {
	t.Setenv("BASELINE_ENV_STRING_KEY", "value")
	got := String("BASELINE_ENV_STRING_KEY", "fallback")
	if got != "value" {
		t.Fatalf("String()=%q, want value", got)
	}
}

func TestDuration_Invalid(t *testing.T) {
	t.Setenv("BASELINE_ENV_DURATION_INVALID", "not-a-duration")
	if _, err := Duration("BASELINE_ENV_DURATION_INVALID", 5*time.Second); err == nil {
		t.Fatalf("Duration() expected error")
	}
}

func TestBool_Override(t *testing.T) {
	t.Setenv("BASELINE_ENV_BOOL_KEY", "false")
	got, err := Bool("BASELINE_ENV_BOOL_KEY", true)
	if err != nil {
		t.Fatalf("Bool() err=%v", err)
	}
	if got {
		t.Fatalf("Bool()=%v, want false", got)
	}
}

func TestInt_Invalid(t *testing.T) {
	t.Setenv("BASELINE_ENV_INT_INVALID", "nope")
	if _, err := Int("BASELINE_ENV_INT_INVALID", 42); err == nil {
		t.Fatalf("Int() expected error")
	}
}

func TestFloat(t *testing.T) {
	got, err := Float("BASELINE_ENV_FLOAT_DOES_NOT_EXIST", 0.8)
	if err != nil {
		t.Fatalf("Float() err=%v", err)
	}
	if got != 0.8 {
		t.Fatalf("Float()=%v, want 0.8", got)
	}

	t.Setenv("BASELINE_ENV_FLOAT_KEY", " 0.75 ")
	got, err = Float("BASELINE_ENV_FLOAT_KEY", 0.8)
	if err != nil {
		t.Fatalf("Float() err=%v", err)
	}
	if got != 0.75 {
		t.Fatalf("Float()=%v, want 0.75", got)
	}

	t.Setenv("BASELINE_ENV_FLOAT_KEY", "x")
	if _, err := Float("BASELINE_ENV_FLOAT_KEY", 0.8); err == nil {
		t.Fatalf("Float() expected error")
	}
}

func TestStrings(t *testing.T) {
	def := []string{"id"}
	if diff := cmp.Diff(def, Strings("BASELINE_ENV_STRINGS_DOES_NOT_EXIST", def)); diff != "" {
		t.Fatalf("Strings() default mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("BASELINE_ENV_STRINGS_KEY", "user_id, ,order_id,")
	want := []string{"user_id", "order_id"}
	if diff := cmp.Diff(want, Strings("BASELINE_ENV_STRINGS_KEY", def)); diff != "" {
		t.Fatalf("Strings() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnabled(t *testing.T) {
	t.Setenv("BASELINE_ENV_ENABLED_EMPTY", "  ")
	if Enabled("BASELINE_ENV_ENABLED_EMPTY") {
		t.Fatalf("Enabled()=true for blank value")
	}
	t.Setenv("BASELINE_ENV_ENABLED_SET", "localhost:9000")
	if !Enabled("BASELINE_ENV_ENABLED_SET") {
		t.Fatalf("Enabled()=false for set value")
	}
}
