package template

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want []string
	}{
		{"simple", "Summarize {text} in {n} words", []string{"text", "n"}},
		{"duplicate", "{a} and {a} and {b}", []string{"a", "b"}},
		{"none", "no placeholders here", nil},
		{"escaped braces", "json: {{\"key\": {value}}}", []string{"value"}},
		{"invalid contents", "{not valid} {with:colon} { spaced } {ok_1}", []string{"ok_1"}},
		{"leading digit", "{1bad} {good1}", []string{"good1"}},
		{"unterminated", "open {never closes", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.tmpl)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect(%q) = %v, want %v", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestFill(t *testing.T) {
	got, err := Fill("Summarize {text} in {n} words", map[string]string{"text": "hello", "n": "5"})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if got != "Summarize hello in 5 words" {
		t.Errorf("Fill = %q", got)
	}
	if strings.ContainsAny(got, "{}") {
		t.Errorf("filled result contains residual braces: %q", got)
	}
}

func TestFill_MissingVariable(t *testing.T) {
	_, err := Fill("Summarize {text} in {n} words", map[string]string{"text": "hello"})
	var missing *MissingVariableError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingVariableError, got %v", err)
	}
	if !reflect.DeepEqual(missing.Names, []string{"n"}) {
		t.Errorf("missing names = %v, want [n]", missing.Names)
	}
}

func TestFill_AtomicOnFailure(t *testing.T) {
	// When any variable is missing, no substitution happens at all.
	out, err := Fill("{a} {b}", map[string]string{"a": "filled"})
	if err == nil {
		t.Fatal("expected error")
	}
	if out != "" {
		t.Errorf("partial substitution on failure: %q", out)
	}

	var missing *MissingVariableError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingVariableError, got %v", err)
	}
	if !reflect.DeepEqual(missing.Names, []string{"b"}) {
		t.Errorf("missing names = %v, want [b]", missing.Names)
	}
}

func TestFill_ReportsAllMissing(t *testing.T) {
	_, err := Fill("{z} {a} {z}", nil)
	var missing *MissingVariableError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingVariableError, got %v", err)
	}
	// Sorted and deduplicated.
	if !reflect.DeepEqual(missing.Names, []string{"a", "z"}) {
		t.Errorf("missing names = %v, want [a z]", missing.Names)
	}
}

func TestFill_EscapedBraces(t *testing.T) {
	got, err := Fill("return {{\"name\": \"{who}\"}}", map[string]string{"who": "ada"})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := "return {\"name\": \"ada\"}"
	if got != want {
		t.Errorf("Fill = %q, want %q", got, want)
	}
}

func TestFill_NonPlaceholderBracesKeptVerbatim(t *testing.T) {
	got, err := Fill("set {x: 1} and {val}", map[string]string{"val": "2"})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if got != "set {x: 1} and 2" {
		t.Errorf("Fill = %q", got)
	}
}
