package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", map[string]string{"property": "name"}); msg != "必須プロパティ name が不足しています" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_FillsParams(t *testing.T) {
	got := T("too_short", map[string]string{"min": "2", "unit": "items"})
	if got != "must have at least 2 items" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := T("no_such_code", map[string]string{"x": "y"}); got != "no_such_code" {
		t.Fatalf("unknown code should echo, got %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if got := T("pattern", nil); got != "X:pattern" {
		t.Fatalf("custom translator not used: %q", got)
	}
}
