package middleware

import (
	"strings"
	"testing"
)

func TestMaskSensitiveFields(t *testing.T) {
	body := `{"email":"ada@example.com","password":"hunter22"}`
	masked := maskSensitiveFields(body)

	if masked == body {
		t.Error("expected password value to be masked")
	}
	if want := `"password":"***"`; !strings.Contains(masked, want) {
		t.Errorf("masked body %q should contain %q", masked, want)
	}
	if !strings.Contains(masked, "ada@example.com") {
		t.Error("non-sensitive fields should be untouched")
	}
}

func TestMaskSensitiveFields_NoSensitiveKeys(t *testing.T) {
	body := `{"name":"gitfolio","description":"code hosting"}`
	if masked := maskSensitiveFields(body); masked != body {
		t.Errorf("body without sensitive keys should be unchanged, got %q", masked)
	}
}
