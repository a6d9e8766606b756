package textutil

import "testing"

func TestLogicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"greeting", "greeting"},
		{"  Però sì!  ", "Pero_si"},
		{"intro/take 2.mp3", "intro_take_2_mp3"},
		{"über-Café", "uber-Cafe"},
		{"***", ""},
		{"日本語", ""},
	}
	for _, tt := range tests {
		if got := LogicalName(tt.in); got != tt.want {
			t.Errorf("LogicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(` a/b:c*d?"e" `); got != "a-b-c-de" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if got := SanitizeFileName("   "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
