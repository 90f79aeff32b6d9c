package cache

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		coinID string
		limit  int
		want   string
	}{
		{"bitcoin", 50, "history:bitcoin:50"},
		{"ethereum", 100, "history:ethereum:100"},
		{"bitcoin", 100, "history:bitcoin:100"},
	}

	for _, tt := range tests {
		if got := Key(tt.coinID, tt.limit); got != tt.want {
			t.Errorf("Key(%q, %d) = %q, want %q", tt.coinID, tt.limit, got, tt.want)
		}
	}

	// Same inputs always produce the same key.
	if Key("bitcoin", 50) != Key("bitcoin", 50) {
		t.Error("Key is not deterministic")
	}
}
