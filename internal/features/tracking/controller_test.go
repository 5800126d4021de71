package tracking

import "testing"

func TestIsSafeRedirect(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://vendor.example/advisory", true},
		{"http://example.com/page?x=1", true},
		{"ftp://example.com/file", false},
		{"javascript:alert(1)", false},
		{"https://localhost/admin", false},
		{"http://127.0.0.1:8080/", false},
		{"http://10.0.0.5/internal", false},
		{"http://192.168.1.1/", false},
		{"http://printer.local/", false},
		{"not a url at all", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isSafeRedirect(tt.url); got != tt.want {
			t.Errorf("isSafeRedirect(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
