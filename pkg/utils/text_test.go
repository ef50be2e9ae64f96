package utils

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{
			name:  "Short string untouched",
			input: "hello",
			limit: 10,
			want:  "hello",
		},
		{
			name:  "Exact length untouched",
			input: "hello",
			limit: 5,
			want:  "hello",
		},
		{
			name:  "Long string gets ellipsis",
			input: "hello world",
			limit: 6,
			want:  "hello…",
		},
		{
			name:  "Multibyte runes counted as one",
			input: "héllo wörld",
			limit: 6,
			want:  "héllo…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.input, tt.limit)
			if got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`2 < 3 & "x" > y`)
	want := `2 &lt; 3 &amp; "x" &gt; y`
	if got != want {
		t.Errorf("EscapeHTML() = %q, want %q", got, want)
	}
}
